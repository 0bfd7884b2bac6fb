package finance

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	defaultHiringRole   = "developer"
	defaultMonthsAhead  = 6
	healthyRunwayMonths = 12
	riskyRunwayMonths   = 6
)

// HiringInput holds the scenario. A nil MonthlySalary is an error; a nil
// MonthsAhead projects six months. Zero is a valid value for both.
type HiringInput struct {
	Role          string
	MonthlySalary *decimal.Decimal
	MonthsAhead   *int
}

type Hiring struct {
	Role             string          `json:"role"`
	MonthlySalary    decimal.Decimal `json:"monthly_salary"`
	TotalMonthlyCost decimal.Decimal `json:"total_monthly_cost"`
	CurrentBurn      decimal.Decimal `json:"current_burn"`
	CurrentRevenue   decimal.Decimal `json:"current_revenue"`
	CurrentCash      decimal.Decimal `json:"current_cash"`
	CurrentRunway    Runway          `json:"current_runway"`
	NewRunway        Runway          `json:"new_runway"`
	ImpactMonths     int64           `json:"impact_months"`
	Assessment       Affordability   `json:"assessment"`
	MonthsAhead      int             `json:"months_ahead"`
	ProjectedCost    decimal.Decimal `json:"projected_cost"`
	CashRemaining    decimal.Decimal `json:"cash_remaining"`
}

// AnalyzeHiring adds a salary to the current burn and reports the runway impact.
// The burn baseline is the latest month, or the onboarding plan before any month exists.
func AnalyzeHiring(s Snapshot, in HiringInput) (Hiring, error) {
	if in.MonthlySalary == nil {
		return Hiring{}, ErrSalaryRequired
	}
	if in.MonthlySalary.IsNegative() {
		return Hiring{}, ErrNegativeSalary
	}
	monthsAhead := defaultMonthsAhead
	if in.MonthsAhead != nil {
		monthsAhead = *in.MonthsAhead
	}
	if monthsAhead < 0 {
		return Hiring{}, ErrInvalidHorizon
	}
	salary := *in.MonthlySalary
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = defaultHiringRole
	}

	h := Hiring{
		Role:             cases.Title(language.English).String(role),
		MonthlySalary:    salary,
		TotalMonthlyCost: salary,
		CurrentCash:      CurrentCash(s).CurrentCash,
		MonthsAhead:      monthsAhead,
	}
	if latest, ok := s.Latest(); ok {
		h.CurrentBurn = latest.TotalExpenses()
		h.CurrentRevenue = latest.Revenue
	} else {
		h.CurrentBurn = s.Onboarding.PlannedBurn()
		h.CurrentRevenue = s.Onboarding.TargetRevenue
	}

	h.CurrentRunway = runwayFor(h.CurrentCash, h.CurrentBurn.Sub(h.CurrentRevenue))
	h.NewRunway = runwayFor(h.CurrentCash, h.CurrentBurn.Add(h.TotalMonthlyCost).Sub(h.CurrentRevenue))
	if !h.CurrentRunway.Unbounded && !h.NewRunway.Unbounded {
		h.ImpactMonths = h.NewRunway.Months - h.CurrentRunway.Months
	}

	switch {
	case h.NewRunway.Unbounded || h.NewRunway.Months >= healthyRunwayMonths:
		h.Assessment = Affordable
	case h.NewRunway.Months >= riskyRunwayMonths:
		h.Assessment = Risky
	default:
		h.Assessment = NotAffordable
	}

	h.ProjectedCost = h.TotalMonthlyCost.Mul(decimal.NewFromInt(int64(h.MonthsAhead)))
	h.CashRemaining = h.CurrentCash.Sub(h.ProjectedCost)
	return h, nil
}
