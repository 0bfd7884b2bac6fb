package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OnboardingRequest struct {
	StartupName        string          `json:"startup_name"`
	Industry           string          `json:"industry"`
	TargetRevenue      decimal.Decimal `json:"target_revenue"`
	ProductDevExpenses decimal.Decimal `json:"product_dev_expenses"`
	ManpowerExpenses   decimal.Decimal `json:"manpower_expenses"`
	MarketingExpenses  decimal.Decimal `json:"marketing_expenses"`
	OperationsExpenses decimal.Decimal `json:"operations_expenses"`
	InitialCash        decimal.Decimal `json:"initial_cash"`
	InitialCustomers   int             `json:"initial_customers"`
	CurrentEmployees   int             `json:"current_employees"`
	TargetRunwayMonths int             `json:"target_runway_months"`
	OnboardingDate     string          `json:"onboarding_date"` // YYYY-MM-DD, defaults to today
}

func (r OnboardingRequest) Validate() error {
	if strings.TrimSpace(r.StartupName) == "" {
		return errors.New("startup_name is required")
	}
	if err := nonNegative([]namedAmount{
		{"target_revenue", r.TargetRevenue},
		{"product_dev_expenses", r.ProductDevExpenses},
		{"manpower_expenses", r.ManpowerExpenses},
		{"marketing_expenses", r.MarketingExpenses},
		{"operations_expenses", r.OperationsExpenses},
		{"initial_cash", r.InitialCash},
	}); err != nil {
		return err
	}
	if r.InitialCustomers < 0 || r.CurrentEmployees < 0 || r.TargetRunwayMonths < 0 {
		return errors.New("initial_customers, current_employees and target_runway_months must be >= 0")
	}
	if r.OnboardingDate != "" {
		if _, err := time.Parse(time.DateOnly, r.OnboardingDate); err != nil {
			return fmt.Errorf("onboarding_date must be YYYY-MM-DD")
		}
	}
	return nil
}

// ToModel converts a validated request. now is used when no date was given.
func (r OnboardingRequest) ToModel(now time.Time) Onboarding {
	date := now.UTC().Truncate(24 * time.Hour)
	if r.OnboardingDate != "" {
		date, _ = time.Parse(time.DateOnly, r.OnboardingDate)
	}
	return Onboarding{
		StartupName:        strings.TrimSpace(r.StartupName),
		Industry:           strings.TrimSpace(r.Industry),
		TargetRevenue:      r.TargetRevenue,
		ProductDevExpenses: r.ProductDevExpenses,
		ManpowerExpenses:   r.ManpowerExpenses,
		MarketingExpenses:  r.MarketingExpenses,
		OperationsExpenses: r.OperationsExpenses,
		InitialCash:        r.InitialCash,
		InitialCustomers:   r.InitialCustomers,
		CurrentEmployees:   r.CurrentEmployees,
		TargetRunwayMonths: r.TargetRunwayMonths,
		OnboardingDate:     date,
	}
}

type MonthlyRequest struct {
	Date               string          `json:"date"` // YYYY-MM or YYYY-MM-DD
	Revenue            decimal.Decimal `json:"revenue"`
	ProductDevExpenses decimal.Decimal `json:"product_dev_expenses"`
	ManpowerExpenses   decimal.Decimal `json:"manpower_expenses"`
	MarketingExpenses  decimal.Decimal `json:"marketing_expenses"`
	OperationsExpenses decimal.Decimal `json:"operations_expenses"`
	OtherExpenses      decimal.Decimal `json:"other_expenses"`
	NewCustomers       int             `json:"new_customers"`
	ActiveCustomers    int             `json:"active_customers"`
}

func (r MonthlyRequest) Validate() error {
	if _, err := ParseMonth(r.Date); err != nil {
		return err
	}
	if err := nonNegative([]namedAmount{
		{"revenue", r.Revenue},
		{"product_dev_expenses", r.ProductDevExpenses},
		{"manpower_expenses", r.ManpowerExpenses},
		{"marketing_expenses", r.MarketingExpenses},
		{"operations_expenses", r.OperationsExpenses},
		{"other_expenses", r.OtherExpenses},
	}); err != nil {
		return err
	}
	if r.NewCustomers < 0 || r.ActiveCustomers < 0 {
		return errors.New("new_customers and active_customers must be >= 0")
	}
	return nil
}

func (r MonthlyRequest) ToModel(startupID int64) MonthlyRecord {
	month, _ := ParseMonth(r.Date)
	return MonthlyRecord{
		StartupID:          startupID,
		Date:               month,
		Revenue:            r.Revenue,
		ProductDevExpenses: r.ProductDevExpenses,
		ManpowerExpenses:   r.ManpowerExpenses,
		MarketingExpenses:  r.MarketingExpenses,
		OperationsExpenses: r.OperationsExpenses,
		OtherExpenses:      r.OtherExpenses,
		NewCustomers:       r.NewCustomers,
		ActiveCustomers:    r.ActiveCustomers,
	}
}

// ParseMonth accepts YYYY-MM, YYYY-MM-DD or RFC 3339 and returns the first day of that month.
func ParseMonth(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01", time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return MonthStart(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid month %q: use YYYY-MM or YYYY-MM-DD", s)
}

type namedAmount struct {
	name  string
	value decimal.Decimal
}

// nonNegative reports the first negative field in declaration order.
func nonNegative(fields []namedAmount) error {
	for _, f := range fields {
		if f.value.IsNegative() {
			return fmt.Errorf("%s must be >= 0", f.name)
		}
	}
	return nil
}
