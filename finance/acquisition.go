package finance

import (
	"github.com/shopspring/decimal"

	"cashflow-guardian/backend/models"
)

// CAC is marketing spend divided by new customers. A null value means no
// customers were acquired in that period, so the cost is unbounded.
type CAC struct {
	StartupName          string              `json:"startup_name"`
	Lifetime             decimal.NullDecimal `json:"lifetime_cac"`
	LifetimeMarketing    decimal.Decimal     `json:"lifetime_marketing"`
	LifetimeNewCustomers int                 `json:"lifetime_new_customers"`
	Recent               decimal.NullDecimal `json:"recent_cac"`
	RecentMarketing      decimal.Decimal     `json:"recent_marketing"`
	RecentNewCustomers   int                 `json:"recent_new_customers"`
	RecentMonths         int                 `json:"recent_months"`
}

func ComputeCAC(s Snapshot) (CAC, error) {
	if !s.HasMonths() {
		return CAC{}, ErrNoMonthlyData
	}
	c := CAC{StartupName: s.Onboarding.StartupName}
	c.Lifetime, c.LifetimeMarketing, c.LifetimeNewCustomers = acquisitionCost(s.Months)
	recent := s.Recent(RecentWindow)
	c.Recent, c.RecentMarketing, c.RecentNewCustomers = acquisitionCost(recent)
	c.RecentMonths = len(recent)
	return c, nil
}

func acquisitionCost(months []models.MonthlyRecord) (decimal.NullDecimal, decimal.Decimal, int) {
	var marketing decimal.Decimal
	var acquired int
	for _, m := range months {
		marketing = marketing.Add(m.MarketingExpenses)
		acquired += m.NewCustomers
	}
	if acquired == 0 {
		return decimal.NullDecimal{}, marketing, 0
	}
	return decimal.NewNullDecimal(marketing.Div(decimal.NewFromInt(int64(acquired)))), marketing, acquired
}

// LTV is ARPU times the expected customer lifespan, compared against the recent CAC.
// Nil LifespanMonths, a null Value and a nil Ratio all mean unbounded.
type LTV struct {
	StartupName        string              `json:"startup_name"`
	ARPU               decimal.Decimal     `json:"arpu"`
	AvgChurnRate       float64             `json:"avg_monthly_churn_rate"` // percent
	LifespanMonths     *float64            `json:"lifespan_months"`
	Value              decimal.NullDecimal `json:"ltv"`
	CAC                decimal.NullDecimal `json:"cac"`
	RecentMarketing    decimal.Decimal     `json:"recent_marketing"`
	RecentNewCustomers int                 `json:"recent_new_customers"`
	Ratio              *float64            `json:"ltv_cac_ratio"`
	Health             Health              `json:"health"`
}

func ComputeLTV(s Snapshot) (LTV, error) {
	series := ChurnSeries(s)
	if len(series) == 0 {
		return LTV{}, ErrNoMonthlyData
	}
	l := LTV{StartupName: s.Onboarding.StartupName}

	// avg revenue / avg active customers over the same window reduces to the ratio of sums
	var revenue decimal.Decimal
	var active int64
	for _, m := range s.Recent(RecentWindow) {
		revenue = revenue.Add(m.Revenue)
		active += int64(m.ActiveCustomers)
	}
	if active > 0 {
		l.ARPU = revenue.Div(decimal.NewFromInt(active))
	}

	l.AvgChurnRate = meanChurn(lastN(series, RecentWindow))
	if l.AvgChurnRate > 0 {
		lifespan := 100 / l.AvgChurnRate
		l.LifespanMonths = &lifespan
		l.Value = decimal.NewNullDecimal(l.ARPU.Mul(decimal.NewFromFloat(lifespan)))
	}

	l.CAC, l.RecentMarketing, l.RecentNewCustomers = acquisitionCost(s.Recent(RecentWindow))
	if l.CAC.Valid && l.CAC.Decimal.IsPositive() && l.Value.Valid {
		ratio := l.Value.Decimal.Div(l.CAC.Decimal).InexactFloat64()
		l.Ratio = &ratio
	}
	l.Health = ltvHealth(l.Ratio)
	return l, nil
}

func ltvHealth(ratio *float64) Health {
	switch {
	case ratio == nil || *ratio >= 3:
		return HealthExcellent
	case *ratio >= 2:
		return HealthGood
	case *ratio >= 1:
		return HealthConcerning
	default:
		return HealthCritical
	}
}
