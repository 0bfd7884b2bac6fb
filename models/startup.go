package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Onboarding is the baseline profile a startup registers once.
type Onboarding struct {
	ID                 int64           `json:"id"`
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
	OnboardingDate     time.Time       `json:"onboarding_date"`
	CreatedAt          time.Time       `json:"created_at"`
}

// PlannedBurn is the monthly spend declared at onboarding.
func (o Onboarding) PlannedBurn() decimal.Decimal {
	return decimal.Sum(o.ProductDevExpenses, o.ManpowerExpenses, o.MarketingExpenses, o.OperationsExpenses)
}

// MonthlyRecord is one month of actuals. Date is always the first day of the month.
type MonthlyRecord struct {
	ID                 int64           `json:"id"`
	StartupID          int64           `json:"startup_id"`
	Date               time.Time       `json:"date"`
	Revenue            decimal.Decimal `json:"revenue"`
	ProductDevExpenses decimal.Decimal `json:"product_dev_expenses"`
	ManpowerExpenses   decimal.Decimal `json:"manpower_expenses"`
	MarketingExpenses  decimal.Decimal `json:"marketing_expenses"`
	OperationsExpenses decimal.Decimal `json:"operations_expenses"`
	OtherExpenses      decimal.Decimal `json:"other_expenses"`
	NewCustomers       int             `json:"new_customers"`
	ActiveCustomers    int             `json:"active_customers"`
}

func (m MonthlyRecord) TotalExpenses() decimal.Decimal {
	return decimal.Sum(m.ProductDevExpenses, m.ManpowerExpenses, m.MarketingExpenses, m.OperationsExpenses, m.OtherExpenses)
}

// NetCashFlow is revenue minus total expenses for the month.
func (m MonthlyRecord) NetCashFlow() decimal.Decimal {
	return m.Revenue.Sub(m.TotalExpenses())
}

// MonthStart truncates t to midnight UTC on the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
