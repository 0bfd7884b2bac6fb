package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// The Report methods render the plain-text breakdowns handed to the advisor
// model and returned by the insights endpoints.

func (s Summary) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "FINANCIAL JOURNEY - %s (%s)\n\n", s.StartupName, s.Industry)
	b.WriteString("STARTING POSITION (Onboarding):\n")
	fmt.Fprintf(&b, "- Initial Cash: %s\n", Peso(s.InitialCash))
	fmt.Fprintf(&b, "- Planned Monthly Revenue: %s\n", Peso(s.PlannedRevenue))
	fmt.Fprintf(&b, "- Planned Expenses: %s/month\n", Peso(s.PlannedExpenses))
	fmt.Fprintf(&b, "- Initial Customers: %d\n", s.InitialCustomers)
	fmt.Fprintf(&b, "- Target Runway: %d months\n\n", s.TargetRunwayMonths)
	fmt.Fprintf(&b, "CURRENT POSITION (%d months later):\n", s.MonthsElapsed)
	fmt.Fprintf(&b, "- Current Cash: %s", Peso(s.CurrentCash))

	l := s.Latest
	if l == nil {
		return b.String()
	}
	fmt.Fprintf(&b, "\n- Latest Monthly Revenue: %s\n", Peso(l.Revenue))
	fmt.Fprintf(&b, "- Latest Monthly Expenses: %s\n", Peso(l.Expenses))
	fmt.Fprintf(&b, "- Current Customers: %d\n", l.ActiveCustomers)
	fmt.Fprintf(&b, "- Employees: %d\n\n", l.Employees)
	b.WriteString("PROGRESS vs PLAN:\n")
	fmt.Fprintf(&b, "- Revenue: %s vs %s planned (%+.1f%%)\n", Peso(l.Revenue), Peso(s.PlannedRevenue), l.RevenueVsPlanPct)
	fmt.Fprintf(&b, "- Customers: %d vs %d initial (%+d change)\n\n", l.ActiveCustomers, s.InitialCustomers, l.CustomerChange)
	b.WriteString("CUSTOMER METRICS (Latest Month):\n")
	fmt.Fprintf(&b, "- New Customers: +%d\n", l.Churn.NewCustomers)
	fmt.Fprintf(&b, "- Churned Customers: -%d\n", l.Churn.Churned)
	fmt.Fprintf(&b, "- Net Growth: %+d\n", l.Churn.NetGrowth)
	fmt.Fprintf(&b, "- Churn Rate: %.1f%%", l.Churn.ChurnRate)
	return b.String()
}

func (a ChurnAnalysis) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CUSTOMER CHURN ANALYSIS - %s\n\n", a.StartupName)
	fmt.Fprintf(&b, "OVERALL METRICS (%d months):\n", a.Months)
	fmt.Fprintf(&b, "- Total New Customers: %d\n", a.TotalNewCustomers)
	fmt.Fprintf(&b, "- Total Churned Customers: %d\n", a.TotalChurned)
	fmt.Fprintf(&b, "- Average Churn Rate: %.1f%%/month\n", a.AvgChurnRate)
	fmt.Fprintf(&b, "- Average Retention Rate: %.1f%%/month\n", a.AvgRetentionRate)
	fmt.Fprintf(&b, "- Net Customer Growth: %+d\n\n", a.NetGrowth)
	fmt.Fprintf(&b, "RECENT PERFORMANCE (last %d months):\n", a.RecentMonths)
	fmt.Fprintf(&b, "- Average Churn Rate: %.1f%%/month\n", a.RecentAvgChurnRate)
	fmt.Fprintf(&b, "- Average Retention Rate: %.1f%%/month\n", a.RecentRetentionRate)
	fmt.Fprintf(&b, "- Net Growth: %+d customers\n\n", a.RecentNetGrowth)
	b.WriteString("MONTHLY BREAKDOWN:")
	for _, p := range a.Breakdown {
		fmt.Fprintf(&b, "\n%s: %d → %d (%+d)\n", p.Date.Format(time.DateOnly), p.PreviousActive, p.CurrentActive, p.NetGrowth)
		fmt.Fprintf(&b, "  New: +%d, Churned: -%d, Churn Rate: %.1f%%", p.NewCustomers, p.Churned, p.ChurnRate)
	}
	b.WriteString("\n\nCHURN HEALTH ASSESSMENT:\n")
	b.WriteString(a.Health.icon() + " " + string(a.Health) + ": ")
	switch a.Health {
	case HealthExcellent:
		b.WriteString("Very low churn rate")
	case HealthGood:
		b.WriteString("Healthy churn rate")
	case HealthConcerning:
		b.WriteString("High churn rate - investigate retention")
	default:
		b.WriteString("Very high churn rate - immediate action needed")
	}
	return b.String()
}

func (br BurnRate) Report() string {
	if !br.Actual.Valid {
		return fmt.Sprintf("Planned monthly burn rate: %s\n(No actual data available yet)", Peso(br.Planned))
	}
	variancePct := "n/a"
	if br.VariancePct != nil {
		variancePct = fmt.Sprintf("%+.1f%%", *br.VariancePct)
	}
	return fmt.Sprintf("BURN RATE ANALYSIS:\n- Planned burn rate: %s/month\n- Actual burn rate: %s/month (%d-month average)\n- Variance: %s/month (%s)",
		Peso(br.Planned), Peso(br.Actual.Decimal), br.WindowMonths, SignedPeso(br.Variance.Decimal), variancePct)
}

func (r RunwayResult) Report() string {
	switch r.Basis {
	case BasisSimulated:
		return fmt.Sprintf("Simulated runway: %s months (%s ÷ %s/month)", r.Runway, Peso(r.CurrentCash), Peso(r.MonthlyBurn))
	case BasisPlanned:
		return fmt.Sprintf("Current runway: %s months (%s ÷ %s/month planned burn)\nNote: Based on projected expenses - no actual monthly data yet",
			r.Runway, Peso(r.CurrentCash), Peso(r.MonthlyBurn))
	}
	if r.CashPositive {
		return fmt.Sprintf("🎉 You are cash positive! Generating %s/month in positive cash flow\nCurrent cash: %s",
			Peso(r.MonthlyBurn.Abs()), Peso(r.CurrentCash))
	}
	return fmt.Sprintf("Current runway: %s months\n- Current cash: %s\n- Average monthly revenue: %s\n- Average monthly expenses: %s\n- Net monthly burn: %s\n(%d month average)",
		r.Runway, Peso(r.CurrentCash), Peso(r.AvgRevenue.Decimal), Peso(r.AvgExpenses.Decimal), Peso(r.MonthlyBurn), r.WindowMonths)
}

func (c CAC) Report() string {
	lifetime := orUnbounded(c.Lifetime, "∞ (No customers acquired yet)")
	recent := orUnbounded(c.Recent, "∞ (No customers acquired in period)")
	var b strings.Builder
	fmt.Fprintf(&b, "CUSTOMER ACQUISITION COST (CAC) - %s\n\n", c.StartupName)
	b.WriteString("ACQUISITION METRICS:\n")
	fmt.Fprintf(&b, "- Lifetime CAC: %s\n", lifetime)
	fmt.Fprintf(&b, "- Recent CAC (last %d months): %s\n", c.RecentMonths, recent)
	fmt.Fprintf(&b, "- Lifetime marketing spend: %s\n", Peso(c.LifetimeMarketing))
	fmt.Fprintf(&b, "- Lifetime new customers acquired: %d\n", c.LifetimeNewCustomers)
	fmt.Fprintf(&b, "- Recent marketing spend: %s\n", Peso(c.RecentMarketing))
	fmt.Fprintf(&b, "- Recent new customers: %d", c.RecentNewCustomers)
	return b.String()
}

func (l LTV) Report() string {
	lifespan := "∞ (No churn)"
	if l.LifespanMonths != nil {
		lifespan = fmt.Sprintf("%.1f months", *l.LifespanMonths)
	}
	ratio := "∞:1"
	if l.Ratio != nil {
		ratio = fmt.Sprintf("%.1f:1", *l.Ratio)
	}
	value := orUnbounded(l.Value, "∞ (No churn detected)")

	var b strings.Builder
	fmt.Fprintf(&b, "CUSTOMER LIFETIME VALUE (LTV) - %s\n\n", l.StartupName)
	b.WriteString("LTV CALCULATION:\n")
	fmt.Fprintf(&b, "- Average Revenue Per Customer (ARPU): %s/month\n", Peso(l.ARPU))
	fmt.Fprintf(&b, "- Average Customer Lifespan: %s\n", lifespan)
	fmt.Fprintf(&b, "- Customer Lifetime Value: %s\n\n", value)
	b.WriteString("LTV:CAC ANALYSIS:\n")
	fmt.Fprintf(&b, "- LTV: %s\n", value)
	fmt.Fprintf(&b, "- CAC: %s\n", orUnbounded(l.CAC, "∞"))
	fmt.Fprintf(&b, "- LTV:CAC Ratio: %s\n", ratio)
	fmt.Fprintf(&b, "- Recent marketing spend: %s\n", Peso(l.RecentMarketing))
	fmt.Fprintf(&b, "- Recent new customers: %d\n\n", l.RecentNewCustomers)
	b.WriteString("HEALTH ASSESSMENT:\n")
	b.WriteString(l.Health.icon() + " " + string(l.Health) + ": ")
	switch l.Health {
	case HealthExcellent:
		b.WriteString("Strong LTV:CAC ratio")
	case HealthGood:
		b.WriteString("Healthy unit economics")
	case HealthConcerning:
		b.WriteString("Break-even unit economics")
	default:
		b.WriteString("Negative unit economics")
	}
	return b.String()
}

func (h Hiring) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "HIRING AFFORDABILITY ANALYSIS - %s:\n\n", h.Role)
	b.WriteString("SALARY IMPACT:\n")
	fmt.Fprintf(&b, "- Base monthly salary: %s\n", Peso(h.MonthlySalary))
	fmt.Fprintf(&b, "- Total monthly cost: %s\n\n", Peso(h.TotalMonthlyCost))
	b.WriteString("RUNWAY IMPACT:\n")
	fmt.Fprintf(&b, "- Current runway: %s months\n", h.CurrentRunway)
	fmt.Fprintf(&b, "- New runway with hire: %s months\n", h.NewRunway)
	fmt.Fprintf(&b, "- Impact: %+d months\n\n", h.ImpactMonths)
	b.WriteString("AFFORDABILITY ASSESSMENT:\n")
	switch h.Assessment {
	case Affordable:
		b.WriteString("✅ AFFORDABLE: Still maintains healthy runway")
	case Risky:
		b.WriteString("⚠️ RISKY: Runway becomes concerning, consider timing")
	default:
		b.WriteString("❌ NOT AFFORDABLE: Would create dangerous runway situation")
	}
	fmt.Fprintf(&b, "\n\nCOST PROJECTION (%d months):\n", h.MonthsAhead)
	fmt.Fprintf(&b, "- Total cost: %s\n", Peso(h.ProjectedCost))
	fmt.Fprintf(&b, "- Cash remaining: %s", Peso(h.CashRemaining))
	return b.String()
}

func orUnbounded(d decimal.NullDecimal, unbounded string) string {
	if !d.Valid {
		return unbounded
	}
	return Peso(d.Decimal)
}
