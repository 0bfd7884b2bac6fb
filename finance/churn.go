package finance

import "time"

// ChurnPoint is the customer movement for one month.
// Churned = previous active + new - current active, floored at zero.
type ChurnPoint struct {
	Date           time.Time `json:"date"`
	PreviousActive int       `json:"previous_active"`
	NewCustomers   int       `json:"new_customers"`
	Churned        int       `json:"churned_customers"`
	CurrentActive  int       `json:"current_active"`
	ChurnRate      float64   `json:"churn_rate"` // percent of previous active
	NetGrowth      int       `json:"net_growth"`
}

func ChurnSeries(s Snapshot) []ChurnPoint {
	if len(s.Months) == 0 {
		return nil
	}
	out := make([]ChurnPoint, 0, len(s.Months))
	prev := s.Onboarding.InitialCustomers
	for _, m := range s.Months {
		churned := max(0, prev+m.NewCustomers-m.ActiveCustomers)
		var rate float64
		if prev > 0 {
			rate = float64(churned) / float64(prev) * 100
		}
		out = append(out, ChurnPoint{
			Date:           m.Date,
			PreviousActive: prev,
			NewCustomers:   m.NewCustomers,
			Churned:        churned,
			CurrentActive:  m.ActiveCustomers,
			ChurnRate:      rate,
			NetGrowth:      m.ActiveCustomers - prev,
		})
		prev = m.ActiveCustomers
	}
	return out
}

type ChurnAnalysis struct {
	StartupName         string       `json:"startup_name"`
	Months              int          `json:"months"`
	TotalNewCustomers   int          `json:"total_new_customers"`
	TotalChurned        int          `json:"total_churned_customers"`
	AvgChurnRate        float64      `json:"avg_churn_rate"`
	AvgRetentionRate    float64      `json:"avg_retention_rate"`
	NetGrowth           int          `json:"net_growth"`
	RecentMonths        int          `json:"recent_months"`
	RecentAvgChurnRate  float64      `json:"recent_avg_churn_rate"`
	RecentRetentionRate float64      `json:"recent_retention_rate"`
	RecentNetGrowth     int          `json:"recent_net_growth"`
	Breakdown           []ChurnPoint `json:"breakdown"`
	Health              Health       `json:"health"`
}

func AnalyzeChurn(s Snapshot) (ChurnAnalysis, error) {
	series := ChurnSeries(s)
	if len(series) == 0 {
		return ChurnAnalysis{}, ErrNoMonthlyData
	}
	a := ChurnAnalysis{
		StartupName: s.Onboarding.StartupName,
		Months:      len(series),
		NetGrowth:   series[len(series)-1].CurrentActive - s.Onboarding.InitialCustomers,
		Breakdown:   lastN(series, BreakdownWindow),
	}
	var rateSum float64
	for _, p := range series {
		a.TotalNewCustomers += p.NewCustomers
		a.TotalChurned += p.Churned
		rateSum += p.ChurnRate
	}
	a.AvgChurnRate = rateSum / float64(len(series))
	a.AvgRetentionRate = 100 - a.AvgChurnRate

	recent := lastN(series, RecentWindow)
	a.RecentMonths = len(recent)
	a.RecentAvgChurnRate = meanChurn(recent)
	a.RecentRetentionRate = 100 - a.RecentAvgChurnRate
	for _, p := range recent {
		a.RecentNetGrowth += p.NetGrowth
	}
	a.Health = churnHealth(a.RecentAvgChurnRate)
	return a, nil
}

func meanChurn(points []ChurnPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.ChurnRate
	}
	return sum / float64(len(points))
}

func churnHealth(rate float64) Health {
	switch {
	case rate < 5:
		return HealthExcellent
	case rate < 10:
		return HealthGood
	case rate < 20:
		return HealthConcerning
	default:
		return HealthCritical
	}
}
