package finance

type Health string

const (
	HealthExcellent  Health = "EXCELLENT"
	HealthGood       Health = "GOOD"
	HealthConcerning Health = "CONCERNING"
	HealthCritical   Health = "CRITICAL"
)

func (h Health) icon() string {
	switch h {
	case HealthExcellent:
		return "✅"
	case HealthGood:
		return "👍"
	case HealthConcerning:
		return "⚠️"
	default:
		return "❌"
	}
}

type Affordability string

const (
	Affordable    Affordability = "AFFORDABLE"
	Risky         Affordability = "RISKY"
	NotAffordable Affordability = "NOT AFFORDABLE"
)
