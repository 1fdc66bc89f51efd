package module

// Criticality flags modules running out of budgeted hours. It is used for
// presentation emphasis only; nothing ever blocks a write because of it.
type Criticality int

const (
	// LevelOK includes fully and over-delivered modules: once nothing
	// remains there is nothing left to plan.
	LevelOK Criticality = iota
	LevelCritical
	LevelVeryCritical
)

const (
	criticalPercent     = 30
	veryCriticalPercent = 15
)

func (c Criticality) String() string {
	switch c {
	case LevelCritical:
		return "critical"
	case LevelVeryCritical:
		return "very_critical"
	default:
		return "ok"
	}
}

// WithHours decorates a Module with its hour-delivery progress.
type WithHours struct {
	Module
	DeliveredHours float64 `json:"delivered_hours"`
	RemainingHours float64 `json:"remaining_hours"`
}

func (m WithHours) Criticality() Criticality {
	return Classify(m.TotalHours, m.RemainingHours)
}

// Progress computes delivered and remaining hours for a module with the
// given budget. Delivered is the plain sum of the stored lesson hours;
// remaining may go negative when a module is over-scheduled.
func Progress(totalHours int, lessonHours []float64) (delivered, remaining float64) {
	for _, h := range lessonHours {
		delivered += h
	}
	return delivered, float64(totalHours) - delivered
}

// Classify grades how close a module is to exhausting its budget:
// critical when less than 30% of the budget remains, very critical below
// 15%. Both bounds are strict, and a module with zero (or negative)
// remaining hours is never flagged.
func Classify(totalHours int, remainingHours float64) Criticality {
	if totalHours <= 0 {
		return LevelOK
	}
	percent := remainingHours / float64(totalHours) * 100
	switch {
	case percent <= 0 || percent >= criticalPercent:
		return LevelOK
	case percent < veryCriticalPercent:
		return LevelVeryCritical
	default:
		return LevelCritical
	}
}
