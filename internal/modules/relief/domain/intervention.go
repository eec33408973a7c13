package domain

import "time"

type Intervention struct {
	ID              string
	Code            string
	Name            string
	Kind            string
	Description     string
	DurationSeconds int
	CreatedAt       time.Time
}

// InterventionStat aggregates one user's sessions for one intervention.
// AvgChange is mean(after-before) over Measured sessions; negative means relief.
type InterventionStat struct {
	InterventionID string
	Name           string
	Sessions       int
	Measured       int
	AvgChange      *float64
}

// Highlights picks the most used intervention and the one with the lowest
// average change. Ties keep the first in input order.
func Highlights(stats []InterventionStat) (mostUsed, mostEffective *InterventionStat) {
	for i := range stats {
		st := &stats[i]
		if mostUsed == nil || st.Sessions > mostUsed.Sessions {
			mostUsed = st
		}
		if st.AvgChange == nil {
			continue
		}
		if mostEffective == nil || *st.AvgChange < *mostEffective.AvgChange {
			mostEffective = st
		}
	}
	return mostUsed, mostEffective
}
