package domain

import "time"

// Decision is one output of a decision source. An empty Word means the
// source detected nothing for this tick.
type Decision struct {
	Word       string
	Confidence float64
	Timestamp  time.Time
}

func (d Decision) None() bool {
	return d.Word == ""
}
