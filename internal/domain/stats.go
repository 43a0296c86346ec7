package domain

// DashboardStats is the read-only rollup shown on the dashboard.
type DashboardStats struct {
	SessionCount       int64
	CompletedCount     int64
	ActiveSessionCount int64
	TotalTrials        int64
	// OverallAccuracy is the mean session accuracy over sessions with at
	// least one trial. Nil when no session has trials.
	OverallAccuracy *float64
}

// Aggregate derives dashboard stats from a loaded set of sessions.
// Sessions without trials are excluded from the accuracy mean.
func Aggregate(sessions []*Session) DashboardStats {
	var stats DashboardStats
	var sum float64
	var scored int64

	for _, s := range sessions {
		stats.SessionCount++
		stats.TotalTrials += s.TotalTrials
		switch s.Status {
		case SessionActive:
			stats.ActiveSessionCount++
		case SessionCompleted:
			stats.CompletedCount++
		}
		if s.TotalTrials > 0 {
			rate := s.AccuracyRate
			if rate == nil {
				rate = AccuracyRate(s.SuccessfulTrials, s.TotalTrials)
			}
			sum += *rate
			scored++
		}
	}

	if scored > 0 {
		mean := sum / float64(scored)
		stats.OverallAccuracy = &mean
	}
	return stats
}
