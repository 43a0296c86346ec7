package templates

// DashboardPage is the view model of the dashboard. Values are
// preformatted for display.
type DashboardPage struct {
	User              string
	Stats             Stats
	Active            *Session
	Experiments       []Experiment
	RecentSessions    []Session
	RecentResults     []Result
	DefaultVocabulary []string
}

type Stats struct {
	SessionCount    string
	CompletedCount  string
	ActiveCount     string
	TotalTrials     string
	OverallAccuracy string
	ExperimentCount string
}

type Experiment struct {
	ID             string
	Title          string
	Description    string
	Vocabulary     []string
	Status         string
	CreatedAt      string
	AcceptsSession bool
}

type Session struct {
	ID              string
	Name            string
	ExperimentTitle string
	Status          string
	Trials          string
	Successful      string
	Accuracy        string
	StartedAt       string
	Duration        string
	Active          bool
}

type Result struct {
	Word            string
	Confidence      string
	Successful      bool
	SessionName     string
	ExperimentTitle string
	At              string
}

// Card is one headline counter.
type Card struct {
	Label string
	Value string
}

func (s Stats) Cards() []Card {
	return []Card{
		{"Experiments", s.ExperimentCount},
		{"Sessions", s.SessionCount},
		{"Completed", s.CompletedCount},
		{"Active", s.ActiveCount},
		{"Total trials", s.TotalTrials},
		{"Overall accuracy", s.OverallAccuracy},
	}
}

// Outcome is "hit" for a successful trial and "miss" otherwise.
func (r Result) Outcome() string {
	if r.Successful {
		return "hit"
	}
	return "miss"
}
