package turso

import (
	"database/sql"

	"github.com/emiliopalmerini/bcilab/internal/ports"
)

// Repositories holds all turso repository implementations as port interfaces.
type Repositories struct {
	Experiments ports.ExperimentRepository
	Sessions    ports.SessionRepository
	Results     ports.ResultRepository
}

// NewRepositories creates all turso repository implementations from a database connection.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Experiments: NewExperimentRepository(db),
		Sessions:    NewSessionRepository(db),
		Results:     NewResultRepository(db),
	}
}
