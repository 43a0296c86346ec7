package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/ports"
)

type Experiments struct {
	repo   ports.ExperimentRepository
	events ports.EventPublisher
	log    *zap.Logger
	now    func() time.Time
}

// Create stores a new draft experiment for userID.
func (s *Experiments) Create(ctx context.Context, userID, title, description string, vocabulary []string) (*domain.Experiment, error) {
	exp, err := domain.NewExperiment(newID(), userID, title, description, vocabulary, s.now())
	if err == nil {
		err = s.repo.Create(ctx, exp)
	}
	if err != nil {
		s.events.Publish(ctx, ports.Event{
			Type:        ports.EventExperimentCreateFailed,
			UserID:      userID,
			Title:       "Error",
			Description: "Failed to create experiment",
			Failed:      true,
			At:          s.now(),
		})
		return nil, err
	}

	s.log.Info("experiment created",
		zap.String("experiment_id", exp.ID),
		zap.String("user_id", userID),
		zap.Int("words", len(exp.Vocabulary)))
	s.events.Publish(ctx, ports.Event{
		Type:        ports.EventExperimentCreated,
		UserID:      userID,
		Title:       "Experiment Created",
		Description: fmt.Sprintf("%s has been created successfully", exp.Title),
		SubjectID:   exp.ID,
		At:          s.now(),
	})
	return exp, nil
}

func (s *Experiments) List(ctx context.Context, userID string) ([]*domain.Experiment, error) {
	return s.repo.List(ctx, userID)
}

func (s *Experiments) Get(ctx context.Context, userID, id string) (*domain.Experiment, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// Delete removes the experiment with all its sessions and results.
func (s *Experiments) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.log.Info("experiment deleted", zap.String("experiment_id", id), zap.String("user_id", userID))
	s.events.Publish(ctx, ports.Event{
		Type:        ports.EventExperimentDeleted,
		UserID:      userID,
		Title:       "Experiment Deleted",
		Description: "Experiment has been deleted",
		SubjectID:   id,
		At:          s.now(),
	})
	return nil
}

func (s *Experiments) SetStatus(ctx context.Context, userID, id string, status domain.ExperimentStatus) (*domain.Experiment, error) {
	exp, err := s.repo.UpdateStatus(ctx, userID, id, status, s.now())
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, ports.Event{
		Type:        ports.EventExperimentStatus,
		UserID:      userID,
		Title:       "Experiment Updated",
		Description: fmt.Sprintf("%s is now %s", exp.Title, exp.Status),
		SubjectID:   exp.ID,
		At:          s.now(),
	})
	return exp, nil
}
