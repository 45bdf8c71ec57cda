package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/riftops/clash-coordinator/models"
	"github.com/riftops/clash-coordinator/repositories"
)

// TournamentService answers "is this tournament day open" for the
// coordinator and backs the schedule listing endpoint. Openness means the
// day's start time is still in the future.
type TournamentService interface {
	ListOpen(ctx context.Context) ([]*models.Tournament, error)
	ResolveOpen(ctx context.Context, name, day string) (models.TournamentKey, error)
	CleanupEnded(ctx context.Context) (int64, error)
}

type tournamentService struct {
	repo   repositories.TournamentRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewTournamentService(repo repositories.TournamentRepository, logger *slog.Logger) TournamentService {
	return &tournamentService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *tournamentService) ListOpen(ctx context.Context) ([]*models.Tournament, error) {
	tournaments, err := s.repo.FindOpen(ctx, "", "", s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list open tournaments: %w", err)
	}
	return tournaments, nil
}

// ResolveOpen maps a requested (name, day) onto an open tournament key, or
// ErrInvalidTournament when no such day exists or it has already started.
func (s *tournamentService) ResolveOpen(ctx context.Context, name, day string) (models.TournamentKey, error) {
	if name == "" || day == "" {
		return models.TournamentKey{}, ErrInvalidTournament
	}

	tournaments, err := s.repo.FindOpen(ctx, name, day, s.now())
	if err != nil {
		return models.TournamentKey{}, fmt.Errorf("failed to look up tournament %s day %s: %w", name, day, err)
	}
	if len(tournaments) == 0 {
		return models.TournamentKey{}, ErrInvalidTournament
	}
	return tournaments[0].Key(), nil
}

// CleanupEnded drops tournament days whose start time has passed. Invoked by
// the scheduler in cmd/main.
func (s *tournamentService) CleanupEnded(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteEnded(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up ended tournaments: %w", err)
	}
	if removed > 0 {
		s.logger.Info("removed ended tournaments", slog.Int64("count", removed))
	}
	return removed, nil
}
