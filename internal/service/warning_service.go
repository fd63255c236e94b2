package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/catzoCode/catzoteam-project/internal/repository"
)

type warningStore interface {
	Issue(ctx context.Context, in repository.IssueWarningInput) (*domain.WarningLetter, error)
	ListForStaff(ctx context.Context, staffID int64) ([]domain.WarningLetter, error)
	ListCandidates(ctx context.Context, month time.Time) ([]repository.WarningCandidate, error)
	Acknowledge(ctx context.Context, id, staffID int64) error
}

type WarningService struct {
	Warnings warningStore
	Notify   notifier
	Logger   *slog.Logger
}

// Candidates lists months that fell under the warning threshold and have no
// letter yet.
func (s WarningService) Candidates(ctx context.Context, month time.Time) ([]repository.WarningCandidate, error) {
	return s.Warnings.ListCandidates(ctx, month)
}

func (s WarningService) Issue(ctx context.Context, in repository.IssueWarningInput) (*domain.WarningLetter, error) {
	if in.Reason == "" {
		in.Reason = "below_monthly_target"
	}
	w, err := s.Warnings.Issue(ctx, in)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Warning issued for %s: %s points achieved", w.Month.Format("January 2006"), w.PointsAchieved)
	if _, err := s.Notify.Create(ctx, w.StaffID, domain.NotifyWarning, "Warning letter", msg, ""); err != nil {
		s.Logger.Warn("notify warning failed", "staff_id", w.StaffID, "err", err)
	}
	return w, nil
}

func (s WarningService) ListForStaff(ctx context.Context, staffID int64) ([]domain.WarningLetter, error) {
	return s.Warnings.ListForStaff(ctx, staffID)
}

func (s WarningService) Acknowledge(ctx context.Context, id, staffID int64) error {
	return s.Warnings.Acknowledge(ctx, id, staffID)
}
