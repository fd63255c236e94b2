package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/catzoCode/catzoteam-project/internal/metrics"
	"github.com/catzoCode/catzoteam-project/internal/repository"
)

type pointRequestStore interface {
	Create(ctx context.Context, in repository.CreatePointRequestInput) (*domain.PointRequest, error)
	GetByID(ctx context.Context, id int64) (*domain.PointRequest, error)
	List(ctx context.Context, staffID int64, status domain.ApprovalStatus) ([]domain.PointRequest, error)
	Approve(ctx context.Context, id, managerID int64, notes string) (*domain.PointRequest, error)
	Reject(ctx context.Context, id, managerID int64, notes string) (*domain.PointRequest, error)
}

type PointRequestService struct {
	Requests pointRequestStore
	Notify   notifier
	Activity activityRecorder
	Logger   *slog.Logger
}

func (s PointRequestService) Create(ctx context.Context, in repository.CreatePointRequestInput) (*domain.PointRequest, error) {
	if !in.PointsRequested.IsPositive() {
		return nil, invalidf("requested points must be positive")
	}
	if dayOf(in.DateCompleted).After(dayOf(time.Now())) {
		return nil, invalidf("date completed cannot be in the future")
	}
	pr, err := s.Requests.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.Activity.Record(ctx, in.StaffID, "point_request.create", "point_request", pr.RequestCode, ""); err != nil {
		s.Logger.Warn("activity log failed", "action", "point_request.create", "err", err)
	}
	return pr, nil
}

func (s PointRequestService) Get(ctx context.Context, id int64) (*domain.PointRequest, error) {
	return s.Requests.GetByID(ctx, id)
}

func (s PointRequestService) List(ctx context.Context, staffID int64, status domain.ApprovalStatus) ([]domain.PointRequest, error) {
	return s.Requests.List(ctx, staffID, status)
}

// Approve settles the claim into the bonus category on the work date.
func (s PointRequestService) Approve(ctx context.Context, id, managerID int64, notes string) (*domain.PointRequest, error) {
	pr, err := s.Requests.Approve(ctx, id, managerID, notes)
	if err != nil {
		return nil, err
	}
	metrics.PointsAwarded.WithLabelValues(string(domain.CategoryBonus)).Inc()
	if err := s.Activity.Record(ctx, managerID, "point_request.approve", "point_request", pr.RequestCode, ""); err != nil {
		s.Logger.Warn("activity log failed", "action", "point_request.approve", "err", err)
	}
	msg := fmt.Sprintf("%s bonus points credited for %s", pr.PointsAwarded, pr.RequestCode)
	if _, err := s.Notify.Create(ctx, pr.StaffID, domain.NotifyPointRequest, "Point request approved", msg, ""); err != nil {
		s.Logger.Warn("notify approval failed", "request", pr.RequestCode, "err", err)
	}
	return pr, nil
}

func (s PointRequestService) Reject(ctx context.Context, id, managerID int64, notes string) (*domain.PointRequest, error) {
	pr, err := s.Requests.Reject(ctx, id, managerID, notes)
	if err != nil {
		return nil, err
	}
	if err := s.Activity.Record(ctx, managerID, "point_request.reject", "point_request", pr.RequestCode, ""); err != nil {
		s.Logger.Warn("activity log failed", "action", "point_request.reject", "err", err)
	}
	if _, err := s.Notify.Create(ctx, pr.StaffID, domain.NotifyPointRequest, "Point request rejected", pr.ManagerNotes, ""); err != nil {
		s.Logger.Warn("notify rejection failed", "request", pr.RequestCode, "err", err)
	}
	return pr, nil
}
