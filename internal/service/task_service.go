package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/catzoCode/catzoteam-project/internal/metrics"
	"github.com/catzoCode/catzoteam-project/internal/repository"
)

type taskStore interface {
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	ListTasks(ctx context.Context, f repository.TaskFilter) ([]domain.Task, error)
	Assign(ctx context.Context, taskID, staffID, byID int64) (*domain.Task, error)
	Start(ctx context.Context, taskID, staffID int64) (*domain.Task, error)
	Submit(ctx context.Context, taskID, staffID int64, notes, proofRefs string) (*domain.Task, error)
	Approve(ctx context.Context, taskID, managerID int64) (*domain.Task, bool, error)
	Reject(ctx context.Context, taskID, managerID int64, reason string) (*domain.Task, error)
	Cancel(ctx context.Context, taskID int64, reason string) (*domain.Task, error)
	GetCompletion(ctx context.Context, taskID int64) (*domain.TaskCompletion, error)
}

type TaskService struct {
	Tasks    taskStore
	Notify   notifier
	Activity activityRecorder
	Logger   *slog.Logger
}

func (s TaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	return s.Tasks.GetTask(ctx, id)
}

func (s TaskService) List(ctx context.Context, f repository.TaskFilter) ([]domain.Task, error) {
	return s.Tasks.ListTasks(ctx, f)
}

func (s TaskService) Assign(ctx context.Context, taskID, staffID, byID int64) (*domain.Task, error) {
	t, err := s.Tasks.Assign(ctx, taskID, staffID, byID)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("%s scheduled %s %s", t.TaskTypeName, t.ScheduledDate.Format("2006-01-02"), t.ScheduledTime)
	if _, err := s.Notify.Create(ctx, staffID, domain.NotifyTaskAssigned, "Task assigned", msg, ""); err != nil {
		s.Logger.Warn("notify assignment failed", "task", t.TaskCode, "err", err)
	}
	s.record(ctx, byID, "task.assign", t)
	return t, nil
}

func (s TaskService) Start(ctx context.Context, taskID, staffID int64) (*domain.Task, error) {
	t, err := s.Tasks.Start(ctx, taskID, staffID)
	if err != nil {
		return nil, err
	}
	s.record(ctx, staffID, "task.start", t)
	return t, nil
}

func (s TaskService) Submit(ctx context.Context, taskID, staffID int64, notes, proofRefs string) (*domain.Task, error) {
	t, err := s.Tasks.Submit(ctx, taskID, staffID, notes, proofRefs)
	if err != nil {
		return nil, err
	}
	s.record(ctx, staffID, "task.submit", t)
	return t, nil
}

// Approve completes the task; the repository settles service points once.
func (s TaskService) Approve(ctx context.Context, taskID, managerID int64) (*domain.Task, error) {
	t, awarded, err := s.Tasks.Approve(ctx, taskID, managerID)
	if err != nil {
		return nil, err
	}
	s.record(ctx, managerID, "task.approve", t)
	if awarded {
		metrics.PointsAwarded.WithLabelValues(string(domain.CategoryService)).Inc()
		if c, err := s.Tasks.GetCompletion(ctx, t.ID); err == nil {
			msg := fmt.Sprintf("%d service points credited for %s", t.Points, t.TaskCode)
			if _, err := s.Notify.Create(ctx, c.CompletedBy, domain.NotifyPointsAwarded, "Points awarded", msg, ""); err != nil {
				s.Logger.Warn("notify award failed", "task", t.TaskCode, "err", err)
			}
		}
	}
	return t, nil
}

func (s TaskService) Reject(ctx context.Context, taskID, managerID int64, reason string) (*domain.Task, error) {
	t, err := s.Tasks.Reject(ctx, taskID, managerID, reason)
	if err != nil {
		return nil, err
	}
	s.record(ctx, managerID, "task.reject", t)
	return t, nil
}

func (s TaskService) Cancel(ctx context.Context, taskID, byID int64, reason string) (*domain.Task, error) {
	t, err := s.Tasks.Cancel(ctx, taskID, reason)
	if err != nil {
		return nil, err
	}
	s.record(ctx, byID, "task.cancel", t)
	return t, nil
}

func (s TaskService) record(ctx context.Context, actorID int64, action string, t *domain.Task) {
	if err := s.Activity.Record(ctx, actorID, action, "task", t.TaskCode, ""); err != nil {
		s.Logger.Warn("activity log failed", "action", action, "err", err)
	}
}
