package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/catzoCode/catzoteam-project/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTasks struct {
	task     *domain.Task
	awarded  bool
	approve  error
	assigned int64
}

func (s *stubTasks) GetTask(context.Context, int64) (*domain.Task, error) { return s.task, nil }

func (s *stubTasks) ListTasks(context.Context, repository.TaskFilter) ([]domain.Task, error) {
	return nil, nil
}

func (s *stubTasks) Assign(_ context.Context, taskID, staffID, byID int64) (*domain.Task, error) {
	s.assigned = staffID
	return &domain.Task{ID: taskID, TaskCode: "TSK-260115-0001", TaskTypeName: "Full Grooming",
		Status: domain.TaskAssigned, AssignedStaff: &staffID, AssignedBy: &byID,
		ScheduledDate: time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC), ScheduledTime: "10:00"}, nil
}

func (s *stubTasks) Start(_ context.Context, taskID, _ int64) (*domain.Task, error) {
	return &domain.Task{ID: taskID, Status: domain.TaskInProgress}, nil
}

func (s *stubTasks) Submit(_ context.Context, taskID, _ int64, _, _ string) (*domain.Task, error) {
	return &domain.Task{ID: taskID, Status: domain.TaskSubmitted}, nil
}

func (s *stubTasks) Approve(_ context.Context, taskID, _ int64) (*domain.Task, bool, error) {
	if s.approve != nil {
		return nil, false, s.approve
	}
	return &domain.Task{ID: taskID, TaskCode: "TSK-260115-0001", Points: 20,
		Status: domain.TaskCompleted}, s.awarded, nil
}

func (s *stubTasks) Reject(_ context.Context, taskID, _ int64, reason string) (*domain.Task, error) {
	return &domain.Task{ID: taskID, Status: domain.TaskInProgress, Notes: reason}, nil
}

func (s *stubTasks) Cancel(_ context.Context, taskID int64, reason string) (*domain.Task, error) {
	return &domain.Task{ID: taskID, Status: domain.TaskCancelled, Notes: reason}, nil
}

func (s *stubTasks) GetCompletion(context.Context, int64) (*domain.TaskCompletion, error) {
	return &domain.TaskCompletion{TaskID: 1, CompletedBy: 7, PointsAwarded: 20}, nil
}

func newTaskService(store *stubTasks) (TaskService, *stubNotifier, *stubActivity) {
	n := &stubNotifier{}
	a := &stubActivity{}
	return TaskService{
		Tasks:    store,
		Notify:   n,
		Activity: a,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, n, a
}

func TestAssignNotifiesStaff(t *testing.T) {
	store := &stubTasks{}
	svc, n, a := newTaskService(store)

	task, err := svc.Assign(context.Background(), 1, 7, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskAssigned, task.Status)
	assert.Equal(t, int64(7), store.assigned)
	require.Len(t, n.sent, 1)
	assert.Equal(t, domain.NotifyTaskAssigned, n.sent[0])
	assert.Contains(t, a.actions, "task.assign")
}

func TestApproveNotifiesOnFirstAwardOnly(t *testing.T) {
	t.Run("first approval awards", func(t *testing.T) {
		svc, n, _ := newTaskService(&stubTasks{awarded: true})
		task, err := svc.Approve(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskCompleted, task.Status)
		require.Len(t, n.sent, 1)
		assert.Equal(t, domain.NotifyPointsAwarded, n.sent[0])
	})

	t.Run("re-approval after rework stays silent", func(t *testing.T) {
		svc, n, _ := newTaskService(&stubTasks{awarded: false})
		_, err := svc.Approve(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.Empty(t, n.sent)
	})

	t.Run("invalid transition surfaces", func(t *testing.T) {
		svc, n, _ := newTaskService(&stubTasks{approve: repository.ErrInvalidTransition})
		_, err := svc.Approve(context.Background(), 1, 2)
		assert.ErrorIs(t, err, repository.ErrInvalidTransition)
		assert.Empty(t, n.sent)
	})
}
