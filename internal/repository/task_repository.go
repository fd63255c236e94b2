package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/db"
	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type TaskRepository struct {
	DB *db.Postgres
}

const taskColumns = `t.id, t.task_code, t.package_id, t.task_type_id, tt.name, t.points,
	t.scheduled_date, t.scheduled_time, t.assigned_staff, t.assigned_by, t.assigned_at,
	t.status, t.notes, t.started_at, t.completed_at, t.created_at`

func (r TaskRepository) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	return getTaskWith(ctx, r.DB.Pool, id, false)
}

type TaskFilter struct {
	PackageID     int64
	AssignedStaff int64
	Status        domain.TaskStatus
	Date          *time.Time
	Limit         int
}

func (r TaskRepository) ListTasks(ctx context.Context, f TaskFilter) ([]domain.Task, error) {
	if f.Limit <= 0 {
		f.Limit = 200
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		JOIN task_types tt ON tt.id = t.task_type_id
		WHERE ($1 = 0 OR t.package_id = $1)
		  AND ($2 = 0 OR t.assigned_staff = $2)
		  AND ($3 = '' OR t.status = $3)
		  AND ($4::date IS NULL OR t.scheduled_date = $4)
		ORDER BY t.scheduled_date, t.scheduled_time, t.id
		LIMIT $5
	`, f.PackageID, f.AssignedStaff, string(f.Status), nullableDate(f.Date), f.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Assign hands a task to a staff member. Reassigning an already assigned task
// is allowed while work has not started.
func (r TaskRepository) Assign(ctx context.Context, taskID, staffID, byID int64) (*domain.Task, error) {
	return r.mutate(ctx, taskID, func(ctx context.Context, tx pgx.Tx, t *domain.Task) error {
		if t.Status != domain.TaskPending && t.Status != domain.TaskAssigned {
			return ErrInvalidTransition
		}
		now := time.Now()
		if _, err := tx.Exec(ctx, `
			UPDATE tasks SET status = $2, assigned_staff = $3, assigned_by = $4, assigned_at = $5
			WHERE id = $1
		`, t.ID, domain.TaskAssigned, staffID, byID, now); err != nil {
			return err
		}
		t.Status = domain.TaskAssigned
		t.AssignedStaff = &staffID
		t.AssignedBy = &byID
		t.AssignedAt = &now
		return refreshPackageStatusWith(ctx, tx, t.PackageID)
	})
}

func (r TaskRepository) Start(ctx context.Context, taskID, staffID int64) (*domain.Task, error) {
	return r.mutate(ctx, taskID, func(ctx context.Context, tx pgx.Tx, t *domain.Task) error {
		if !t.CanTransition(domain.TaskInProgress) {
			return ErrInvalidTransition
		}
		if t.AssignedStaff == nil || *t.AssignedStaff != staffID {
			return fmt.Errorf("task %s is not assigned to staff %d", t.TaskCode, staffID)
		}
		now := time.Now()
		if _, err := tx.Exec(ctx, `
			UPDATE tasks SET status = $2, started_at = COALESCE(started_at, $3) WHERE id = $1
		`, t.ID, domain.TaskInProgress, now); err != nil {
			return err
		}
		t.Status = domain.TaskInProgress
		return refreshPackageStatusWith(ctx, tx, t.PackageID)
	})
}

// Submit records the finished work for manager review. The completion row is
// created here; points wait for approval.
func (r TaskRepository) Submit(ctx context.Context, taskID, staffID int64, notes, proofRefs string) (*domain.Task, error) {
	return r.mutate(ctx, taskID, func(ctx context.Context, tx pgx.Tx, t *domain.Task) error {
		if !t.CanTransition(domain.TaskSubmitted) {
			return ErrInvalidTransition
		}
		if t.AssignedStaff == nil || *t.AssignedStaff != staffID {
			return fmt.Errorf("task %s is not assigned to staff %d", t.TaskCode, staffID)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE tasks SET status = $2 WHERE id = $1
		`, t.ID, domain.TaskSubmitted); err != nil {
			return err
		}
		// Resubmission after rework keeps the original row and refreshes the notes.
		if _, err := tx.Exec(ctx, `
			INSERT INTO task_completions (task_id, completed_by, notes, proof_refs)
			VALUES ($1,$2,$3,$4)
			ON CONFLICT (task_id) DO UPDATE SET
				notes = EXCLUDED.notes, proof_refs = EXCLUDED.proof_refs, completed_at = now()
		`, t.ID, staffID, notes, proofRefs); err != nil {
			return err
		}
		t.Status = domain.TaskSubmitted
		return nil
	})
}

// Approve completes a submitted task and credits its service points to the
// staff member who did the work. The points_awarded_at guard makes the award
// happen once even if a task is reworked and approved again.
func (r TaskRepository) Approve(ctx context.Context, taskID, managerID int64) (*domain.Task, bool, error) {
	var awarded bool
	t, err := r.mutate(ctx, taskID, func(ctx context.Context, tx pgx.Tx, t *domain.Task) error {
		if !t.CanTransition(domain.TaskCompleted) {
			return ErrInvalidTransition
		}
		now := time.Now()
		if _, err := tx.Exec(ctx, `
			UPDATE tasks SET status = $2, completed_at = $3 WHERE id = $1
		`, t.ID, domain.TaskCompleted, now); err != nil {
			return err
		}
		t.Status = domain.TaskCompleted
		t.CompletedAt = &now

		var completedBy int64
		row := tx.QueryRow(ctx, `
			UPDATE task_completions
			SET approved_by = $2, points_awarded = $3, points_awarded_at = $4
			WHERE task_id = $1 AND points_awarded_at IS NULL
			RETURNING completed_by
		`, t.ID, managerID, t.Points, now)
		if err := row.Scan(&completedBy); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Already settled on a previous approval.
				return refreshPackageStatusWith(ctx, tx, t.PackageID)
			}
			return err
		}

		if t.Points > 0 {
			amount := decimal.NewFromInt(int64(t.Points))
			note := fmt.Sprintf("task %s", t.TaskCode)
			if _, err := awardPointsWith(ctx, tx, completedBy, t.ScheduledDate, domain.CategoryService, amount, note); err != nil {
				return err
			}
			awarded = true
		}
		return refreshPackageStatusWith(ctx, tx, t.PackageID)
	})
	if err != nil {
		return nil, false, err
	}
	return t, awarded, nil
}

// Reject sends a submitted task back to the bench for rework.
func (r TaskRepository) Reject(ctx context.Context, taskID, managerID int64, reason string) (*domain.Task, error) {
	return r.mutate(ctx, taskID, func(ctx context.Context, tx pgx.Tx, t *domain.Task) error {
		if t.Status != domain.TaskSubmitted {
			return ErrInvalidTransition
		}
		if _, err := tx.Exec(ctx, `
			UPDATE tasks SET status = $2, notes = $3 WHERE id = $1
		`, t.ID, domain.TaskInProgress, reason); err != nil {
			return err
		}
		t.Status = domain.TaskInProgress
		t.Notes = reason
		return refreshPackageStatusWith(ctx, tx, t.PackageID)
	})
}

func (r TaskRepository) Cancel(ctx context.Context, taskID int64, reason string) (*domain.Task, error) {
	return r.mutate(ctx, taskID, func(ctx context.Context, tx pgx.Tx, t *domain.Task) error {
		if !t.CanTransition(domain.TaskCancelled) {
			return ErrInvalidTransition
		}
		if _, err := tx.Exec(ctx, `
			UPDATE tasks SET status = $2, notes = $3 WHERE id = $1
		`, t.ID, domain.TaskCancelled, reason); err != nil {
			return err
		}
		t.Status = domain.TaskCancelled
		t.Notes = reason
		return refreshPackageStatusWith(ctx, tx, t.PackageID)
	})
}

func (r TaskRepository) GetCompletion(ctx context.Context, taskID int64) (*domain.TaskCompletion, error) {
	c := &domain.TaskCompletion{}
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, task_id, completed_by, approved_by, completed_at, notes, proof_refs,
		       points_awarded, points_awarded_at
		FROM task_completions
		WHERE task_id = $1
	`, taskID)
	if err := row.Scan(&c.ID, &c.TaskID, &c.CompletedBy, &c.ApprovedBy, &c.CompletedAt,
		&c.Notes, &c.ProofRefs, &c.PointsAwarded, &c.PointsAwardedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// mutate loads the task under a row lock and runs fn inside the transaction.
func (r TaskRepository) mutate(ctx context.Context, taskID int64, fn func(context.Context, pgx.Tx, *domain.Task) error) (*domain.Task, error) {
	var t *domain.Task
	err := r.DB.InTx(ctx, func(tx pgx.Tx) error {
		var err error
		t, err = getTaskWith(ctx, tx, taskID, true)
		if err != nil {
			return err
		}
		return fn(ctx, tx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func getTaskWith(ctx context.Context, q pgxQuerier, id int64, forUpdate bool) (*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		JOIN task_types tt ON tt.id = t.task_type_id
		WHERE t.id = $1`
	if forUpdate {
		query += ` FOR UPDATE OF t`
	}
	t := &domain.Task{}
	if err := scanTask(q.QueryRow(ctx, query, id), t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func scanTask(row pgx.Row, t *domain.Task) error {
	return row.Scan(&t.ID, &t.TaskCode, &t.PackageID, &t.TaskTypeID, &t.TaskTypeName,
		&t.Points, &t.ScheduledDate, &t.ScheduledTime, &t.AssignedStaff, &t.AssignedBy,
		&t.AssignedAt, &t.Status, &t.Notes, &t.StartedAt, &t.CompletedAt, &t.CreatedAt)
}

// refreshPackageStatusWith rolls task states up into the package status.
func refreshPackageStatusWith(ctx context.Context, q pgxQuerier, packageID int64) error {
	_, err := q.Exec(ctx, `
		UPDATE task_packages p
		SET status = sub.next, updated_at = now()
		FROM (
			SELECT CASE
				WHEN COUNT(*) FILTER (WHERE status NOT IN ('completed','cancelled')) = 0
				     AND COUNT(*) FILTER (WHERE status = 'completed') > 0 THEN 'completed'
				WHEN COUNT(*) FILTER (WHERE status NOT IN ('completed','cancelled')) = 0 THEN 'cancelled'
				WHEN COUNT(*) FILTER (WHERE status IN ('in_progress','submitted')) > 0 THEN 'in_progress'
				WHEN COUNT(*) FILTER (WHERE status = 'assigned') > 0 THEN 'assigned'
				ELSE 'pending'
			END AS next
			FROM tasks WHERE package_id = $1
		) sub
		WHERE p.id = $1 AND p.status <> 'cancelled'
	`, packageID)
	return err
}
