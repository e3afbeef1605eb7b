package data

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shiftwork/scheduling-service/internal/data/pgxutil"
	"github.com/shiftwork/scheduling-service/internal/domain/model"
	apperrors "github.com/shiftwork/scheduling-service/internal/errors"
)

// ScheduleRepo provides database operations for schedule jobs and their
// shift assignments.
type ScheduleRepo struct {
	DB     *sql.DB
	logger *slog.Logger
}

// NewScheduleRepo creates a ScheduleRepo on the given pool.
func NewScheduleRepo(db *sql.DB, logger *slog.Logger) *ScheduleRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleRepo{DB: db, logger: logger.With("component", "schedule_repo")}
}

const jobColumns = `
  id,
  staff_group_id,
  period_begin_date,
  status,
  created_at,
  updated_at
`

func scanJob(row interface{ Scan(...any) error }) (model.ScheduleJob, error) {
	var j model.ScheduleJob
	err := row.Scan(
		&j.ID,
		&j.StaffGroupID,
		&j.PeriodBeginDate,
		&j.Status,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	return j, err
}

// CreateJob inserts a Pending job and returns the stored record including the
// server-assigned id and timestamps.
func (r *ScheduleRepo) CreateJob(ctx context.Context, staffGroupID uuid.UUID, periodBegin model.Date) (model.ScheduleJob, error) {
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO schedule_jobs (staff_group_id, period_begin_date, status)
		VALUES ($1, $2, $3)
		RETURNING `+jobColumns,
		staffGroupID, periodBegin, model.JobStatusPending)

	j, err := scanJob(row)
	if err != nil {
		return model.ScheduleJob{}, apperrors.MapDBError(err)
	}
	return j, nil
}

// FindByID loads one job. Returns a NotFound error when no row matches.
func (r *ScheduleRepo) FindByID(ctx context.Context, id uuid.UUID) (model.ScheduleJob, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+jobColumns+` FROM schedule_jobs WHERE id = $1`, id)

	j, err := scanJob(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.ScheduleJob{}, apperrors.NotFoundf("schedule job %s not found", id)
		}
		return model.ScheduleJob{}, apperrors.MapDBError(err)
	}
	return j, nil
}

// FindByStatus loads all jobs with the given status, oldest first.
func (r *ScheduleRepo) FindByStatus(ctx context.Context, status model.JobStatus) ([]model.ScheduleJob, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+jobColumns+` FROM schedule_jobs WHERE status = $1 ORDER BY created_at`, status)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	defer rows.Close()

	var jobs []model.ScheduleJob
	for rows.Next() {
		j, scanErr := scanJob(rows)
		if scanErr != nil {
			return nil, apperrors.MapDBError(scanErr)
		}
		jobs = append(jobs, j)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperrors.MapDBError(rowsErr)
	}
	return jobs, nil
}

// UpdateStatus persists a lifecycle transition and bumps updated_at. Returns a
// NotFound error when the job does not exist.
func (r *ScheduleRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.JobStatus) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE schedule_jobs SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.MapDBError(err)
	}
	if affected == 0 {
		return apperrors.NotFoundf("schedule job %s not found", id)
	}
	return nil
}

// SaveAssignments bulk-inserts the full 28xN assignment set in one
// transactional UNNEST statement; either all rows land or none do.
func (r *ScheduleRepo) SaveAssignments(ctx context.Context, jobID uuid.UUID, assignments []model.NewShiftAssignment) error {
	if len(assignments) == 0 {
		return nil
	}

	staffIDs := make([]uuid.UUID, len(assignments))
	dates := make([]time.Time, len(assignments))
	shiftTypes := make([]string, len(assignments))
	for i, a := range assignments {
		staffIDs[i] = a.StaffID
		dates[i] = a.Date.Time()
		shiftTypes[i] = string(a.ShiftType)
	}

	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, `
			INSERT INTO shift_assignments (job_id, staff_id, date, shift_type)
			SELECT $1, t.staff_id, t.date, t.shift_type
			FROM UNNEST($2::uuid[], $3::date[], $4::text[]) AS t(staff_id, date, shift_type)`,
			jobID, staffIDs, dates, shiftTypes)
		return execErr
	})
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// GetAssignments loads all assignments for a job ordered by staff then date.
func (r *ScheduleRepo) GetAssignments(ctx context.Context, jobID uuid.UUID) ([]model.ShiftAssignment, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, job_id, staff_id, date, shift_type
		FROM shift_assignments
		WHERE job_id = $1
		ORDER BY staff_id, date`, jobID)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	defer rows.Close()

	var out []model.ShiftAssignment
	for rows.Next() {
		var a model.ShiftAssignment
		if scanErr := rows.Scan(&a.ID, &a.JobID, &a.StaffID, &a.Date, &a.ShiftType); scanErr != nil {
			return nil, apperrors.MapDBError(scanErr)
		}
		out = append(out, a)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperrors.MapDBError(rowsErr)
	}
	return out, nil
}

// DeleteAssignments removes all assignments for a job. Called before a stale
// Processing job is reset to Pending so no partial schedule survives.
func (r *ScheduleRepo) DeleteAssignments(ctx context.Context, jobID uuid.UUID) error {
	if _, err := r.DB.ExecContext(ctx, `
		DELETE FROM shift_assignments WHERE job_id = $1`, jobID); err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}
