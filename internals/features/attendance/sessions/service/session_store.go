// internals/features/attendance/sessions/service/session_store.go
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"workforce_backend/internals/features/attendance/sessions/model"
	"workforce_backend/internals/helpers/apperr"
)

// Mutator turns the current state into the row to store, or refuses.
type Mutator func(state SessionState) (*model.AttendanceSessionModel, error)

// SessionStore owns the one-row-per-(employee, date) table. The unique index
// uq_attendance_session_employee_date and the version column are the source
// of truth for concurrent writers; the status check in Mutator only
// short-circuits the common case.
type SessionStore struct {
	DB *gorm.DB
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{DB: db}
}

func (s *SessionStore) Load(ctx context.Context, employeeID uuid.UUID, date time.Time) (SessionState, error) {
	var row model.AttendanceSessionModel
	err := s.DB.WithContext(ctx).
		Where("attendance_session_employee_id = ? AND attendance_session_date = ?", employeeID, date).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NoSession(), nil
	}
	if err != nil {
		return SessionState{}, apperr.Internal("load session", err)
	}
	return SessionState{Session: &row}, nil
}

// UpsertGuarded reads the day's state, lets mutate decide, then writes with a
// guard: INSERT against the unique index for a new day, compare-and-swap on
// version for an existing row. A writer that loses either race gets the
// Conflict it would have seen had it read second. now stamps created_at and
// updated_at.
func (s *SessionStore) UpsertGuarded(ctx context.Context, employeeID uuid.UUID, date, now time.Time, mutate Mutator) (*model.AttendanceSessionModel, error) {
	state, err := s.Load(ctx, employeeID, date)
	if err != nil {
		return nil, err
	}
	next, err := mutate(state)
	if err != nil {
		return nil, err
	}

	var won bool
	if state.Exists() {
		won, err = s.compareAndSwap(ctx, state.Session.AttendanceSessionVersion, next, now)
	} else {
		won, err = s.insert(ctx, next, now)
	}
	if err != nil {
		return nil, err
	}
	if won {
		return next, nil
	}
	return nil, s.lostRace(ctx, employeeID, date, mutate)
}

// insert relies on ON CONFLICT DO NOTHING; zero rows means another writer
// created the day first.
func (s *SessionStore) insert(ctx context.Context, row *model.AttendanceSessionModel, now time.Time) (bool, error) {
	row.AttendanceSessionVersion = 1
	row.AttendanceSessionCreatedAt = now
	row.AttendanceSessionUpdatedAt = now
	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "attendance_session_employee_id"},
				{Name: "attendance_session_date"},
			},
			DoNothing: true,
		}).
		Create(row)
	switch {
	case res.Error == nil:
		return res.RowsAffected > 0, nil
	case errors.Is(res.Error, gorm.ErrDuplicatedKey) || isDuplicateKey(res.Error):
		return false, nil
	}
	return false, apperr.Internal("insert session", res.Error)
}

func (s *SessionStore) compareAndSwap(ctx context.Context, version int, row *model.AttendanceSessionModel, now time.Time) (bool, error) {
	res := s.DB.WithContext(ctx).
		Model(&model.AttendanceSessionModel{}).
		Where("attendance_session_id = ? AND attendance_session_version = ?", row.AttendanceSessionID, version).
		Updates(map[string]any{
			"attendance_session_check_in_time":       row.AttendanceSessionCheckInTime,
			"attendance_session_check_out_time":      row.AttendanceSessionCheckOutTime,
			"attendance_session_break_start_time":    row.AttendanceSessionBreakStartTime,
			"attendance_session_break_end_time":      row.AttendanceSessionBreakEndTime,
			"attendance_session_total_break_minutes": row.AttendanceSessionTotalBreakMinutes,
			"attendance_session_status":              row.AttendanceSessionStatus,
			"attendance_session_location_data":       row.AttendanceSessionLocationData,
			"attendance_session_device_info":         row.AttendanceSessionDeviceInfo,
			"attendance_session_ip_address":          row.AttendanceSessionIPAddress,
			"attendance_session_is_manual_entry":     row.AttendanceSessionIsManualEntry,
			"attendance_session_approved_by":         row.AttendanceSessionApprovedBy,
			"attendance_session_notes":               row.AttendanceSessionNotes,
			"attendance_session_version":             version + 1,
			"attendance_session_updated_at":          now,
		})
	if res.Error != nil {
		return false, apperr.Internal("update session", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	row.AttendanceSessionVersion = version + 1
	row.AttendanceSessionUpdatedAt = now
	return true, nil
}

// lostRace re-evaluates against the winner's row so the loser gets the precise
// refusal ("already checked in"); if the transition would now be legal it
// still refuses, since the caller acted on stale state.
func (s *SessionStore) lostRace(ctx context.Context, employeeID uuid.UUID, date time.Time, mutate Mutator) error {
	state, err := s.Load(ctx, employeeID, date)
	if err != nil {
		return err
	}
	if _, err := mutate(state); err != nil && apperr.KindOf(err) == apperr.KindConflict {
		return err
	}
	return apperr.Conflict("attendance session was modified concurrently")
}

// isDuplicateKey catches unique violations the dialector did not translate
// (pgx 23505, sqlite "UNIQUE constraint failed").
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "23505")
}
