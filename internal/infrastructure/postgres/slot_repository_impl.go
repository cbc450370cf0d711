package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-slot-booking/internal/domain/entity"
	"github.com/oksasatya/go-slot-booking/internal/domain/repository"
)

type SlotRepository struct {
	pool *pgxpool.Pool
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{pool: pool}
}

func (r *SlotRepository) GetContext(ctx context.Context, slotID string) (*entity.SlotContext, error) {
	if _, err := uuid.Parse(slotID); err != nil {
		return nil, repository.ErrNotFound
	}

	sc := &entity.SlotContext{}
	err := r.pool.QueryRow(ctx, `
		SELECT s.id::text, s.meeting_id, s.start_time, s.end_time, s.booked_by::text, s.booked_at,
		       m.id, m.title, m.description, m.date, m.created_by::text, m.created_at,
		       u.id::text, u.username, u.display_name, u.email
		FROM time_slots s
		JOIN meetings m ON m.id = s.meeting_id
		JOIN users u ON u.id = m.created_by
		WHERE s.id = $1::uuid
	`, slotID).Scan(
		&sc.Slot.ID, &sc.Slot.MeetingID, &sc.Slot.StartTime, &sc.Slot.EndTime, &sc.Slot.BookedByID, &sc.Slot.BookedAt,
		&sc.Meeting.ID, &sc.Meeting.Title, &sc.Meeting.Description, &sc.Meeting.Date, &sc.Meeting.CreatedByID, &sc.Meeting.CreatedAt,
		&sc.Creator.ID, &sc.Creator.Username, &sc.Creator.DisplayName, &sc.Creator.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get slot %s: %w", slotID, err)
	}
	return sc, nil
}

func (r *SlotRepository) HasBookingInMeeting(ctx context.Context, meetingID, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM time_slots
			WHERE meeting_id = $1 AND booked_by = $2::uuid
		)
	`, meetingID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check booking of %s in %s: %w", userID, meetingID, err)
	}
	return exists, nil
}

// Claim is a single conditional UPDATE: only an open slot is written, so of
// any number of concurrent claimants exactly one sees a returned row.
func (r *SlotRepository) Claim(ctx context.Context, slotID, userID string, at time.Time) (*entity.TimeSlot, error) {
	sl := &entity.TimeSlot{}
	err := r.pool.QueryRow(ctx, `
		UPDATE time_slots
		SET booked_by = $2::uuid, booked_at = $3
		WHERE id = $1::uuid AND booked_by IS NULL
		RETURNING id::text, meeting_id, start_time, end_time, booked_by::text, booked_at
	`, slotID, userID, at).Scan(&sl.ID, &sl.MeetingID, &sl.StartTime, &sl.EndTime, &sl.BookedByID, &sl.BookedAt)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, repository.ErrSlotTaken
		case isUniqueViolation(err, constraintOneBookingPerUser):
			return nil, repository.ErrDuplicateBooker
		}
		return nil, fmt.Errorf("claim slot %s: %w", slotID, err)
	}
	return sl, nil
}

func (r *SlotRepository) ListBookedBy(ctx context.Context, userID string) ([]entity.BookedSlot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id::text, s.start_time, s.end_time, s.booked_at,
		       m.id, m.title, m.description, m.date, m.created_by::text, m.created_at,
		       h.id::text, h.username, h.display_name, h.email
		FROM time_slots s
		JOIN meetings m ON m.id = s.meeting_id
		JOIN users h ON h.id = m.created_by
		WHERE s.booked_by = $1::uuid
		ORDER BY s.start_time
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list slots booked by %s: %w", userID, err)
	}
	defer rows.Close()

	out := []entity.BookedSlot{}
	for rows.Next() {
		var b entity.BookedSlot
		if err := rows.Scan(&b.SlotID, &b.StartTime, &b.EndTime, &b.BookedAt,
			&b.Meeting.ID, &b.Meeting.Title, &b.Meeting.Description, &b.Meeting.Date, &b.Meeting.CreatedByID, &b.Meeting.CreatedAt,
			&b.Host.ID, &b.Host.Username, &b.Host.DisplayName, &b.Host.Email); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SlotRepository) ListBusy(ctx context.Context, userID string, day time.Time) ([]entity.BusySlot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id::text, m.id, m.title, s.start_time, s.end_time, 'attending',
		       h.id::text, h.username, h.display_name, h.email
		FROM time_slots s
		JOIN meetings m ON m.id = s.meeting_id
		JOIN users h ON h.id = m.created_by
		WHERE s.booked_by = $1::uuid AND m.date = $2
		UNION ALL
		SELECT s.id::text, m.id, m.title, s.start_time, s.end_time, 'hosting',
		       b.id::text, b.username, b.display_name, b.email
		FROM time_slots s
		JOIN meetings m ON m.id = s.meeting_id
		JOIN users b ON b.id = s.booked_by
		WHERE m.created_by = $1::uuid AND s.booked_by <> $1::uuid AND m.date = $2
		ORDER BY 4
	`, userID, day)
	if err != nil {
		return nil, fmt.Errorf("list busy slots of %s: %w", userID, err)
	}
	defer rows.Close()

	out := []entity.BusySlot{}
	for rows.Next() {
		var b entity.BusySlot
		if err := rows.Scan(&b.SlotID, &b.MeetingID, &b.MeetingTitle, &b.StartTime, &b.EndTime, &b.Role,
			&b.With.ID, &b.With.Username, &b.With.DisplayName, &b.With.Email); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

var _ repository.SlotRepository = (*SlotRepository)(nil)
