package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-slot-booking/internal/domain/entity"
	"github.com/oksasatya/go-slot-booking/internal/domain/repository"
)

type MeetingRepository struct {
	pool *pgxpool.Pool
}

func NewMeetingRepository(pool *pgxpool.Pool) *MeetingRepository {
	return &MeetingRepository{pool: pool}
}

// CreateWithSlots inserts the meeting and its slots in one transaction so a
// partially created meeting is never visible.
func (r *MeetingRepository) CreateWithSlots(ctx context.Context, m *entity.Meeting, slots []entity.TimeSlot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create meeting: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO meetings (id, title, description, date, created_by)
		VALUES ($1, $2, $3, $4, $5::uuid)
		RETURNING created_at
	`, m.ID, m.Title, m.Description, m.Date, m.CreatedByID).Scan(&m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, constraintMeetingsPkey) {
			return fmt.Errorf("create meeting %s: %w", m.ID, repository.ErrMeetingExists)
		}
		return fmt.Errorf("insert meeting %s: %w", m.ID, err)
	}

	batch := &pgx.Batch{}
	for i := range slots {
		batch.Queue(`
			INSERT INTO time_slots (meeting_id, start_time, end_time)
			VALUES ($1, $2, $3)
			RETURNING id::text
		`, m.ID, slots[i].StartTime, slots[i].EndTime)
	}
	br := tx.SendBatch(ctx, batch)
	for i := range slots {
		if err := br.QueryRow().Scan(&slots[i].ID); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert slot %d of meeting %s: %w", i, m.ID, err)
		}
		slots[i].MeetingID = m.ID
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("insert slots of meeting %s: %w", m.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit meeting %s: %w", m.ID, err)
	}
	return nil
}

// GetDetail reads the meeting and its slots from one snapshot.
func (r *MeetingRepository) GetDetail(ctx context.Context, meetingID string) (*entity.MeetingDetail, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin get meeting: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	d := &entity.MeetingDetail{}
	err = tx.QueryRow(ctx, `
		SELECT m.id, m.title, m.description, m.date, m.created_by::text, m.created_at,
		       u.id::text, u.username, u.display_name, u.email
		FROM meetings m
		JOIN users u ON u.id = m.created_by
		WHERE m.id = $1
	`, meetingID).Scan(
		&d.ID, &d.Title, &d.Description, &d.Date, &d.CreatedByID, &d.CreatedAt,
		&d.CreatedBy.ID, &d.CreatedBy.Username, &d.CreatedBy.DisplayName, &d.CreatedBy.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get meeting %s: %w", meetingID, err)
	}

	rows, err := tx.Query(ctx, `
		SELECT s.id::text, s.meeting_id, s.start_time, s.end_time, s.booked_by::text, s.booked_at,
		       b.username, b.display_name, b.email
		FROM time_slots s
		LEFT JOIN users b ON b.id = s.booked_by
		WHERE s.meeting_id = $1
		ORDER BY s.start_time, s.id
	`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("list slots of meeting %s: %w", meetingID, err)
	}
	defer rows.Close()

	d.Slots = []entity.SlotView{}
	for rows.Next() {
		var (
			v                     entity.SlotView
			username, displayName *string
			email                 *string
		)
		if err := rows.Scan(&v.ID, &v.MeetingID, &v.StartTime, &v.EndTime, &v.BookedByID, &v.BookedAt,
			&username, &displayName, &email); err != nil {
			return nil, fmt.Errorf("scan slot of meeting %s: %w", meetingID, err)
		}
		if v.BookedByID != nil {
			v.BookedBy = &entity.UserRef{ID: *v.BookedByID, Username: deref(username), DisplayName: deref(displayName), Email: email}
		}
		d.Slots = append(d.Slots, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list slots of meeting %s: %w", meetingID, err)
	}
	return d, nil
}

func (r *MeetingRepository) ListHostedBy(ctx context.Context, userID string) ([]entity.Meeting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, description, date, created_by::text, created_at
		FROM meetings
		WHERE created_by = $1::uuid
		ORDER BY date DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list meetings hosted by %s: %w", userID, err)
	}
	defer rows.Close()

	out := []entity.Meeting{}
	for rows.Next() {
		var m entity.Meeting
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Date, &m.CreatedByID, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ repository.MeetingRepository = (*MeetingRepository)(nil)
