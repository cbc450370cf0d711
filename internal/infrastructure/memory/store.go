// Package memory is a process-local store with the same atomicity
// guarantees as the PostgreSQL repositories: every write happens inside a
// single critical section.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-slot-booking/internal/domain/entity"
	"github.com/oksasatya/go-slot-booking/internal/domain/repository"
)

type Store struct {
	mu sync.RWMutex

	users          map[string]*entity.User // by id
	byUsername     map[string]string       // username -> id
	meetings       map[string]*entity.Meeting
	slots          map[string]*entity.TimeSlot
	slotsByMeeting map[string][]string // meeting id -> slot ids

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:          make(map[string]*entity.User),
		byUsername:     make(map[string]string),
		meetings:       make(map[string]*entity.Meeting),
		slots:          make(map[string]*entity.TimeSlot),
		slotsByMeeting: make(map[string][]string),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Users, Meetings and Slots expose the store through the repository ports.
func (s *Store) Users() repository.UserRepository       { return userRepo{s} }
func (s *Store) Meetings() repository.MeetingRepository { return meetingRepo{s} }
func (s *Store) Slots() repository.SlotRepository       { return slotRepo{s} }

// Counts reports the number of stored meetings and slots.
func (s *Store) Counts() (meetings, slots int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meetings), len(s.slots)
}

func copyUser(u *entity.User) *entity.User {
	cp := *u
	if u.Email != nil {
		e := *u.Email
		cp.Email = &e
	}
	return &cp
}

func (s *Store) refLocked(userID string) entity.UserRef {
	u, ok := s.users[userID]
	if !ok {
		return entity.UserRef{ID: userID}
	}
	return copyUser(u).Ref()
}

type userRepo struct{ s *Store }

func (r userRepo) CreateIfAbsent(_ context.Context, u *entity.User) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.byUsername[u.Username]; taken {
		return false, nil
	}
	now := r.s.now()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.s.users[u.ID] = copyUser(u)
	r.s.byUsername[u.Username] = u.ID
	return true, nil
}

func (r userRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.byUsername[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(r.s.users[id]), nil
}

func (r userRepo) BackfillEmail(_ context.Context, userID, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if u.Email == nil {
		e := email
		u.Email = &e
		u.UpdatedAt = r.s.now()
	}
	return copyUser(u), nil
}

type meetingRepo struct{ s *Store }

func (r meetingRepo) CreateWithSlots(_ context.Context, m *entity.Meeting, slots []entity.TimeSlot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.meetings[m.ID]; exists {
		return fmt.Errorf("create meeting %s: %w", m.ID, repository.ErrMeetingExists)
	}
	if _, ok := r.s.users[m.CreatedByID]; !ok {
		return fmt.Errorf("create meeting %s: creator %s: %w", m.ID, m.CreatedByID, repository.ErrNotFound)
	}

	m.CreatedAt = r.s.now()
	stored := *m
	r.s.meetings[m.ID] = &stored

	ids := make([]string, 0, len(slots))
	for i := range slots {
		slots[i].ID = uuid.NewString()
		slots[i].MeetingID = m.ID
		sl := slots[i]
		r.s.slots[sl.ID] = &sl
		ids = append(ids, sl.ID)
	}
	r.s.slotsByMeeting[m.ID] = ids
	return nil
}

func (r meetingRepo) GetDetail(_ context.Context, meetingID string) (*entity.MeetingDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.meetings[meetingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	d := &entity.MeetingDetail{
		Meeting:   *m,
		CreatedBy: r.s.refLocked(m.CreatedByID),
		Slots:     make([]entity.SlotView, 0, len(r.s.slotsByMeeting[meetingID])),
	}
	for _, id := range r.s.slotsByMeeting[meetingID] {
		sl := *r.s.slots[id]
		v := entity.SlotView{TimeSlot: sl}
		if sl.BookedByID != nil {
			ref := r.s.refLocked(*sl.BookedByID)
			v.BookedBy = &ref
		}
		d.Slots = append(d.Slots, v)
	}
	sort.SliceStable(d.Slots, func(i, j int) bool { return d.Slots[i].StartTime.Before(d.Slots[j].StartTime) })
	return d, nil
}

func (r meetingRepo) ListHostedBy(_ context.Context, userID string) ([]entity.Meeting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []entity.Meeting{}
	for _, m := range r.s.meetings {
		if m.CreatedByID == userID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

type slotRepo struct{ s *Store }

func (r slotRepo) GetContext(_ context.Context, slotID string) (*entity.SlotContext, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sl, ok := r.s.slots[slotID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m := r.s.meetings[sl.MeetingID]
	return &entity.SlotContext{Slot: *sl, Meeting: *m, Creator: r.s.refLocked(m.CreatedByID)}, nil
}

func (r slotRepo) HasBookingInMeeting(_ context.Context, meetingID, userID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.holdsSlotLocked(meetingID, userID), nil
}

func (s *Store) holdsSlotLocked(meetingID, userID string) bool {
	for _, id := range s.slotsByMeeting[meetingID] {
		if b := s.slots[id].BookedByID; b != nil && *b == userID {
			return true
		}
	}
	return false
}

func (r slotRepo) Claim(_ context.Context, slotID, userID string, at time.Time) (*entity.TimeSlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sl, ok := r.s.slots[slotID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if sl.BookedByID != nil {
		return nil, repository.ErrSlotTaken
	}
	if r.s.holdsSlotLocked(sl.MeetingID, userID) {
		return nil, repository.ErrDuplicateBooker
	}
	uid := userID
	ts := at.UTC()
	sl.BookedByID = &uid
	sl.BookedAt = &ts
	out := *sl
	return &out, nil
}

func (r slotRepo) ListBookedBy(_ context.Context, userID string) ([]entity.BookedSlot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []entity.BookedSlot{}
	for _, sl := range r.s.slots {
		if sl.BookedByID == nil || *sl.BookedByID != userID {
			continue
		}
		m := r.s.meetings[sl.MeetingID]
		out = append(out, entity.BookedSlot{
			SlotID:    sl.ID,
			StartTime: sl.StartTime,
			EndTime:   sl.EndTime,
			BookedAt:  *sl.BookedAt,
			Meeting:   *m,
			Host:      r.s.refLocked(m.CreatedByID),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r slotRepo) ListBusy(_ context.Context, userID string, day time.Time) ([]entity.BusySlot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []entity.BusySlot{}
	for _, sl := range r.s.slots {
		if sl.BookedByID == nil {
			continue
		}
		m := r.s.meetings[sl.MeetingID]
		if !m.Date.Equal(day) {
			continue
		}
		busy := entity.BusySlot{
			SlotID:       sl.ID,
			MeetingID:    m.ID,
			MeetingTitle: m.Title,
			StartTime:    sl.StartTime,
			EndTime:      sl.EndTime,
		}
		switch {
		case *sl.BookedByID == userID:
			busy.Role = entity.RoleAttending
			busy.With = r.s.refLocked(m.CreatedByID)
		case m.CreatedByID == userID:
			busy.Role = entity.RoleHosting
			busy.With = r.s.refLocked(*sl.BookedByID)
		default:
			continue
		}
		out = append(out, busy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

var (
	_ repository.UserRepository    = userRepo{}
	_ repository.MeetingRepository = meetingRepo{}
	_ repository.SlotRepository    = slotRepo{}
)
