package application

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-slot-booking/internal/domain"
	"github.com/oksasatya/go-slot-booking/internal/domain/entity"
	repo "github.com/oksasatya/go-slot-booking/internal/domain/repository"
	"github.com/oksasatya/go-slot-booking/internal/domain/timeslot"
)

// MeetingCache is a read-through cache of meeting aggregates. Version is
// read before loading from storage and passed back to Set; Invalidate
// advances it so a copy loaded before a write is never stored.
type MeetingCache interface {
	Get(ctx context.Context, meetingID string) (*entity.MeetingDetail, bool, error)
	Version(ctx context.Context, meetingID string) (int64, error)
	Set(ctx context.Context, d *entity.MeetingDetail, version int64) (bool, error)
	Invalidate(ctx context.Context, meetingID string) error
}

type CreateMeetingInput struct {
	// ID is optional; a token is generated when blank.
	ID          string
	Title       string
	Description string
	Date        string
	SlotTexts   []string
	Creator     Identity
	// UTCOffsetMinutes follows Date.getTimezoneOffset; nil is legacy mode.
	UTCOffsetMinutes *int
}

var meetingIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

const generatedIDAttempts = 3

type MeetingService struct {
	Meetings repo.MeetingRepository
	Identity *IdentityService
	Cache    MeetingCache
	Logger   *logrus.Logger
}

func NewMeetingService(meetings repo.MeetingRepository, identity *IdentityService, cache MeetingCache, logger *logrus.Logger) *MeetingService {
	return &MeetingService{Meetings: meetings, Identity: identity, Cache: cache, Logger: orDiscard(logger)}
}

// Create parses every slot, resolves the creator and stores the meeting
// with all of its slots in one step. Nothing is written when any input is
// rejected.
func (s *MeetingService) Create(ctx context.Context, in CreateMeetingInput) (*entity.MeetingDetail, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	var missing []string
	if in.Title == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Date) == "" {
		missing = append(missing, "date")
	}
	if len(in.SlotTexts) == 0 {
		missing = append(missing, "slots")
	}
	if strings.TrimSpace(in.Creator.Username) == "" {
		missing = append(missing, "creator username")
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}
	if in.ID != "" && !meetingIDPattern.MatchString(in.ID) {
		return nil, domain.NewValidationError("meeting id may only contain letters, digits, '-' and '_' (max 64)")
	}

	day, err := timeslot.ParseDate(in.Date)
	if err != nil {
		return nil, err
	}

	slots := make([]entity.TimeSlot, 0, len(in.SlotTexts))
	seen := make(map[string]struct{}, len(in.SlotTexts))
	for _, text := range in.SlotTexts {
		r, err := timeslot.Parse(day, text, in.UTCOffsetMinutes)
		if err != nil {
			return nil, err
		}
		key := r.Start.String() + "|" + r.End.String()
		if _, dup := seen[key]; dup {
			return nil, domain.NewValidationError(fmt.Sprintf("slot %q is listed twice", strings.TrimSpace(text)))
		}
		seen[key] = struct{}{}
		slots = append(slots, entity.TimeSlot{StartTime: r.Start, EndTime: r.End})
	}

	creator, err := s.Identity.Resolve(ctx, in.Creator)
	if err != nil {
		return nil, err
	}

	m := &entity.Meeting{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Date:        day,
		CreatedByID: creator.ID,
	}
	if err := s.insert(ctx, m, slots, in.ID == ""); err != nil {
		return nil, err
	}

	meetingsCreated.Add(1)
	s.Logger.WithFields(logrus.Fields{
		"meeting_id": m.ID,
		"creator":    creator.Username,
		"slots":      len(slots),
	}).Info("meeting created")

	views := make([]entity.SlotView, len(slots))
	for i, sl := range slots {
		views[i] = entity.SlotView{TimeSlot: sl}
	}
	sortSlotViews(views)
	return &entity.MeetingDetail{Meeting: *m, CreatedBy: creator.Ref(), Slots: views}, nil
}

func (s *MeetingService) insert(ctx context.Context, m *entity.Meeting, slots []entity.TimeSlot, generate bool) error {
	attempts := 1
	if generate {
		attempts = generatedIDAttempts
	}
	for i := 0; i < attempts; i++ {
		if generate {
			id, err := NewMeetingToken()
			if err != nil {
				return s.internal("generate meeting id failed", err, nil)
			}
			m.ID = id
		}
		err := s.Meetings.CreateWithSlots(ctx, m, slots)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, repo.ErrMeetingExists):
			if !generate {
				return domain.NewConflictError(fmt.Sprintf("meeting id %q is already taken", m.ID))
			}
			s.Logger.WithField("meeting_id", m.ID).Warn("generated meeting id collided, retrying")
		default:
			return s.internal("create meeting failed", err, logrus.Fields{"meeting_id": m.ID})
		}
	}
	return domain.NewConflictError("could not allocate a free meeting id")
}

// Get returns the meeting aggregate, consulting the cache first.
func (s *MeetingService) Get(ctx context.Context, meetingID string) (*entity.MeetingDetail, error) {
	meetingID = strings.TrimSpace(meetingID)
	if meetingID == "" {
		return nil, domain.NewValidationError("meeting id is required")
	}

	log := s.Logger.WithField("meeting_id", meetingID)
	var (
		version   int64
		cacheable bool
	)
	if s.Cache != nil {
		d, ok, err := s.Cache.Get(ctx, meetingID)
		if err != nil {
			log.WithError(err).Warn("meeting cache read failed")
		} else if ok {
			return d, nil
		}
		if version, err = s.Cache.Version(ctx, meetingID); err != nil {
			log.WithError(err).Warn("meeting cache version read failed")
		} else {
			cacheable = true
		}
	}

	d, err := s.Meetings.GetDetail(ctx, meetingID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, domain.NewNotFoundError("meeting not found")
	}
	if err != nil {
		return nil, s.internal("load meeting failed", err, logrus.Fields{"meeting_id": meetingID})
	}

	if cacheable {
		stored, err := s.Cache.Set(ctx, d, version)
		switch {
		case err != nil:
			log.WithError(err).Warn("meeting cache write failed")
		case !stored:
			log.Debug("meeting changed while loading; not cached")
		}
	}
	return d, nil
}

func (s *MeetingService) internal(msg string, err error, fields logrus.Fields) error {
	s.Logger.WithError(err).WithFields(fields).Error(msg)
	return domain.NewInternalError(msg, err)
}

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewMeetingToken returns a random id shaped like "k3f9-0qzb-7mde".
func NewMeetingToken() (string, error) {
	var raw [12]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	var b strings.Builder
	for i, c := range raw {
		if i > 0 && i%4 == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(tokenAlphabet[int(c)%len(tokenAlphabet)])
	}
	return b.String(), nil
}

func sortSlotViews(v []entity.SlotView) {
	sort.SliceStable(v, func(i, j int) bool { return v[i].StartTime.Before(v[j].StartTime) })
}
