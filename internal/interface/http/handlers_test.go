package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-slot-booking/internal/application"
	"github.com/oksasatya/go-slot-booking/internal/domain/mocks"
	"github.com/oksasatya/go-slot-booking/internal/infrastructure/memory"
	"github.com/oksasatya/go-slot-booking/internal/interface/middleware"
	"github.com/oksasatya/go-slot-booking/pkg/validation"
)

type envelope struct {
	Status    int             `json:"status"`
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
	Error     struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	gateway := &mocks.MockNotificationGateway{}
	gateway.On("Notify", mock.Anything, mock.Anything).Return(nil)

	store := memory.NewStore()
	identity := application.NewIdentityService(store.Users(), nil)
	dispatcher := application.NewDispatcher(gateway, time.Second, nil)
	t.Cleanup(dispatcher.Wait)

	meetings := NewMeetingHandler(application.NewMeetingService(store.Meetings(), identity, nil, nil), nil)
	bookings := NewBookingHandler(application.NewBookingService(store.Slots(), identity, nil, dispatcher,
		application.BookingPolicy{}, application.MailSettings{}, nil), nil)
	users := NewUserHandler(application.NewProfileService(store.Users(), store.Meetings(), store.Slots(), nil), nil)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	v1 := r.Group("/api/v1")
	v1.POST("/meetings", meetings.Create)
	v1.GET("/meetings/:id", meetings.Get)
	v1.POST("/slots/:slotId/book", bookings.Book)
	v1.GET("/users/:username", users.GetProfile)
	v1.GET("/users/:username/availability", users.GetAvailability)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

type meetingView struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedBy struct {
		Username string `json:"username"`
	} `json:"createdBy"`
	Slots []struct {
		ID        string    `json:"id"`
		StartTime time.Time `json:"startTime"`
		BookedBy  *struct {
			Username string `json:"username"`
		} `json:"bookedBy"`
	} `json:"slots"`
}

func createMeeting(t *testing.T, r *gin.Engine, body map[string]any) meetingView {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/api/v1/meetings", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		MeetingID string `json:"meetingId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	w, env = do(t, r, http.MethodGet, "/api/v1/meetings/"+created.MeetingID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var m meetingView
	require.NoError(t, json.Unmarshal(env.Data, &m))
	return m
}

func meetingBody() map[string]any {
	return map[string]any{
		"title":            "Sync",
		"date":             "2024-05-01",
		"slots":            []string{"10:00 AM - 11:00 AM", "09:00 AM - 10:00 AM"},
		"creatorUsername":  "alice",
		"creatorEmail":     "alice@example.com",
		"utcOffsetMinutes": 0,
	}
}

func TestCreateAndGetMeeting(t *testing.T) {
	r := newTestEngine(t)

	m := createMeeting(t, r, meetingBody())
	assert.Equal(t, "Sync", m.Title)
	assert.Equal(t, "alice", m.CreatedBy.Username)
	require.Len(t, m.Slots, 2)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), m.Slots[0].StartTime.UTC())
	assert.Nil(t, m.Slots[0].BookedBy)
}

func TestCreateMeeting_Errors(t *testing.T) {
	r := newTestEngine(t)

	tests := []struct {
		name   string
		mutate func(map[string]any)
		status int
		code   string
		field  string
	}{
		{"missing title", func(b map[string]any) { delete(b, "title") }, http.StatusBadRequest, "validation_error", "title"},
		{"bad date", func(b map[string]any) { b["date"] = "2024/05/01" }, http.StatusBadRequest, "validation_error", "date"},
		{"no slots", func(b map[string]any) { b["slots"] = []string{} }, http.StatusBadRequest, "validation_error", "slots"},
		{"offset out of range", func(b map[string]any) { b["utcOffsetMinutes"] = 1000 }, http.StatusBadRequest, "validation_error", "utcOffsetMinutes"},
		{"bad slot text", func(b map[string]any) { b["slots"] = []string{"9-10"} }, http.StatusBadRequest, "invalid_time_format", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := meetingBody()
			tt.mutate(body)
			w, env := do(t, r, http.MethodPost, "/api/v1/meetings", body)
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error.Code)
			if tt.field != "" {
				assert.Contains(t, env.Error.Details, tt.field)
			}
		})
	}
}

func TestCreateMeeting_TakenID(t *testing.T) {
	r := newTestEngine(t)
	body := meetingBody()
	body["meetingId"] = "team-sync"
	createMeeting(t, r, body)

	w, env := do(t, r, http.MethodPost, "/api/v1/meetings", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", env.Error.Code)
}

func TestGetMeeting_NotFound(t *testing.T) {
	r := newTestEngine(t)

	w, env := do(t, r, http.MethodGet, "/api/v1/meetings/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", env.Error.Code)
	assert.NotEmpty(t, env.RequestID)
}

func TestBookSlot(t *testing.T) {
	r := newTestEngine(t)
	m := createMeeting(t, r, meetingBody())
	path := "/api/v1/slots/" + m.Slots[0].ID + "/book"

	w, env := do(t, r, http.MethodPost, path, map[string]any{"username": "bob", "email": "bob@example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var booked struct {
		Confirmed bool `json:"confirmed"`
		Slot      struct {
			ID       string `json:"id"`
			BookedBy struct {
				Username string `json:"username"`
			} `json:"bookedBy"`
		} `json:"slot"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &booked))
	assert.True(t, booked.Confirmed)
	assert.Equal(t, m.Slots[0].ID, booked.Slot.ID)
	assert.Equal(t, "bob", booked.Slot.BookedBy.Username)

	w, env = do(t, r, http.MethodPost, path, map[string]any{"username": "erin", "email": "erin@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "slot_already_booked", env.Error.Code)

	w, env = do(t, r, http.MethodPost, "/api/v1/slots/"+m.Slots[1].ID+"/book", map[string]any{"username": "bob", "email": "bob@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "duplicate_booking", env.Error.Code)
}

func TestBookSlot_Errors(t *testing.T) {
	r := newTestEngine(t)

	w, env := do(t, r, http.MethodPost, "/api/v1/slots/8d3c6f0e-4c1a-4c6e-9d55-0d3b3f1c2a10/book", map[string]any{"username": "bob", "email": "bob@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "slot_not_found", env.Error.Code)

	w, env = do(t, r, http.MethodPost, "/api/v1/slots/not-a-uuid/book", map[string]any{"username": "bob", "email": "bob@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", env.Error.Code)

	w, env = do(t, r, http.MethodPost, "/api/v1/slots/not-a-uuid/book", map[string]any{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error.Details, "email")
}

func TestBookSlot_ConcurrentRequests(t *testing.T) {
	r := newTestEngine(t)
	m := createMeeting(t, r, meetingBody())
	path := "/api/v1/slots/" + m.Slots[0].ID + "/book"

	const clients = 10
	codes := make([]int, clients)
	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body, _ := json.Marshal(map[string]any{"username": "user" + string(rune('a'+i)), "email": "u@example.com"})
			req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	var created, conflicts int
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, clients-1, conflicts)
}

func TestUserProfileAndAvailability(t *testing.T) {
	r := newTestEngine(t)
	m := createMeeting(t, r, meetingBody())
	w, _ := do(t, r, http.MethodPost, "/api/v1/slots/"+m.Slots[0].ID+"/book", map[string]any{"username": "bob", "email": "bob@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := do(t, r, http.MethodGet, "/api/v1/users/alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		Username       string `json:"username"`
		HostedMeetings []struct {
			ID string `json:"id"`
		} `json:"hostedMeetings"`
		BookedSlots []any `json:"bookedSlots"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "alice", profile.Username)
	require.Len(t, profile.HostedMeetings, 1)
	assert.Equal(t, m.ID, profile.HostedMeetings[0].ID)
	assert.Empty(t, profile.BookedSlots)

	w, env = do(t, r, http.MethodGet, "/api/v1/users/bob/availability?date=2024-05-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var avail struct {
		Busy []struct {
			Role string `json:"role"`
			With struct {
				Username string `json:"username"`
			} `json:"with"`
		} `json:"busy"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &avail))
	require.Len(t, avail.Busy, 1)
	assert.Equal(t, "attending", avail.Busy[0].Role)
	assert.Equal(t, "alice", avail.Busy[0].With.Username)

	w, env = do(t, r, http.MethodGet, "/api/v1/users/bob/availability", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error.Details, "date")

	w, _ = do(t, r, http.MethodGet, "/api/v1/users/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
