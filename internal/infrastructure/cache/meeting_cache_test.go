package cache

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-slot-booking/internal/domain/entity"
	"github.com/oksasatya/go-slot-booking/pkg/helpers"
)

func sampleDetail() *entity.MeetingDetail {
	booked := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	bob := "bob-id"
	return &entity.MeetingDetail{
		Meeting:   entity.Meeting{ID: "abcd-efgh-ijkl", Title: "Sync", CreatedByID: "alice-id"},
		CreatedBy: entity.UserRef{ID: "alice-id", Username: "alice"},
		Slots: []entity.SlotView{
			{TimeSlot: entity.TimeSlot{ID: "s1", MeetingID: "abcd-efgh-ijkl", BookedByID: &bob, BookedAt: &booked}, BookedBy: &entity.UserRef{ID: bob, Username: "bob"}},
			{TimeSlot: entity.TimeSlot{ID: "s2", MeetingID: "abcd-efgh-ijkl"}},
		},
	}
}

func TestRestoreIDs_AfterJSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(sampleDetail())
	require.NoError(t, err)

	var d entity.MeetingDetail
	require.NoError(t, json.Unmarshal(raw, &d))
	assert.Empty(t, d.CreatedByID)

	restoreIDs(&d)
	assert.Equal(t, "alice-id", d.CreatedByID)
	require.NotNil(t, d.Slots[0].BookedByID)
	assert.Equal(t, "bob-id", *d.Slots[0].BookedByID)
	assert.Nil(t, d.Slots[1].BookedByID)
	assert.Equal(t, "abcd-efgh-ijkl", d.Slots[1].MeetingID)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "meeting:{abcd-efgh-ijkl}:detail", Key("abcd-efgh-ijkl"))
	assert.Equal(t, "meeting:{abcd-efgh-ijkl}:ver", VersionKey("abcd-efgh-ijkl"))
}

func TestMeetingCache_Redis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb := helpers.NewRedisClient(addr, os.Getenv("REDIS_PASSWORD"), 0)
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())

	c := NewMeetingCache(rdb, time.Minute)
	d := sampleDetail()
	d.ID = "test-" + uuid.NewString()

	_, ok, err := c.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	t.Cleanup(func() { _ = rdb.Del(ctx, Key(d.ID), VersionKey(d.ID)).Err() })

	v, err := c.Version(ctx, d.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, v)

	stored, err := c.Set(ctx, d, v)
	require.NoError(t, err)
	require.True(t, stored)
	got, ok, err := c.Get(ctx, d.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice-id", got.CreatedByID)

	require.NoError(t, c.Invalidate(ctx, d.ID))
	_, ok, err = c.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// A copy read under the old version is refused after invalidation.
	stored, err = c.Set(ctx, d, v)
	require.NoError(t, err)
	assert.False(t, stored)
	_, ok, err = c.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	v, err = c.Version(ctx, d.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)
	stored, err = c.Set(ctx, d, v)
	require.NoError(t, err)
	assert.True(t, stored)
}
