// Package cache keeps read-through copies of meeting aggregates in Redis.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-slot-booking/internal/application"
	"github.com/oksasatya/go-slot-booking/internal/domain/entity"
	"github.com/oksasatya/go-slot-booking/pkg/helpers"
)

// Both keys of a meeting share a hash tag so the scripts stay single-slot.
func Key(meetingID string) string        { return "meeting:{" + meetingID + "}:detail" }
func VersionKey(meetingID string) string { return "meeting:{" + meetingID + "}:ver" }

// Writes the detail only while the version still matches the one observed
// before the database read. A missing version reads as 0.
var setIfVersionScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if not v then v = "0" end
if v ~= ARGV[1] then return 0 end
if tonumber(ARGV[3]) > 0 then
  redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
else
  redis.call("SET", KEYS[2], ARGV[2])
end
return 1
`)

type MeetingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewMeetingCache(rdb *redis.Client, ttl time.Duration) *MeetingCache {
	return &MeetingCache{rdb: rdb, ttl: ttl}
}

func (c *MeetingCache) Get(ctx context.Context, meetingID string) (*entity.MeetingDetail, bool, error) {
	var d entity.MeetingDetail
	ok, err := helpers.RedisGetJSON(ctx, c.rdb, Key(meetingID), &d)
	if err != nil || !ok {
		return nil, false, err
	}
	restoreIDs(&d)
	return &d, true, nil
}

func (c *MeetingCache) Version(ctx context.Context, meetingID string) (int64, error) {
	return helpers.RedisGetInt64(ctx, c.rdb, VersionKey(meetingID))
}

// Set stores d unless the meeting was invalidated after version was read.
func (c *MeetingCache) Set(ctx context.Context, d *entity.MeetingDetail, version int64) (bool, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return false, err
	}
	n, err := setIfVersionScript.Run(ctx, c.rdb,
		[]string{VersionKey(d.ID), Key(d.ID)},
		version, b, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Invalidate bumps the version before dropping the copy, so a reader that
// loaded the meeting earlier cannot write it back.
func (c *MeetingCache) Invalidate(ctx context.Context, meetingID string) error {
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, VersionKey(meetingID))
		p.Del(ctx, Key(meetingID))
		return nil
	})
	return err
}

// restoreIDs refills the internal foreign keys that are not serialized.
func restoreIDs(d *entity.MeetingDetail) {
	d.CreatedByID = d.CreatedBy.ID
	for i := range d.Slots {
		if b := d.Slots[i].BookedBy; b != nil {
			id := b.ID
			d.Slots[i].BookedByID = &id
		}
		d.Slots[i].MeetingID = d.ID
	}
}

var _ application.MeetingCache = (*MeetingCache)(nil)
