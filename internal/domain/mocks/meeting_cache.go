package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/go-slot-booking/internal/domain/entity"
)

// MockMeetingCache implements application.MeetingCache for testing
type MockMeetingCache struct {
	mock.Mock
}

func (m *MockMeetingCache) Get(ctx context.Context, meetingID string) (*entity.MeetingDetail, bool, error) {
	args := m.Called(ctx, meetingID)
	var d *entity.MeetingDetail
	if v := args.Get(0); v != nil {
		d = v.(*entity.MeetingDetail)
	}
	return d, args.Bool(1), args.Error(2)
}

func (m *MockMeetingCache) Version(ctx context.Context, meetingID string) (int64, error) {
	args := m.Called(ctx, meetingID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMeetingCache) Set(ctx context.Context, d *entity.MeetingDetail, version int64) (bool, error) {
	args := m.Called(ctx, d, version)
	return args.Bool(0), args.Error(1)
}

func (m *MockMeetingCache) Invalidate(ctx context.Context, meetingID string) error {
	args := m.Called(ctx, meetingID)
	return args.Error(0)
}
