package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-slot-booking/internal/application"
	"github.com/oksasatya/go-slot-booking/pkg/mailer"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(ctx context.Context, body any) error {
	return m.Called(ctx, body).Error(0)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, to, subject, text, html string) error {
	return m.Called(ctx, to, subject, text, html).Error(0)
}

var note = application.Notification{
	To:       "ana@example.com",
	Subject:  "Booking confirmed: Sync",
	Body:     "Hi Ana",
	Template: "booking_confirmed",
}

func TestQueueGateway_PublishesEmailJob(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("PublishJSON", mock.Anything, mailer.EmailJob{
		To:       "ana@example.com",
		Subject:  "Booking confirmed: Sync",
		Text:     "Hi Ana",
		Template: "booking_confirmed",
	}).Return(nil).Once()

	require.NoError(t, NewQueueGateway(pub).Notify(context.Background(), note))
	pub.AssertExpectations(t)
}

func TestQueueGateway_WrapsPublishError(t *testing.T) {
	cause := errors.New("channel closed")
	pub := &mockPublisher{}
	pub.On("PublishJSON", mock.Anything, mock.Anything).Return(cause)

	err := NewQueueGateway(pub).Notify(context.Background(), note)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "ana@example.com")
}

func TestMailgunGateway_SendsPlainText(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, "ana@example.com", "Booking confirmed: Sync", "Hi Ana", "").Return(nil).Once()

	require.NoError(t, NewMailgunGateway(s).Notify(context.Background(), note))
	s.AssertExpectations(t)
}

func TestLogGateway_NeverFails(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)

	require.NoError(t, NewLogGateway(logger).Notify(context.Background(), note))
	assert.Contains(t, buf.String(), "ana@example.com")
	assert.Contains(t, buf.String(), "booking_confirmed")
}
