package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-portfolio-site/internal/domain"
	"go-portfolio-site/internal/usecase"
	"go-portfolio-site/pkg/clock"
	"go-portfolio-site/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock Relay
type MockRelay struct {
	mock.Mock
}

func (m *MockRelay) Submit(ctx context.Context, msg domain.NotificationMessage) error {
	return m.Called(ctx, msg).Error(0)
}

// Mock Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, sub domain.SanitizedSubmission) (domain.DispatchReport, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(domain.DispatchReport), args.Error(1)
}

func ofKind(kind domain.NotificationKind) interface{} {
	return mock.MatchedBy(func(msg domain.NotificationMessage) bool { return msg.Kind == kind })
}

var bogota = time.FixedZone("COT", -5*60*60)

func testDispatcherConfig() usecase.DispatcherConfig {
	return usecase.DispatcherConfig{
		SenderEmail:  "site@example.com",
		SenderName:   "Portfolio Contact",
		OwnerEmail:   "owner@example.com",
		OwnerName:    "Alex Rivera",
		OwnerRole:    "Full-Stack Developer",
		GitHubURL:    "https://github.com/alex",
		LinkedInURL:  "https://linkedin.com/in/alex",
		Location:     bogota,
		RelayTimeout: time.Second,
	}
}

func testSubmission() domain.SanitizedSubmission {
	return domain.NewSanitizedSubmission("Jo", "jo@example.com", "Hi there", "This is a long enough message.")
}

func fixedClock() clock.Clocker {
	return clock.Fixed(time.Date(2024, 5, 1, 15, 30, 0, 0, time.UTC))
}

func TestDispatchSendsOwnerNotificationFirst(t *testing.T) {
	relay := new(MockRelay)
	relay.On("Submit", mock.Anything, ofKind(domain.KindOwnerNotification)).Return(nil).Once()
	relay.On("Submit", mock.Anything, ofKind(domain.KindSenderAcknowledgment)).Return(nil).Once()

	d := usecase.NewNotificationDispatcher(relay, testDispatcherConfig(), fixedClock())
	report, err := d.Dispatch(context.Background(), testSubmission())

	require.NoError(t, err)
	assert.True(t, report.Delivered())
	relay.AssertExpectations(t)

	require.Len(t, relay.Calls, 2)
	first := relay.Calls[0].Arguments.Get(1).(domain.NotificationMessage)
	second := relay.Calls[1].Arguments.Get(1).(domain.NotificationMessage)
	assert.Equal(t, domain.KindOwnerNotification, first.Kind)
	assert.Equal(t, domain.KindSenderAcknowledgment, second.Kind)
}

func TestDispatchBuildsMessages(t *testing.T) {
	relay := new(MockRelay)
	relay.On("Submit", mock.Anything, mock.Anything).Return(nil)

	d := usecase.NewNotificationDispatcher(relay, testDispatcherConfig(), fixedClock())
	_, err := d.Dispatch(context.Background(), testSubmission())
	require.NoError(t, err)

	owner := relay.Calls[0].Arguments.Get(1).(domain.NotificationMessage)
	assert.Equal(t, "site@example.com", owner.From.Address)
	assert.Equal(t, "owner@example.com", owner.To.Address)
	assert.Equal(t, "jo@example.com", owner.ReplyTo.Address)
	assert.Equal(t, "New portfolio message: Hi there", owner.Subject)
	assert.Equal(t, 10, owner.Timestamp.Hour())
	assert.Len(t, owner.Fields, 4)
	assert.Contains(t, owner.TextBody, "This is a long enough message.")
	assert.Contains(t, owner.TextBody, "May 1, 2024 at 10:30 AM COT")

	ack := relay.Calls[1].Arguments.Get(1).(domain.NotificationMessage)
	assert.Equal(t, "site@example.com", ack.From.Address)
	assert.Equal(t, "Alex Rivera", ack.From.Name)
	assert.Equal(t, "jo@example.com", ack.To.Address)
	assert.Equal(t, "owner@example.com", ack.ReplyTo.Address)
	assert.Equal(t, "Thanks for your message - Alex Rivera", ack.Subject)
	assert.Contains(t, ack.HTMLBody, "https://github.com/alex")
	assert.Contains(t, ack.HTMLBody, "2024 Alex Rivera")
}

func TestDispatchEscapesHTMLBodies(t *testing.T) {
	relay := new(MockRelay)
	relay.On("Submit", mock.Anything, mock.Anything).Return(nil)

	sub := domain.NewSanitizedSubmission("Jo", "jo@example.com", "Q&A", `Tom & "Jerry" say hello`)
	d := usecase.NewNotificationDispatcher(relay, testDispatcherConfig(), fixedClock())
	_, err := d.Dispatch(context.Background(), sub)
	require.NoError(t, err)

	owner := relay.Calls[0].Arguments.Get(1).(domain.NotificationMessage)
	assert.Contains(t, owner.HTMLBody, "Tom &amp; &#34;Jerry&#34; say hello")
	assert.Contains(t, owner.TextBody, `Tom & "Jerry" say hello`)
}

func TestDispatchStopsWhenOwnerNotificationFails(t *testing.T) {
	relayErr := errors.New("connection refused")
	relay := new(MockRelay)
	relay.On("Submit", mock.Anything, ofKind(domain.KindOwnerNotification)).Return(relayErr)

	d := usecase.NewNotificationDispatcher(relay, testDispatcherConfig(), fixedClock())
	report, err := d.Dispatch(context.Background(), testSubmission())

	require.Error(t, err)
	assert.ErrorIs(t, err, relayErr)
	var dispatchErr *domain.DispatchError
	require.ErrorAs(t, err, &dispatchErr)
	assert.Equal(t, domain.StageOwnerNotification, dispatchErr.Stage)
	assert.Equal(t, domain.DispatchReport{}, report)
	relay.AssertNotCalled(t, "Submit", mock.Anything, ofKind(domain.KindSenderAcknowledgment))
}

func TestDispatchReportsPartialDelivery(t *testing.T) {
	relay := new(MockRelay)
	relay.On("Submit", mock.Anything, ofKind(domain.KindOwnerNotification)).Return(nil)
	relay.On("Submit", mock.Anything, ofKind(domain.KindSenderAcknowledgment)).Return(errors.New("mailbox unavailable"))

	d := usecase.NewNotificationDispatcher(relay, testDispatcherConfig(), fixedClock())
	report, err := d.Dispatch(context.Background(), testSubmission())

	require.Error(t, err)
	var dispatchErr *domain.DispatchError
	require.ErrorAs(t, err, &dispatchErr)
	assert.Equal(t, domain.StageSenderAcknowledgment, dispatchErr.Stage)
	assert.True(t, report.Partial())
	assert.False(t, report.Delivered())
}

func TestDispatchTimesOutRelayCall(t *testing.T) {
	cfg := testDispatcherConfig()
	cfg.RelayTimeout = 20 * time.Millisecond

	relay := new(MockRelay)
	relay.On("Submit", mock.Anything, ofKind(domain.KindOwnerNotification)).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(context.DeadlineExceeded)

	d := usecase.NewNotificationDispatcher(relay, cfg, fixedClock())

	start := time.Now()
	report, err := d.Dispatch(context.Background(), testSubmission())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, report.OwnerNotified)
	assert.Less(t, time.Since(start), 2*time.Second)
	relay.AssertNumberOfCalls(t, "Submit", 1)
}

func newContactUsecase(t *testing.T, dispatcher domain.Dispatcher) domain.ContactUsecase {
	t.Helper()
	v, err := validation.NewContactValidator()
	require.NoError(t, err)
	return usecase.NewContactUsecase(v, dispatcher)
}

func TestSubmitContactRejectsInvalidSubmission(t *testing.T) {
	dispatcher := new(MockDispatcher)
	uc := newContactUsecase(t, dispatcher)

	outcome, err := uc.SubmitContact(context.Background(), domain.ContactSubmission{
		Name:    "J",
		Email:   "bad-email",
		Subject: "Hi",
		Message: "short",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StateRejected, outcome.State)
	assert.True(t, outcome.State.Terminal())
	assert.Len(t, outcome.Validation.Errors, 4)
	dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestSubmitContactDispatchesSanitizedSubmission(t *testing.T) {
	want := domain.NewSanitizedSubmission("Jo", "jo@example.com", "Hi there", "This is bold text here.")
	dispatcher := new(MockDispatcher)
	dispatcher.On("Dispatch", mock.Anything, want).
		Return(domain.DispatchReport{OwnerNotified: true, AcknowledgementSent: true}, nil).Once()
	uc := newContactUsecase(t, dispatcher)

	outcome, err := uc.SubmitContact(context.Background(), domain.ContactSubmission{
		Name:    " Jo ",
		Email:   "jo@example.com",
		Subject: "Hi there",
		Message: "This is <bold> text here.",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StateDelivered, outcome.State)
	assert.True(t, outcome.Report.Delivered())
	dispatcher.AssertExpectations(t)
}

func TestSubmitContactReportsDispatchFailure(t *testing.T) {
	dispatchErr := &domain.DispatchError{Stage: domain.StageSenderAcknowledgment, Err: errors.New("timeout")}
	dispatcher := new(MockDispatcher)
	dispatcher.On("Dispatch", mock.Anything, mock.Anything).
		Return(domain.DispatchReport{OwnerNotified: true}, dispatchErr)
	uc := newContactUsecase(t, dispatcher)

	outcome, err := uc.SubmitContact(context.Background(), domain.ContactSubmission{
		Name:    "Jo",
		Email:   "jo@example.com",
		Subject: "Hi there",
		Message: "This is a long enough message.",
	})

	assert.ErrorIs(t, err, dispatchErr)
	assert.Equal(t, domain.StateDispatchFailed, outcome.State)
	assert.True(t, outcome.Report.Partial())
}

type staticRelayStatus bool

func (s staticRelayStatus) IsConfigured() bool { return bool(s) }

func TestHealthCheck(t *testing.T) {
	uc := usecase.NewHealthUsecase(staticRelayStatus(true), "memory")

	assert.Equal(t, map[string]string{
		"status":     "ok",
		"relay":      "configured",
		"rate_limit": "memory",
	}, uc.Check(context.Background()))

	assert.Equal(t, "not_configured", usecase.NewHealthUsecase(staticRelayStatus(false), "redis").Check(context.Background())["relay"])
}
