package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/examportal/pkg/models"
)

type staticSource []models.Registration

func (s staticSource) GetAll() []models.Registration { return s }

type recordingNotifier struct {
	calls map[string][]models.Registration
	err   error
}

func (n *recordingNotifier) SendReminder(testName string, regs []models.Registration) error {
	if n.err != nil {
		return n.err
	}
	if n.calls == nil {
		n.calls = make(map[string][]models.Registration)
	}
	n.calls[testName] = append(n.calls[testName], regs...)
	return nil
}

func newJob(source RegistrationSource, notifier Notifier, now time.Time) *reminderJob {
	logger, _ := logtest.NewNullLogger()
	return &reminderJob{
		source:   source,
		notifier: notifier,
		cfg:      ReminderConfig{StartHour: 8, EndHour: 20, Window: 24 * time.Hour},
		log:      logger,
		now:      func() time.Time { return now },
		sent:     make(map[string]bool),
	}
}

func TestAfterFuncFiresOnce(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	s := New(logger)
	s.Start()
	defer s.Stop()

	var calls int32
	s.AfterFunc(50*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) == 1
	}, 3*time.Second, 10*time.Millisecond)

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAfterFuncZeroDelayRunsImmediately(t *testing.T) {
	s := New(nil)

	done := make(chan struct{})
	s.AfterFunc(0, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestReminderGroupsUpcomingByTest(t *testing.T) {
	now := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	source := staticSource{
		{ID: "REG1", StudentID: "S1", TestName: "Algebra", PreferredDate: "2024-04-02"},
		{ID: "REG2", StudentID: "S2", TestName: "Algebra", PreferredDate: "2024-04-01T18:00:00Z"},
		{ID: "REG3", StudentID: "S1", TestName: "Physics", PreferredDate: "2024-04-01T12:00:00Z"},
		{ID: "REG4", StudentID: "S3", TestName: "Physics", PreferredDate: "2024-04-05"},  // too far
		{ID: "REG5", StudentID: "S4", TestName: "Physics", PreferredDate: "2024-03-30"},  // past
		{ID: "REG6", StudentID: "S5", TestName: "Physics", PreferredDate: "whenever"},    // unparseable
	}
	notifier := &recordingNotifier{}
	job := newJob(source, notifier, now)

	assert.Equal(t, 3, job.check(false))
	require.Len(t, notifier.calls, 2)
	assert.Len(t, notifier.calls["Algebra"], 2)
	assert.Len(t, notifier.calls["Physics"], 1)

	// already reminded registrations are not sent again
	assert.Equal(t, 0, job.check(false))
}

func TestReminderSkipsOutsideNotificationHours(t *testing.T) {
	now := time.Date(2024, 4, 1, 23, 0, 0, 0, time.UTC)
	source := staticSource{
		{ID: "REG1", TestName: "Algebra", PreferredDate: "2024-04-02"},
	}
	notifier := &recordingNotifier{}
	job := newJob(source, notifier, now)

	assert.Equal(t, 0, job.check(false))
	assert.Empty(t, notifier.calls)

	// a manual check ignores the hours
	assert.Equal(t, 1, job.check(true))
}

func TestReminderRetriesAfterSendFailure(t *testing.T) {
	now := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	source := staticSource{
		{ID: "REG1", TestName: "Algebra", PreferredDate: "2024-04-02"},
	}
	notifier := &recordingNotifier{err: errors.New("offline")}
	job := newJob(source, notifier, now)

	assert.Equal(t, 0, job.check(false))

	notifier.err = nil
	assert.Equal(t, 1, job.check(false))
}

func TestRunManualCheckWithoutReminders(t *testing.T) {
	s := New(nil)
	assert.Equal(t, 0, s.RunManualCheck())
}
