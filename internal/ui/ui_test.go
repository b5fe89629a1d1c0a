package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/examportal/pkg/models"
)

// manualTimer collects scheduled callbacks so tests can fire them
type manualTimer struct {
	delays []time.Duration
	fns    []func()
}

func (m *manualTimer) AfterFunc(d time.Duration, fn func()) {
	m.delays = append(m.delays, d)
	m.fns = append(m.fns, fn)
}

func (m *manualTimer) fire(i int) {
	m.fns[i]()
}

func TestNotifierShowsAndDismisses(t *testing.T) {
	var out bytes.Buffer
	timer := &manualTimer{}
	n := NewConsoleNotifier(&out, timer, 4*time.Second)

	n.ShowSuccess("Saved")
	assert.Equal(t, "[success] Saved\n", out.String())
	msg, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, Message{Text: "Saved", Kind: Success}, msg)
	assert.Equal(t, []time.Duration{4 * time.Second}, timer.delays)

	timer.fire(0)
	_, ok = n.Current()
	assert.False(t, ok)
}

func TestNotifierNewMessageReplacesOld(t *testing.T) {
	var out bytes.Buffer
	timer := &manualTimer{}
	n := NewConsoleNotifier(&out, timer, time.Second)

	n.ShowSuccess("first")
	n.ShowError("second")

	// the first message's dismissal must not hide the second one
	timer.fire(0)
	msg, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, Message{Text: "second", Kind: Error}, msg)

	timer.fire(1)
	_, ok = n.Current()
	assert.False(t, ok)
}

func TestNavigatorRedirect(t *testing.T) {
	timer := &manualTimer{}
	nav := NewConsoleNavigator("dashboard.html", timer)

	nav.Redirect("index.html", 0)
	assert.Equal(t, "index.html", nav.Location())

	nav.Redirect("login.html", 2*time.Second)
	assert.Equal(t, "index.html", nav.Location())
	require.Len(t, timer.fns, 1)
	assert.Equal(t, 2*time.Second, timer.delays[0])

	timer.fire(0)
	assert.Equal(t, "login.html", nav.Location())
}

func TestLoginStateView(t *testing.T) {
	v := NewLoginStateView()
	assert.False(t, v.Visible())

	v.Refresh(&models.User{ID: "U1", Name: "Ann"})
	assert.True(t, v.Visible())
	assert.Equal(t, "Logout (Ann)", v.Label())

	v.Refresh(nil)
	assert.False(t, v.Visible())
	assert.Empty(t, v.Label())
}

func TestFormatDateAndTime(t *testing.T) {
	assert.Equal(t, "March 5, 2024", FormatDate("2024-03-05T10:00:00Z", time.UTC))
	assert.Equal(t, "10:00 AM", FormatTime("2024-03-05T10:00:00Z", time.UTC))
	assert.Equal(t, "09:05 PM", FormatTime("2024-03-05T21:05:30.123Z", time.UTC))

	est := time.FixedZone("EST", -5*3600)
	assert.Equal(t, "March 4, 2024", FormatDate("2024-03-05T02:00:00Z", est))

	assert.Empty(t, FormatDate("not a date", time.UTC))
	assert.Empty(t, FormatTime("", time.UTC))
}

func TestTimeFunction(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	boom := errors.New("boom")
	wrapped := TimeFunction(logger, "export", func() error { return boom })

	assert.Equal(t, boom, wrapped())
	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, "export executed in")
	assert.Contains(t, hook.LastEntry().Data, "elapsed_ms")
}
