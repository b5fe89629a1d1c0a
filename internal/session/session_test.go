package session

import (
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/examportal/internal/database"
	"github.com/example/examportal/internal/ui"
	"github.com/example/examportal/pkg/models"
)

type fakeNotifier struct {
	errors    []string
	successes []string
}

func (n *fakeNotifier) ShowSuccess(msg string) { n.successes = append(n.successes, msg) }
func (n *fakeNotifier) ShowError(msg string)   { n.errors = append(n.errors, msg) }

type redirect struct {
	target string
	delay  time.Duration
}

type fakeNavigator struct {
	redirects []redirect
}

func (n *fakeNavigator) Redirect(target string, delay time.Duration) {
	n.redirects = append(n.redirects, redirect{target, delay})
}

func newTestManager(t *testing.T) (*Manager, *fakeNotifier, *fakeNavigator) {
	t.Helper()
	db, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger, _ := logtest.NewNullLogger()
	store := database.NewKeyValueStore(db, "test", database.WithLogger(logger))
	notifier := &fakeNotifier{}
	navigator := &fakeNavigator{}
	return NewManager(store, notifier, navigator, DefaultOptions()), notifier, navigator
}

func TestLoginAndCurrentUser(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, ok := m.CurrentUser()
	assert.False(t, ok)
	assert.False(t, m.IsLoggedIn())

	user := models.User{ID: "S1", Name: "Ann", Extra: map[string]interface{}{"grade": "11"}}
	require.True(t, m.Login(user))

	got, ok := m.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, user, *got)
	assert.True(t, m.IsLoggedIn())
}

func TestLoginOverwrites(t *testing.T) {
	m, _, _ := newTestManager(t)

	m.Login(models.User{ID: "S1", Name: "Ann"})
	m.Login(models.User{ID: "S2", Name: "Bob"})

	got, ok := m.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "S2", got.ID)
}

func TestLogoutIsIdempotent(t *testing.T) {
	m, _, nav := newTestManager(t)

	m.Login(models.User{ID: "S1", Name: "Ann"})
	m.Logout()
	_, ok := m.CurrentUser()
	assert.False(t, ok)

	m.Logout()
	_, ok = m.CurrentUser()
	assert.False(t, ok)

	assert.Equal(t, []redirect{{"index.html", 0}, {"index.html", 0}}, nav.redirects)
}

func TestRequireAuthLoggedOut(t *testing.T) {
	m, notifier, nav := newTestManager(t)

	assert.False(t, m.RequireAuth("login.html?next=results"))
	assert.Equal(t, []string{LoginRequiredMessage}, notifier.errors)
	assert.Equal(t, []redirect{{"login.html?next=results", 2 * time.Second}}, nav.redirects)
}

func TestRequireAuthDefaultTarget(t *testing.T) {
	m, _, nav := newTestManager(t)

	assert.False(t, m.RequireAuth(""))
	require.Len(t, nav.redirects, 1)
	assert.Equal(t, "login.html", nav.redirects[0].target)
}

func TestRequireAuthLoggedIn(t *testing.T) {
	m, notifier, nav := newTestManager(t)
	m.Login(models.User{ID: "S1", Name: "Ann"})

	assert.True(t, m.RequireAuth("login.html"))
	assert.Empty(t, notifier.errors)
	assert.Empty(t, nav.redirects)
}

func TestRequireAuthWithoutCollaborators(t *testing.T) {
	db, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	m := NewManager(database.NewKeyValueStore(db, "test"), nil, nil, DefaultOptions())
	assert.NotPanics(t, func() {
		assert.False(t, m.RequireAuth(""))
		m.Logout()
	})
}

func TestObserversFollowLoginState(t *testing.T) {
	m, _, _ := newTestManager(t)
	view := ui.NewLoginStateView()
	m.Observe(view)
	assert.False(t, view.Visible())

	m.Login(models.User{ID: "S1", Name: "Ann"})
	assert.True(t, view.Visible())
	assert.Equal(t, "Logout (Ann)", view.Label())

	m.Logout()
	assert.False(t, view.Visible())
}

func TestStoredNullUserIsLoggedOut(t *testing.T) {
	m, _, _ := newTestManager(t)

	require.True(t, m.store.Set(CurrentUserKey, nil))

	user, ok := m.CurrentUser()
	assert.False(t, ok)
	assert.Nil(t, user)
	assert.False(t, m.IsLoggedIn())
	assert.False(t, m.RequireAuth(""))
}
