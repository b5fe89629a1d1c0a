// Package session tracks the logged-in portal user.
//
// The session is a single client-trusted user record kept in the key-value
// store. Login overwrites it, Logout removes it; no credentials are checked
// here.
package session

import (
	"time"

	"github.com/example/examportal/internal/database"
	"github.com/example/examportal/internal/ui"
	"github.com/example/examportal/pkg/models"
)

// CurrentUserKey is the storage key of the session record
const CurrentUserKey = "currentUser"

// LoginRequiredMessage is shown when a guarded page is opened while logged out
const LoginRequiredMessage = "Please login to access this page."

// LoginStateObserver is refreshed after every login and logout. user is nil
// when nobody is logged in.
type LoginStateObserver interface {
	Refresh(user *models.User)
}

// Options configures a Manager
type Options struct {
	LoginPage     string        // Default RequireAuth redirect target
	HomePage      string        // Where Logout sends the user
	RedirectDelay time.Duration // Delay before the RequireAuth redirect
}

// DefaultOptions returns the portal's default pages and delay
func DefaultOptions() Options {
	return Options{
		LoginPage:     "login.html",
		HomePage:      "index.html",
		RedirectDelay: 2 * time.Second,
	}
}

// Manager handles login state
type Manager struct {
	store     *database.KeyValueStore
	notifier  ui.Notifier
	navigator ui.Navigator
	opts      Options
	observers []LoginStateObserver
}

// NewManager creates a session manager over store
func NewManager(store *database.KeyValueStore, notifier ui.Notifier, navigator ui.Navigator, opts Options) *Manager {
	return &Manager{
		store:     store,
		notifier:  notifier,
		navigator: navigator,
		opts:      opts,
	}
}

// Observe registers o and refreshes it with the current state
func (m *Manager) Observe(o LoginStateObserver) {
	m.observers = append(m.observers, o)
	user, _ := m.CurrentUser()
	o.Refresh(user)
}

// CurrentUser returns the logged-in user. A stored JSON null counts as
// logged out.
func (m *Manager) CurrentUser() (*models.User, bool) {
	var user *models.User
	if !m.store.Get(CurrentUserKey, &user) || user == nil {
		return nil, false
	}
	return user, true
}

// Login stores user as the current user, replacing any previous one
func (m *Manager) Login(user models.User) bool {
	ok := m.store.Set(CurrentUserKey, user)
	m.refresh()
	return ok
}

// Logout removes the current user and returns to the home page. Logging out
// twice is harmless.
func (m *Manager) Logout() {
	m.store.Remove(CurrentUserKey)
	m.refresh()
	if m.navigator != nil && m.opts.HomePage != "" {
		m.navigator.Redirect(m.opts.HomePage, 0)
	}
}

// IsLoggedIn reports whether a current user is stored
func (m *Manager) IsLoggedIn() bool {
	_, ok := m.CurrentUser()
	return ok
}

// RequireAuth guards a page. When nobody is logged in it tells the user, schedules
// a redirect to redirectTarget (the login page when empty) and returns false.
// Callers must check the result.
func (m *Manager) RequireAuth(redirectTarget string) bool {
	if m.IsLoggedIn() {
		return true
	}
	if redirectTarget == "" {
		redirectTarget = m.opts.LoginPage
	}
	if m.notifier != nil {
		m.notifier.ShowError(LoginRequiredMessage)
	}
	if m.navigator != nil {
		m.navigator.Redirect(redirectTarget, m.opts.RedirectDelay)
	}
	return false
}

func (m *Manager) refresh() {
	user, _ := m.CurrentUser()
	for _, o := range m.observers {
		o.Refresh(user)
	}
}
