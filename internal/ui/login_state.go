package ui

import (
	"fmt"
	"sync"

	"github.com/example/examportal/pkg/models"
)

// LoginStateView mirrors the navigation logout button: visible with the user's
// name while someone is logged in, hidden otherwise
type LoginStateView struct {
	mu      sync.Mutex
	visible bool
	label   string
}

// NewLoginStateView creates a hidden view
func NewLoginStateView() *LoginStateView {
	return &LoginStateView{}
}

// Refresh updates the view for the current user, nil meaning logged out
func (v *LoginStateView) Refresh(user *models.User) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if user == nil {
		v.visible = false
		v.label = ""
		return
	}
	v.visible = true
	v.label = fmt.Sprintf("Logout (%s)", user.Name)
}

// Visible reports whether the logout button is shown
func (v *LoginStateView) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}

// Label returns the logout button text
func (v *LoginStateView) Label() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.label
}
