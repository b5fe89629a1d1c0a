package ui

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Navigator moves the user to another page
type Navigator interface {
	Redirect(target string, delay time.Duration)
}

// ConsoleNavigator records the current page. Delayed redirects are scheduled
// on a Timer.
type ConsoleNavigator struct {
	mu       sync.Mutex
	location string
	timer    Timer
	log      logrus.FieldLogger
}

// NewConsoleNavigator creates a navigator starting at page start
func NewConsoleNavigator(start string, timer Timer) *ConsoleNavigator {
	return &ConsoleNavigator{
		location: start,
		timer:    timer,
		log:      logrus.StandardLogger(),
	}
}

// Redirect implements Navigator
func (n *ConsoleNavigator) Redirect(target string, delay time.Duration) {
	if delay <= 0 || n.timer == nil {
		n.navigate(target)
		return
	}
	n.timer.AfterFunc(delay, func() {
		n.navigate(target)
	})
}

// Location returns the current page
func (n *ConsoleNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

func (n *ConsoleNavigator) navigate(target string) {
	n.mu.Lock()
	n.location = target
	n.mu.Unlock()
	n.log.WithField("target", target).Debug("Navigated")
}
