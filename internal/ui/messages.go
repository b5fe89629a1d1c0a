// Package ui holds the presentation collaborators of the portal: transient
// messages, page navigation and the login-state widget. They are thin,
// side-effecting helpers with console implementations.
package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// MessageKind is the style of a transient message
type MessageKind string

const (
	// Success styles a confirmation message
	Success MessageKind = "success"
	// Error styles an error message
	Error MessageKind = "error"
)

// Message is a transient message shown to the user
type Message struct {
	Text string
	Kind MessageKind
}

// Notifier shows transient messages to the user
type Notifier interface {
	ShowSuccess(message string)
	ShowError(message string)
}

// Timer runs fn once after d. There is no way to cancel it.
type Timer interface {
	AfterFunc(d time.Duration, fn func())
}

// ConsoleNotifier prints messages to a writer. Only one message is shown at a
// time: a new message replaces the current one, and each message is dismissed
// after the configured timeout.
type ConsoleNotifier struct {
	mu      sync.Mutex
	out     io.Writer
	timer   Timer
	timeout time.Duration
	current *Message
	log     logrus.FieldLogger
}

// NewConsoleNotifier creates a notifier writing to out. Messages are
// dismissed through timer after timeout; a zero timeout keeps them.
func NewConsoleNotifier(out io.Writer, timer Timer, timeout time.Duration) *ConsoleNotifier {
	return &ConsoleNotifier{
		out:     out,
		timer:   timer,
		timeout: timeout,
		log:     logrus.StandardLogger(),
	}
}

// ShowSuccess implements Notifier
func (n *ConsoleNotifier) ShowSuccess(message string) {
	n.show(Message{Text: message, Kind: Success})
}

// ShowError implements Notifier
func (n *ConsoleNotifier) ShowError(message string) {
	n.show(Message{Text: message, Kind: Error})
}

// Current returns the message on screen, if any
func (n *ConsoleNotifier) Current() (Message, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Message{}, false
	}
	return *n.current, true
}

func (n *ConsoleNotifier) show(msg Message) {
	n.mu.Lock()
	shown := &msg
	n.current = shown
	if _, err := fmt.Fprintf(n.out, "[%s] %s\n", msg.Kind, msg.Text); err != nil {
		n.log.WithError(err).Warn("Failed to print message")
	}
	n.mu.Unlock()

	if n.timeout > 0 && n.timer != nil {
		n.timer.AfterFunc(n.timeout, func() {
			n.dismiss(shown)
		})
	}
}

// dismiss removes msg unless it has already been replaced
func (n *ConsoleNotifier) dismiss(msg *Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == msg {
		n.current = nil
	}
}
