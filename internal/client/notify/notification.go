// Package notify shows short-lived status messages.
package notify

import (
	"sync"
	"time"
)

// Kind is the severity of a message.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// DefaultDuration is how long a message stays visible when Show is given no
// duration.
const DefaultDuration = 2 * time.Second

// stopper is the part of *time.Timer a pending hide needs.
type stopper interface {
	Stop() bool
}

// afterFunc is a test seam for time.AfterFunc.
var afterFunc = func(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

// Message is a snapshot of a Notification.
type Message struct {
	Text    string
	Kind    Kind
	Visible bool
}

// Notification is a single message slot shared by the views. The zero value
// is ready to use. A new Show always replaces what is displayed.
type Notification struct {
	mu     sync.Mutex
	msg    Message
	timer  stopper
	gen    uint64
	onHide func(Message)
}

// OnHide registers fn to be called (outside the lock) each time a message is
// hidden by its timer.
func (n *Notification) OnHide(fn func(Message)) {
	n.mu.Lock()
	n.onHide = fn
	n.mu.Unlock()
}

// Current returns the message as it is now.
func (n *Notification) Current() Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.msg
}

// Show displays text on n until d elapses. An empty kind means KindSuccess
// and a non-positive d means DefaultDuration. A hide scheduled by an earlier
// call is cancelled first, so only the latest message's timer can hide it.
func Show(n *Notification, text string, kind Kind, d time.Duration) {
	if kind == "" {
		kind = KindSuccess
	}
	if d <= 0 {
		d = DefaultDuration
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}

	n.gen++
	gen := n.gen
	n.msg = Message{Text: text, Kind: kind, Visible: true}
	n.timer = afterFunc(d, func() { n.hide(gen) })
}

// hide runs from the timer. A timer that already fired when a newer Show
// stopped it carries an outdated gen and does nothing.
func (n *Notification) hide(gen uint64) {
	n.mu.Lock()
	if gen != n.gen {
		n.mu.Unlock()
		return
	}
	n.msg.Visible = false
	n.timer = nil
	msg, fn := n.msg, n.onHide
	n.mu.Unlock()

	if fn != nil {
		fn(msg)
	}
}
