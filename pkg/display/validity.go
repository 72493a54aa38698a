package display

import (
	"sync"

	"github.com/goliatone/go-formpath/pkg/form"
	"github.com/goliatone/go-formpath/pkg/payload"
)

// Validity keeps one custom-validity message per control, the way a browser
// keeps setCustomValidity state. A control's message is cleared the next time
// the control changes.
type Validity struct {
	mu       sync.RWMutex
	messages map[refKey]string
	order    []form.Ref
	form     []string
}

// NewValidity returns an empty Validity sink.
func NewValidity() *Validity {
	return &Validity{messages: make(map[refKey]string)}
}

var _ Sink = (*Validity)(nil)

// Display sets the control's message, replacing any earlier one. Messages
// without a control are collected as form-level messages.
func (v *Validity) Display(ref *form.Ref, messages []string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if ref == nil {
		v.form = payload.MergeFormErrors(v.form, messages...)
		return
	}
	key := keyOf(*ref)
	if _, exists := v.messages[key]; !exists {
		v.order = append(v.order, *ref)
	}
	v.messages[key] = payload.JoinMessages(messages)
}

// Message returns the control's current message, empty when valid.
func (v *Validity) Message(ref form.Ref) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.messages[keyOf(ref)]
}

// Changed clears the control's message.
func (v *Validity) Changed(ref form.Ref) {
	v.mu.Lock()
	defer v.mu.Unlock()

	key := keyOf(ref)
	if _, exists := v.messages[key]; !exists {
		return
	}
	delete(v.messages, key)
	for i, existing := range v.order {
		if keyOf(existing) == key {
			v.order = append(v.order[:i], v.order[i+1:]...)
			break
		}
	}
}

// Invalid lists controls that currently carry a message, in display order.
func (v *Validity) Invalid() []form.Ref {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]form.Ref, len(v.order))
	copy(out, v.order)
	return out
}

// FormMessages returns the form-level messages.
func (v *Validity) FormMessages() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]string, len(v.form))
	copy(out, v.form)
	return out
}

// Reset clears every message.
func (v *Validity) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.messages = make(map[refKey]string)
	v.order = nil
	v.form = nil
}
