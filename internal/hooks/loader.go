package hooks

import (
	"context"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultPriority is used when no priority is given. Lower runs first.
	DefaultPriority = 10
	// DefaultAcceptedArgs is the number of arguments passed when not configured.
	DefaultAcceptedArgs = 1
)

// Action is an action callback.
type Action func(ctx context.Context, args ...any) error

// Filter is a filter callback. It returns the filtered value.
type Filter func(ctx context.Context, value any, args ...any) any

// Kind tells actions and filters apart.
type Kind int

// Binding kinds.
const (
	KindAction Kind = iota
	KindFilter
)

func (k Kind) String() string {
	if k == KindFilter {
		return "filter"
	}

	return "action"
}

// Binding connects a callback to an event.
type Binding struct {
	Kind         Kind
	Event        Event
	Target       string // component.method, used in logs and errors
	Action       Action
	Filter       Filter
	Priority     int
	AcceptedArgs int
}

// Option configures a Binding.
type Option func(*Binding)

// WithPriority sets the binding priority.
func WithPriority(priority int) Option {
	return func(b *Binding) {
		b.Priority = priority
	}
}

// WithAcceptedArgs sets how many arguments the callback receives.
func WithAcceptedArgs(n int) Option {
	return func(b *Binding) {
		b.AcceptedArgs = n
	}
}

// Registrar receives the bindings of a Loader. Host implements it.
type Registrar interface {
	AddAction(event Event, target string, cb Action, priority, acceptedArgs int)
	AddFilter(event Event, target string, cb Filter, priority, acceptedArgs int)
}

// Loader accumulates action and filter bindings in registration order.
// It never dispatches, Run hands everything to a Registrar.
type Loader struct {
	actions []Binding
	filters []Binding
}

// NewLoader returns an empty Loader.
func NewLoader() *Loader {
	return &Loader{}
}

func newBinding(kind Kind, event Event, target string, opts []Option) Binding {
	b := Binding{
		Kind:         kind,
		Event:        event,
		Target:       target,
		Priority:     DefaultPriority,
		AcceptedArgs: DefaultAcceptedArgs,
	}

	for _, opt := range opts {
		opt(&b)
	}

	return b
}

// AddAction appends an action binding.
func (l *Loader) AddAction(event Event, target string, cb Action, opts ...Option) {
	b := newBinding(KindAction, event, target, opts)
	b.Action = cb
	l.actions = append(l.actions, b)
}

// AddFilter appends a filter binding.
func (l *Loader) AddFilter(event Event, target string, cb Filter, opts ...Option) {
	b := newBinding(KindFilter, event, target, opts)
	b.Filter = cb
	l.filters = append(l.filters, b)
}

// Actions returns a copy of the action bindings.
func (l *Loader) Actions() []Binding {
	return append([]Binding(nil), l.actions...)
}

// Filters returns a copy of the filter bindings.
func (l *Loader) Filters() []Binding {
	return append([]Binding(nil), l.filters...)
}

// UnfiredActions returns the action bindings whose event is not fired by the host.
func (l *Loader) UnfiredActions() []Binding {
	var out []Binding

	for _, b := range l.actions {
		if !IsKnownEvent(b.Event) {
			out = append(out, b)
		}
	}

	return out
}

// Run registers all filters and then all actions with r.
// Actions bound to events nothing fires are registered too, with a warning.
func (l *Loader) Run(r Registrar) {
	for _, b := range l.UnfiredActions() {
		log.Warn().Str("event", string(b.Event)).Str("target", b.Target).Msg("action bound to an event that is never fired")
	}

	for _, b := range l.filters {
		r.AddFilter(b.Event, b.Target, b.Filter, b.Priority, b.AcceptedArgs)
	}

	for _, b := range l.actions {
		r.AddAction(b.Event, b.Target, b.Action, b.Priority, b.AcceptedArgs)
	}
}
