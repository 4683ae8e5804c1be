package hooks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
)

type registered struct {
	Binding
	seq int
}

// Host stores bindings per event and dispatches them.
// Callbacks run in priority order, equal priorities in registration order.
type Host struct {
	mu      sync.RWMutex
	seq     int
	actions map[Event][]registered
	filters map[Event][]registered
	fired   map[Event]int
}

// NewHost returns an empty Host.
func NewHost() *Host {
	return &Host{
		actions: make(map[Event][]registered),
		filters: make(map[Event][]registered),
		fired:   make(map[Event]int),
	}
}

func (h *Host) add(table map[Event][]registered, b Binding) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	list := append(table[b.Event], registered{Binding: b, seq: h.seq})

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Priority != list[j].Priority {
			return list[i].Priority < list[j].Priority
		}

		return list[i].seq < list[j].seq
	})

	table[b.Event] = list
}

// AddAction implements Registrar.
func (h *Host) AddAction(event Event, target string, cb Action, priority, acceptedArgs int) {
	if cb == nil {
		return
	}

	h.add(h.actions, Binding{
		Kind:         KindAction,
		Event:        event,
		Target:       target,
		Action:       cb,
		Priority:     priority,
		AcceptedArgs: acceptedArgs,
	})
}

// AddFilter implements Registrar.
func (h *Host) AddFilter(event Event, target string, cb Filter, priority, acceptedArgs int) {
	if cb == nil {
		return
	}

	h.add(h.filters, Binding{
		Kind:         KindFilter,
		Event:        event,
		Target:       target,
		Filter:       cb,
		Priority:     priority,
		AcceptedArgs: acceptedArgs,
	})
}

func (h *Host) snapshot(table map[Event][]registered, event Event) []registered {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return append([]registered(nil), table[event]...)
}

func truncate(args []any, n int) []any {
	if n < 0 {
		n = 0
	}

	if len(args) > n {
		return args[:n]
	}

	return args
}

// DoAction runs every action bound to event. A failing callback does not stop the
// dispatch, all errors are returned combined.
func (h *Host) DoAction(ctx context.Context, event Event, args ...any) error {
	h.mu.Lock()
	h.fired[event]++
	h.mu.Unlock()

	var errs error

	bindings := h.snapshot(h.actions, event)
	log.Trace().Str("event", string(event)).Int("callbacks", len(bindings)).Msg("do action")

	for _, b := range bindings {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}

		if err := b.Action(ctx, truncate(args, b.AcceptedArgs)...); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s %s: %w", event, b.Target, err))
		}
	}

	return errs
}

// ApplyFilters threads value through every filter bound to event and returns the result.
// The value counts as the first accepted argument.
func (h *Host) ApplyFilters(ctx context.Context, event Event, value any, args ...any) any {
	for _, b := range h.snapshot(h.filters, event) {
		value = b.Filter(ctx, value, truncate(args, b.AcceptedArgs-1)...)
	}

	return value
}

// ApplyFiltersString is ApplyFilters for string values. A filter returning a
// non string keeps the previous value.
func (h *Host) ApplyFiltersString(ctx context.Context, event Event, value string, args ...any) string {
	for _, b := range h.snapshot(h.filters, event) {
		out := b.Filter(ctx, value, truncate(args, b.AcceptedArgs-1)...)
		if s, ok := out.(string); ok {
			value = s
		} else {
			log.Warn().Str("filter", string(event)).Str("target", b.Target).Msg("filter returned a non string value")
		}
	}

	return value
}

// DidAction returns how often event was dispatched.
func (h *Host) DidAction(event Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.fired[event]
}

// HasAction reports whether any action is bound to event.
func (h *Host) HasAction(event Event) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.actions[event]) > 0
}

// HasFilter reports whether any filter is bound to event.
func (h *Host) HasFilter(event Event) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.filters[event]) > 0
}

// Targets returns the targets bound to event in dispatch order, actions first.
func (h *Host) Targets(event Event) []string {
	var out []string

	for _, b := range h.snapshot(h.actions, event) {
		out = append(out, b.Target)
	}

	for _, b := range h.snapshot(h.filters, event) {
		out = append(out, b.Target)
	}

	return out
}

// Events returns all events with at least one action or filter, sorted by name.
func (h *Host) Events() []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Event, 0, len(h.actions)+len(h.filters))
	for e := range h.actions {
		out = append(out, e)
	}

	for e := range h.filters {
		if _, ok := h.actions[e]; !ok {
			out = append(out, e)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}
