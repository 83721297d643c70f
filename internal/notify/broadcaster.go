package notify

import (
	"sync"
	"time"

	"github.com/ironvale/configcore/internal/configstore"
	"github.com/ironvale/configcore/internal/infrastructure/logging"
)

// EventTypeConfigurationChanged is the type tag carried by every change
// event.
const EventTypeConfigurationChanged = "configuration_changed"

// Event is the wire form of one configuration change.
type Event struct {
	Type      string    `json:"type"`
	Data      EventData `json:"data"`
	Timestamp string    `json:"timestamp"`
}

// EventData carries the change payload. Values of sensitive entries are
// masked before the event is built.
type EventData struct {
	Key         string `json:"key"`
	OldValue    any    `json:"old_value"`
	NewValue    any    `json:"new_value"`
	UserID      string `json:"user_id,omitempty"`
	Service     string `json:"service,omitempty"`
	Environment string `json:"environment,omitempty"`
}

// Sink consumes change events. BroadcastAsync must not block: delivery
// happens on the broadcaster's worker goroutine, and a sink that needs to
// wait on the network should do so on its own goroutines.
type Sink interface {
	BroadcastAsync(evt Event)
}

// Broadcaster implements configstore.ChangeNotifier over an unbounded
// queue and a single background worker, so the mutation path only ever
// pays for an append.
type Broadcaster struct {
	logger *logging.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Event
	sinks  []Sink
	closed bool

	done chan struct{}
}

// NewBroadcaster starts a broadcaster delivering to the given sinks.
func NewBroadcaster(logger *logging.Logger, sinks ...Sink) *Broadcaster {
	if logger == nil {
		logger = logging.Default()
	}
	b := &Broadcaster{
		logger: logger.With("component", "notify"),
		sinks:  sinks,
		done:   make(chan struct{}),
	}
	b.cond = sync.NewCond(&b.mu)
	go b.run()
	return b
}

// AddSink registers another sink. Events already queued are delivered to
// it too.
func (b *Broadcaster) AddSink(s Sink) {
	b.mu.Lock()
	b.sinks = append(b.sinks, s)
	b.mu.Unlock()
}

// NotifyChange builds the outbound event for one change record and
// enqueues it. Sensitive values are masked here, before anything leaves
// the engine. Never blocks.
func (b *Broadcaster) NotifyChange(rec configstore.ChangeRecord, sensitive bool) {
	evt := Event{
		Type: EventTypeConfigurationChanged,
		Data: EventData{
			Key:         rec.Key,
			OldValue:    rec.OldValue,
			NewValue:    rec.NewValue,
			UserID:      rec.User,
			Service:     rec.Service,
			Environment: rec.Environment,
		},
		Timestamp: rec.Timestamp.UTC().Format(time.RFC3339),
	}
	if sensitive {
		evt.Data.OldValue = maskAny(rec.OldValue)
		evt.Data.NewValue = maskAny(rec.NewValue)
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.queue = append(b.queue, evt)
	b.cond.Signal()
	b.mu.Unlock()
}

// run is the worker loop: pop one event, deliver to every sink, repeat.
// On Close it drains the remaining queue before exiting.
func (b *Broadcaster) run() {
	defer close(b.done)
	for {
		b.mu.Lock()
		for len(b.queue) == 0 && !b.closed {
			b.cond.Wait()
		}
		if len(b.queue) == 0 {
			b.mu.Unlock()
			return
		}
		evt := b.queue[0]
		b.queue = b.queue[1:]
		sinks := make([]Sink, len(b.sinks))
		copy(sinks, b.sinks)
		b.mu.Unlock()

		for _, s := range sinks {
			b.deliver(s, evt)
		}
	}
}

// deliver hands one event to one sink, containing any panic so a broken
// sink cannot kill the worker.
func (b *Broadcaster) deliver(s Sink, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("notification sink panicked", "key", evt.Data.Key, "panic", r)
		}
	}()
	s.BroadcastAsync(evt)
}

// Close stops accepting events, drains the queue, and waits for the worker
// to exit.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	b.closed = true
	b.cond.Broadcast()
	b.mu.Unlock()
	<-b.done
}

// maskAny masks a value for broadcast. Strings mask positionally; any
// other non-nil value is fully redacted.
func maskAny(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return configstore.MaskString(t)
	default:
		return "***"
	}
}
