package chat

import (
	"sync"

	"go.uber.org/zap"
)

// dispatcher routes decoded events to registered subscribers. Registration
// and dispatch may run concurrently; the handler set is snapshotted before
// iteration so a handler can unsubscribe itself (or anyone else) mid-event.
type dispatcher struct {
	log *zap.Logger

	mu       sync.Mutex
	handlers map[EventKind]map[uint64]Handler
	nextID   uint64
}

func newDispatcher(log *zap.Logger) *dispatcher {
	return &dispatcher{
		log:      log,
		handlers: make(map[EventKind]map[uint64]Handler),
	}
}

// on registers handler for kind and returns an idempotent unsubscribe
// function that removes exactly this registration.
func (d *dispatcher) on(kind EventKind, handler Handler) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	set, ok := d.handlers[kind]
	if !ok {
		set = make(map[uint64]Handler)
		d.handlers[kind] = set
	}

	id := d.nextID
	d.nextID++
	set[id] = handler

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(set, id)
	}
}

// dispatchFrame decodes one raw frame and fans it out. Malformed frames are
// logged and dropped.
func (d *dispatcher) dispatchFrame(data []byte) {
	ev, err := decodeFrame(data)
	if err != nil {
		d.log.Warn("dropping malformed frame", zap.Error(err))
		return
	}
	d.dispatch(ev)
}

// dispatch invokes every subscriber registered for ev.Kind, each exactly
// once, isolating panics so one bad handler cannot starve the rest.
func (d *dispatcher) dispatch(ev Event) {
	d.mu.Lock()
	set := d.handlers[ev.Kind]
	snapshot := make([]Handler, 0, len(set))
	for _, h := range set {
		snapshot = append(snapshot, h)
	}
	d.mu.Unlock()

	for _, h := range snapshot {
		d.invoke(h, ev)
	}
}

func (d *dispatcher) invoke(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("event handler panicked",
				zap.String("kind", string(ev.Kind)),
				zap.Any("panic", r))
		}
	}()
	h(ev)
}
