package trace

import (
	"strconv"
	"sync"
	"time"
)

// Heartbeat emits a run-scope event at a fixed interval. Each beat
// carries the number of events seen since the previous one; a run of
// beats with events=0 means the run is stuck inside the last open span.
type Heartbeat struct {
	tracer Tracer
	every  time.Duration
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// StartHeartbeat starts beating on t. It returns nil when tracing is off
// or the interval is not positive; Stop on nil is safe.
func StartHeartbeat(t Tracer, every time.Duration) *Heartbeat {
	if t == nil || !t.Enabled() || every <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer: t,
		every:  every,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Heartbeat) loop() {
	defer close(h.done)
	tick := time.NewTicker(h.every)
	defer tick.Stop()

	var beat int
	last := eventSeq.Load()
	for {
		select {
		case <-h.stop:
			return
		case now := <-tick.C:
			beat++
			seen := eventSeq.Load()
			h.tracer.Emit(&Event{
				Time:   now,
				Kind:   KindHeartbeat,
				Scope:  ScopeRun,
				Name:   "heartbeat",
				Detail: "#" + strconv.Itoa(beat),
				Extra:  map[string]string{"events": strconv.FormatUint(seen-last, 10)},
			})
			// the beat itself takes a sequence number
			last = eventSeq.Load()
		}
	}
}

// Stop ends the heartbeat and waits for the goroutine to exit.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}
