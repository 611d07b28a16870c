package core

import "time"

// TimerKind identifies which matchmaking timer fired.
type TimerKind int

const (
	// TimerFallback relaxes a topic-restricted entry to match anyone.
	TimerFallback TimerKind = iota
	// TimerWait abandons an entry that waited too long.
	TimerWait
)

// WaitingEntry is a queued, unmatched match request. At most one entry
// exists per connection at any time.
type WaitingEntry struct {
	ID       string
	Topic    string
	JoinedAt time.Time
	// Relaxed reports that the fallback deadline passed and the entry is
	// now matchable by peers with any topic, not only its own.
	Relaxed bool

	fallback *time.Timer
	wait     *time.Timer
}

// Matchmaker owns the waiting queue and the topic-match / fallback /
// timeout policy. All methods must be called from the hub goroutine;
// timers fire on their own goroutines but only post ticks back through
// the tick callback, so every queue mutation stays serialized.
type Matchmaker struct {
	fallbackDelay time.Duration
	waitTimeout   time.Duration

	// live is the connection-registry oracle; stale entries it rejects
	// are purged as a side effect of queue scans.
	live func(id string) bool
	// tick re-enters the hub loop when a timer fires.
	tick func(kind TimerKind, id string)

	queue []*WaitingEntry // FIFO by JoinedAt
	byID  map[string]*WaitingEntry
}

// NewMatchmaker constructs a matchmaker with the given timing policy.
func NewMatchmaker(fallbackDelay, waitTimeout time.Duration, live func(string) bool, tick func(TimerKind, string)) *Matchmaker {
	return &Matchmaker{
		fallbackDelay: fallbackDelay,
		waitTimeout:   waitTimeout,
		live:          live,
		tick:          tick,
		byID:          make(map[string]*WaitingEntry),
	}
}

// RequestMatch attempts to pair the connection immediately, or enqueues
// it with timers armed. A nil partner with nil error means enqueued.
// The returned topic is the one the new room should carry.
//
// A connection that already holds a waiting entry is rejected with
// ErrAlreadyQueued rather than silently re-queued, so its timers are
// never orphaned.
func (m *Matchmaker) RequestMatch(id, topic string) (partner *WaitingEntry, roomTopic string, err error) {
	if _, exists := m.byID[id]; exists {
		return nil, "", ErrAlreadyQueued
	}

	if topic != "" {
		if p := m.scanTopic(topic, id); p != nil {
			m.remove(p)
			return p, topic, nil
		}
	} else {
		if p := m.scanAny(id); p != nil {
			m.remove(p)
			return p, p.Topic, nil
		}
	}

	m.enqueue(id, topic)
	return nil, "", nil
}

// OnFallbackTimeout marks the entry as topic-relaxed and immediately
// retries the queue ignoring topics. Safe to call for an entry that was
// already matched or cancelled; the tick is then a no-op.
func (m *Matchmaker) OnFallbackTimeout(id string) (partner *WaitingEntry, roomTopic string, matched bool) {
	entry, ok := m.byID[id]
	if !ok {
		return nil, "", false
	}
	entry.Relaxed = true

	p := m.scanAny(id)
	if p == nil {
		return nil, "", false
	}
	m.remove(p)
	m.remove(entry)

	topic := p.Topic
	if topic == "" {
		topic = entry.Topic
	}
	return p, topic, true
}

// OnWaitTimeout removes the entry after the overall wait deadline.
// Returns false if the entry was already matched or cancelled.
func (m *Matchmaker) OnWaitTimeout(id string) bool {
	entry, ok := m.byID[id]
	if !ok {
		return false
	}
	m.remove(entry)
	return true
}

// Cancel removes any waiting entry for the connection and disarms its
// timers. No-op if no entry exists.
func (m *Matchmaker) Cancel(id string) {
	if entry, ok := m.byID[id]; ok {
		m.remove(entry)
	}
}

// Shutdown cancels all entries and their timers for clean teardown.
func (m *Matchmaker) Shutdown() {
	for _, entry := range m.queue {
		entry.stopTimers()
	}
	m.queue = nil
	m.byID = make(map[string]*WaitingEntry)
}

// Len returns the number of waiting entries.
func (m *Matchmaker) Len() int {
	return len(m.queue)
}

// scanTopic returns the first live entry with an equal topic, purging
// stale entries encountered along the way.
func (m *Matchmaker) scanTopic(topic, selfID string) *WaitingEntry {
	return m.scan(selfID, func(e *WaitingEntry) bool {
		return e.Topic == topic
	})
}

// scanAny returns the first live entry matchable regardless of topic.
// Topic-restricted entries whose fallback deadline has not passed are
// still only matchable by topic and are skipped here.
func (m *Matchmaker) scanAny(selfID string) *WaitingEntry {
	return m.scan(selfID, func(e *WaitingEntry) bool {
		return e.Topic == "" || e.Relaxed
	})
}

func (m *Matchmaker) scan(selfID string, want func(*WaitingEntry) bool) *WaitingEntry {
	for i := 0; i < len(m.queue); {
		e := m.queue[i]
		if e.ID == selfID {
			i++
			continue
		}
		if !m.live(e.ID) {
			// Vanished without a disconnect event; drop it.
			m.remove(e)
			continue
		}
		if want(e) {
			return e
		}
		i++
	}
	return nil
}

func (m *Matchmaker) enqueue(id, topic string) {
	entry := &WaitingEntry{
		ID:       id,
		Topic:    topic,
		JoinedAt: time.Now(),
	}
	if topic != "" {
		entry.fallback = time.AfterFunc(m.fallbackDelay, func() {
			m.tick(TimerFallback, id)
		})
	}
	entry.wait = time.AfterFunc(m.waitTimeout, func() {
		m.tick(TimerWait, id)
	})
	m.queue = append(m.queue, entry)
	m.byID[id] = entry
}

func (m *Matchmaker) remove(entry *WaitingEntry) {
	entry.stopTimers()
	delete(m.byID, entry.ID)
	for i, e := range m.queue {
		if e == entry {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			break
		}
	}
}

func (e *WaitingEntry) stopTimers() {
	if e.fallback != nil {
		e.fallback.Stop()
	}
	if e.wait != nil {
		e.wait.Stop()
	}
}
