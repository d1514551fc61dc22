// Package conversation holds the ordered chat shown to the learner and the
// short history window sent to the model.
package conversation

import (
	"slices"
	"sync"

	"language-learner/internal/domain"
)

const (
	// PlaceholderText is shown while a reply is being fetched.
	PlaceholderText = "Processing..."
	// HistoryWindow is how many recent messages are sent to the model.
	HistoryWindow = 4
)

type EventKind int

const (
	EventAppended EventKind = iota + 1
	EventRemoved
	EventReplaced
)

func (k EventKind) String() string {
	switch k {
	case EventAppended:
		return "appended"
	case EventRemoved:
		return "removed"
	case EventReplaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// Event describes one change to the message list.
type Event struct {
	Kind    EventKind
	Message domain.Message
}

type Listener func(Event)

// Conversation is safe for concurrent use. Listeners run on the goroutine
// that made the change, after the lock is released.
type Conversation struct {
	mu            sync.Mutex
	messages      []domain.Message
	history       []domain.Message
	welcomeID     string
	placeholderID string
	listeners     map[int]Listener
	nextListener  int
}

// New starts a conversation with a bot welcome message. The welcome is shown
// but never sent to the model.
func New(welcome string) *Conversation {
	w := domain.NewMessage(welcome, domain.SenderBot)
	return &Conversation{
		messages:  []domain.Message{w},
		welcomeID: w.ID,
		listeners: map[int]Listener{},
	}
}

// Append adds m to the end of the list and to the history window, dropping
// the oldest history entry once the window is full.
func (c *Conversation) Append(m domain.Message) {
	c.mu.Lock()
	c.messages = append(c.messages, m)
	if len(c.history) >= HistoryWindow {
		c.history = c.history[1:]
	}
	c.history = append(c.history, m)
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	notify(listeners, Event{Kind: EventAppended, Message: m})
}

// Remove deletes the message with id from the visible list. It reports
// whether a message was removed.
func (c *Conversation) Remove(id string) bool {
	c.mu.Lock()
	removed, ok := c.removeLocked(id)
	if ok && id == c.placeholderID {
		c.placeholderID = ""
	}
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	if ok {
		notify(listeners, Event{Kind: EventRemoved, Message: removed})
	}
	return ok
}

// ReplaceWelcome swaps the welcome text in place, or puts a new welcome at
// the top if the old one was removed.
func (c *Conversation) ReplaceWelcome(text string) {
	c.mu.Lock()
	idx := c.indexLocked(c.welcomeID)
	var w domain.Message
	if idx >= 0 {
		c.messages[idx].Text = text
		w = c.messages[idx]
	} else {
		w = domain.NewMessage(text, domain.SenderBot)
		c.welcomeID = w.ID
		c.messages = slices.Insert(c.messages, 0, w)
	}
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	notify(listeners, Event{Kind: EventReplaced, Message: w})
}

// Messages returns a copy of the visible list.
func (c *Conversation) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.messages)
}

// History returns a copy of the model history window, oldest first.
func (c *Conversation) History() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.history)
}

// BeginFetch shows the placeholder. It returns false if a fetch is already
// in flight.
func (c *Conversation) BeginFetch() bool {
	c.mu.Lock()
	if c.placeholderID != "" {
		c.mu.Unlock()
		return false
	}
	p := domain.NewMessage(PlaceholderText, domain.SenderBot)
	c.placeholderID = p.ID
	c.messages = append(c.messages, p)
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	notify(listeners, Event{Kind: EventAppended, Message: p})
	return true
}

// EndFetch removes the placeholder. It is a no-op when no fetch is running.
func (c *Conversation) EndFetch() {
	c.mu.Lock()
	id := c.placeholderID
	c.placeholderID = ""
	removed, ok := c.removeLocked(id)
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	if ok {
		notify(listeners, Event{Kind: EventRemoved, Message: removed})
	}
}

func (c *Conversation) Fetching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.placeholderID != ""
}

// Subscribe registers fn for future changes and returns a func that
// unregisters it.
func (c *Conversation) Subscribe(fn Listener) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

func (c *Conversation) removeLocked(id string) (domain.Message, bool) {
	if id == "" {
		return domain.Message{}, false
	}
	idx := c.indexLocked(id)
	if idx < 0 {
		return domain.Message{}, false
	}
	removed := c.messages[idx]
	c.messages = slices.Delete(c.messages, idx, idx+1)
	return removed, true
}

func (c *Conversation) indexLocked(id string) int {
	return slices.IndexFunc(c.messages, func(m domain.Message) bool { return m.ID == id })
}

func (c *Conversation) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		out = append(out, l)
	}
	return out
}

func notify(listeners []Listener, e Event) {
	for _, l := range listeners {
		l(e)
	}
}
