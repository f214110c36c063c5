package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"winechat/internal/api"
)

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

type Kind int

const (
	KindPlain Kind = iota
	KindWineList
	KindExperienceList
	KindTastingActions
)

// Message is one conversation entry. Messages are immutable once appended;
// ordering is insertion order and equals chronological order.
type Message struct {
	ID        string
	Role      Role
	Text      string
	Kind      Kind
	CreatedAt time.Time

	// Kind-specific payloads, referenced by index for detail lookups.
	Wines       []api.Wine
	Experiences []api.Experience
}

// Ref identifies one structured record inside a specific message, so a
// detail view can find its record again even after newer lists were
// appended to the conversation.
type Ref struct {
	MessageID string
	Index     int
}

// Conversation holds the ordered message history and the pending-response
// gate shared by the main chat and the tasting sub-chat.
type Conversation struct {
	mu       sync.Mutex
	messages []Message
	pending  bool
	welcome  string // id of the welcome placeholder, empty once removed
	now      func() time.Time
}

func New() *Conversation {
	return &Conversation{now: time.Now}
}

// NewWithWelcome seeds the conversation with the one-time welcome
// placeholder. It is removed when the first user message arrives.
func NewWithWelcome(text string) *Conversation {
	c := New()
	msg := c.fill(Message{Role: RoleBot, Text: text, Kind: KindPlain})
	c.messages = append(c.messages, msg)
	c.welcome = msg.ID
	return c
}

func (c *Conversation) fill(msg Message) Message {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = c.now()
	}
	return msg
}

// Append adds a message at the tail and returns it with id and timestamp
// filled in. The first user message removes the welcome placeholder.
func (c *Conversation) Append(msg Message) Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg = c.fill(msg)
	if msg.Role == RoleUser && c.welcome != "" {
		kept := c.messages[:0]
		for _, m := range c.messages {
			if m.ID != c.welcome {
				kept = append(kept, m)
			}
		}
		c.messages = kept
		c.welcome = ""
	}
	c.messages = append(c.messages, msg)
	return msg
}

func (c *Conversation) AppendUser(text string) Message {
	return c.Append(Message{Role: RoleUser, Text: text, Kind: KindPlain})
}

func (c *Conversation) AppendBot(text string) Message {
	return c.Append(Message{Role: RoleBot, Text: text, Kind: KindPlain})
}

// Messages returns a copy of the history in insertion order.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// MostRecentOfKind returns the last appended message of the given kind.
func (c *Conversation) MostRecentOfKind(kind Kind) (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Kind == kind {
			return c.messages[i], true
		}
	}
	return Message{}, false
}

// ByID resolves a message by its identifier.
func (c *Conversation) ByID(id string) (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].ID == id {
			return c.messages[i], true
		}
	}
	return Message{}, false
}

// BeginPending claims the single logical conversational turn. It returns
// false when a response is already outstanding; the caller must not
// dispatch. Every successful claim must be released with EndPending on all
// exit paths.
func (c *Conversation) BeginPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending {
		return false
	}
	c.pending = true
	return true
}

func (c *Conversation) EndPending() {
	c.mu.Lock()
	c.pending = false
	c.mu.Unlock()
}

func (c *Conversation) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// CanSend reports whether the send control should be enabled for the given
// input text: no response may be outstanding and the text must be non-empty.
func (c *Conversation) CanSend(input string) bool {
	if strings.TrimSpace(input) == "" {
		return false
	}
	return !c.Pending()
}
