package chat

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"ragchat/internal/retrieval"
)

// Interaction is one immutable question/answer turn. CitationInfo is
// resolved when the turn is recorded; later retrieval calls must not
// change it.
type Interaction struct {
	Question     string               `json:"question"`
	Answer       string               `json:"answer"`
	Timestamp    time.Time            `json:"timestamp"`
	Citations    []int                `json:"citations,omitempty"`
	CitationInfo []retrieval.Citation `json:"citation_info,omitempty"`
}

// Message is the flattened role/content view of one side of a turn.
type Message struct {
	Role         string               `json:"role"`
	Content      string               `json:"content"`
	Timestamp    time.Time            `json:"timestamp"`
	CitationInfo []retrieval.Citation `json:"citation_info,omitempty"`
}

type session struct {
	history       []Interaction
	lastContext   string
	lastCitations []int
	farewell      bool
}

// Store holds per-session conversation state. Sessions are created on
// first reference and evicted after the configured idle TTL (a zero
// TTL keeps them until explicitly cleared).
type Store struct {
	mu           sync.Mutex
	sessions     *gocache.Cache
	historyLimit int
}

// NewStore creates a session store keeping at most historyLimit turns
// per session.
func NewStore(historyLimit int, ttl time.Duration) *Store {
	if historyLimit <= 0 {
		historyLimit = 10
	}
	var c *gocache.Cache
	if ttl <= 0 {
		c = gocache.New(gocache.NoExpiration, 0)
	} else {
		c = gocache.New(ttl, 2*ttl)
	}
	return &Store{sessions: c, historyLimit: historyLimit}
}

// NewSessionID mints an opaque session identifier.
func NewSessionID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "session_" + hex[:10]
}

// Exists reports whether a session has been created.
func (s *Store) Exists(id string) bool {
	_, ok := s.sessions.Get(id)
	return ok
}

// Create ensures a session exists for the given id.
func (s *Store) Create(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreate(id)
}

// getOrCreate must be called with s.mu held.
func (s *Store) getOrCreate(id string) *session {
	if v, ok := s.sessions.Get(id); ok {
		return v.(*session)
	}
	sess := &session{lastCitations: []int{}}
	s.sessions.SetDefault(id, sess)
	return sess
}

// AddInteraction appends a turn and truncates the history to the
// configured limit, dropping the oldest turns first. Citation info is
// stored as given; callers resolve it against the retrieval result
// that produced the answer before the next retrieval overwrites it.
func (s *Store) AddInteraction(id, question, answer, context string, citations []int, citationInfo []retrieval.Citation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreate(id)
	sess.history = append(sess.history, Interaction{
		Question:     question,
		Answer:       answer,
		Timestamp:    time.Now(),
		Citations:    citations,
		CitationInfo: citationInfo,
	})
	if context != "" {
		sess.lastContext = context
	}
	if len(citations) > 0 {
		sess.lastCitations = citations
	}
	if len(sess.history) > s.historyLimit {
		sess.history = sess.history[len(sess.history)-s.historyLimit:]
	}
	s.sessions.SetDefault(id, sess)
}

// History returns an ordered copy of the session's turns.
func (s *Store) History(id string) []Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreate(id)
	out := make([]Interaction, len(sess.history))
	copy(out, sess.history)
	return out
}

// Messages returns the session's history flattened into alternating
// user/assistant messages.
func (s *Store) Messages(id string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.sessions.Get(id); ok {
		sess := v.(*session)
		messages := make([]Message, 0, 2*len(sess.history))
		for _, turn := range sess.history {
			messages = append(messages, Message{
				Role:      "user",
				Content:   turn.Question,
				Timestamp: turn.Timestamp,
			})
			messages = append(messages, Message{
				Role:         "assistant",
				Content:      turn.Answer,
				Timestamp:    turn.Timestamp,
				CitationInfo: turn.CitationInfo,
			})
		}
		return messages
	}
	return []Message{}
}

// MarkFarewell flags the session as conversationally closed.
func (s *Store) MarkFarewell(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreate(id)
	sess.farewell = true
	s.sessions.SetDefault(id, sess)
}

// IsFarewell reports whether the session has received a farewell.
func (s *Store) IsFarewell(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.sessions.Get(id); ok {
		return v.(*session).farewell
	}
	return false
}

// Clear removes the session entirely.
func (s *Store) Clear(id string) {
	s.sessions.Delete(id)
}
