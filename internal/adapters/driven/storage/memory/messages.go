package memory

import (
	"sync"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driven"
)

// Ensure MessageStore implements the interface.
var _ driven.MessageStore = (*MessageStore)(nil)

// MessageStore keeps the conversation keyed by message ID, so updates stay
// correct while other messages are added or removed.
type MessageStore struct {
	mu     sync.RWMutex
	byID   map[int64]*domain.ChatMessage
	order  []int64
	nextID int64
	errMsg string
}

// NewMessageStore creates an empty message store.
func NewMessageStore() *MessageStore {
	return &MessageStore{
		byID: make(map[int64]*domain.ChatMessage),
	}
}

// Append assigns the next ID and stores msg.
// IDs keep increasing across Clear.
func (s *MessageStore) Append(msg domain.ChatMessage) domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	msg.ID = s.nextID
	stored := msg
	s.byID[msg.ID] = &stored
	s.order = append(s.order, msg.ID)
	return copyMessage(&stored)
}

// Get returns the message with id.
func (s *MessageStore) Get(id int64) (domain.ChatMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.byID[id]
	if !ok {
		return domain.ChatMessage{}, false
	}
	return copyMessage(msg), true
}

// Messages returns the conversation in creation order.
func (s *MessageStore) Messages() []domain.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ChatMessage, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, copyMessage(s.byID[id]))
	}
	return out
}

// streaming returns the message with id if it is an AI message still streaming.
// Caller must hold the lock.
func (s *MessageStore) streaming(id int64) *domain.ChatMessage {
	msg, ok := s.byID[id]
	if !ok || msg.Sender != domain.SenderAI || !msg.IsStreaming {
		return nil
	}
	return msg
}

// AppendContent appends chunk to a streaming AI message.
func (s *MessageStore) AppendContent(id int64, chunk string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.streaming(id)
	if msg == nil {
		return false
	}
	msg.Content += chunk
	return true
}

// SetContent replaces the content of a streaming AI message.
func (s *MessageStore) SetContent(id int64, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.streaming(id)
	if msg == nil {
		return false
	}
	msg.Content = content
	return true
}

// Finish attaches sources and clears the streaming flag.
func (s *MessageStore) Finish(id int64, sources []domain.Source) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.streaming(id)
	if msg == nil {
		return false
	}
	if len(sources) > 0 {
		msg.Sources = append([]domain.Source(nil), sources...)
	}
	msg.IsStreaming = false
	return true
}

// Delete removes a message.
func (s *MessageStore) Delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear removes every message.
func (s *MessageStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = make(map[int64]*domain.ChatMessage)
	s.order = nil
}

// SetError sets the shared error slot.
func (s *MessageStore) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
}

// Error returns the shared error slot.
func (s *MessageStore) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

func copyMessage(msg *domain.ChatMessage) domain.ChatMessage {
	out := *msg
	if msg.Sources != nil {
		out.Sources = append([]domain.Source(nil), msg.Sources...)
	}
	return out
}
