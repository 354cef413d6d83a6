// Package publish fans out label changes to external subscribers.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNoMessage is returned when nothing has been published yet.
var ErrNoMessage = errors.New("no message published")

// Message describes one label change.
type Message struct {
	Label     string    `json:"label"`
	Previous  string    `json:"previous"`
	Theme     string    `json:"theme"`
	Caption   string    `json:"caption,omitempty"`
	Hands     int       `json:"hands"`
	Timestamp time.Time `json:"timestamp"`
}

// Encode returns the JSON wire form of the message.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

func decode(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return &m, nil
}

// Publisher delivers label changes.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// LatestSource reports the most recently published message.
type LatestSource interface {
	Latest(ctx context.Context) (*Message, error)
}

// Nop discards every message.
type Nop struct{}

func (Nop) Publish(context.Context, Message) error { return nil }
func (Nop) Close() error                           { return nil }

// Memory keeps published messages in memory for tests.
type Memory struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

// NewMemory creates an empty in-memory publisher.
func NewMemory() *Memory {
	return &Memory{}
}

// SetError makes subsequent Publish calls fail with err.
func (m *Memory) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *Memory) Publish(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

// Messages returns a copy of everything published so far.
func (m *Memory) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Latest returns the last message, or ErrNoMessage before the first Publish.
func (m *Memory) Latest(context.Context) (*Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return nil, ErrNoMessage
	}
	msg := m.messages[len(m.messages)-1]
	return &msg, nil
}

func (m *Memory) Close() error { return nil }
