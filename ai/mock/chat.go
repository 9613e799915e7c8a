package mock

import (
	"context"

	"github.com/poiesic/shoplore/ai"
)

// MockChatModel is a test double for ai.ChatModel.
// It allows custom behavior injection via function fields.
type MockChatModel struct {
	// ReplyFunc is called by Reply if set.
	// If nil, uses default echo behavior.
	ReplyFunc func(ctx context.Context, system string, messages []ai.Message) (string, error)

	callCount int
}

// NewMockChatModel creates a mock chat model with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockChatModel().
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{}
}

// Reply returns a deterministic answer.
// Default behavior: echoes the most recent user turn so tests can assert the
// question reached the model; with no user turns it returns a greeting.
func (m *MockChatModel) Reply(ctx context.Context, system string, messages []ai.Message) (string, error) {
	m.callCount++

	if m.ReplyFunc != nil {
		return m.ReplyFunc(ctx, system, messages)
	}

	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == ai.RoleUser {
			return "Ответ: " + messages[i].Content, nil
		}
	}
	return "Здравствуйте! Чем могу помочь?", nil
}

// CallCount returns the number of times Reply was called.
func (m *MockChatModel) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockChatModel) Reset() {
	m.callCount = 0
	m.ReplyFunc = nil
}
