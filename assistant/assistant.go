package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/shoplore/ai"
	"github.com/poiesic/shoplore/core"
	"github.com/poiesic/shoplore/search"
	"github.com/poiesic/shoplore/storage"
)

const (
	defaultHistoryLimit     = 20
	defaultContextDocuments = 3
)

// UserRef identifies the Telegram user a dialog belongs to. ChatID keys the
// persisted history; the name fields travel along for logging.
type UserRef struct {
	ChatID    int64
	UserID    int64
	Username  string
	FirstName string
	LastName  string
}

// Assistant answers customer questions from the catalog knowledge base.
// Each answer retrieves the nearest documents, folds them into the system
// prompt, and carries the chat's persisted dialog history so follow-up
// questions keep their context.
type Assistant struct {
	dialogRepository storage.DialogRepository
	searcher         *search.Searcher
	chat             ai.ChatModel
	systemPrompt     string
	historyLimit     int
	contextDocuments int
	logger           *slog.Logger
}

// Option configures an Assistant.
type Option func(*Assistant) error

// WithHistoryLimit sets how many recent dialog records are replayed to the
// model. Default is 20.
func WithHistoryLimit(n int) Option {
	return func(a *Assistant) error {
		if n < 0 {
			n = 0
		}
		a.historyLimit = n
		return nil
	}
}

// WithContextDocuments sets how many knowledge-base documents are retrieved
// per question. Default is 3.
func WithContextDocuments(n int) Option {
	return func(a *Assistant) error {
		if n < 0 {
			n = 0
		}
		a.contextDocuments = n
		return nil
	}
}

// WithSystemPrompt replaces the default consultant persona.
func WithSystemPrompt(prompt string) Option {
	return func(a *Assistant) error {
		if prompt != "" {
			a.systemPrompt = prompt
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// New creates a new assistant.
func New(
	dialogRepository storage.DialogRepository,
	searcher *search.Searcher,
	chat ai.ChatModel,
	opts ...Option,
) (*Assistant, error) {
	if dialogRepository == nil {
		return nil, ErrDialogRepositoryRequired
	}
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if chat == nil {
		return nil, ErrChatModelRequired
	}

	a := &Assistant{
		dialogRepository: dialogRepository,
		searcher:         searcher,
		chat:             chat,
		systemPrompt:     defaultSystemPrompt,
		historyLimit:     defaultHistoryLimit,
		contextDocuments: defaultContextDocuments,
		logger:           slog.Default().With("component", "assistant"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Answer generates a reply to the user's question. The question and the
// reply are persisted as dialog records after the model responds; retrieval
// and persistence failures are logged but never block the answer.
func (a *Assistant) Answer(ctx context.Context, user UserRef, question string) (string, error) {
	history, err := a.loadHistory(ctx, user.ChatID)
	if err != nil {
		a.logger.Warn("failed to load dialog history", "chat_id", user.ChatID, "err", err)
		history = nil
	}

	var contextBlock string
	results, err := a.searcher.FindSimilar(ctx, question, a.contextDocuments)
	if err != nil {
		// Answer from the persona alone rather than failing the user
		a.logger.Error("knowledge base search failed", "err", err)
	} else {
		contextBlock = BuildContext(results)
	}

	reply, err := a.reply(ctx, contextBlock, history, question)
	if err != nil {
		return "", err
	}

	a.persistExchange(ctx, user, question, reply)
	return reply, nil
}

// Greet answers the /start command. The greeting is generated with empty
// history and no retrieval, then persisted like any other exchange so the
// conversation starts from it.
func (a *Assistant) Greet(ctx context.Context, user UserRef) (string, error) {
	const question = "/start"

	reply, err := a.reply(ctx, "", nil, question)
	if err != nil {
		return "", err
	}

	a.persistExchange(ctx, user, question, reply)
	return reply, nil
}

// reply composes the final prompt and calls the chat model.
func (a *Assistant) reply(ctx context.Context, contextBlock string, history []ai.Message, question string) (string, error) {
	system := a.systemPrompt
	if contextBlock != "" {
		system += "\n\nКонтекст из базы знаний:\n\n" + contextBlock
	}

	messages := make([]ai.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: question})

	return a.chat.Reply(ctx, system, messages)
}

// loadHistory returns the chat's recent dialog records in chronological
// order, mapped to chat model messages.
func (a *Assistant) loadHistory(ctx context.Context, chatID int64) ([]ai.Message, error) {
	if a.historyLimit == 0 {
		return nil, nil
	}

	records, err := a.dialogRepository.GetRecentDialogRecords(ctx, chatID, a.historyLimit)
	if err != nil {
		return nil, err
	}

	// Storage returns newest first; the model wants oldest first
	messages := make([]ai.Message, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		record := records[i]
		role := ai.RoleUser
		if record.Role == core.RoleAssistant {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.Message{Role: role, Content: record.Contents})
	}
	return messages, nil
}

// persistExchange stores the question and the reply as two dialog records.
func (a *Assistant) persistExchange(ctx context.Context, user UserRef, question, reply string) {
	now := time.Now().UTC()
	records := []*core.DialogRecord{
		{
			ChatID:    user.ChatID,
			UserID:    user.UserID,
			Username:  user.Username,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      core.RoleUser,
			Contents:  question,
			Timestamp: now,
		},
		{
			ChatID:    user.ChatID,
			UserID:    user.UserID,
			Username:  user.Username,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      core.RoleAssistant,
			Contents:  reply,
			Timestamp: now,
		},
	}

	if _, err := a.dialogRepository.AddDialogRecords(ctx, records...); err != nil {
		a.logger.Error("failed to persist dialog exchange", "chat_id", user.ChatID, "err", err)
	}
}

// BuildContext renders search results into the knowledge-base context block
// appended to the system prompt. Entries are 1-based and separated by blank
// lines; metadata is rendered as a sorted key: value list.
func BuildContext(results []*core.SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	entries := make([]string, 0, len(results))
	for i, result := range results {
		var b strings.Builder
		fmt.Fprintf(&b, "Документ %d:\n%s", i+1, result.Document.Contents)
		if meta := formatMetadata(result.Document.Metadata); meta != "" {
			b.WriteString("\nМетаданные: ")
			b.WriteString(meta)
		}
		entries = append(entries, b.String())
	}
	return strings.Join(entries, "\n\n")
}

func formatMetadata(metadata map[string]string) string {
	if len(metadata) == 0 {
		return ""
	}

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+metadata[k])
	}
	return strings.Join(parts, ", ")
}
