package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/shoplore/ai"
	"github.com/poiesic/shoplore/ai/mock"
	"github.com/poiesic/shoplore/core"
	"github.com/poiesic/shoplore/search"
	"github.com/poiesic/shoplore/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	docRepo, dialogRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		dialogRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	provider := mock.NewMockProvider()
	searcher, err := search.NewSearcher(docRepo, provider)
	require.NoError(t, err)
	chat := mock.NewMockChatModel()

	t.Run("valid configuration", func(t *testing.T) {
		a, err := New(dialogRepo, searcher, chat)
		require.NoError(t, err)
		assert.NotNil(t, a)
	})

	t.Run("with options", func(t *testing.T) {
		a, err := New(dialogRepo, searcher, chat,
			WithHistoryLimit(10),
			WithContextDocuments(5),
			WithSystemPrompt("Ты — тестовый консультант."),
			WithLogger(nil),
		)
		require.NoError(t, err)
		assert.Equal(t, 10, a.historyLimit)
		assert.Equal(t, 5, a.contextDocuments)
		assert.Equal(t, "Ты — тестовый консультант.", a.systemPrompt)
	})

	t.Run("nil dialog repository", func(t *testing.T) {
		_, err := New(nil, searcher, chat)
		assert.Equal(t, ErrDialogRepositoryRequired, err)
	})

	t.Run("nil searcher", func(t *testing.T) {
		_, err := New(dialogRepo, nil, chat)
		assert.Equal(t, ErrSearcherRequired, err)
	})

	t.Run("nil chat model", func(t *testing.T) {
		_, err := New(dialogRepo, searcher, nil)
		assert.Equal(t, ErrChatModelRequired, err)
	})
}

func TestAnswer_RepliesAndPersists(t *testing.T) {
	docRepo, dialogRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		dialogRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	_, err = docRepo.AddDocuments(ctx, &core.Document{
		Slug:     "product_reviderm_moisture_cream",
		Kind:     core.DocKindProduct,
		Title:    "Увлажняющий крем",
		Contents: "passage: Увлажняющий крем для сухой кожи",
		Metadata: map[string]string{"brand": "Reviderm", "kind": "product"},
		Vector:   []float32{0.9, 0.1, 0.0},
	})
	require.NoError(t, err)

	mockEmbedder := mock.NewMockEmbedder()
	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.9, 0.1, 0.0}, nil
	}
	provider := mock.NewMockProviderWithServices(
		mockEmbedder, mock.NewMockChatModel(), mock.NewMockCatalogExtractor())
	searcher, err := search.NewSearcher(docRepo, provider)
	require.NoError(t, err)

	var capturedSystem string
	var capturedMessages []ai.Message
	chat := mock.NewMockChatModel()
	chat.ReplyFunc = func(ctx context.Context, system string, messages []ai.Message) (string, error) {
		capturedSystem = system
		capturedMessages = messages
		return "Рекомендую увлажняющий крем Reviderm.", nil
	}

	a, err := New(dialogRepo, searcher, chat)
	require.NoError(t, err)

	user := UserRef{ChatID: 42, UserID: 7, Username: "masha", FirstName: "Мария"}
	reply, err := a.Answer(ctx, user, "Какой крем подойдет для сухой кожи?")
	require.NoError(t, err)
	assert.Equal(t, "Рекомендую увлажняющий крем Reviderm.", reply)

	// Context block folded into the system prompt
	assert.Contains(t, capturedSystem, "Контекст из базы знаний:")
	assert.Contains(t, capturedSystem, "Документ 1:\npassage: Увлажняющий крем для сухой кожи")
	assert.Contains(t, capturedSystem, "Метаданные: brand: Reviderm, kind: product")

	// Fresh chat: only the current question reaches the model
	require.Len(t, capturedMessages, 1)
	assert.Equal(t, ai.RoleUser, capturedMessages[0].Role)
	assert.Equal(t, "Какой крем подойдет для сухой кожи?", capturedMessages[0].Content)

	// Both sides of the exchange persisted, newest first
	records, err := dialogRepo.GetRecentDialogRecords(ctx, 42, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, core.RoleAssistant, records[0].Role)
	assert.Equal(t, "Рекомендую увлажняющий крем Reviderm.", records[0].Contents)
	assert.Equal(t, core.RoleUser, records[1].Role)
	assert.Equal(t, "Какой крем подойдет для сухой кожи?", records[1].Contents)
	assert.Equal(t, int64(7), records[1].UserID)
	assert.Equal(t, "masha", records[1].Username)
	assert.Equal(t, "Мария", records[1].FirstName)
}

func TestAnswer_CarriesHistory(t *testing.T) {
	docRepo, dialogRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		dialogRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	now := time.Now().UTC()

	_, err = dialogRepo.AddDialogRecords(ctx,
		&core.DialogRecord{
			ChatID:    42,
			Role:      core.RoleUser,
			Contents:  "Здравствуйте",
			Timestamp: now.Add(-2 * time.Minute),
		},
		&core.DialogRecord{
			ChatID:    42,
			Role:      core.RoleAssistant,
			Contents:  "Здравствуйте! Чем могу помочь?",
			Timestamp: now.Add(-time.Minute),
		},
	)
	require.NoError(t, err)

	provider := mock.NewMockProvider()
	searcher, err := search.NewSearcher(docRepo, provider)
	require.NoError(t, err)

	var capturedMessages []ai.Message
	chat := mock.NewMockChatModel()
	chat.ReplyFunc = func(ctx context.Context, system string, messages []ai.Message) (string, error) {
		capturedMessages = messages
		return "Конечно.", nil
	}

	a, err := New(dialogRepo, searcher, chat)
	require.NoError(t, err)

	_, err = a.Answer(ctx, UserRef{ChatID: 42}, "А расскажите про тоники")
	require.NoError(t, err)

	// History replayed oldest first, question last
	require.Len(t, capturedMessages, 3)
	assert.Equal(t, ai.RoleUser, capturedMessages[0].Role)
	assert.Equal(t, "Здравствуйте", capturedMessages[0].Content)
	assert.Equal(t, ai.RoleAssistant, capturedMessages[1].Role)
	assert.Equal(t, "Здравствуйте! Чем могу помочь?", capturedMessages[1].Content)
	assert.Equal(t, ai.RoleUser, capturedMessages[2].Role)
	assert.Equal(t, "А расскажите про тоники", capturedMessages[2].Content)
}

func TestAnswer_HistoryLimitZero(t *testing.T) {
	docRepo, dialogRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		dialogRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	_, err = dialogRepo.AddDialogRecords(ctx, &core.DialogRecord{
		ChatID:    42,
		Role:      core.RoleUser,
		Contents:  "Старое сообщение",
		Timestamp: time.Now().UTC().Add(-time.Hour),
	})
	require.NoError(t, err)

	provider := mock.NewMockProvider()
	searcher, err := search.NewSearcher(docRepo, provider)
	require.NoError(t, err)

	var capturedMessages []ai.Message
	chat := mock.NewMockChatModel()
	chat.ReplyFunc = func(ctx context.Context, system string, messages []ai.Message) (string, error) {
		capturedMessages = messages
		return "Ответ", nil
	}

	a, err := New(dialogRepo, searcher, chat, WithHistoryLimit(0))
	require.NoError(t, err)

	_, err = a.Answer(ctx, UserRef{ChatID: 42}, "Вопрос")
	require.NoError(t, err)

	require.Len(t, capturedMessages, 1)
	assert.Equal(t, "Вопрос", capturedMessages[0].Content)
}

func TestAnswer_RetrievalFailureContinues(t *testing.T) {
	docRepo, dialogRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		dialogRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	mockEmbedder := mock.NewMockEmbedder()
	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}
	provider := mock.NewMockProviderWithServices(
		mockEmbedder, mock.NewMockChatModel(), mock.NewMockCatalogExtractor())
	searcher, err := search.NewSearcher(docRepo, provider)
	require.NoError(t, err)

	var capturedSystem string
	chat := mock.NewMockChatModel()
	chat.ReplyFunc = func(ctx context.Context, system string, messages []ai.Message) (string, error) {
		capturedSystem = system
		return "Отвечаю без контекста.", nil
	}

	a, err := New(dialogRepo, searcher, chat)
	require.NoError(t, err)

	reply, err := a.Answer(ctx, UserRef{ChatID: 42}, "Вопрос")
	require.NoError(t, err)
	assert.Equal(t, "Отвечаю без контекста.", reply)
	assert.NotContains(t, capturedSystem, "Контекст из базы знаний")
}

func TestAnswer_ChatFailureNotPersisted(t *testing.T) {
	docRepo, dialogRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		dialogRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	provider := mock.NewMockProvider()
	searcher, err := search.NewSearcher(docRepo, provider)
	require.NoError(t, err)

	chat := mock.NewMockChatModel()
	chat.ReplyFunc = func(ctx context.Context, system string, messages []ai.Message) (string, error) {
		return "", errors.New("model unavailable")
	}

	a, err := New(dialogRepo, searcher, chat)
	require.NoError(t, err)

	_, err = a.Answer(ctx, UserRef{ChatID: 42}, "Вопрос")
	require.Error(t, err)

	records, err := dialogRepo.GetRecentDialogRecords(ctx, 42, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGreet(t *testing.T) {
	docRepo, dialogRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		dialogRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	mockEmbedder := mock.NewMockEmbedder()
	provider := mock.NewMockProviderWithServices(
		mockEmbedder, mock.NewMockChatModel(), mock.NewMockCatalogExtractor())
	searcher, err := search.NewSearcher(docRepo, provider)
	require.NoError(t, err)

	var capturedSystem string
	var capturedMessages []ai.Message
	chat := mock.NewMockChatModel()
	chat.ReplyFunc = func(ctx context.Context, system string, messages []ai.Message) (string, error) {
		capturedSystem = system
		capturedMessages = messages
		return "Здравствуйте! Я помогу подобрать уход.", nil
	}

	a, err := New(dialogRepo, searcher, chat)
	require.NoError(t, err)

	reply, err := a.Greet(ctx, UserRef{ChatID: 42, UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, "Здравствуйте! Я помогу подобрать уход.", reply)

	// No retrieval on greeting
	assert.Equal(t, 0, mockEmbedder.CallCount())
	assert.NotContains(t, capturedSystem, "Контекст из базы знаний")

	require.Len(t, capturedMessages, 1)
	assert.Equal(t, "/start", capturedMessages[0].Content)

	records, err := dialogRepo.GetRecentDialogRecords(ctx, 42, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, core.RoleAssistant, records[0].Role)
	assert.Equal(t, "/start", records[1].Contents)
}

func TestBuildContext(t *testing.T) {
	t.Run("empty results", func(t *testing.T) {
		assert.Equal(t, "", BuildContext(nil))
		assert.Equal(t, "", BuildContext([]*core.SearchResult{}))
	})

	t.Run("formats documents with metadata", func(t *testing.T) {
		results := []*core.SearchResult{
			{
				Document: &core.Document{
					Contents: "passage: Крем для лица",
					Metadata: map[string]string{"kind": "product", "brand": "Reviderm"},
				},
				Score: 0.9,
			},
			{
				Document: &core.Document{
					Contents: "passage: Уход при куперозе",
				},
				Score: 0.8,
			},
		}

		expected := strings.Join([]string{
			"Документ 1:\npassage: Крем для лица\nМетаданные: brand: Reviderm, kind: product",
			"Документ 2:\npassage: Уход при куперозе",
		}, "\n\n")
		assert.Equal(t, expected, BuildContext(results))
	})
}
