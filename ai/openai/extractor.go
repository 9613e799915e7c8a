// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/poiesic/shoplore/ai"
	"github.com/poiesic/shoplore/catalog"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// CatalogExtractor implements ai.CatalogExtractor using OpenAI-compatible
// chat APIs. It prompts the model to return the full extraction JSON for a
// catalog fragment and decodes it into catalog.File.
type CatalogExtractor struct {
	client      llms.Model
	temperature float64
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
}

// newCatalogExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newCatalogExtractor(config *ai.Config) (*CatalogExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat/extraction
	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(apiToken(config)),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &CatalogExtractor{
		client:      client,
		temperature: config.Temperature,
		maxAttempts: config.ExtractAttempts,
		retryDelay:  config.ExtractRetryDelay,
		logger:      slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewCatalogExtractor creates a new catalog extractor using the provided configuration.
//
// Returns ai.CatalogExtractor interface to enforce abstraction.
func NewCatalogExtractor(config *ai.Config) (ai.CatalogExtractor, error) {
	return newCatalogExtractor(config)
}

// ExtractCatalog extracts products and knowledge entries from a catalog
// fragment using an LLM. Transient failures (API errors, malformed JSON) are
// retried with a pause between attempts; once attempts are exhausted the last
// error is returned so the caller can decide what to do with the fragment.
func (e *CatalogExtractor) ExtractCatalog(ctx context.Context, text, brand string) (*catalog.File, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(extractionSystemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildExtractionPrompt(brand, text)),
			},
		},
	}

	var lastErr error
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		if attempt > 0 {
			e.logger.Warn("retrying catalog extraction",
				"attempt", attempt+1,
				"max_attempts", e.maxAttempts)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(e.retryDelay):
			}
		}

		response, err := e.client.GenerateContent(ctx, content,
			llms.WithTemperature(e.temperature), llms.WithJSONMode())
		if err != nil {
			lastErr = err
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			continue
		}

		if len(response.Choices) < 1 {
			lastErr = errors.New("no choices returned from model")
			e.logger.Warn("no choices returned from model", "attempt", attempt+1)
			continue
		}

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(response.Choices[0].Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		var file catalog.File
		if err := json.Unmarshal([]byte(responseText), &file); err != nil {
			lastErr = err
			e.logger.Warn("error parsing extraction response",
				"attempt", attempt+1,
				"err", err)
			continue
		}

		deriveEnglishNames(file.Products)

		e.logger.Debug("extracted catalog fragment",
			"products", len(file.Products),
			"knowledge", len(file.Knowledge))
		return &file, nil
	}

	e.logger.Error("catalog extraction failed after retries",
		"attempts", e.maxAttempts,
		"err", lastErr)
	return nil, fmt.Errorf("catalog extraction failed after %d attempts: %w", e.maxAttempts, lastErr)
}

// deriveEnglishNames backfills name_en for products where the model left it
// empty but emitted a slug-shaped id such as
// "reviderm_skinessentials_cleansing_milk". The brand and line components are
// dropped and the rest becomes the name.
func deriveEnglishNames(products []catalog.Product) {
	for i := range products {
		p := &products[i]
		if p.NameEN != "" || p.ID == "" {
			continue
		}

		parts := strings.Split(p.ID, "_")
		if len(parts) < 3 {
			continue
		}

		candidate := strings.Join(parts[2:], "_")
		if !looksLikeName(candidate) {
			continue
		}
		p.NameEN = strings.ReplaceAll(candidate, "_", " ")
	}
}

// looksLikeName reports whether s consists only of letters, digits, '-' and
// '_', with at least one letter present.
func looksLikeName(s string) bool {
	hasLetter := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r), r == '-', r == '_':
		default:
			return false
		}
	}
	return hasLetter
}
