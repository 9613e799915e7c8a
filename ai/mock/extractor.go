package mock

import (
	"context"
	"strings"

	"github.com/poiesic/shoplore/catalog"
)

// MockCatalogExtractor is a test double for ai.CatalogExtractor.
// It allows custom behavior injection via function fields.
type MockCatalogExtractor struct {
	// ExtractCatalogFunc is called by ExtractCatalog if set.
	// If nil, uses default simple extraction.
	ExtractCatalogFunc func(ctx context.Context, text, brand string) (*catalog.File, error)

	callCount int
}

// NewMockCatalogExtractor creates a mock catalog extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockExtractor().
func NewMockCatalogExtractor() *MockCatalogExtractor {
	return &MockCatalogExtractor{}
}

// ExtractCatalog produces a deterministic extraction from the fragment.
// Default behavior: one product named after the first line of the text, plus
// one knowledge card holding the full fragment. Empty text yields an empty
// file.
func (m *MockCatalogExtractor) ExtractCatalog(ctx context.Context, text, brand string) (*catalog.File, error) {
	m.callCount++

	if m.ExtractCatalogFunc != nil {
		return m.ExtractCatalogFunc(ctx, text, brand)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return &catalog.File{
			Products:  []catalog.Product{},
			Knowledge: []catalog.Knowledge{},
		}, nil
	}

	firstLine, _, _ := strings.Cut(text, "\n")

	return &catalog.File{
		Products: []catalog.Product{
			{
				ID:              "000001",
				Brand:           brand,
				NameRU:          strings.TrimSpace(firstLine),
				Category:        "Без категории",
				DescriptionFull: text,
			},
		},
		Knowledge: []catalog.Knowledge{
			{
				Type:     "knowledge",
				Category: "Фрагмент",
				Title:    strings.TrimSpace(firstLine),
				Content:  text,
			},
		},
	}, nil
}

// CallCount returns the number of times ExtractCatalog was called.
func (m *MockCatalogExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockCatalogExtractor) Reset() {
	m.callCount = 0
	m.ExtractCatalogFunc = nil
}
