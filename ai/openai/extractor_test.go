package openai

import (
	"testing"

	"github.com/poiesic/shoplore/catalog"
	"github.com/stretchr/testify/assert"
)

func TestDeriveEnglishNames(t *testing.T) {
	tests := []struct {
		name     string
		product  catalog.Product
		expected string
	}{
		{
			name:     "slug with brand and line",
			product:  catalog.Product{ID: "reviderm_skinessentials_cleansing_milk"},
			expected: "cleansing milk",
		},
		{
			name:     "hyphenated tail",
			product:  catalog.Product{ID: "reviderm_rs_cell-control-24h"},
			expected: "cell-control-24h",
		},
		{
			name:     "cyrillic tail is accepted",
			product:  catalog.Product{ID: "reviderm_line_очищающее_молочко"},
			expected: "очищающее молочко",
		},
		{
			name:     "existing name is preserved",
			product:  catalog.Product{ID: "reviderm_skinessentials_cleansing_milk", NameEN: "thermal tonic"},
			expected: "thermal tonic",
		},
		{
			name:     "too few slug parts",
			product:  catalog.Product{ID: "reviderm_milk"},
			expected: "",
		},
		{
			name:     "numeric id",
			product:  catalog.Product{ID: "000001"},
			expected: "",
		},
		{
			name:     "digits-only tail",
			product:  catalog.Product{ID: "reviderm_line_12345"},
			expected: "",
		},
		{
			name:     "tail with punctuation",
			product:  catalog.Product{ID: "reviderm_line_foo.bar"},
			expected: "",
		},
		{
			name:     "empty id",
			product:  catalog.Product{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := []catalog.Product{tt.product}
			deriveEnglishNames(products)
			assert.Equal(t, tt.expected, products[0].NameEN)
		})
	}
}

func TestLooksLikeName(t *testing.T) {
	assert.True(t, looksLikeName("cleansing_milk"))
	assert.True(t, looksLikeName("cell-control-24h"))
	assert.True(t, looksLikeName("очищающее_молочко"))
	assert.False(t, looksLikeName("12345"))
	assert.False(t, looksLikeName(""))
	assert.False(t, looksLikeName("foo.bar"))
	assert.False(t, looksLikeName("foo bar"))
}

func TestRepairJSON(t *testing.T) {
	t.Run("valid JSON unchanged", func(t *testing.T) {
		in := `{"products": [], "knowledge": []}`
		assert.Equal(t, in, repairJSON(in))
	})

	t.Run("missing opening quote on key", func(t *testing.T) {
		in := `{products": [], "knowledge": []}`
		assert.Equal(t, `{"products": [], "knowledge": []}`, repairJSON(in))
	})

	t.Run("missing quote after comma", func(t *testing.T) {
		in := `{"art": "80009", vol": "200 мл"}`
		assert.Equal(t, `{"art": "80009", "vol": "200 мл"}`, repairJSON(in))
	})

	t.Run("trailing comma in object", func(t *testing.T) {
		in := `{"products": [], "knowledge": [],}`
		assert.Equal(t, `{"products": [], "knowledge": []}`, repairJSON(in))
	})

	t.Run("trailing comma in array", func(t *testing.T) {
		in := `{"products": [{"id": "000001"},]}`
		assert.Equal(t, `{"products": [{"id": "000001"}]}`, repairJSON(in))
	})

	t.Run("string values untouched", func(t *testing.T) {
		// The comma and vol": sequence sit inside a value
		in := `{"method": "утром, vol\": вечером"}`
		assert.Equal(t, in, repairJSON(in))
	})

	t.Run("escaped backslash ends a value", func(t *testing.T) {
		in := `{"path": "C:\\", "id": "000002"}`
		assert.Equal(t, in, repairJSON(in))
	})

	t.Run("underscore key", func(t *testing.T) {
		in := `{name_en": "cleansing milk"}`
		assert.Equal(t, `{"name_en": "cleansing milk"}`, repairJSON(in))
	})
}

func TestBuildExtractionPrompt(t *testing.T) {
	prompt := buildExtractionPrompt("REVIDERM", "СРЕДСТВА ДЛЯ ОЧИЩЕНИЯ\nОчищающее молочко")

	assert.Contains(t, prompt, "Бренд: REVIDERM")
	assert.Contains(t, prompt, "ТЕКСТ:\nСРЕДСТВА ДЛЯ ОЧИЩЕНИЯ\nОчищающее молочко")
	assert.Contains(t, prompt, `"products": [...]`)
}
