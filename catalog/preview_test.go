package catalog

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePreview(t *testing.T) {
	var files []*File
	for i := 1; i <= 7; i++ {
		files = append(files, &File{
			Products: []Product{{
				Brand:           "Reviderm",
				NameRU:          fmt.Sprintf("Продукт %d", i),
				NameEN:          fmt.Sprintf("product %d", i),
				DescriptionFull: strings.Repeat("описание ", 40),
			}},
		})
	}
	files = append(files, &File{
		Knowledge: []Knowledge{{Title: "Уход за кожей", Content: "Короткий текст."}},
	})

	docs, _ := BuildDocuments(files)

	var buf bytes.Buffer
	require.NoError(t, WritePreview(&buf, docs))
	out := buf.String()

	assert.Contains(t, out, "[DOCUMENT PREVIEW]")
	assert.Contains(t, out, "ПРОДУКТЫ (первые 5):")
	assert.Contains(t, out, "СТАТЬИ (первые 5):")

	// Only the first five products are shown.
	assert.Contains(t, out, "[Продукт 5]")
	assert.NotContains(t, out, "[Продукт 6]")
	assert.Contains(t, out, "[Статья 1]")

	// Long passages are truncated, short ones are not.
	assert.Contains(t, out, "...")
	assert.Contains(t, out, "passage: Тема: Уход за кожей\nКороткий текст.")

	// Slugs are shown as IDs for operator inspection.
	assert.Contains(t, out, "ID: product_reviderm_product_1")
	assert.Contains(t, out, "ID: guide_уход_за_кожей")
}

func TestWritePreview_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePreview(&buf, nil))

	out := buf.String()
	assert.Contains(t, out, "[DOCUMENT PREVIEW]")
	assert.Contains(t, out, "ПРОДУКТЫ (первые 5):")
	assert.Contains(t, out, "СТАТЬИ (первые 5):")
}
