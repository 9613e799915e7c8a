package catalog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/shoplore/core"
)

const previewPerKind = 5

// WritePreview renders a human-readable preview of the first few
// products and articles so operators can sanity-check an extraction
// before seeding the database.
func WritePreview(w io.Writer, docs []*core.Document) error {
	var products, guides []*core.Document
	for _, doc := range docs {
		switch doc.Kind {
		case core.DocKindProduct:
			products = append(products, doc)
		case core.DocKindGuide:
			guides = append(guides, doc)
		}
	}

	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "[DOCUMENT PREVIEW]")
	fmt.Fprintln(bw, strings.Repeat("=", 80))
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "ПРОДУКТЫ (первые %d):\n", previewPerKind)
	fmt.Fprintln(bw, strings.Repeat("-", 80))
	fmt.Fprintln(bw)

	for i, doc := range products[:min(previewPerKind, len(products))] {
		fmt.Fprintf(bw, "[Продукт %d]\n", i+1)
		writePreviewEntry(bw, doc)
	}

	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "СТАТЬИ (первые %d):\n", previewPerKind)
	fmt.Fprintln(bw, strings.Repeat("-", 80))
	fmt.Fprintln(bw)

	for i, doc := range guides[:min(previewPerKind, len(guides))] {
		fmt.Fprintf(bw, "[Статья %d]\n", i+1)
		writePreviewEntry(bw, doc)
	}

	return bw.Flush()
}

func writePreviewEntry(w io.Writer, doc *core.Document) {
	meta, _ := json.MarshalIndent(doc.Metadata, "", "  ")
	fmt.Fprintf(w, "ID: %s\n", doc.Slug)
	fmt.Fprintf(w, "Metadata: %s\n", meta)
	fmt.Fprintf(w, "Content: %s\n", contentPreview(doc.Contents))
	fmt.Fprintln(w, strings.Repeat("-", 80))
	fmt.Fprintln(w)
}

// contentPreview truncates on rune boundaries so Cyrillic text is never
// cut mid-character.
func contentPreview(text string) string {
	runes := []rune(text)
	if len(runes) > 200 {
		return string(runes[:200]) + "..."
	}
	return text
}
