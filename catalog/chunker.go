package catalog

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the extraction chunk budget in characters. Large
// brand files are split before being sent to the model so each request
// stays well inside the context window.
const DefaultChunkSize = 20000

// SplitText splits text into chunks of roughly chunkSize characters,
// breaking only on line boundaries so product blocks survive intact.
// Sizes are counted in runes, not bytes; Cyrillic catalogs would
// otherwise come out half as large as intended.
func SplitText(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	for _, line := range strings.Split(text, "\n") {
		lineLen := utf8.RuneCountInString(line)
		if currentLen+lineLen+1 < chunkSize {
			current.WriteString(line)
			current.WriteByte('\n')
			currentLen += lineLen + 1
			continue
		}

		if chunk := strings.TrimSpace(current.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
		current.WriteString(line)
		current.WriteByte('\n')
		currentLen = lineLen + 1
	}

	if chunk := strings.TrimSpace(current.String()); chunk != "" {
		chunks = append(chunks, chunk)
	}

	return chunks
}

// InferBrand guesses the brand from a catalog file name. Unrecognized
// names fall back to Reviderm, the shop's main brand.
func InferBrand(filename string) string {
	name := strings.ToLower(filepath.Base(filename))

	switch {
	case strings.Contains(name, "skindication"),
		strings.Contains(name, "skinessentials"),
		strings.Contains(name, "skintelligence"),
		strings.Contains(name, "skinprofessional"):
		return "Reviderm"
	case strings.Contains(name, "seboradin"):
		return "Seboradin"
	case strings.Contains(name, "spiller"), strings.Contains(name, "dr"):
		return "Dr. Spiller"
	default:
		return "Reviderm"
	}
}
