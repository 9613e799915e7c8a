package search

import "strings"

// Stop words to filter out when checking for verbatim matches.
// Russian dominates real queries; the English set is kept for mixed input.
var stopWords = map[string]bool{
	"и": true, "в": true, "во": true, "не": true, "на": true, "с": true,
	"со": true, "для": true, "по": true, "от": true, "до": true, "из": true,
	"у": true, "о": true, "об": true, "а": true, "но": true, "или": true,
	"же": true, "ли": true, "бы": true, "то": true, "что": true, "как": true,
	"это": true, "есть": true, "к": true, "за": true, "при": true,
	"the": true, "a": true, "an": true, "is": true, "are": true, "to": true,
	"of": true, "and": true, "in": true, "for": true, "on": true, "with": true,
	"at": true, "by": true, "from": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		// Lowercase and trim punctuation
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}«»"))

		// Skip stop words and empty strings
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// containsAllQueryWords checks if all query words (after filtering) appear in the document
func containsAllQueryWords(document, query string) bool {
	queryWords := tokenizeAndFilter(query)
	if len(queryWords) == 0 {
		return false
	}

	docWords := tokenizeAndFilter(document)
	docWordSet := make(map[string]bool, len(docWords))
	for _, word := range docWords {
		docWordSet[word] = true
	}

	// Check if all query words exist in document
	for _, qWord := range queryWords {
		if !docWordSet[qWord] {
			return false
		}
	}

	return true
}
