package catalog

import (
	"strings"
	"unicode"
)

// translitMap maps Cyrillic letters to Latin slug forms. Hard and soft
// signs are dropped.
var translitMap = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
	'А': "A", 'Б': "B", 'В': "V", 'Г': "G", 'Д': "D", 'Е': "E", 'Ё': "Yo",
	'Ж': "Zh", 'З': "Z", 'И': "I", 'Й': "Y", 'К': "K", 'Л': "L", 'М': "M",
	'Н': "N", 'О': "O", 'П': "P", 'Р': "R", 'С': "S", 'Т': "T", 'У': "U",
	'Ф': "F", 'Х': "H", 'Ц': "Ts", 'Ч': "Ch", 'Ш': "Sh", 'Щ': "Shch",
	'Ъ': "", 'Ы': "Y", 'Ь': "", 'Э': "E", 'Ю': "Yu", 'Я': "Ya",
}

// Transliterate converts Cyrillic text to Latin. Letters and digits of
// other scripts pass through unchanged, everything else becomes a dash.
func Transliterate(text string) string {
	var b strings.Builder
	for _, r := range text {
		if repl, ok := translitMap[r]; ok {
			b.WriteString(repl)
		} else if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// Slugify produces a lowercase Latin slug: transliterates, collapses
// dash runs and trims dashes from both ends.
func Slugify(text string) string {
	translit := Transliterate(text)

	var b strings.Builder
	prevDash := false
	for _, r := range translit {
		if r == '-' {
			if prevDash {
				continue
			}
			prevDash = true
		} else {
			prevDash = false
		}
		b.WriteRune(r)
	}

	return strings.Trim(strings.ToLower(b.String()), "-")
}

// NormalizeID normalizes free text for use inside a document slug:
// lowercases, drops everything except word characters, whitespace and
// hyphens, then turns whitespace runs into single underscores. Empty
// results come back as "unknown" so slugs always have every segment.
func NormalizeID(text string) string {
	if text == "" {
		return "unknown"
	}

	var b strings.Builder
	pendingGap := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsSpace(r):
			pendingGap = true
		case r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingGap {
				if b.Len() > 0 {
					b.WriteByte('_')
				}
				pendingGap = false
			}
			b.WriteRune(r)
		}
	}

	normalized := strings.Trim(b.String(), "_")
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
