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

import "strings"

// repairJSON fixes the JSON damage gpt-4o-mini produces in JSON mode: object
// keys missing their opening quote (`{name":` instead of `{"name":`) and
// trailing commas before a closing bracket. The scan tracks string boundaries
// so commas and quotes inside Russian description values are never touched.
func repairJSON(s string) string {
	var out strings.Builder
	out.Grow(len(s) + 16)

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			out.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
			out.WriteByte(c)
		case ',':
			if closerFollows(s, i+1) {
				continue
			}
			out.WriteByte(c)
			i = quoteBareKey(s, i, &out)
		case '{':
			out.WriteByte(c)
			i = quoteBareKey(s, i, &out)
		default:
			out.WriteByte(c)
		}
	}

	return out.String()
}

// closerFollows reports whether the next non-whitespace byte after position i
// closes an object or array, which makes a preceding comma illegal.
func closerFollows(s string, i int) bool {
	for ; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
		case '}', ']':
			return true
		default:
			return false
		}
	}
	return false
}

// quoteBareKey copies the whitespace following position i and, when a bare
// key such as `name":` sits there, emits the key with its missing opening
// quote, the closing quote and the colon. Returns the index of the last byte
// it consumed so the caller's loop resumes after it.
func quoteBareKey(s string, i int, out *strings.Builder) int {
	j := i + 1
	for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
		out.WriteByte(s[j])
		j++
	}
	if j >= len(s) || !isKeyLetter(s[j]) {
		return j - 1
	}

	k := j
	for k < len(s) && (isKeyLetter(s[k]) || s[k] == '_' || s[k] == ' ') {
		k++
	}
	if k+1 >= len(s) || s[k] != '"' || s[k+1] != ':' {
		return j - 1
	}

	out.WriteByte('"')
	out.WriteString(strings.TrimRight(s[j:k], " "))
	out.WriteString(`":`)
	return k + 1
}

// isKeyLetter reports whether the byte is an ASCII letter. Keys emitted by
// the extraction schema are ASCII even when values are Russian.
func isKeyLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
