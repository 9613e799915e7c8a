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


package core

import (
	"fmt"
	"time"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Slug must not be empty
//   - Kind must be valid (product or guide)
//   - Contents must not be empty
//
// NOT validated (populated by processors):
//   - Vector (can be empty until the embedding pipeline runs)
//   - ID (derived from the slug by callers)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Slug == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptySlug)
	}

	if err := ValidateDocKind(doc.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if doc.Contents == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContent)
	}

	return nil
}

// ValidateDialogRecord validates a DialogRecord according to domain rules.
//
// Validation rules:
//   - ChatID must not be zero
//   - Contents must not be empty
//   - Role must be valid (user or assistant)
//   - Timestamp must not be in the future
//
// NOT validated:
//   - ID (assigned by the repository on insert)
func ValidateDialogRecord(record *DialogRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidDialogRecord)
	}

	if record.ChatID == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDialogRecord, ErrMissingChat)
	}

	if record.Contents == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDialogRecord, ErrEmptyContent)
	}

	if err := ValidateRole(record.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDialogRecord, err)
	}

	if !IsValidTimestamp(record.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidDialogRecord, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateDocKind validates that a DocKind has a valid value.
func ValidateDocKind(kind DocKind) error {
	if kind != DocKindProduct && kind != DocKindGuide {
		return fmt.Errorf("%w: value %d", ErrInvalidDocKind, kind)
	}
	return nil
}

// ValidateRole validates that a Role has a valid value.
func ValidateRole(role Role) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("%w: value %d", ErrInvalidRole, role)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
