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


package bot

import "errors"

var (
	// ErrTokenRequired is returned when a Telegram bot token is not provided.
	ErrTokenRequired = errors.New("telegram token required")

	// ErrAssistantRequired is returned when an assistant is not provided.
	ErrAssistantRequired = errors.New("assistant required")

	// ErrConflict is returned when another bot instance is polling
	// Telegram with the same token.
	ErrConflict = errors.New("another bot instance is running")
)
