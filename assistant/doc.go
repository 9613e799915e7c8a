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


// Package assistant orchestrates retrieval-augmented answers for the shop
// bot.
//
// For each question the Assistant loads the chat's persisted dialog history,
// retrieves the nearest knowledge-base documents, folds them into the
// consultant system prompt, and calls the chat model. The exchange is then
// persisted so context survives restarts. Retrieval and persistence failures
// degrade gracefully: the user still gets an answer.
package assistant
