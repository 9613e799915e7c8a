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


// Package catalog defines the cosmetics catalog schema and the
// conversions around it.
//
// The package covers the offline half of the knowledge base:
//   - Loading extracted catalog JSON files (products and knowledge articles)
//   - Building store documents with deterministic slugs and passage text
//   - Splitting raw brand files into model-sized chunks for extraction
//   - Rendering previews so operators can inspect results before seeding
//
// Slugs are stable across runs: the same catalog always produces the
// same document identifiers, which keeps reseeding idempotent.
package catalog
