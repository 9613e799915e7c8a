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


// Package search provides semantic retrieval over catalog documents.
//
// The Searcher type embeds the query, scans the vector store for the
// nearest documents, and applies a verbatim keyword boost with stop-word
// filtering before ranking. Retrieval is top-N without a similarity
// cutoff, so weak matches surface rather than emptying the result set.
//
// A SearchMonitor can be attached to observe each stage of the search,
// which the searcher CLI uses for its verbose mode.
package search
