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


package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/shoplore"
	"github.com/poiesic/shoplore/ai"
	"github.com/poiesic/shoplore/core"
	"github.com/poiesic/shoplore/search"
)

var (
	dbPath  = flag.String("db", "./shop_db", "path to BadgerDB database directory")
	host    = flag.String("host", "http://localhost:11434/v1", "embedding service host URL")
	model   = flag.String("model", "multilingual-e5-base", "embedding model name")
	maxHits = flag.Int("n", 5, "maximum number of hits to return")
	verbose = flag.Bool("v", false, "trace every stage of the search")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// printMonitor traces each search stage to stdout.
type printMonitor struct{}

var _ search.SearchMonitor = (*printMonitor)(nil)

func (m *printMonitor) Start(query string) {
	fmt.Printf("query: %q\n", query)
}

func (m *printMonitor) AfterEmbedding(vector []float32) {
	fmt.Printf("embedded: %d dimensions\n", len(vector))
}

func (m *printMonitor) AfterVectorSearch(matches []core.SimilarityMatch) {
	fmt.Printf("vector search: %d matches\n", len(matches))
	for _, match := range matches {
		fmt.Printf("  %d [%0.3f]\n", match.DocumentId, match.Score)
	}
}

func (m *printMonitor) AfterDocumentRetrieval(documents []*core.Document) {
	fmt.Printf("retrieved: %d documents\n", len(documents))
}

func (m *printMonitor) VerbatimHit(document *core.Document) {
	fmt.Printf("verbatim hit: %s\n", document.Slug)
}

func (m *printMonitor) Finish(results []*core.SearchResult) {
	fmt.Printf("final: %d results\n", len(results))
}

func main() {
	db, err := shoplore.NewDatabase(*dbPath, shoplore.WithAIConfig(ai.NewConfig(
		ai.WithEmbeddingHost(*host),
		ai.WithEmbeddingModel(*model),
	)))
	if err != nil {
		panic(err)
	}
	defer db.Close()
	searcher, err := db.NewSearcher()
	if err != nil {
		panic(err)
	}

	query := strings.Join(flag.Args(), " ")
	if query == "" {
		query = "крем для сухой кожи"
	}

	ctx := context.Background()
	var results []*core.SearchResult
	if *verbose {
		results, err = searcher.FindSimilarWithMonitor(ctx, query, *maxHits, &printMonitor{})
	} else {
		results, err = searcher.FindSimilar(ctx, query, *maxHits)
	}
	if err != nil {
		panic(err)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: %s (%s)[%0.3f] %s\n", i, hit.Document.Slug, hit.Document.Kind, hit.Score, hit.Document.Title)
	}
}
