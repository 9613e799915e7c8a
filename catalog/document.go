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


package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/poiesic/shoplore/core"
)

// Stats summarizes a BuildDocuments run.
type Stats struct {
	Files    int
	Products int
	Guides   int
}

// BuildDocuments converts loaded catalog files into store documents.
//
// Product passages carry the "passage:" prefix expected by e5-family
// embedding models, followed by name, brand, line and the full
// description. Knowledge passages carry the article title and body.
// Slugs are deterministic so re-running the seeder on the same catalog
// produces the same document IDs; duplicate slugs within a kind get
// numeric suffixes counting up from 1.
func BuildDocuments(files []*File) ([]*core.Document, Stats) {
	stats := Stats{Files: len(files)}

	var products []Product
	var guides []Knowledge
	for _, f := range files {
		products = append(products, f.Products...)
		guides = append(guides, f.Knowledge...)
	}

	docs := make([]*core.Document, 0, len(products)+len(guides))

	seen := make(map[string]bool, len(products))
	for _, p := range products {
		passage := fmt.Sprintf("passage: Продукт: %s / %s\nБренд: %s\nЛиния: %s\n%s",
			p.NameRU, p.NameEN, p.Brand, p.Line, p.DescriptionFull)

		slug := claimSlug(seen, fmt.Sprintf("product_%s_%s", NormalizeID(p.Brand), NormalizeID(p.NameEN)))

		skus := p.SKUs
		if skus == nil {
			skus = []SKU{}
		}
		skusJSON, _ := json.Marshal(skus)

		docs = append(docs, &core.Document{
			Id:       core.IDFromContent(slug),
			Slug:     slug,
			Kind:     core.DocKindProduct,
			Title:    p.NameRU,
			Contents: passage,
			Metadata: map[string]string{
				"type":      "product",
				"name_ru":   p.NameRU,
				"brand":     p.Brand,
				"line":      p.Line,
				"skin_type": p.SkinType,
				"skus":      string(skusJSON),
			},
		})
		stats.Products++
	}

	seen = make(map[string]bool, len(guides))
	for _, k := range guides {
		passage := fmt.Sprintf("passage: Тема: %s\n%s", k.Title, k.Content)

		slug := claimSlug(seen, "guide_"+NormalizeID(k.Title))

		docs = append(docs, &core.Document{
			Id:       core.IDFromContent(slug),
			Slug:     slug,
			Kind:     core.DocKindGuide,
			Title:    k.Title,
			Contents: passage,
			Metadata: map[string]string{
				"type":  "guide",
				"title": k.Title,
			},
		})
		stats.Guides++
	}

	return docs, stats
}

// claimSlug reserves slug in seen, appending _1, _2, ... until it finds
// a free one.
func claimSlug(seen map[string]bool, slug string) string {
	original := slug
	counter := 1
	for seen[slug] {
		slug = fmt.Sprintf("%s_%d", original, counter)
		counter++
	}
	seen[slug] = true
	return slug
}
