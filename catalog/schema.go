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
	"log/slog"
	"os"
	"path/filepath"
)

// SKU is a purchasable variant of a product. Type distinguishes retail
// ("home") from professional ("pro") sizes.
type SKU struct {
	Art  string `json:"art"`
	Vol  string `json:"vol"`
	Type string `json:"type"`
}

// Product is a single catalog entry extracted from brand materials.
type Product struct {
	ID              string `json:"id"`
	Brand           string `json:"brand"`
	NameRU          string `json:"name_ru"`
	NameEN          string `json:"name_en"`
	Line            string `json:"line"`
	Category        string `json:"category"`
	Type            string `json:"type"`
	SkinType        string `json:"skin_type"`
	Usage           string `json:"usage"`
	DescriptionFull string `json:"description_full"`
	SKUs            []SKU  `json:"skus"`
}

// Knowledge is a knowledge-base article: skin-care advice, brand
// philosophy, treatment protocols and similar non-product material.
type Knowledge struct {
	Type            string   `json:"type"`
	Category        string   `json:"category"`
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// File is the JSON document shape shared by the extract command (which
// writes it) and the seeder (which reads it).
type File struct {
	Products  []Product   `json:"products"`
	Knowledge []Knowledge `json:"knowledge"`
}

// LoadFile reads and parses a single catalog JSON file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", filepath.Base(path), err)
	}

	return &f, nil
}

// LoadDir loads every *.json file in dir. Files that cannot be read or
// parsed are logged and skipped so one broken export does not block the
// rest of the catalog.
func LoadDir(dir string) ([]*File, error) {
	logger := slog.Default().With("component", "catalog-loader")

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog directory: %w", err)
	}

	files := make([]*File, 0, len(paths))
	for _, path := range paths {
		f, err := LoadFile(path)
		if err != nil {
			logger.Warn("skipping catalog file", "file", filepath.Base(path), "error", err)
			continue
		}
		logger.Info("loaded catalog file",
			"file", filepath.Base(path),
			"products", len(f.Products),
			"knowledge", len(f.Knowledge))
		files = append(files, f)
	}

	return files, nil
}
