// Package catalog holds the built-in dhikr list shipped with the binary.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/abdel2584/hisn-moslim-3/internal/model"
)

//go:embed azkar.yaml
var azkarYAML []byte

// Load decodes the embedded catalog. Every call returns a fresh slice.
func Load() ([]model.PracticeItem, error) {
	return Parse(azkarYAML)
}

func Parse(data []byte) ([]model.PracticeItem, error) {
	var items []model.PracticeItem
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode dhikr catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("catalog item %d has no id", i)
		}
		if _, dup := seen[it.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog id %q", it.ID)
		}
		seen[it.ID] = struct{}{}
		if it.Count <= 0 {
			return nil, fmt.Errorf("catalog item %q: count must be > 0", it.ID)
		}
		if !it.Category.Valid() {
			return nil, fmt.Errorf("catalog item %q: unknown category %q", it.ID, it.Category)
		}
	}
	return items, nil
}
