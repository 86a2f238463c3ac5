package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type seedFile struct {
	Items []Item `json:"items"`
}

// LoadSeed reads local catalog items from a JSON file holding either an
// array of items or an object with an "items" array.
func LoadSeed(path string) ([]Item, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog seed: %w", err)
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) ([]Item, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, nil
	}
	var items []Item
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decoding catalog seed: %w", err)
		}
	} else {
		var file seedFile
		if err := json.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("decoding catalog seed: %w", err)
		}
		items = file.Items
	}

	out := make([]Item, 0, len(items))
	for _, item := range items {
		item = item.normalize()
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("catalog seed: %w", err)
		}
		out = append(out, item)
	}
	return out, nil
}
