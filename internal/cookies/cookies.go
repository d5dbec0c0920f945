// Package cookies loads externally supplied cookie records. The pipeline
// treats them as an opaque credential blob handed to the fetcher.
package cookies

import (
	"encoding/json"
	"fmt"
	"os"
)

// Record is a single browser cookie export entry.
type Record struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

type wrappedExport struct {
	Cookies []Record `json:"cookies"`
}

// Load reads cookie records from a JSON file. Both a bare list and the
// `{"cookies": [...]}` export wrapper are accepted.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cookies file: %w", err)
	}
	return Parse(data)
}

// Parse decodes cookie records from raw JSON.
func Parse(data []byte) ([]Record, error) {
	var list []Record
	if err := json.Unmarshal(data, &list); err == nil {
		return sanitize(list), nil
	}
	var wrapped wrappedExport
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode cookies: %w", err)
	}
	return sanitize(wrapped.Cookies), nil
}

func sanitize(in []Record) []Record {
	out := make([]Record, 0, len(in))
	for _, c := range in {
		if c.Name == "" || c.Value == "" {
			continue
		}
		if c.Path == "" {
			c.Path = "/"
		}
		out = append(out, c)
	}
	return out
}
