// Package i18n loads the static localized-string assets and resolves
// dotted-path lookups against them.
package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glucolog/glucolog/internal/domain"
)

// Bundle holds one parsed string table per locale, loaded once at
// construction. Lookups after that never fail: a missing locale falls
// back to English, and a missing path returns the path itself so the
// gap is visible on screen instead of crashing rendering.
type Bundle struct {
	tables map[domain.Language]map[string]interface{}
}

// Load reads "<dir>/<lang>.json" for every supported language. A
// missing file for a non-English locale is tolerated (lookups fall
// back to English); missing or malformed English is an error.
func Load(dir string) (*Bundle, error) {
	b := &Bundle{tables: make(map[domain.Language]map[string]interface{})}

	for _, lang := range domain.SupportedLanguages {
		path := filepath.Join(dir, string(lang)+".json")
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) && lang != domain.LangEnglish {
				continue
			}
			return nil, fmt.Errorf("failed to read locale file %s: %w", path, err)
		}

		var table map[string]interface{}
		if err := json.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("failed to parse locale file %s: %w", path, err)
		}
		b.tables[lang] = table
	}

	return b, nil
}

// T resolves a dotted path like "login.title" for the given locale.
// The path itself is the visible fallback for anything unresolvable.
func (b *Bundle) T(lang domain.Language, path string) string {
	if value, ok := lookup(b.tables[lang], path); ok {
		return value
	}
	if lang != domain.LangEnglish {
		if value, ok := lookup(b.tables[domain.LangEnglish], path); ok {
			return value
		}
	}
	return path
}

// lookup walks the nested document one path segment at a time.
func lookup(table map[string]interface{}, path string) (string, bool) {
	if table == nil {
		return "", false
	}

	node := table
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		value, ok := node[seg]
		if !ok {
			return "", false
		}
		if i == len(segments)-1 {
			s, ok := value.(string)
			return s, ok
		}
		node, ok = value.(map[string]interface{})
		if !ok {
			return "", false
		}
	}
	return "", false
}
