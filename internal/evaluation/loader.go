package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

var validDifficulties = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

// LoadGoldenQueries reads a golden query set from a JSON file. The set is
// returned as-is; callers validate it with ValidateGoldenQueries before use.
func LoadGoldenQueries(path string) ([]GoldenQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read golden query set %s: %w", path, err)
	}

	var queries []GoldenQuery
	if err := json.Unmarshal(data, &queries); err != nil {
		return nil, fmt.Errorf("parse golden query set %s: %w", path, err)
	}
	return queries, nil
}

// ValidateGoldenQueries rejects a set with missing or duplicate ids, blank
// query text, unknown classes or difficulties, blank expected values, or an
// expected first kind that no candidate source produces.
func ValidateGoldenQueries(queries []GoldenQuery) error {
	seen := make(map[string]struct{}, len(queries))

	for i, q := range queries {
		if q.ID == "" {
			return fmt.Errorf("golden query %d has no id", i)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("golden query id %q appears more than once", q.ID)
		}
		seen[q.ID] = struct{}{}

		if strings.TrimSpace(q.Query) == "" {
			return fmt.Errorf("golden query %q has no query text", q.ID)
		}
		if !q.Class.IsValid() {
			return fmt.Errorf("golden query %q: unknown class %q", q.ID, q.Class)
		}
		if !validDifficulties[q.Difficulty] {
			return fmt.Errorf("golden query %q: unknown difficulty %q", q.ID, q.Difficulty)
		}
		if q.ExpectedFirst != "" && !isSuggestionKind(q.ExpectedFirst) {
			return fmt.Errorf("golden query %q: no candidate source produces kind %q", q.ID, q.ExpectedFirst)
		}
		for _, v := range q.ExpectedValues {
			if strings.TrimSpace(v) == "" {
				return fmt.Errorf("golden query %q has a blank expected value", q.ID)
			}
		}
	}

	return nil
}
