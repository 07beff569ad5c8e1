package evaluation

import (
	"fmt"
	"strings"

	"github.com/allode/property-backend/internal/domain/entities"
)

// Guardrails checks structural invariants on a suggestion list that must
// hold for every query regardless of relevance scores.
type Guardrails struct {
	limit int
}

func NewGuardrails(limit int) *Guardrails {
	if limit <= 0 {
		limit = 10
	}
	return &Guardrails{limit: limit}
}

// Check returns one violation string per broken invariant: result count over
// the limit, a contains match ranked above a prefix match, or the same value
// emitted twice for one suggestion kind.
func (g *Guardrails) Check(suggestions []entities.Suggestion) []string {
	var violations []string

	if len(suggestions) > g.limit {
		violations = append(violations, fmt.Sprintf("returned %d suggestions, limit is %d", len(suggestions), g.limit))
	}

	seenContains := false
	for _, s := range suggestions {
		if s.Relevance == entities.RelevanceContains {
			seenContains = true
		} else if seenContains {
			violations = append(violations, fmt.Sprintf("prefix match %q ranked below a contains match", s.Value))
			break
		}
	}

	seen := make(map[string]struct{}, len(suggestions))
	for _, s := range suggestions {
		key := string(s.Kind) + ":" + strings.ToLower(s.Value)
		if _, dup := seen[key]; dup {
			violations = append(violations, fmt.Sprintf("duplicate %s suggestion %q", s.Kind, s.Value))
			continue
		}
		seen[key] = struct{}{}
	}

	return violations
}
