package evaluation

import (
	"context"
	"time"

	"github.com/allode/property-backend/internal/domain/entities"
)

const suggestionLimit = 10

// SuggestionProvider is the slice of the autocomplete service the runner needs.
type SuggestionProvider interface {
	Suggest(ctx context.Context, query string, limit int) ([]entities.Suggestion, error)
}

// Runner runs evaluation across a set of golden queries.
type Runner struct {
	provider   SuggestionProvider
	guardrails *Guardrails
}

func NewRunner(provider SuggestionProvider) *Runner {
	return &Runner{
		provider:   provider,
		guardrails: NewGuardrails(suggestionLimit),
	}
}

func (r *Runner) Run(ctx context.Context, queries []GoldenQuery) (*EvalSummary, error) {
	summary := &EvalSummary{
		TotalQueries: len(queries),
		ByClass:      make(map[QueryClass]*ClassSummary),
	}

	for _, gq := range queries {
		start := time.Now()

		suggestions, err := r.provider.Suggest(ctx, gq.Query, suggestionLimit)
		duration := time.Since(start)

		if err != nil {
			continue
		}

		values := make([]string, len(suggestions))
		for i, s := range suggestions {
			values[i] = s.Value
		}

		violations := r.guardrails.Check(suggestions)
		if gq.ExpectedFirst != "" && len(suggestions) > 0 && string(suggestions[0].Kind) != gq.ExpectedFirst {
			violations = append(violations, "first suggestion is "+string(suggestions[0].Kind)+", expected "+gq.ExpectedFirst)
		}

		result := EvalResult{
			QueryID:         gq.ID,
			Query:           gq.Query,
			Class:           gq.Class,
			RecallAt10:      RecallAtK(gq.ExpectedValues, suggestions, suggestionLimit),
			MRRAt10:         MRRAtK(gq.ExpectedValues, suggestions, suggestionLimit),
			ResultCount:     len(suggestions),
			RetrievedValues: values,
			Violations:      violations,
			Latency:         duration,
		}

		r.updateSummary(summary, result)
	}

	r.finalizeSummary(summary)
	return summary, nil
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult) {
	s.AvgRecallAt10 += res.RecallAt10
	s.AvgMRRAt10 += res.MRRAt10
	s.AvgLatency += res.Latency
	s.Violations += len(res.Violations)
	if res.ResultCount > 0 {
		s.QueriesWithHits++
	}

	if _, ok := s.ByClass[res.Class]; !ok {
		s.ByClass[res.Class] = &ClassSummary{}
	}
	cs := s.ByClass[res.Class]
	cs.Count++
	cs.AvgRecallAt10 += res.RecallAt10
	cs.AvgMRRAt10 += res.MRRAt10
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	if s.TotalQueries > 0 {
		n := float64(s.TotalQueries)
		s.AvgRecallAt10 /= n
		s.AvgMRRAt10 /= n
		s.AvgLatency /= time.Duration(s.TotalQueries)
	}

	for _, cs := range s.ByClass {
		if cs.Count > 0 {
			n := float64(cs.Count)
			cs.AvgRecallAt10 /= n
			cs.AvgMRRAt10 /= n
		}
	}
}
