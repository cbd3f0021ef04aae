package services

import (
	"sort"
	"strings"

	"tippleai/models"
)

// Assembler produces the bounded RetrievedContext handed to the generator.
type Assembler struct {
	budget int
}

// NewAssembler caps assembled contexts at budget records, truncating
// lowest-ranked first.
func NewAssembler(budget int) *Assembler {
	if budget <= 0 {
		budget = 10
	}
	return &Assembler{budget: budget}
}

// Assemble deduplicates by identifier keeping the highest score per record,
// orders by relevance score descending (ties keep catalog insertion order)
// and applies the record budget. The user's preference snapshot is always
// carried, even when the retrieval path never touched the preference store.
func (a *Assembler) Assemble(intent models.QueryIntent, route routed, prefs models.PreferenceSnapshot) *models.RetrievedContext {
	seen := make(map[string]int, len(route.results))
	records := make([]models.SearchResult, 0, len(route.results))
	for _, result := range route.results {
		key := strings.ToLower(result.Record.Name)
		if i, dup := seen[key]; dup {
			if result.Score > records[i].Score {
				records[i] = result
			}
			continue
		}
		seen[key] = len(records)
		records = append(records, result)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score > records[j].Score
		}
		return records[i].Record.Position < records[j].Record.Position
	})

	if len(records) > a.budget {
		records = records[:a.budget]
	}

	return &models.RetrievedContext{
		Intent:           intent,
		Records:          records,
		Preferences:      prefs,
		NeedsPreferences: route.needsPreferences,
		UnknownReference: route.unknownReference,
	}
}
