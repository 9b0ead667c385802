package search

import "strings"

// FuzzyQuery is an AND-match on one text field with typo tolerance, a list
// of words that exclude a document, and an ascending sort on the field's
// keyword subfield
type FuzzyQuery struct {
	Field   string
	Text    string
	Exclude []string
	Size    int
}

// Body renders the query DSL
func (q FuzzyQuery) Body() map[string]any {
	mustNot := make([]any, 0, len(q.Exclude))
	for _, w := range q.Exclude {
		mustNot = append(mustNot, map[string]any{"match": map[string]any{q.Field: w}})
	}
	return map[string]any{
		"from": 0,
		"size": q.Size,
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{map[string]any{
					"match": map[string]any{q.Field: map[string]any{
						"query":     strings.ToLower(strings.TrimSpace(q.Text)),
						"fuzziness": "AUTO",
						"operator":  "and",
					}},
				}},
				"must_not": mustNot,
			},
		},
		"sort": []any{map[string]any{q.Field + ".keyword": map[string]any{"order": "asc"}}},
	}
}
