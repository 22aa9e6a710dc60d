// Package detection merges classifier output into a nutrient summary.
package detection

import "github.com/yanqian/nutrient-tracker/internal/domain/nutrient"

// Item is one (label, confidence) pair from the external classifier.
type Item struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Highlight flags a nutrient the detected foods are rich in.
type Highlight string

const (
	HighProtein Highlight = "high_protein"
	HighCalcium Highlight = "high_calcium"
	HighIron    Highlight = "high_iron"
)

// A summary is highlighted when its total strictly exceeds these.
const (
	HighProteinG  = 15.0
	HighCalciumMg = 200.0
	HighIronMg    = 2.0
)

// Summary is the at-a-glance nutrient total for a set of detections.
type Summary struct {
	Values            nutrient.Values `json:"values"`
	ReferenceQuantity string          `json:"referenceQuantity"`
	Found             bool            `json:"found"`
	Matched           []string        `json:"matched"`
	Unresolved        []string        `json:"unresolved"`
	Highlights        []Highlight     `json:"highlights"`
	Items             []Item          `json:"items"`
}

// Summarize sums the per-100g values of every distinct resolvable label once.
// Labels are deduplicated on the label text alone; confidence is passed
// through for display. Unresolved labels are listed but contribute nothing.
func Summarize(table *nutrient.Table, items []Item) Summary {
	summary := Summary{
		Matched:    []string{},
		Unresolved: []string{},
		Highlights: []Highlight{},
		Items:      make([]Item, len(items)),
	}
	copy(summary.Items, items)

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.Label]; dup {
			continue
		}
		seen[item.Label] = struct{}{}

		row, ok := table.Lookup(item.Label)
		if !ok {
			summary.Unresolved = append(summary.Unresolved, item.Label)
			continue
		}
		summary.Values = summary.Values.Add(row.Values)
		summary.ReferenceQuantity = row.ReferenceQuantity
		summary.Matched = append(summary.Matched, row.Food)
	}
	summary.Found = len(summary.Matched) > 0
	summary.Highlights = Highlights(summary.Values)
	return summary
}

// Highlights lists the nutrients in v above their highlight threshold,
// always in protein, calcium, iron order.
func Highlights(v nutrient.Values) []Highlight {
	out := []Highlight{}
	if v.ProteinG > HighProteinG {
		out = append(out, HighProtein)
	}
	if v.CalciumMg > HighCalciumMg {
		out = append(out, HighCalcium)
	}
	if v.IronMg > HighIronMg {
		out = append(out, HighIron)
	}
	return out
}

// Labels returns the distinct labels of items in first-seen order.
func Labels(items []Item) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.Label]; dup {
			continue
		}
		seen[item.Label] = struct{}{}
		out = append(out, item.Label)
	}
	return out
}
