// Package nutrient holds the per-100g reference table and the resolver that
// scales reference rows to a consumed quantity.
package nutrient

import (
	"fmt"
	"sort"
)

// ReferenceGrams is the quantity every table row is expressed in.
const ReferenceGrams = 100.0

// Values is the set of tracked nutrients for some quantity of food.
type Values struct {
	EnergyKcal float64 `json:"energyKcal"`
	ProteinG   float64 `json:"proteinG"`
	FatG       float64 `json:"fatG"`
	CarbsG     float64 `json:"carbsG"`
	CalciumMg  float64 `json:"calciumMg"`
	IronMg     float64 `json:"ironMg"`
}

// Add returns the field-wise sum of v and o.
func (v Values) Add(o Values) Values {
	return Values{
		EnergyKcal: v.EnergyKcal + o.EnergyKcal,
		ProteinG:   v.ProteinG + o.ProteinG,
		FatG:       v.FatG + o.FatG,
		CarbsG:     v.CarbsG + o.CarbsG,
		CalciumMg:  v.CalciumMg + o.CalciumMg,
		IronMg:     v.IronMg + o.IronMg,
	}
}

// Scale multiplies every field by k.
func (v Values) Scale(k float64) Values {
	return Values{
		EnergyKcal: v.EnergyKcal * k,
		ProteinG:   v.ProteinG * k,
		FatG:       v.FatG * k,
		CarbsG:     v.CarbsG * k,
		CalciumMg:  v.CalciumMg * k,
		IronMg:     v.IronMg * k,
	}
}

// IsZero reports whether every field is zero.
func (v Values) IsZero() bool {
	return v == Values{}
}

// Row is one reference entry keyed by food name.
type Row struct {
	Food              string `json:"food"`
	ReferenceQuantity string `json:"referenceQuantity"`
	Values            Values `json:"values"`
}

// Table is an immutable food-name index built once at startup.
type Table struct {
	rows  map[string]Row
	foods []string
}

// NewTable indexes rows by exact food name. Duplicate or empty names are rejected.
func NewTable(rows []Row) (*Table, error) {
	index := make(map[string]Row, len(rows))
	foods := make([]string, 0, len(rows))
	for i, row := range rows {
		if row.Food == "" {
			return nil, fmt.Errorf("row %d: food name is empty", i+1)
		}
		if _, dup := index[row.Food]; dup {
			return nil, fmt.Errorf("row %d: duplicate food %q", i+1, row.Food)
		}
		index[row.Food] = row
		foods = append(foods, row.Food)
	}
	sort.Strings(foods)
	return &Table{rows: index, foods: foods}, nil
}

// Lookup is case and whitespace exact.
func (t *Table) Lookup(food string) (Row, bool) {
	if t == nil {
		return Row{}, false
	}
	row, ok := t.rows[food]
	return row, ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Foods lists every food name in sorted order.
func (t *Table) Foods() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.foods))
	copy(out, t.foods)
	return out
}
