package nutrient

// Resolution is a reference row scaled to a consumed quantity.
type Resolution struct {
	Food              string  `json:"food"`
	QuantityG         float64 `json:"quantityG"`
	ReferenceQuantity string  `json:"referenceQuantity"`
	Base              Values  `json:"base"`
	Scaled            Values  `json:"scaled"`
}

// Resolver joins food labels against a Table.
type Resolver struct {
	table *Table
}

// NewResolver wraps table.
func NewResolver(table *Table) *Resolver {
	return &Resolver{table: table}
}

// Table exposes the underlying reference table.
func (r *Resolver) Table() *Table {
	return r.table
}

// Resolve scales the row for food by grams/100. The boolean is false for
// foods absent from the table; callers must exclude those from totals.
func (r *Resolver) Resolve(food string, grams float64) (Resolution, bool) {
	row, ok := r.table.Lookup(food)
	if !ok {
		return Resolution{}, false
	}
	return Resolution{
		Food:              row.Food,
		QuantityG:         grams,
		ReferenceQuantity: row.ReferenceQuantity,
		Base:              row.Values,
		Scaled:            row.Values.Scale(grams / ReferenceGrams),
	}, true
}
