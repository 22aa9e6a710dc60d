package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/yanqian/nutrient-tracker/internal/domain/nutrient"
)

// Slot names the meal an entry belongs to.
type Slot string

const (
	SlotBreakfast Slot = "breakfast"
	SlotLunch     Slot = "lunch"
	SlotDinner    Slot = "dinner"
	SlotSnack     Slot = "snack"
	SlotUnlabeled Slot = "unlabeled"
)

// ParseSlot accepts the canonical names case-insensitively; "" means unlabeled.
func ParseSlot(s string) (Slot, error) {
	switch slot := Slot(strings.ToLower(strings.TrimSpace(s))); slot {
	case "":
		return SlotUnlabeled, nil
	case SlotBreakfast, SlotLunch, SlotDinner, SlotSnack, SlotUnlabeled:
		return slot, nil
	default:
		return "", fmt.Errorf("unknown meal slot %q", s)
	}
}

// Entry is one saved meal line. Entries are never mutated once added.
type Entry struct {
	ID        string          `json:"id"`
	Date      Date            `json:"date"`
	Slot      Slot            `json:"slot"`
	Food      string          `json:"food"`
	QuantityG float64         `json:"quantityG"`
	Nutrients nutrient.Values `json:"nutrients"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Unit is the only quantity unit the ledger records.
const Unit = "g"

// Record is the flat row shape exchanged with external row stores. The
// field names are a stable contract with previously saved data.
type Record struct {
	Date     string  `json:"Date"`
	Meal     string  `json:"Meal"`
	Food     string  `json:"Food"`
	Quantity float64 `json:"Quantity"`
	Unit     string  `json:"Unit"`
	Calories float64 `json:"Calories"`
	Protein  float64 `json:"Protein"`
	Carbs    float64 `json:"Carbs"`
	Fat      float64 `json:"Fat"`
	Iron     float64 `json:"Iron"`
	Calc     float64 `json:"Calc"`
}

// Columns lists Record fields in their persisted order.
var Columns = []string{"Date", "Meal", "Food", "Quantity", "Unit", "Calories", "Protein", "Carbs", "Fat", "Iron", "Calc"}

// ToRecord flattens e.
func (e Entry) ToRecord() Record {
	return Record{
		Date:     e.Date.String(),
		Meal:     string(e.Slot),
		Food:     e.Food,
		Quantity: e.QuantityG,
		Unit:     Unit,
		Calories: e.Nutrients.EnergyKcal,
		Protein:  e.Nutrients.ProteinG,
		Carbs:    e.Nutrients.CarbsG,
		Fat:      e.Nutrients.FatG,
		Iron:     e.Nutrients.IronMg,
		Calc:     e.Nutrients.CalciumMg,
	}
}

// FromRecord rebuilds an entry. Unrecognized meal names become unlabeled.
func FromRecord(r Record) (Entry, error) {
	date, err := ParseDate(strings.TrimSpace(r.Date))
	if err != nil {
		return Entry{}, err
	}
	slot, err := ParseSlot(r.Meal)
	if err != nil {
		slot = SlotUnlabeled
	}
	return Entry{
		Date:      date,
		Slot:      slot,
		Food:      r.Food,
		QuantityG: r.Quantity,
		Nutrients: nutrient.Values{
			EnergyKcal: r.Calories,
			ProteinG:   r.Protein,
			FatG:       r.Fat,
			CarbsG:     r.Carbs,
			CalciumMg:  r.Calc,
			IronMg:     r.Iron,
		},
	}, nil
}
