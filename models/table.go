package models

import (
	"math"
	"time"
)

// Table is a bookable unit on the floor plan. Its availability is never stored;
// it is derived from the bookings loaded for a date.
type Table struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"type:varchar(100);not null" json:"name" validate:"required,max=100"`
	Section        string    `gorm:"type:varchar(100)" json:"section" validate:"max=100"`
	CapacityMin    int       `gorm:"not null;default:0" json:"capacity_min" validate:"gte=0"`
	CapacityMax    int       `gorm:"not null;default:0" json:"capacity_max" validate:"gte=0,gtefield=CapacityMin"`
	PricePerPerson float64   `gorm:"type:decimal(10,2);not null;default:0" json:"price_per_person" validate:"gte=0"`
	MinSpend       float64   `gorm:"type:decimal(10,2);not null;default:0" json:"min_spend" validate:"gte=0"`
	PositionX      float64   `gorm:"not null;default:50" json:"position_x" validate:"gte=0,lte=100"`
	PositionY      float64   `gorm:"not null;default:50" json:"position_y" validate:"gte=0,lte=100"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PriceFor returns the booking total for n guests: the per-person price,
// but never less than the table's minimum spend.
func (t Table) PriceFor(n int) float64 {
	return math.Max(float64(n)*t.PricePerPerson, t.MinSpend)
}

// TablePatch carries a partial update of a table's attributes. Nil fields are
// left untouched.
type TablePatch struct {
	Name           *string  `json:"name" validate:"omitempty,max=100"`
	Section        *string  `json:"section" validate:"omitempty,max=100"`
	CapacityMin    *int     `json:"capacity_min" validate:"omitempty,gte=0"`
	CapacityMax    *int     `json:"capacity_max" validate:"omitempty,gte=0"`
	PricePerPerson *float64 `json:"price_per_person" validate:"omitempty,gte=0"`
	MinSpend       *float64 `json:"min_spend" validate:"omitempty,gte=0"`
}

// Apply writes the non-nil fields of p onto t.
func (p TablePatch) Apply(t *Table) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Section != nil {
		t.Section = *p.Section
	}
	if p.CapacityMin != nil {
		t.CapacityMin = *p.CapacityMin
	}
	if p.CapacityMax != nil {
		t.CapacityMax = *p.CapacityMax
	}
	if p.PricePerPerson != nil {
		t.PricePerPerson = *p.PricePerPerson
	}
	if p.MinSpend != nil {
		t.MinSpend = *p.MinSpend
	}
}

// Updates returns the column map for the non-nil fields of p.
func (p TablePatch) Updates() map[string]interface{} {
	updates := make(map[string]interface{})
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Section != nil {
		updates["section"] = *p.Section
	}
	if p.CapacityMin != nil {
		updates["capacity_min"] = *p.CapacityMin
	}
	if p.CapacityMax != nil {
		updates["capacity_max"] = *p.CapacityMax
	}
	if p.PricePerPerson != nil {
		updates["price_per_person"] = *p.PricePerPerson
	}
	if p.MinSpend != nil {
		updates["min_spend"] = *p.MinSpend
	}
	return updates
}

// IsEmpty reports whether the patch changes nothing.
func (p TablePatch) IsEmpty() bool {
	return len(p.Updates()) == 0
}
