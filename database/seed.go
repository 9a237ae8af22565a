package database

import (
	"context"
	"fmt"
	"os"

	"github.com/yeremiapane/venue-booking/models"
	"github.com/yeremiapane/venue-booking/utils"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// FloorPlan is the YAML layout used to seed the tables collection.
type FloorPlan struct {
	Tables []FloorPlanTable `yaml:"tables"`
}

type FloorPlanTable struct {
	Name     string `yaml:"name"`
	Section  string `yaml:"section"`
	Capacity struct {
		Min int `yaml:"min"`
		Max int `yaml:"max"`
	} `yaml:"capacity"`
	PricePerPerson float64 `yaml:"price_per_person"`
	MinSpend       float64 `yaml:"min_spend"`
	Position       struct {
		X float64 `yaml:"x"`
		Y float64 `yaml:"y"`
	} `yaml:"position"`
}

func (t FloorPlanTable) model() models.Table {
	return models.Table{
		Name:           t.Name,
		Section:        t.Section,
		CapacityMin:    t.Capacity.Min,
		CapacityMax:    t.Capacity.Max,
		PricePerPerson: t.PricePerPerson,
		MinSpend:       t.MinSpend,
		PositionX:      t.Position.X,
		PositionY:      t.Position.Y,
	}
}

// ParseFloorPlan decodes a YAML floor plan.
func ParseFloorPlan(data []byte) (*FloorPlan, error) {
	var plan FloorPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse floor plan: %w", err)
	}
	for i, t := range plan.Tables {
		if t.Name == "" {
			return nil, fmt.Errorf("floor plan table %d: name is required", i+1)
		}
		if t.Capacity.Max < t.Capacity.Min {
			return nil, fmt.Errorf("floor plan table %q: capacity max below min", t.Name)
		}
	}
	return &plan, nil
}

// LoadFloorPlan reads a floor plan file from disk.
func LoadFloorPlan(path string) (*FloorPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFloorPlan(data)
}

// SeedTables inserts the plan's tables whose name is not taken yet and
// returns how many were created.
func SeedTables(ctx context.Context, db *gorm.DB, plan *FloorPlan) (int, error) {
	created := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range plan.Tables {
			var count int64
			if err := tx.Model(&models.Table{}).Where("name = ?", t.Name).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			table := t.model()
			if err := tx.Create(&table).Error; err != nil {
				return fmt.Errorf("seed table %q: %w", t.Name, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	utils.InfoLogger.Printf("Seeded %d tables", created)
	return created, nil
}
