package store

import (
	"context"
	"fmt"
	"math"

	"github.com/yeremiapane/venue-booking/models"
)

// Tables stay inside the floor plan, with a margin for the marker itself.
const (
	minPosition = 2.0
	maxPosition = 98.0
)

func clampPosition(v float64) float64 {
	return math.Max(minPosition, math.Min(maxPosition, v))
}

// UpdateTablePosition moves a table on the floor plan. The local snapshot is
// updated first; if the write fails the snapshot is re-fetched from the backend.
func (s *Store) UpdateTablePosition(ctx context.Context, id uint, x, y float64) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	if err := s.ensureTables(ctx); err != nil {
		return err
	}
	x, y = clampPosition(x), clampPosition(y)

	if !s.patchLocal(id, func(t *models.Table) {
		t.PositionX = x
		t.PositionY = y
	}) {
		return fmt.Errorf("table %d: %w", id, ErrNotFound)
	}

	err := s.backend.UpdateTable(ctx, id, map[string]interface{}{
		"position_x": x,
		"position_y": y,
	})
	s.metrics.ObserveMutation("update_table_position", err)
	if err != nil {
		s.logger().WithError(err).WithField("table_id", id).Error("Error updating table position")
		s.refetch(ctx)
		return fmt.Errorf("update position of table %d: %w", id, err)
	}
	return nil
}

// UpdateTable changes a table's attributes optimistically, reverting by
// re-fetch when the write fails.
func (s *Store) UpdateTable(ctx context.Context, id uint, patch models.TablePatch) (*models.Table, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	if err := validate.Struct(patch); err != nil {
		return nil, validationError(err)
	}

	if err := s.ensureTables(ctx); err != nil {
		return nil, err
	}
	view, ok := s.Table(id)
	if !ok {
		return nil, fmt.Errorf("table %d: %w", id, ErrNotFound)
	}
	merged := view.Table
	patch.Apply(&merged)
	if err := validate.Struct(merged); err != nil {
		return nil, validationError(err)
	}
	if patch.IsEmpty() {
		return &merged, nil
	}

	s.patchLocal(id, patch.Apply)

	err := s.backend.UpdateTable(ctx, id, patch.Updates())
	s.metrics.ObserveMutation("update_table", err)
	if err != nil {
		s.logger().WithError(err).WithField("table_id", id).Error("Error updating table")
		s.refetch(ctx)
		return nil, fmt.Errorf("update table %d: %w", id, err)
	}
	return &merged, nil
}

// AddTable creates a table; the backend assigns its id. The new table starts
// with no bookings and the store reconciles for the new table count.
func (s *Store) AddTable(ctx context.Context, table models.Table) (*models.Table, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	table.ID = 0
	if err := validate.Struct(table); err != nil {
		return nil, validationError(err)
	}
	if err := s.ensureTables(ctx); err != nil {
		return nil, err
	}

	if err := s.backend.CreateTable(ctx, &table); err != nil {
		s.metrics.ObserveMutation("add_table", err)
		s.logger().WithError(err).Error("Error adding table")
		return nil, fmt.Errorf("add table: %w", err)
	}

	s.mu.Lock()
	s.tables = append(s.tables, tableState{table: table})
	s.mu.Unlock()

	s.afterMutation(ctx, "add_table")
	return &table, nil
}

// DeleteTable removes a table together with its bookings.
func (s *Store) DeleteTable(ctx context.Context, id uint) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	if err := s.backend.DeleteTable(ctx, id); err != nil {
		s.metrics.ObserveMutation("delete_table", err)
		s.logger().WithError(err).WithField("table_id", id).Error("Error deleting table")
		return fmt.Errorf("delete table %d: %w", id, err)
	}

	s.mu.Lock()
	kept := s.tables[:0]
	for _, st := range s.tables {
		if st.table.ID != id {
			kept = append(kept, st)
		}
	}
	s.tables = kept
	s.mu.Unlock()

	s.afterMutation(ctx, "delete_table")
	return nil
}

func (s *Store) patchLocal(id uint, fn func(*models.Table)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tables {
		if s.tables[i].table.ID == id {
			fn(&s.tables[i].table)
			return true
		}
	}
	return false
}
