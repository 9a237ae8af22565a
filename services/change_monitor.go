package services

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/venue-booking/models"
	"github.com/yeremiapane/venue-booking/observability"
	"github.com/yeremiapane/venue-booking/realtime"
	"github.com/yeremiapane/venue-booking/utils"
	"gorm.io/gorm"
)

const defaultBatchSize = 100

// SessionInvalidator refreshes every live session after an external change.
// InvalidateAll refetches bookings only; RefreshAll also reloads the tables.
type SessionInvalidator interface {
	InvalidateAll(ctx context.Context) int
	RefreshAll(ctx context.Context) int
}

// ChangeBroadcaster pushes change events to connected clients.
type ChangeBroadcaster interface {
	BroadcastChange(event string, data realtime.ChangeData)
}

// ChangeMonitor polls db_changes, written by the database triggers, and turns
// each batch into at most one notification per collection.
type ChangeMonitor struct {
	DB        *gorm.DB
	Sessions  SessionInvalidator
	Hub       ChangeBroadcaster
	Metrics   *observability.Metrics
	StopChan  chan struct{}
	Interval  time.Duration
	BatchSize int

	stopOnce sync.Once
	done     chan struct{}
}

func NewChangeMonitor(db *gorm.DB, sessions SessionInvalidator, hub ChangeBroadcaster, metrics *observability.Metrics) *ChangeMonitor {
	return &ChangeMonitor{
		DB:        db,
		Sessions:  sessions,
		Hub:       hub,
		Metrics:   metrics,
		StopChan:  make(chan struct{}),
		Interval:  1 * time.Second,
		BatchSize: defaultBatchSize,
		done:      make(chan struct{}),
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		defer close(cm.done)
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := cm.CheckChanges(context.Background()); err != nil {
					utils.ErrorLogger.Printf("Error checking changes: %v", err)
				}
			case <-cm.StopChan:
				return
			}
		}
	}()
}

// Stop ends polling and waits for the running batch to finish.
func (cm *ChangeMonitor) Stop() {
	cm.stopOnce.Do(func() {
		close(cm.StopChan)
		<-cm.done
	})
}

// collectionChanges groups the rows of one collection within a batch.
type collectionChanges struct {
	actions   []string
	recordIDs []int64
	seen      map[string]bool
}

// CheckChanges processes one batch of unprocessed changes and returns its size.
func (cm *ChangeMonitor) CheckChanges(ctx context.Context) (int, error) {
	var changes []models.DBChange

	// Ambil perubahan yang belum diproses
	if err := cm.DB.WithContext(ctx).
		Where("processed = ?", false).
		Order("id ASC").
		Limit(cm.BatchSize).
		Find(&changes).Error; err != nil {
		return 0, err
	}
	if len(changes) == 0 {
		return 0, nil
	}

	order := make([]string, 0, 2)
	byCollection := make(map[string]*collectionChanges)
	ids := make([]uint, len(changes))
	for i, change := range changes {
		ids[i] = change.ID
		cm.Metrics.ChangeProcessed(change.Collection, change.ActionType)

		group, ok := byCollection[change.Collection]
		if !ok {
			group = &collectionChanges{seen: make(map[string]bool)}
			byCollection[change.Collection] = group
			order = append(order, change.Collection)
		}
		if !group.seen[change.ActionType] {
			group.seen[change.ActionType] = true
			group.actions = append(group.actions, change.ActionType)
		}
		group.recordIDs = append(group.recordIDs, change.RecordID)
	}

	for _, collection := range order {
		cm.dispatch(ctx, collection, byCollection[collection])
	}

	// Mark sebagai processed
	if err := cm.DB.WithContext(ctx).
		Model(&models.DBChange{}).
		Where("id IN ?", ids).
		Update("processed", true).Error; err != nil {
		return 0, err
	}

	utils.InfoLogger.Debugf("Successfully processed %d changes", len(changes))
	return len(changes), nil
}

func (cm *ChangeMonitor) dispatch(ctx context.Context, collection string, group *collectionChanges) {
	var event string
	switch collection {
	case "bookings":
		event = realtime.EventBookingChange
	case "tables":
		event = realtime.EventTableChange
	default:
		utils.ErrorLogger.Printf("Ignoring change for unknown collection %q", collection)
		return
	}

	if cm.Sessions != nil {
		var refreshed int
		if collection == "tables" {
			refreshed = cm.Sessions.RefreshAll(ctx)
		} else {
			refreshed = cm.Sessions.InvalidateAll(ctx)
		}
		utils.InfoLogger.WithField("collection", collection).Debugf("Reconciled %d sessions", refreshed)
	}
	if cm.Hub != nil {
		cm.Hub.BroadcastChange(event, realtime.ChangeData{
			Collection: collection,
			Actions:    group.actions,
			RecordIDs:  group.recordIDs,
		})
	}
}
