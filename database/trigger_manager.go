package database

import (
	"fmt"
	"strings"

	"github.com/yeremiapane/venue-booking/utils"
	"gorm.io/gorm"
)

// watchedTables are the collections whose row changes are written to db_changes.
var watchedTables = []string{"bookings", "tables"}

var triggerActions = []struct {
	event string
	row   string
}{
	{"INSERT", "NEW"},
	{"UPDATE", "NEW"},
	{"DELETE", "OLD"},
}

func triggerName(table, event string) string {
	return fmt.Sprintf("%s_after_%s", table, strings.ToLower(event))
}

// triggerStatements builds the statements for the connected dialect.
func triggerStatements(dialect string) ([]string, error) {
	var stmts []string
	for _, table := range watchedTables {
		for _, a := range triggerActions {
			name := triggerName(table, a.event)
			switch dialect {
			case "mysql":
				stmts = append(stmts,
					fmt.Sprintf("DROP TRIGGER IF EXISTS %s", name),
					fmt.Sprintf(`CREATE TRIGGER %s AFTER %s ON %s FOR EACH ROW
INSERT INTO db_changes (table_name, record_id, action_type, changed_at, processed)
VALUES ('%s', %s.id, '%s', NOW(), FALSE)`, name, a.event, table, table, a.row, a.event))
			case "sqlite":
				stmts = append(stmts, fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %s AFTER %s ON %s
BEGIN
	INSERT INTO db_changes (table_name, record_id, action_type, changed_at, processed)
	VALUES ('%s', %s.id, '%s', CURRENT_TIMESTAMP, 0);
END`, name, a.event, table, table, a.row, a.event))
			default:
				return nil, fmt.Errorf("change triggers not supported for dialect %q", dialect)
			}
		}
	}
	return stmts, nil
}

// ExecuteTriggers installs AFTER INSERT/UPDATE/DELETE triggers on the watched
// tables. Each trigger appends one row to db_changes.
func ExecuteTriggers(db *gorm.DB) error {
	dialect := db.Dialector.Name()
	stmts, err := triggerStatements(dialect)
	if err != nil {
		return err
	}

	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			utils.ErrorLogger.Printf("Error executing trigger: %v\nStatement: %s", err, stmt)
			return err
		}
	}
	utils.InfoLogger.Printf("Installed %d change triggers (%s)", len(watchedTables)*len(triggerActions), dialect)

	if dialect != "mysql" {
		return nil
	}

	// Verifikasi trigger
	var triggers []struct {
		TriggerName string
		EventType   string
		TableName   string
		Timing      string
	}
	db.Raw(`
        SELECT
            TRIGGER_NAME as trigger_name,
            EVENT_MANIPULATION as event_type,
            EVENT_OBJECT_TABLE as table_name,
            ACTION_TIMING as timing
        FROM information_schema.triggers
        WHERE TRIGGER_SCHEMA = DATABASE()
    `).Scan(&triggers)

	for _, t := range triggers {
		utils.InfoLogger.Printf("Trigger verified: %s (%s %s on %s)",
			t.TriggerName, t.Timing, t.EventType, t.TableName)
	}
	return nil
}
