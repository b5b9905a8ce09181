package event

import (
	"time"

	"github.com/google/uuid"
)

// buildHistory turns a change set into ledger rows for one actor and one
// instant. Rows keep the change-set order.
func buildHistory(eventID, actorID uuid.UUID, changes []Change, at time.Time) []History {
	rows := make([]History, 0, len(changes))
	for _, c := range changes {
		rows = append(rows, History{
			ID:        uuid.New(),
			EventID:   eventID,
			UserID:    actorID,
			FieldName: c.FieldName,
			OldValue:  c.OldValue,
			NewValue:  c.NewValue,
			ChangedAt: at,
		})
	}
	return rows
}

// historyToChanges converts stored ledger rows back into change records,
// preserving row order. Status rows are skipped: they describe transitions,
// not content.
func historyToChanges(rows []History) []Change {
	var changes []Change
	for _, row := range rows {
		if row.FieldName == FieldStatus {
			continue
		}
		changes = append(changes, Change{
			FieldName: row.FieldName,
			OldValue:  row.OldValue,
			NewValue:  row.NewValue,
		})
	}
	return changes
}
