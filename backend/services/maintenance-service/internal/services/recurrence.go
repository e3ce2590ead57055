package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

// stepRecurrence advances cursor by one period. Month arithmetic goes
// through time.AddDate, so Jan 31 + 1 month normalises to early March.
func stepRecurrence(cursor time.Time, r models.RecurrenceType) (time.Time, bool) {
	switch r {
	case models.RecurrenceWeekly:
		return cursor.AddDate(0, 0, 7), true
	case models.RecurrenceBiWeekly:
		return cursor.AddDate(0, 0, 14), true
	case models.RecurrenceMonthly:
		return cursor.AddDate(0, 1, 0), true
	case models.RecurrenceQuarterly:
		return cursor.AddDate(0, 3, 0), true
	case models.RecurrenceSemiAnnually:
		return cursor.AddDate(0, 6, 0), true
	case models.RecurrenceAnnually:
		return cursor.AddDate(1, 0, 0), true
	}
	return cursor, false
}

/*
ExpandRecurringTask turns a master recurring task into its dated one-time
instances, from StartDate through EndDate inclusive. Every instance is a
copy of the master with Recurrence=OneTime, Status=New, TaskDate set,
RecurringTaskID pointing at the master, no start/end dates and a zero ID.

A OneTime master, a missing date or StartDate after EndDate yields nothing.
The result depends only on the input; persisting it and de-duplicating
against existing instances is the caller's job.
*/
func ExpandRecurringTask(master models.MaintenanceTask) []models.MaintenanceTask {
	if master.Recurrence == models.RecurrenceOneTime || master.StartDate == nil || master.EndDate == nil {
		return nil
	}
	if _, ok := stepRecurrence(*master.StartDate, master.Recurrence); !ok {
		return nil
	}

	end := *master.EndDate
	var out []models.MaintenanceTask
	for cursor := *master.StartDate; !cursor.After(end); {
		out = append(out, newInstance(master, cursor))
		cursor, _ = stepRecurrence(cursor, master.Recurrence)
	}
	return out
}

func newInstance(master models.MaintenanceTask, date time.Time) models.MaintenanceTask {
	inst := master
	inst.Versioned = models.Versioned{}
	inst.ID = uuid.Nil
	inst.Recurrence = models.RecurrenceOneTime
	inst.Status = models.TaskStatusNew
	inst.StartDate = nil
	inst.EndDate = nil

	d := date
	inst.TaskDate = &d
	masterID := master.ID
	inst.RecurringTaskID = &masterID

	// no shared pointers between instances
	inst.ComponentID = clonePtr(master.ComponentID)
	inst.UnitID = clonePtr(master.UnitID)
	inst.Description = clonePtr(master.Description)
	inst.Cost = clonePtr(master.Cost)
	inst.ProviderID = clonePtr(master.ProviderID)
	return inst
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
