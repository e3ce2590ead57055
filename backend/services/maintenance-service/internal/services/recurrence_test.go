package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-testhelpers"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func masterTask(r models.RecurrenceType, start, end time.Time) models.MaintenanceTask {
	return models.MaintenanceTask{
		ID:          uuid.New(),
		BuildingID:  uuid.New(),
		Name:        "Filter change",
		Description: utils.StrPtr("Replace all filters"),
		Specialty:   "HVAC",
		Recurrence:  r,
		Status:      models.TaskStatusSent,
		Cost:        utils.Ptr(120.0),
		StartDate:   &start,
		EndDate:     &end,
	}
}

func taskDates(list []models.MaintenanceTask) []time.Time {
	out := make([]time.Time, len(list))
	for i, t := range list {
		out[i] = *t.TaskDate
	}
	return out
}

func TestExpandRecurringTask(t *testing.T) {
	day := testhelpers.Day

	t.Run("Should keep month overflow from date arithmetic", func(t *testing.T) {
		m := masterTask(models.RecurrenceMonthly, day(2024, 1, 31), day(2024, 4, 30))

		got := taskDates(ExpandRecurringTask(m))

		assert.Equal(t, []time.Time{day(2024, 1, 31), day(2024, 3, 2), day(2024, 4, 2)}, got)
	})

	cases := []struct {
		name       string
		recurrence models.RecurrenceType
		start, end time.Time
		want       int
	}{
		{"weekly over four weeks is inclusive", models.RecurrenceWeekly, day(2025, 1, 1), day(2025, 1, 29), 5},
		{"biweekly", models.RecurrenceBiWeekly, day(2025, 1, 1), day(2025, 1, 28), 2},
		{"quarterly over a year", models.RecurrenceQuarterly, day(2025, 1, 15), day(2025, 12, 31), 4},
		{"semi-annually", models.RecurrenceSemiAnnually, day(2025, 1, 1), day(2026, 1, 1), 3},
		{"annually", models.RecurrenceAnnually, day(2020, 2, 29), day(2023, 3, 1), 4},
		{"same start and end", models.RecurrenceMonthly, day(2025, 5, 5), day(2025, 5, 5), 1},
		{"start after end", models.RecurrenceWeekly, day(2025, 2, 1), day(2025, 1, 1), 0},
	}
	for _, tc := range cases {
		t.Run("Should expand "+tc.name, func(t *testing.T) {
			m := masterTask(tc.recurrence, tc.start, tc.end)

			got := ExpandRecurringTask(m)

			require.Len(t, got, tc.want)
			for _, inst := range got {
				assert.False(t, inst.TaskDate.Before(tc.start))
				assert.False(t, inst.TaskDate.After(tc.end))
			}
		})
	}

	t.Run("Should shape every instance as a one-time child of the master", func(t *testing.T) {
		m := masterTask(models.RecurrenceWeekly, day(2025, 3, 1), day(2025, 3, 20))

		got := ExpandRecurringTask(m)

		require.Len(t, got, 3)
		for _, inst := range got {
			assert.Equal(t, uuid.Nil, inst.ID)
			assert.Equal(t, models.RecurrenceOneTime, inst.Recurrence)
			assert.Equal(t, models.TaskStatusNew, inst.Status)
			assert.Nil(t, inst.StartDate)
			assert.Nil(t, inst.EndDate)
			require.NotNil(t, inst.RecurringTaskID)
			assert.Equal(t, m.ID, *inst.RecurringTaskID)
			assert.Equal(t, m.Name, inst.Name)
			assert.Equal(t, m.BuildingID, inst.BuildingID)
			assert.Equal(t, *m.Cost, *inst.Cost)
		}
		assert.NotSame(t, got[0].Cost, got[1].Cost)
	})

	t.Run("Should be deterministic", func(t *testing.T) {
		m := masterTask(models.RecurrenceQuarterly, day(2024, 11, 30), day(2026, 2, 28))

		assert.Equal(t, ExpandRecurringTask(m), ExpandRecurringTask(m))
	})

	t.Run("Should return nothing for one-time or incomplete tasks", func(t *testing.T) {
		oneTime := masterTask(models.RecurrenceOneTime, day(2025, 1, 1), day(2025, 12, 31))
		noEnd := masterTask(models.RecurrenceWeekly, day(2025, 1, 1), day(2025, 12, 31))
		noEnd.EndDate = nil
		noStart := masterTask(models.RecurrenceWeekly, day(2025, 1, 1), day(2025, 12, 31))
		noStart.StartDate = nil

		assert.Empty(t, ExpandRecurringTask(oneTime))
		assert.Empty(t, ExpandRecurringTask(noEnd))
		assert.Empty(t, ExpandRecurringTask(noStart))
	})
}
