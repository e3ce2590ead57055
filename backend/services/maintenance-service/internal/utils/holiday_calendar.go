package utils

import (
	"time"

	cal "github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// maintenanceCalendar holds the days building access is usually limited.
var maintenanceCalendar = func() *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(
		us.NewYear,
		us.MlkDay,
		us.PresidentsDay,
		us.MemorialDay,
		us.Juneteenth,
		us.IndependenceDay,
		us.LaborDay,
		us.ThanksgivingDay,
		us.ChristmasDay,
	)
	return c
}()

// ObservedHoliday names the holiday observed on day, if any. A holiday
// falling on a weekend is observed on the nearest weekday.
func ObservedHoliday(day time.Time) (string, bool) {
	_, observed, h := maintenanceCalendar.IsHoliday(day)
	if !observed || h == nil {
		return "", false
	}
	return h.Name, true
}
