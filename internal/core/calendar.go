package core

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/tripagent/tripagent/internal/store"
)

const planDateLayout = "2006-01-02"

// TripPlanCalendar renders a plan as an iCalendar document with one all-day
// event per day. Days without a YYYY-MM-DD date are left out.
func TripPlanCalendar(plan store.TripPlan) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//tripagent//trip plan//EN")

	for i, day := range plan.Days {
		date, err := time.Parse(planDateLayout, day.Date)
		if err != nil {
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("trip-%d-day-%d@tripagent", plan.ID, i+1))
		event.SetDtStampTime(plan.UpdatedAt)
		event.SetAllDayStartAt(date)
		event.SetAllDayEndAt(date.AddDate(0, 0, 1))
		event.SetSummary(fmt.Sprintf("%s: %s", plan.Destination, day.Title))
		if day.Accommodation != nil {
			event.SetLocation(fmt.Sprintf("%s, %s", day.Accommodation.Name, day.Accommodation.Address))
		}
		if desc := dayDescription(day); desc != "" {
			event.SetDescription(desc)
		}
	}
	return cal.Serialize()
}

func dayDescription(day store.DayPlan) string {
	var lines []string
	if day.Transportation != nil {
		lines = append(lines, fmt.Sprintf("Transportation: %s (%s)", day.Transportation.Type, day.Transportation.Details))
	}
	for _, a := range day.Activities {
		line := a.Name
		if a.Time != "" {
			line = a.Time + " " + line
		}
		if a.Location != "" {
			line += " @ " + a.Location
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
