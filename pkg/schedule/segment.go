package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"railmail-service/internal/domain/entity"
)

var clockRe = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})(?:\s*([AP])M)?$`)

const minutesPerDay = 24 * 60

// clockMinutes converts "20:30" or "8:30 PM" to minutes after midnight
func clockMinutes(value string) (int, bool) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return 0, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if minute > 59 {
		return 0, false
	}

	switch strings.ToUpper(m[3]) {
	case "A":
		if hour < 1 || hour > 12 {
			return 0, false
		}
		hour %= 12
	case "P":
		if hour < 1 || hour > 12 {
			return 0, false
		}
		hour = hour%12 + 12
	default:
		if hour > 23 {
			return 0, false
		}
	}
	return hour*60 + minute, true
}

// Duration returns the travel time between a departure and an arrival
// as "Xh Ym". Day offsets add whole days; a negative result rolls over
// to the next day.
func Duration(departure, arrival string, departureDay, arrivalDay int) (string, bool) {
	dep, ok := clockMinutes(departure)
	if !ok {
		return "", false
	}
	arr, ok := clockMinutes(arrival)
	if !ok {
		return "", false
	}

	total := arr - dep
	if arrivalDay > departureDay {
		total += (arrivalDay - departureDay) * minutesPerDay
	}
	if total < 0 {
		total += minutesPerDay
	}
	return fmt.Sprintf("%dh %dm", total/60, total%60), true
}

func timeOrEmpty(value string) string {
	v := strings.TrimSpace(value)
	if v == noTime {
		return ""
	}
	return v
}

// Segment computes departure, arrival and duration between two stops of
// a schedule. It fails when either code is missing or the destination
// does not come after the boarding stop. A reversed pair is never read
// off the timetable: a train number runs in one direction only, and the
// return train has its own number and times.
func Segment(s *entity.TrainSchedule, boardingCode, destinationCode string) (*entity.ScheduleLookup, bool) {
	if s == nil {
		return nil, false
	}
	from, to := s.StopIndex(boardingCode), s.StopIndex(destinationCode)
	if from < 0 || to < 0 || from >= to {
		return nil, false
	}

	boarding, destination := s.Stops[from], s.Stops[to]
	lookup := &entity.ScheduleLookup{
		TrainNumber:   s.TrainNumber,
		TrainName:     s.TrainName,
		DepartureTime: timeOrEmpty(boarding.DepartureTime),
		ArrivalTime:   timeOrEmpty(destination.ArrivalTime),
		Duration:      entity.NotAvailable,
	}

	depDay, arrDay := max(boarding.Day, 1), max(destination.Day, 1)
	if d, ok := Duration(lookup.DepartureTime, lookup.ArrivalTime, depDay, arrDay); ok {
		lookup.Duration = d
	}
	return lookup, true
}
