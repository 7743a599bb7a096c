package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"railmail-service/internal/domain/entity"
)

var (
	// 1 P NARENDER RAJU 53 Male N/A CNF S6 10
	passengerTableRe = regexp.MustCompile(`(?i)(\d+)\s+([A-Z][A-Z\s]+?)\s+(\d{1,3})\s+(Male|Female|M|F)\s+N/A\s+(CNF|WL|RAC|CAN|RLWL|GNWL|PQWL)\s+([A-Z0-9]+)\s+(\d+)`)

	// 1. Ravi Kumar, 34 yrs, M, CNF
	passengerListRe = regexp.MustCompile(`(?i)(\d+)\.\s*([A-Za-z\s]+?),?\s*(\d+)\s*(?:yrs?|years?)?,?\s*(M|F|Male|Female)\s*,?\s*(CNF|WL|RAC|RLWL)`)

	adultCountRe = regexp.MustCompile(`(?i)Adult\s*[:\s]\s*(\d+)`)
)

const (
	placeholderAge = 30
	// The adult count is clamped to this when synthesizing passengers.
	// IRCTC books at most six per ticket, so a larger count is a misread.
	maxPlaceholders = 6
)

// NormalizeStatus maps a raw IRCTC booking status to its normalized form.
// Passengers are only ever Confirmed, Waitlisted or RAC: a CAN row stays
// Confirmed and cancellation is resolved for the whole ticket from the raw
// token.
func NormalizeStatus(raw string) entity.BookingStatus {
	switch strings.ToUpper(raw) {
	case "RAC":
		return entity.StatusRAC
	case "WL", "RLWL", "GNWL", "PQWL":
		return entity.StatusWaitlisted
	default:
		return entity.StatusConfirmed
	}
}

func parseGender(raw string) entity.Gender {
	if strings.HasPrefix(strings.ToUpper(raw), "M") {
		return entity.GenderMale
	}
	return entity.GenderFemale
}

// ParsePassengers reads the passenger manifest from normalized text.
// The result always holds at least one passenger.
func ParsePassengers(text string) []entity.ParsedPassenger {
	if passengers := parsePassengerTable(text); len(passengers) > 0 {
		return passengers
	}
	if passengers := parsePassengerList(text); len(passengers) > 0 {
		return passengers
	}
	return placeholderPassengers(text)
}

func parsePassengerTable(text string) []entity.ParsedPassenger {
	var passengers []entity.ParsedPassenger
	for _, m := range passengerTableRe.FindAllStringSubmatch(text, -1) {
		age, _ := strconv.Atoi(m[3])
		raw := strings.ToUpper(m[5])
		coach, seat := strings.ToUpper(m[6]), m[7]

		passengers = append(passengers, entity.ParsedPassenger{
			Name:                 strings.TrimSpace(m[2]),
			Age:                  age,
			Gender:               parseGender(m[4]),
			SeatAssignment:       coach + "-" + seat,
			Status:               NormalizeStatus(raw),
			RawBookingStatus:     raw,
			CurrentStatusDisplay: coach + "/" + seat,
		})
	}
	return passengers
}

func parsePassengerList(text string) []entity.ParsedPassenger {
	var passengers []entity.ParsedPassenger
	for _, m := range passengerListRe.FindAllStringSubmatch(text, -1) {
		age, _ := strconv.Atoi(m[3])
		raw := strings.ToUpper(m[5])

		passengers = append(passengers, entity.ParsedPassenger{
			Name:                 strings.TrimSpace(m[2]),
			Age:                  age,
			Gender:               parseGender(m[4]),
			SeatAssignment:       entity.SeatTBA,
			Status:               NormalizeStatus(raw),
			RawBookingStatus:     raw,
			CurrentStatusDisplay: raw,
		})
	}
	return passengers
}

func placeholderPassengers(text string) []entity.ParsedPassenger {
	count := 1
	if m := adultCountRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			count = min(n, maxPlaceholders)
		}
	}

	passengers := make([]entity.ParsedPassenger, 0, count)
	for i := 1; i <= count; i++ {
		passengers = append(passengers, entity.ParsedPassenger{
			Name:                 fmt.Sprintf("Passenger %d", i),
			Age:                  placeholderAge,
			Gender:               entity.GenderMale,
			SeatAssignment:       entity.SeatTBA,
			Status:               entity.StatusConfirmed,
			RawBookingStatus:     string(entity.StatusConfirmed),
			CurrentStatusDisplay: string(entity.StatusConfirmed),
		})
	}
	return passengers
}
