package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// extractor pairs a pattern with the function that turns its submatches
// into a value. A false return lets the next extractor in the chain try.
type extractor[T any] struct {
	re      *regexp.Regexp
	extract func(m []string) (T, bool)
}

// firstMatch runs the chain in order and returns the first value found
func firstMatch[T any](text string, chain []extractor[T]) (T, bool) {
	for _, e := range chain {
		m := e.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := e.extract(m); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// group returns submatch 1, trimmed
func group(m []string) (string, bool) {
	v := strings.TrimSpace(m[1])
	return v, v != ""
}

// TrainID is a train number with the name printed next to it
type TrainID struct {
	Number string
	Name   string
}

// Station is a station name with its code, e.g. "NELLORE (NLR)"
type Station struct {
	Name string
	Code string
}

func trainID(m []string) (TrainID, bool) {
	return TrainID{Number: m[1], Name: strings.TrimSpace(m[2])}, m[1] != ""
}

func station(m []string) (Station, bool) {
	code := strings.ToUpper(strings.TrimSpace(m[2]))
	return Station{Name: strings.TrimSpace(m[1]), Code: code}, code != ""
}

func fare(m []string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// Keywords that end a free-text capture are consumed rather than looked
// ahead at. Only the first match of each pattern is used, so the result is
// the same.
var (
	// PNR No. : 4938302790
	pnrChain = []extractor[string]{
		{regexp.MustCompile(`(?i)PNR\s*(?:No\.?|Number)?\s*[:\s]\s*(\d{10})\b`), group},
		{regexp.MustCompile(`(?i)\b(\d{10})\s*(?:is your PNR|PNR)`), group},
	}

	// Train No. / Name : 12733 / NARAYANADRI SF Quota
	trainChain = []extractor[TrainID]{
		{regexp.MustCompile(`(?i)Train\s*(?:No\.?\s*/\s*Name|Number)[:\s]*(\d{5})\s*[/\s]+([A-Za-z\s]+?)\s+(?:Quota|on|from)\b`), trainID},
		{regexp.MustCompile(`(?i)\b(\d{5})\s*[-/]\s*([A-Za-z\s]+?)\s+(?:Quota|Class|From)\b`), trainID},
	}

	quotaChain = []extractor[string]{
		{regexp.MustCompile(`(?i)Quota\s*[:\s]\s*([A-Z]+)`), func(m []string) (string, bool) {
			return strings.ToUpper(m[1]), m[1] != ""
		}},
	}

	// Class : SLEEPER CLASS From
	classChain = []extractor[string]{
		{regexp.MustCompile(`(?i)Class\s*[:\s]\s*([A-Za-z\s]+?)(?:\s+From|\s+Transaction|$)`), group},
		{regexp.MustCompile(`(?i)\b(SLEEPER\s*CLASS|FIRST\s*AC|SECOND\s*AC|THIRD\s*AC|1A|2A|3A|SL|CC|2S|3E|EC|FC)\b`), group},
	}

	// From : NELLORE (NLR)
	fromChain = []extractor[Station]{
		{regexp.MustCompile(`(?i)From\s*[:\s]\s*([A-Za-z\s]+?)\s*\(([A-Z]{2,5})\)`), station},
	}

	// To : LINGAMPALLI (LPI), Reservation Upto : ..., → TIRUPATI (TPTY)
	toChain = []extractor[Station]{
		{regexp.MustCompile(`(?i)\b(?:To|Destination|Reserv(?:ation)?\s*(?:Upto|Up\s*To))\b[:\s-]*([A-Za-z\s]+?)\s*\(([A-Z]{2,5})\)`), station},
		{regexp.MustCompile(`(?i)(?:\bto\b|→)\s*([A-Za-z\s]+?)\s*\(([A-Z]{2,5})\)`), station},
	}

	// Boarding At : NLR. The code itself must be upper case so that
	// "Boarding Point" is not read as a code.
	boardingChain = []extractor[string]{
		{regexp.MustCompile(`(?i:Boarding\s*(?:At)?\s*[:\s])\s*([A-Z]{2,5})\b`), group},
	}

	journeyDateChain = []extractor[string]{
		{regexp.MustCompile(`(?i)Date\s*(?:of)?\s*Journey\s*[:\s]\s*(\d{1,2}[-/][A-Za-z]{3}[-/]\d{4})`), group},
		{regexp.MustCompile(`(?i)Date\s*(?:of)?\s*Journey\s*[:\s]\s*(\d{1,2}[-/]\d{1,2}[-/]\d{4})`), group},
	}

	bookingDateChain = []extractor[string]{
		{regexp.MustCompile(`(?i)Date\s*&\s*Time\s*of\s*Booking\s*[:\s]\s*(\d{1,2}[-/][A-Za-z]{3}[-/]\d{4})`), group},
	}

	departureChain = []extractor[string]{
		{regexp.MustCompile(`(?i)(?:Scheduled\s+)?Departure\*?\s*[:\s]\s*(\d{1,2}:\d{2}(?:\s*[AP]M)?)`), group},
	}

	arrivalChain = []extractor[string]{
		{regexp.MustCompile(`(?i)(?:Scheduled\s+)?Arrival\s*[:\s]\s*(\d{1,2}:\d{2}(?:\s*[AP]M)?)`), group},
	}

	// Rs. 768.60, INR 1,250, ₹ 500*#
	fareChain = []extractor[float64]{
		{regexp.MustCompile(`(?i)(?:\bRs\.?|\bINR|₹)\s*([0-9,]+(?:\.[0-9]{1,2})?)`), fare},
		{regexp.MustCompile(`(?i)Total\s*Fare[:\s]*(?:Rs\.?|INR|₹)?\s*([0-9,]+(?:\.[0-9]{1,2})?)`), fare},
	}
)

// Fields holds every value the extractors found. Empty strings and zero
// values mean no match.
type Fields struct {
	PNR           string
	Train         TrainID
	Quota         string
	Class         string
	From          Station
	To            Station
	BoardingCode  string
	JourneyDate   string
	BookingDate   string
	DepartureTime string
	ArrivalTime   string
	Fare          float64
	FareFound     bool
}

// ExtractFields runs every field chain over normalized text
func ExtractFields(text string) Fields {
	var f Fields
	f.PNR, _ = firstMatch(text, pnrChain)
	f.Train, _ = firstMatch(text, trainChain)
	f.Quota, _ = firstMatch(text, quotaChain)
	f.Class, _ = firstMatch(text, classChain)
	f.From, _ = firstMatch(text, fromChain)
	f.To, _ = firstMatch(text, toChain)
	f.BoardingCode, _ = firstMatch(text, boardingChain)
	f.JourneyDate, _ = firstMatch(text, journeyDateChain)
	f.BookingDate, _ = firstMatch(text, bookingDateChain)
	f.DepartureTime, _ = firstMatch(text, departureChain)
	f.ArrivalTime, _ = firstMatch(text, arrivalChain)
	f.Fare, f.FareFound = firstMatch(text, fareChain)
	return f
}
