package entity

import "time"

// Sentinel values used when a field cannot be extracted
const (
	UnknownValue       = "Unknown"
	UnknownStationCode = "UNK"
	UnknownTrainName   = "Unknown Train"
	NotAvailable       = "N.A."
	SeatTBA            = "TBA"
	DefaultQuota       = "GENERAL"
)

// Gender of a passenger
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "O"
)

// BookingStatus is the normalized reservation status of a passenger or
// ticket. Cancelled only applies to a whole ticket.
type BookingStatus string

const (
	StatusConfirmed  BookingStatus = "CNF"
	StatusWaitlisted BookingStatus = "WL"
	StatusRAC        BookingStatus = "RAC"
	StatusCancelled  BookingStatus = "CAN"
)

var bookingStatusLabels = map[BookingStatus]string{
	StatusConfirmed:  "Confirmed",
	StatusWaitlisted: "Waitlisted",
	StatusRAC:        "RAC",
	StatusCancelled:  "Cancelled",
}

// Label returns the display label of the status
func (s BookingStatus) Label() string {
	if label, ok := bookingStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// RawStatusLabels holds display labels for raw IRCTC status codes
var RawStatusLabels = map[string]string{
	"CNF":  "Confirmed",
	"WL":   "Waiting List",
	"RAC":  "RAC",
	"CAN":  "Cancelled",
	"GNWL": "General Waiting List",
	"RLWL": "Remote Location Waiting List",
	"PQWL": "Pooled Quota Waiting List",
}

// TravelClass is an IRCTC class code
type TravelClass string

const (
	ClassFirstAC        TravelClass = "1A"
	ClassSecondAC       TravelClass = "2A"
	ClassThirdAC        TravelClass = "3A"
	ClassSleeper        TravelClass = "SL"
	ClassChairCar       TravelClass = "CC"
	ClassSecondSitting  TravelClass = "2S"
	ClassThirdACEconomy TravelClass = "3E"
	ClassExecutive      TravelClass = "EC"
	ClassFirstClass     TravelClass = "FC"
)

var travelClassLabels = map[TravelClass]string{
	ClassFirstAC:        "First AC",
	ClassSecondAC:       "Second AC",
	ClassThirdAC:        "Third AC",
	ClassSleeper:        "Sleeper",
	ClassChairCar:       "Chair Car",
	ClassSecondSitting:  "Second Sitting",
	ClassThirdACEconomy: "Third AC Economy",
	ClassExecutive:      "Executive Chair Car",
	ClassFirstClass:     "First Class",
}

// Label returns the display label of the class
func (c TravelClass) Label() string {
	if label, ok := travelClassLabels[c]; ok {
		return label
	}
	return string(c)
}

// Valid reports whether c is one of the known class codes
func (c TravelClass) Valid() bool {
	_, ok := travelClassLabels[c]
	return ok
}

// ChartStatus tells whether the reservation chart has been prepared
type ChartStatus string

const (
	ChartNotPrepared ChartStatus = "NOT_PREPARED"
	ChartPrepared    ChartStatus = "PREPARED"
)

// ParsedPassenger is one row of the passenger manifest
type ParsedPassenger struct {
	Name                 string        `json:"name" bson:"name"`
	Age                  int           `json:"age" bson:"age"`
	Gender               Gender        `json:"gender" bson:"gender"`
	SeatAssignment       string        `json:"seatNumber" bson:"seatNumber"`
	Status               BookingStatus `json:"status" bson:"status"`
	RawBookingStatus     string        `json:"bookingStatus" bson:"bookingStatus"`
	CurrentStatusDisplay string        `json:"currentStatus" bson:"currentStatus"`
}

// ParsedTicket is the normalized reservation record extracted from one document
type ParsedTicket struct {
	PNR                    string            `json:"pnrNumber" bson:"pnrNumber"`
	TrainNumber            string            `json:"trainNumber" bson:"trainNumber"`
	TrainName              string            `json:"trainName" bson:"trainName"`
	JourneyDate            time.Time         `json:"journeyDate" bson:"journeyDate"`
	BookingDate            time.Time         `json:"bookingDate" bson:"bookingDate"`
	BoardingStation        string            `json:"boardingStation" bson:"boardingStation"`
	BoardingStationCode    string            `json:"boardingStationCode" bson:"boardingStationCode"`
	DestinationStation     string            `json:"destinationStation" bson:"destinationStation"`
	DestinationStationCode string            `json:"destinationStationCode" bson:"destinationStationCode"`
	DepartureTime          string            `json:"departureTime" bson:"departureTime"`
	ArrivalTime            string            `json:"arrivalTime" bson:"arrivalTime"`
	Duration               string            `json:"duration" bson:"duration"`
	TravelClass            TravelClass       `json:"travelClass" bson:"travelClass"`
	Quota                  string            `json:"quota" bson:"quota"`
	Passengers             []ParsedPassenger `json:"passengers" bson:"passengers"`
	TotalFare              float64           `json:"totalFare" bson:"totalFare"`
	Status                 BookingStatus     `json:"status" bson:"status"`
	ChartStatus            ChartStatus       `json:"chartStatus" bson:"chartStatus"`
}

// Ticket is a persisted ParsedTicket
type Ticket struct {
	ID           string `json:"id" bson:"_id"`
	ParsedTicket `bson:",inline"`
	Source       string    `json:"source" bson:"source"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}
