package entity

// StationStop is one halt in a train timetable.
// Empty times mean the train originates or terminates at the stop.
type StationStop struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	ArrivalTime   string `json:"arrivalTime"`
	DepartureTime string `json:"departureTime"`
	Day           int    `json:"day"`
}

// TrainSchedule is the ordered stop list of a train
type TrainSchedule struct {
	TrainNumber string        `json:"trainNumber"`
	TrainName   string        `json:"trainName"`
	Stops       []StationStop `json:"stops"`
}

// StopIndex returns the position of the stop with the given code, or -1
func (s *TrainSchedule) StopIndex(code string) int {
	for i, stop := range s.Stops {
		if stop.Code == code {
			return i
		}
	}
	return -1
}

// ScheduleLookup is the answer of a schedule source for one journey segment
type ScheduleLookup struct {
	TrainNumber   string `json:"trainNumber"`
	TrainName     string `json:"trainName"`
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`
	Duration      string `json:"duration"`
	Source        string `json:"source"`
}

// FetchOutcome classifies a remote schedule request
type FetchOutcome string

const (
	FetchSuccess FetchOutcome = "success"
	FetchTimeout FetchOutcome = "timeout"
	FetchError   FetchOutcome = "error"
)

// ScheduleFetch is the typed result of a remote schedule request.
// Schedule is set only when Outcome is FetchSuccess.
type ScheduleFetch struct {
	Outcome  FetchOutcome
	Schedule *TrainSchedule
	Err      error
}
