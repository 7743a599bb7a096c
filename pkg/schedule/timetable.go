package schedule

import "railmail-service/internal/domain/entity"

// noTime marks a stop where the train originates or terminates
const noTime = "--"

func stop(code, name, arrival, departure string, day int) entity.StationStop {
	return entity.StationStop{Code: code, Name: name, ArrivalTime: arrival, DepartureTime: departure, Day: day}
}

// staticSchedules holds full timetables of well-known trains
var staticSchedules = map[string]entity.TrainSchedule{
	"12733": {
		TrainNumber: "12733",
		TrainName:   "NARAYANADRI SF EXP",
		Stops: []entity.StationStop{
			stop("SC", "Secunderabad Jn", noTime, "20:30", 1),
			stop("LPI", "Lingampalli", "20:56", "20:58", 1),
			stop("MBNR", "Mahabubnagar", "22:45", "22:47", 1),
			stop("KRN", "Kurnool City", "00:48", "00:50", 2),
			stop("GTL", "Guntakal Jn", "02:30", "02:40", 2),
			stop("GY", "Gooty", "03:02", "03:04", 2),
			stop("YNPD", "Yerraguntla", "04:23", "04:25", 2),
			stop("KDP", "Kadapa", "05:00", "05:02", 2),
			stop("NRE", "Nandalur", "05:40", "05:42", 2),
			stop("RU", "Renigunta Jn", "07:00", "07:05", 2),
			stop("TPTY", "Tirupati", "07:35", noTime, 2),
		},
	},
	"12734": {
		TrainNumber: "12734",
		TrainName:   "NARAYANADRI SF EXP",
		Stops: []entity.StationStop{
			stop("TPTY", "Tirupati", noTime, "19:30", 1),
			stop("RU", "Renigunta Jn", "19:50", "19:55", 1),
			stop("NLR", "Nellore", "21:33", "21:35", 1),
			stop("OGL", "Ongole", "23:08", "23:10", 1),
			stop("GNT", "Guntur Jn", "01:10", "01:15", 2),
			stop("BZA", "Vijayawada Jn", "02:30", "02:40", 2),
			stop("KI", "Khammam", "04:53", "04:55", 2),
			stop("WL", "Warangal", "06:28", "06:30", 2),
			stop("SC", "Secunderabad Jn", "08:30", noTime, 2),
		},
	},
	"12259": {
		TrainNumber: "12259",
		TrainName:   "SEALDAH DURONTO",
		Stops: []entity.StationStop{
			stop("NDLS", "New Delhi", noTime, "19:15", 1),
			stop("SDAH", "Sealdah", "12:30", noTime, 2),
		},
	},
	"12301": {
		TrainNumber: "12301",
		TrainName:   "HOWRAH RAJDHANI",
		Stops: []entity.StationStop{
			stop("NDLS", "New Delhi", noTime, "16:55", 1),
			stop("CNB", "Kanpur Central", "21:48", "21:53", 1),
			stop("ALD", "Prayagraj Jn", "00:25", "00:30", 2),
			stop("MGS", "Mughal Sarai", "02:40", "02:50", 2),
			stop("GAYA", "Gaya Jn", "05:15", "05:20", 2),
			stop("DHN", "Dhanbad Jn", "07:25", "07:30", 2),
			stop("ASN", "Asansol Jn", "08:20", "08:23", 2),
			stop("HWH", "Howrah Jn", "09:55", noTime, 2),
		},
	},
}

// commonTrains names trains for which only the number is known
var commonTrains = map[string]string{
	"12733": "NARAYANADRI SF EXP",
	"12734": "NARAYANADRI SF EXP",
	"12259": "SEALDAH DURONTO",
	"12260": "DURONTO EXP",
	"12301": "HOWRAH RAJDHANI",
	"12302": "NEW DELHI RAJDHANI",
	"12951": "MUMBAI RAJDHANI",
	"12952": "DELHI RAJDHANI",
	"12627": "KARNATAKA EXP",
	"12628": "KARNATAKA EXP",
	"12723": "TELANGANA EXP",
	"12724": "TELANGANA EXP",
	"12785": "AP SAMPARK KRANTI",
	"12786": "AP SAMPARK KRANTI",
	"11019": "KONARK EXPRESS",
	"11020": "KONARK EXPRESS",
	"12615": "GRAND TRUNK EXP",
	"12616": "GRAND TRUNK EXP",
}

// StaticSchedule returns the built-in timetable of a train
func StaticSchedule(trainNumber string) (*entity.TrainSchedule, bool) {
	s, ok := staticSchedules[trainNumber]
	if !ok {
		return nil, false
	}
	return &s, true
}

// CommonTrainName returns the canonical name of a well-known train
func CommonTrainName(trainNumber string) (string, bool) {
	name, ok := commonTrains[trainNumber]
	return name, ok
}

// StaticTrainNumbers lists the trains with a built-in timetable
func StaticTrainNumbers() []string {
	numbers := make([]string, 0, len(staticSchedules))
	for n := range staticSchedules {
		numbers = append(numbers, n)
	}
	return numbers
}
