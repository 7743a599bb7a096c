package parser

import (
	"strings"

	"railmail-service/internal/domain/entity"
)

// classNames maps lower-cased full class names to codes
var classNames = map[string]entity.TravelClass{
	"sleeper class":   entity.ClassSleeper,
	"sleeper":         entity.ClassSleeper,
	"first ac":        entity.ClassFirstAC,
	"first class ac":  entity.ClassFirstAC,
	"second ac":       entity.ClassSecondAC,
	"second class ac": entity.ClassSecondAC,
	"third ac":        entity.ClassThirdAC,
	"third class ac":  entity.ClassThirdAC,
	"chair car":       entity.ClassChairCar,
	"second sitting":  entity.ClassSecondSitting,
	"ac 3 economy":    entity.ClassThirdACEconomy,
	"executive class": entity.ClassExecutive,
	"first class":     entity.ClassFirstClass,
}

// DefaultClass is used when the class text is missing or unrecognized
const DefaultClass = entity.ClassSleeper

// ResolveClass maps class text from an email to a class code.
// It accepts a bare code ("3A") or a full name ("THIRD AC").
func ResolveClass(text string) entity.TravelClass {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return DefaultClass
	}

	if code := entity.TravelClass(strings.ToUpper(trimmed)); code.Valid() {
		return code
	}

	name := strings.ToLower(strings.Join(strings.Fields(trimmed), " "))
	if code, ok := classNames[name]; ok {
		return code
	}
	return DefaultClass
}
