package parser

import (
	"context"
	"time"

	"railmail-service/internal/domain/entity"
	"railmail-service/pkg/logger"
	"railmail-service/pkg/schedule"
)

// ScheduleResolver looks up departure and arrival for a journey segment
type ScheduleResolver interface {
	Resolve(ctx context.Context, trainNumber, boardingCode, destinationCode string) (*entity.ScheduleLookup, bool)
}

// TicketParser turns IRCTC booking emails into ParsedTicket records
type TicketParser struct {
	resolver ScheduleResolver
	dates    *DateInterpreter
	logger   logger.Logger
}

// NewTicketParser creates a parser. A nil resolver disables schedule
// enrichment; a nil now uses time.Now.
func NewTicketParser(resolver ScheduleResolver, now func() time.Time, logger logger.Logger) *TicketParser {
	return &TicketParser{
		resolver: resolver,
		dates:    NewDateInterpreter(now),
		logger:   logger,
	}
}

// Parse extracts a ticket from a raw email body. Missing fields get their
// defaults, so Parse always returns a complete record.
func (p *TicketParser) Parse(ctx context.Context, raw string) *entity.ParsedTicket {
	text := Normalize(raw)
	fields := ExtractFields(text)
	passengers := ParsePassengers(text)

	ticket := &entity.ParsedTicket{
		PNR:                    orDefault(fields.PNR, entity.UnknownValue),
		TrainNumber:            orDefault(fields.Train.Number, entity.UnknownValue),
		BoardingStation:        orDefault(fields.From.Name, entity.UnknownValue),
		BoardingStationCode:    firstNonEmpty(fields.BoardingCode, fields.From.Code, entity.UnknownStationCode),
		DestinationStation:     orDefault(fields.To.Name, entity.UnknownValue),
		DestinationStationCode: orDefault(fields.To.Code, entity.UnknownStationCode),
		TravelClass:            ResolveClass(fields.Class),
		Quota:                  orDefault(fields.Quota, entity.DefaultQuota),
		Passengers:             passengers,
		TotalFare:              fields.Fare,
		Status:                 ResolveStatus(passengers, text),
		ChartStatus:            entity.ChartNotPrepared,
		JourneyDate:            p.date(fields.JourneyDate),
		BookingDate:            p.date(fields.BookingDate),
	}

	var lookup *entity.ScheduleLookup
	if p.resolver != nil {
		lookup, _ = p.resolver.Resolve(ctx, fields.Train.Number, ticket.BoardingStationCode, ticket.DestinationStationCode)
	}
	if lookup == nil {
		lookup = &entity.ScheduleLookup{}
	}

	ticket.DepartureTime = firstNonEmpty(lookup.DepartureTime, fields.DepartureTime, entity.NotAvailable)
	ticket.ArrivalTime = firstNonEmpty(lookup.ArrivalTime, fields.ArrivalTime, entity.NotAvailable)
	ticket.Duration = firstNonEmpty(lookup.Duration, entity.NotAvailable)

	ticket.TrainName = resolveTrainName(lookup.TrainName, fields.Train.Name, fields.Train.Number)

	p.logger.Debug("Parsed ticket",
		"pnr", ticket.PNR,
		"trainNumber", ticket.TrainNumber,
		"passengers", len(ticket.Passengers),
		"status", ticket.Status,
		"scheduleSource", lookup.Source)

	return ticket
}

func (p *TicketParser) date(value string) time.Time {
	if value == "" {
		return p.dates.Today()
	}
	return p.dates.Parse(value)
}

// resolveTrainName prefers the schedule name, then the name printed in the
// email, then the well-known trains table
func resolveTrainName(lookupName, emailName, trainNumber string) string {
	commonName, _ := schedule.CommonTrainName(trainNumber)
	return firstNonEmpty(lookupName, emailName, commonName, entity.UnknownTrainName)
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
