package entity

import (
	"time"
)

// Email Process Status
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
	StatusSkipped    = "SKIPPED"
)

// Email represents a booking email pulled from Gmail
type Email struct {
	EmailID          string                 `bson:"emailId"`
	From             string                 `bson:"from"`
	To               string                 `bson:"to"`
	Subject          string                 `bson:"subject"`
	Body             string                 `bson:"body"`
	HTMLBody         string                 `bson:"htmlBody"`
	ReceivedAt       time.Time              `bson:"receivedAt"`
	Attachments      []Attachment           `bson:"attachments"`
	Labels           []string               `bson:"labels"`
	ProcessedAt      time.Time              `bson:"processedAt"`
	ProcessStatus    string                 `bson:"processStatus"`
	ProcessorType    string                 `bson:"processorType"`
	ProcessStartedAt time.Time              `bson:"processStartedAt"`
	ProcessSteps     ProcessSteps           `bson:"processSteps"`
	ErrorDetail      string                 `bson:"errorDetail"`
	ExtractedData    map[string]interface{} `bson:"extractedData"`
	PNR              string                 `bson:"pnr,omitempty"`
	TicketID         string                 `bson:"ticketId,omitempty"`
}

// ImportOutcome is the final result of turning one email into a ticket.
// PNR and TicketID are empty when the email yielded no stored ticket.
type ImportOutcome struct {
	Status        string
	ProcessorType string
	PNR           string
	TicketID      string
	ErrorDetail   string
	ExtractedData map[string]interface{}
}

// Attachment represents an email attachment
type Attachment struct {
	Filename    string `bson:"filename"`
	ContentType string `bson:"contentType"`
	Data        []byte `bson:"data"`
}

// ProcessSteps records how far ticket extraction got for an email
type ProcessSteps struct {
	TicketParsed     bool `bson:"ticketParsed"`
	ScheduleResolved bool `bson:"scheduleResolved"`
	TicketSaved      bool `bson:"ticketSaved"`
	Passengers       int  `bson:"passengers"`
}
