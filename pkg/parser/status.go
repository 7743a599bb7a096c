package parser

import (
	"regexp"
	"strings"

	"railmail-service/internal/domain/entity"
)

// Phrases that mark a whole booking as cancelled. "Cancellation charges"
// and similar fee wording must not match.
var cancellationPhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:ticket|booking|PNR)\s+(?:has\s+been\s+)?cancell?ed\b`),
	regexp.MustCompile(`(?i)\bcancell?ation\s+of\s+(?:ticket|booking|PNR)\b`),
	regexp.MustCompile(`(?i)\byour\s+(?:ticket|booking)\s+(?:is|has\s+been)\s+cancell?ed\b`),
}

// MentionsCancellation reports whether the text announces a cancelled booking
func MentionsCancellation(text string) bool {
	for _, re := range cancellationPhrases {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// ResolveStatus derives the overall ticket status.
// Precedence is Cancelled, then Waitlisted, then RAC, then Confirmed. A
// passenger counts as cancelled by its raw CAN token.
func ResolveStatus(passengers []entity.ParsedPassenger, text string) entity.BookingStatus {
	var hasWaitlist, hasRAC, hasCancelled bool
	for _, p := range passengers {
		switch {
		case strings.EqualFold(p.RawBookingStatus, "CAN"):
			hasCancelled = true
		case p.Status == entity.StatusWaitlisted:
			hasWaitlist = true
		case p.Status == entity.StatusRAC:
			hasRAC = true
		}
	}

	switch {
	case hasCancelled || MentionsCancellation(text):
		return entity.StatusCancelled
	case hasWaitlist:
		return entity.StatusWaitlisted
	case hasRAC:
		return entity.StatusRAC
	default:
		return entity.StatusConfirmed
	}
}
