package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"railmail-service/internal/domain/entity"
	"railmail-service/internal/domain/repository"
	"railmail-service/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// defaultStartDate is the first day searched when the email log is empty
var defaultStartDate = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

// GmailService handles interaction with the Gmail API
type GmailService struct {
	gmailService *gmail.Service
	emailRepo    repository.EmailRepository
	logger       logger.Logger
	pollInterval time.Duration
	query        string
	subjects     []string
}

// NewGmailService creates a new Gmail service. query narrows the mailbox
// search (for example "from:irctc.co.in"); only messages whose subject
// contains one of subjects are stored.
func NewGmailService(
	ctx context.Context,
	tokenSource oauth2.TokenSource,
	emailRepo repository.EmailRepository,
	logger logger.Logger,
	pollInterval time.Duration,
	query string,
	subjects []string,
) (*GmailService, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}

	lowered := make([]string, len(subjects))
	for i, s := range subjects {
		lowered[i] = strings.ToLower(s)
	}

	return &GmailService{
		gmailService: service,
		emailRepo:    emailRepo,
		logger:       logger.With("component", "gmail"),
		pollInterval: pollInterval,
		query:        query,
		subjects:     lowered,
	}, nil
}

// FetchEmails stores new booking emails from Gmail in the email log
func (s *GmailService) FetchEmails(ctx context.Context) error {
	lastEmail, err := s.emailRepo.GetLastEmail(ctx)
	if err != nil {
		s.logger.Warn("Failed to read last email", "error", err)
	}

	fetchFrom := defaultStartDate
	hasLastEmail := lastEmail != nil && !lastEmail.ReceivedAt.IsZero()
	if hasLastEmail {
		fetchFrom = lastEmail.ReceivedAt
		s.logger.Info("Using last received email time",
			"lastReceivedEmailTime", fetchFrom.Format("2006-01-02 15:04:05 UTC"))
	} else {
		s.logger.Info("No previous emails, using default start date",
			"startDate", fetchFrom.Format("2006-01-02 15:04:05 UTC"))
	}

	query := buildQuery(s.query, fetchFrom, hasLastEmail)
	s.logger.Info("Querying Gmail", "query", query)

	var messageIDs []string
	err = s.gmailService.Users.Messages.List("me").Q(query).Pages(ctx, func(resp *gmail.ListMessagesResponse) error {
		for _, msg := range resp.Messages {
			messageIDs = append(messageIDs, msg.Id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}

	if len(messageIDs) == 0 {
		s.logger.Info("No new messages found")
		return nil
	}

	existingEmails, err := s.emailRepo.FindByEmailIDs(ctx, messageIDs)
	if err != nil {
		s.logger.Error("Failed to batch check existing emails", "error", err)
		existingEmails = make(map[string]*entity.Email)
	}

	newEmailsCount := 0
	skippedOldCount := 0
	skippedExistingCount := 0
	skippedSubjectCount := 0

	for _, id := range messageIDs {
		if _, exists := existingEmails[id]; exists {
			skippedExistingCount++
			continue
		}

		fullMsg, err := s.gmailService.Users.Messages.Get("me", id).Context(ctx).Do()
		if err != nil {
			s.logger.Error("Failed to get message", "emailID", id, "error", err)
			continue
		}

		email, err := convertToEmail(fullMsg)
		if err != nil {
			s.logger.Error("Failed to convert message", "emailID", id, "error", err)
			continue
		}

		if hasLastEmail && !email.ReceivedAt.After(fetchFrom) {
			skippedOldCount++
			continue
		}

		if !s.MatchesSubject(email.Subject) {
			s.logger.Debug("Email doesn't match subject filter", "subject", email.Subject)
			skippedSubjectCount++
			continue
		}

		s.logger.Info("Storing new email",
			"subject", email.Subject,
			"emailID", email.EmailID,
			"receivedAt", email.ReceivedAt.Format("2006-01-02 15:04:05 UTC"))

		if err := s.emailRepo.Save(ctx, email); err != nil {
			s.logger.Error("Failed to save email", "emailID", id, "error", err)
			continue
		}

		newEmailsCount++
	}

	s.logger.Info("Email fetch completed",
		"totalFromGmail", len(messageIDs),
		"alreadyInDB", skippedExistingCount,
		"skippedOld", skippedOldCount,
		"skippedSubject", skippedSubjectCount,
		"newEmails", newEmailsCount)

	return nil
}

// StartPolling starts polling Gmail for new emails
func (s *GmailService) StartPolling(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Gmail polling stopped")
			return
		case <-ticker.C:
			s.logger.Info("Polling Gmail for new emails")
			if err := s.FetchEmails(ctx); err != nil {
				s.logger.Error("Error polling Gmail", "error", err)
			}
		}
	}
}

// MatchesSubject reports whether a subject looks like a booking email.
// An empty pattern list accepts everything.
func (s *GmailService) MatchesSubject(subject string) bool {
	return matchesAny(subject, s.subjects)
}

func matchesAny(subject string, lowered []string) bool {
	if len(lowered) == 0 {
		return true
	}
	subject = strings.ToLower(subject)
	for _, p := range lowered {
		if strings.Contains(subject, p) {
			return true
		}
	}
	return false
}

// buildQuery adds a date bound to the configured search
func buildQuery(base string, fetchFrom time.Time, hasLastEmail bool) string {
	queryDate := fetchFrom
	if hasLastEmail {
		// Go back 3 days to catch any emails we might have missed
		queryDate = fetchFrom.AddDate(0, 0, -3)
	}
	query := fmt.Sprintf("after:%s", queryDate.Format("2006/01/02"))
	if base = strings.TrimSpace(base); base != "" {
		query = base + " " + query
	}
	return query
}

// convertToEmail converts a Gmail message to our domain entity
func convertToEmail(msg *gmail.Message) (*entity.Email, error) {
	if msg.Payload == nil {
		return nil, fmt.Errorf("message %s has no payload", msg.Id)
	}

	email := &entity.Email{
		EmailID:    msg.Id,
		Labels:     msg.LabelIds,
		ReceivedAt: time.UnixMilli(msg.InternalDate).UTC(),
	}

	// Extract header information
	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "From":
			email.From = header.Value
		case "To":
			email.To = header.Value
		case "Subject":
			email.Subject = header.Value
		}
	}

	if err := collectParts(msg.Payload, email); err != nil {
		return nil, err
	}
	return email, nil
}

// collectParts walks nested multipart payloads. The first text/plain and
// text/html bodies win; named parts become attachments.
func collectParts(part *gmail.MessagePart, email *entity.Email) error {
	if part == nil {
		return nil
	}

	if part.Body != nil && part.Body.Data != "" {
		data, err := decodeBody(part.Body.Data)
		if err != nil {
			return fmt.Errorf("failed to decode part %q: %w", part.PartId, err)
		}
		switch {
		case part.Filename != "":
			email.Attachments = append(email.Attachments, entity.Attachment{
				Filename:    part.Filename,
				ContentType: part.MimeType,
				Data:        data,
			})
		case part.MimeType == "text/html":
			if email.HTMLBody == "" {
				email.HTMLBody = string(data)
			}
		case part.MimeType == "text/plain" || part.MimeType == "":
			if email.Body == "" {
				email.Body = string(data)
			}
		}
	}

	for _, child := range part.Parts {
		if err := collectParts(child, email); err != nil {
			return err
		}
	}
	return nil
}

// decodeBody accepts padded and unpadded base64url
func decodeBody(data string) ([]byte, error) {
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return decoded, nil
	}
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
}
