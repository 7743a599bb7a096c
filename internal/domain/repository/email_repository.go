package repository

import (
	"context"
	"time"

	"railmail-service/internal/domain/entity"
)

// ImportFilter narrows a query over the email import log. Zero fields
// match everything.
type ImportFilter struct {
	Status string
	PNR    string
	Limit  int
}

// EmailRepository is the import log of booking emails pulled from Gmail
type EmailRepository interface {
	Save(ctx context.Context, email *entity.Email) error
	FindUnprocessed(ctx context.Context, limit int) ([]*entity.Email, error)
	FindImports(ctx context.Context, filter ImportFilter) ([]*entity.Email, error)
	GetLastEmail(ctx context.Context) (*entity.Email, error)
	ResetProcessingEmails(ctx context.Context, staleAfter time.Duration) (int64, error)
	FindByEmailIDs(ctx context.Context, emailIDs []string) (map[string]*entity.Email, error)
	UpdateStatusByEmailID(ctx context.Context, emailID string, status string, startedAt time.Time) error
	MarkAsProcessedByEmailID(ctx context.Context, emailID string, outcome entity.ImportOutcome) error
	UpdateProcessStepsByEmailID(ctx context.Context, emailID string, steps entity.ProcessSteps) error
}
