package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"railmail-service/internal/domain/entity"
	"railmail-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoEmailRepository keeps the import log of IRCTC emails: one document
// per Gmail message with its processing state and the ticket it produced.
type MongoEmailRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoEmailRepository creates the import log repository
func NewMongoEmailRepository(db *mongo.Database) repository.EmailRepository {
	collection := db.Collection("emailLogs")

	collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		// Gmail message ids deduplicate polling
		{Keys: bson.D{{Key: "emailId", Value: 1}}, Options: options.Index().SetUnique(true)},
		// pending scan, oldest first
		{Keys: bson.D{{Key: "processStatus", Value: 1}, {Key: "receivedAt", Value: 1}}},
		{Keys: bson.D{{Key: "receivedAt", Value: -1}}},
		// only imported emails carry a PNR
		{Keys: bson.D{{Key: "pnr", Value: 1}}, Options: options.Index().SetSparse(true)},
	})

	return &MongoEmailRepository{
		collection: collection,
		now:        time.Now,
	}
}

// Save stores a newly fetched email as PENDING. An email that is already
// logged is left alone.
func (r *MongoEmailRepository) Save(ctx context.Context, email *entity.Email) error {
	if email.ProcessStatus == "" {
		email.ProcessStatus = entity.StatusPending
	}

	if _, err := r.collection.InsertOne(ctx, email); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to insert email %s: %w", email.EmailID, err)
	}
	return nil
}

// FindUnprocessed returns emails no processor has claimed, oldest first
func (r *MongoEmailRepository) FindUnprocessed(ctx context.Context, limit int) ([]*entity.Email, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"processStatus": ""},
			{"processStatus": entity.StatusPending},
			{"processStatus": bson.M{"$exists": false}},
		},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "receivedAt", Value: 1}}).
		SetLimit(int64(limit))

	return r.find(ctx, filter, opts)
}

// FindImports lists the import log, newest first, without message bodies
func (r *MongoEmailRepository) FindImports(ctx context.Context, filter repository.ImportFilter) ([]*entity.Email, error) {
	query, opts := importQuery(filter)
	return r.find(ctx, query, opts)
}

func importQuery(filter repository.ImportFilter) (bson.M, *options.FindOptions) {
	query := bson.M{}
	if filter.Status != "" {
		query["processStatus"] = filter.Status
	}
	if filter.PNR != "" {
		query["pnr"] = filter.PNR
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "receivedAt", Value: -1}}).
		SetProjection(bson.M{"body": 0, "htmlBody": 0, "attachments": 0})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	return query, opts
}

// GetLastEmail returns the most recently received email, or nil when the
// log is empty
func (r *MongoEmailRepository) GetLastEmail(ctx context.Context) (*entity.Email, error) {
	var email entity.Email
	opts := options.FindOne().SetSort(bson.D{{Key: "receivedAt", Value: -1}})
	if err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&email); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find last email: %w", err)
	}
	return &email, nil
}

// ResetProcessingEmails puts emails stuck in PROCESSING for longer than
// staleAfter back to PENDING and returns how many were reset
func (r *MongoEmailRepository) ResetProcessingEmails(ctx context.Context, staleAfter time.Duration) (int64, error) {
	filter := bson.M{
		"processStatus": entity.StatusProcessing,
		"$or": []bson.M{
			{"processStartedAt": bson.M{"$lt": r.now().Add(-staleAfter)}},
			{"processStartedAt": bson.M{"$exists": false}},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"processStatus": entity.StatusPending,
			"errorDetail":   "Reset from stale PROCESSING state",
		},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to reset processing emails: %w", err)
	}
	return result.ModifiedCount, nil
}

// FindByEmailIDs returns the logged emails among emailIDs, keyed by id
func (r *MongoEmailRepository) FindByEmailIDs(ctx context.Context, emailIDs []string) (map[string]*entity.Email, error) {
	found := make(map[string]*entity.Email, len(emailIDs))
	if len(emailIDs) == 0 {
		return found, nil
	}

	opts := options.Find().SetProjection(bson.M{"body": 0, "htmlBody": 0, "attachments": 0})
	emails, err := r.find(ctx, bson.M{"emailId": bson.M{"$in": emailIDs}}, opts)
	if err != nil {
		return nil, err
	}
	for _, email := range emails {
		found[email.EmailID] = email
	}
	return found, nil
}

// UpdateStatusByEmailID sets the process status. Entering PROCESSING also
// records when it started, for stale detection.
func (r *MongoEmailRepository) UpdateStatusByEmailID(ctx context.Context, emailID string, status string, startedAt time.Time) error {
	set := bson.M{"processStatus": status}
	if status == entity.StatusProcessing && !startedAt.IsZero() {
		set["processStartedAt"] = startedAt
	}
	return r.updateByEmailID(ctx, emailID, set, "update status")
}

// MarkAsProcessedByEmailID records the final outcome of an import
func (r *MongoEmailRepository) MarkAsProcessedByEmailID(ctx context.Context, emailID string, outcome entity.ImportOutcome) error {
	return r.updateByEmailID(ctx, emailID, outcomeFields(outcome, r.now()), "mark as processed")
}

func outcomeFields(outcome entity.ImportOutcome, processedAt time.Time) bson.M {
	set := bson.M{
		"processedAt":   processedAt,
		"processStatus": outcome.Status,
		"processorType": outcome.ProcessorType,
	}
	if len(outcome.ExtractedData) > 0 {
		set["extractedData"] = outcome.ExtractedData
	}
	if outcome.ErrorDetail != "" {
		set["errorDetail"] = outcome.ErrorDetail
	}
	if outcome.PNR != "" && outcome.PNR != entity.UnknownValue {
		set["pnr"] = outcome.PNR
	}
	if outcome.TicketID != "" {
		set["ticketId"] = outcome.TicketID
	}
	return set
}

// UpdateProcessStepsByEmailID stores extraction progress
func (r *MongoEmailRepository) UpdateProcessStepsByEmailID(ctx context.Context, emailID string, steps entity.ProcessSteps) error {
	return r.updateByEmailID(ctx, emailID, bson.M{"processSteps": steps}, "update process steps")
}

func (r *MongoEmailRepository) updateByEmailID(ctx context.Context, emailID string, set bson.M, action string) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"emailId": emailID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("failed to %s: no email %s", action, emailID)
	}
	return nil
}

func (r *MongoEmailRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*entity.Email, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query emails: %w", err)
	}
	defer cursor.Close(ctx)

	emails := make([]*entity.Email, 0)
	if err := cursor.All(ctx, &emails); err != nil {
		return nil, fmt.Errorf("failed to decode emails: %w", err)
	}
	return emails, nil
}
