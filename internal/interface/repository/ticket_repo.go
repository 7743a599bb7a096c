package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"railmail-service/internal/domain/entity"
	"railmail-service/internal/domain/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTicketRepository implements the TicketRepository interface
type MongoTicketRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoTicketRepository creates a new MongoDB ticket repository
func NewMongoTicketRepository(db *mongo.Database) repository.TicketRepository {
	collection := db.Collection("tickets")

	ctx := context.Background()

	// PNR is not unique: tickets without one are all stored as "Unknown"
	pnrIndex := mongo.IndexModel{
		Keys: bson.M{"pnrNumber": 1},
	}

	createdAtIndex := mongo.IndexModel{
		Keys: bson.M{"createdAt": -1},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		pnrIndex,
		createdAtIndex,
	})

	return &MongoTicketRepository{
		collection: collection,
		now:        time.Now,
	}
}

// Save stores a confirmed ticket. A ticket with a known PNR replaces the
// previous record for that PNR.
func (r *MongoTicketRepository) Save(ctx context.Context, ticket *entity.ParsedTicket, source string) (*entity.Ticket, error) {
	if ticket == nil {
		return nil, errors.New("ticket is nil")
	}

	now := r.now().UTC()
	record := &entity.Ticket{
		ID:           uuid.NewString(),
		ParsedTicket: *ticket,
		Source:       source,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if ticket.PNR == "" || ticket.PNR == entity.UnknownValue {
		if _, err := r.collection.InsertOne(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to insert ticket: %w", err)
		}
		return record, nil
	}

	fields, err := ticketFields(ticket)
	if err != nil {
		return nil, err
	}
	fields["source"] = source
	fields["updatedAt"] = now

	update := bson.M{
		"$set": fields,
		"$setOnInsert": bson.M{
			"_id":       record.ID,
			"createdAt": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved entity.Ticket
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"pnrNumber": ticket.PNR}, update, opts).Decode(&saved)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert ticket %s: %w", ticket.PNR, err)
	}

	return &saved, nil
}

// FindByPNR returns the stored ticket for a PNR
func (r *MongoTicketRepository) FindByPNR(ctx context.Context, pnr string) (*entity.Ticket, error) {
	var ticket entity.Ticket
	err := r.collection.FindOne(ctx, bson.M{"pnrNumber": pnr}).Decode(&ticket)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ticket %s: %w", pnr, err)
	}
	return &ticket, nil
}

// List returns the most recently stored tickets
func (r *MongoTicketRepository) List(ctx context.Context, limit int) ([]*entity.Ticket, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer cursor.Close(ctx)

	tickets := []*entity.Ticket{}
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, fmt.Errorf("failed to decode tickets: %w", err)
	}

	return tickets, nil
}

// ticketFields flattens the parsed ticket into the document fields it owns
func ticketFields(ticket *entity.ParsedTicket) (bson.M, error) {
	raw, err := bson.Marshal(ticket)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ticket: %w", err)
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to encode ticket: %w", err)
	}
	return fields, nil
}
