package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/avolkov/task-tracker/internal/models"
)

// MongoStore archives raw payloads fetched by the background job.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("fetched_payloads")}
}

func (s *MongoStore) Archive(ctx context.Context, p *models.FetchedPayload) error {
	if p.FetchedAt.IsZero() {
		p.FetchedAt = time.Now()
	}
	if _, err := s.col.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("mongo insert: %w", err)
	}
	return nil
}
