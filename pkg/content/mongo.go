package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/rules"
)

// MongoConfig configures the MongoDB content store.
type MongoConfig struct {
	URI        string        `json:"uri"`
	Database   string        `json:"database"`
	Collection string        `json:"collection"`
	Timeout    time.Duration `json:"timeout"`
}

// MongoStore retrieves content documents from MongoDB. Documents are keyed by
// (content_id, tone, language); the newest version wins when several exist.
type MongoStore struct {
	logger     *logrus.Logger
	rules      *rules.RuleSet
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(logger *logrus.Logger, rs *rules.RuleSet, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"database":   cfg.Database,
		"collection": cfg.Collection,
	}).Info("Connected to MongoDB content store")

	return &MongoStore{
		logger:     logger,
		rules:      rs,
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		timeout:    cfg.Timeout,
	}, nil
}

// Get fetches a content document, walking the tone fallback chain. A miss
// across the whole chain is (nil, nil).
func (s *MongoStore) Get(ctx context.Context, contentID, tone, language string) (*domain.ContentDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})
	for _, candidate := range toneCandidates(s.rules, tone) {
		filter := bson.M{
			"content_id": contentID,
			"tone":       candidate,
			"language":   language,
		}

		var doc domain.ContentDocument
		err := s.collection.FindOne(ctx, filter, opts).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query content %s: %w", contentID, err)
		}
		if candidate != tone {
			s.logger.WithFields(logrus.Fields{
				"content_id": contentID,
				"requested":  tone,
				"served":     candidate,
			}).Debug("Served content via tone fallback")
		}
		return &doc, nil
	}
	return nil, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
