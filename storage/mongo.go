package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tippleai/config"
	"tippleai/models"
)

// MongoPreferenceStore is the durable PreferenceStore. Each user is one
// document keyed by user id; $addToSet and $pullAll keep both sets
// deduplicated, and single-document updates give the per-user linearizability
// the interface requires without any client-side locking.
type MongoPreferenceStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	log        zerolog.Logger
}

type preferenceDoc struct {
	UserID      string    `bson:"_id"`
	Ingredients []string  `bson:"favorite_ingredients"`
	Cocktails   []string  `bson:"favorite_cocktails"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func NewMongoPreferenceStore(cfg *config.Config, logger zerolog.Logger) (*MongoPreferenceStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log := logger.With().Str("component", "mongo-preferences").Logger()
	log.Info().Str("database", cfg.MongoDatabase).Str("collection", cfg.MongoCollection).Msg("Connected to MongoDB")

	return &MongoPreferenceStore{
		client:     client,
		collection: client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection),
		log:        log,
	}, nil
}

func (s *MongoPreferenceStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoPreferenceStore) Add(ctx context.Context, userID string, ingredients, cocktails []string) (*models.DetectedPreferences, error) {
	ingredients = normalizeItems(ingredients)
	cocktails = normalizeItems(cocktails)

	update := bson.M{
		"$set": bson.M{"updated_at": time.Now()},
	}
	addToSet := bson.M{}
	if len(ingredients) > 0 {
		addToSet["favorite_ingredients"] = bson.M{"$each": ingredients}
	}
	if len(cocktails) > 0 {
		addToSet["favorite_cocktails"] = bson.M{"$each": cocktails}
	}
	if len(addToSet) > 0 {
		update["$addToSet"] = addToSet
	}

	// Returning the pre-update document makes the newly-added diff atomic
	// with the update itself.
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.Before)

	var before preferenceDoc
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&before)
	if err != nil && err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}

	added := &models.DetectedPreferences{
		Ingredients: missingFrom(before.Ingredients, ingredients),
		Cocktails:   missingFrom(before.Cocktails, cocktails),
	}
	return added, nil
}

func (s *MongoPreferenceStore) Remove(ctx context.Context, userID string, ingredients, cocktails []string) error {
	pullAll := bson.M{}
	if items := normalizeItems(ingredients); len(items) > 0 {
		pullAll["favorite_ingredients"] = items
	}
	if items := normalizeItems(cocktails); len(items) > 0 {
		pullAll["favorite_cocktails"] = items
	}
	if len(pullAll) == 0 {
		return nil
	}

	update := bson.M{
		"$pullAll": pullAll,
		"$set":     bson.M{"updated_at": time.Now()},
	}
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to remove preferences: %w", err)
	}
	return nil
}

func (s *MongoPreferenceStore) Get(ctx context.Context, userID string) (models.PreferenceSnapshot, error) {
	empty := models.PreferenceSnapshot{Ingredients: []string{}, Cocktails: []string{}}

	var doc preferenceDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return empty, nil
	}
	if err != nil {
		return empty, fmt.Errorf("failed to load preferences: %w", err)
	}

	sort.Strings(doc.Ingredients)
	sort.Strings(doc.Cocktails)
	snapshot := models.PreferenceSnapshot{Ingredients: doc.Ingredients, Cocktails: doc.Cocktails}
	if snapshot.Ingredients == nil {
		snapshot.Ingredients = []string{}
	}
	if snapshot.Cocktails == nil {
		snapshot.Cocktails = []string{}
	}
	return snapshot, nil
}

// missingFrom returns the items not already present in existing, preserving
// item order and dropping duplicates.
func missingFrom(existing, items []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		seen[item] = struct{}{}
	}

	var out []string
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
