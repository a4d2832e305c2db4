// Package mongo stores grove records as documents, one collection per record type.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/julianstephens/grove/internal/constants"
	"github.com/julianstephens/grove/internal/logger"
	"github.com/julianstephens/grove/internal/storage"
)

// Collection names
const (
	CollectionUsers       = "users"
	CollectionEntries     = "entries"
	CollectionWaterings   = "waterings"
	CollectionCheers      = "cheers"
	CollectionAnnotations = "annotations"
	CollectionGoals       = "goals"
)

type Store struct {
	uri    string
	dbName string
	client *mongo.Client
	db     *mongo.Database
}

var _ storage.Provider = (*Store)(nil)

// New prepares a store for uri. The database name comes from the URI path,
// falling back to the application name.
func New(uri string) *Store {
	name := extractDBName(uri)
	if name == "" {
		name = constants.AppName
	}
	return &Store{uri: uri, dbName: name}
}

// NewWithDatabase overrides the database name, used by tests to isolate runs.
func NewWithDatabase(uri, dbName string) *Store {
	return &Store{uri: uri, dbName: dbName}
}

func extractDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return strings.Trim(u.Path, "/")
}

func (s *Store) connect(ctx context.Context) error {
	if s.client != nil {
		return nil
	}

	clientOptions := options.Client().
		ApplyURI(s.uri).
		SetMaxPoolSize(50).
		SetMaxConnIdleTime(30 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s.client = client
	s.db = client.Database(s.dbName)
	logger.Debug("Connected to MongoDB", "database", s.dbName)
	return nil
}

// Init connects and creates the unique indexes that back the upsert keys.
func (s *Store) Init(ctx context.Context) error {
	if err := s.connect(ctx); err != nil {
		return err
	}

	indexes := map[string][]mongo.IndexModel{
		CollectionEntries: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "day", Value: 1}, {Key: "kind", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "kind", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		CollectionWaterings: {
			{Keys: bson.D{{Key: "fromUser", Value: 1}, {Key: "targetUser", Value: 1}, {Key: "day", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "targetUser", Value: 1}, {Key: "createdAt", Value: 1}}},
			{Keys: bson.D{{Key: "fromUser", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		CollectionCheers: {
			{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		CollectionAnnotations: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "day", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionGoals: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "period", Value: 1}, {Key: "periodKey", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for collection, models := range indexes {
		if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", collection, err)
		}
	}
	logger.Info("MongoDB indexes ready", "database", s.dbName)
	return nil
}

func (s *Store) Load(ctx context.Context) error {
	return s.connect(ctx)
}

func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	if s.client == nil {
		return errors.New("mongo store is not connected")
	}
	return s.client.Ping(ctx, readpref.Primary())
}

// Describe returns host and database without credentials.
func (s *Store) Describe() string {
	u, err := url.Parse(s.uri)
	if err != nil || u.Host == "" {
		return "mongodb/" + s.dbName
	}
	return u.Scheme + "://" + u.Host + "/" + s.dbName
}

// DropDatabase removes every collection. Used by integration tests.
func (s *Store) DropDatabase(ctx context.Context) error {
	if s.db == nil {
		return errors.New("mongo store is not connected")
	}
	return s.db.Drop(ctx)
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return storage.ErrNotFound
	}
	return err
}
