package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/azalea-web/contact-service/pkg/config"
	"github.com/azalea-web/contact-service/pkg/contact"
	"github.com/azalea-web/contact-service/pkg/retry"
)

// ErrUnavailable marks a fatal connectivity failure: the connection attempt
// budget is exhausted and no submission can be accepted without durability.
var ErrUnavailable = errors.New("store unavailable")

const (
	connectAttempts        = 3
	connectBackoff         = time.Second
	serverSelectionTimeout = 5 * time.Second
)

// Store is the durable submission store. The underlying connection is
// established once, single-flighted across concurrent callers, and cached
// for the process lifetime. There is no periodic health re-check: a broken
// cached connection surfaces as a save-time error, which this component does
// not retry.
type Store struct {
	cfg config.Store
	log *zap.SugaredLogger

	group singleflight.Group
	dial  func(ctx context.Context) (*mongo.Client, error)

	mu        sync.RWMutex
	connected bool
	client    *mongo.Client
	coll      *mongo.Collection
}

func New(cfg config.Store, log *zap.SugaredLogger) *Store {
	s := &Store{
		cfg: cfg,
		log: log.Named("store"),
	}
	s.dial = s.dialMongo
	return s
}

func (s *Store) dialMongo(ctx context.Context) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(s.cfg.URI).
		SetServerSelectionTimeout(serverSelectionTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	// Connect only validates options; Ping forces establishment so the
	// retry loop sees real connectivity errors.
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// Connect establishes the cached connection if needed. A first caller runs
// the attempt; concurrent callers await the same in-flight attempt instead
// of opening duplicate connections. Up to 3 attempts with linear backoff
// (1s, 2s); after the final failure the error is fatal for the request.
func (s *Store) Connect(ctx context.Context) error {
	s.mu.RLock()
	connected := s.connected
	s.mu.RUnlock()
	if connected {
		return nil
	}

	_, err, _ := s.group.Do("connect", func() (interface{}, error) {
		s.mu.RLock()
		connected := s.connected
		s.mu.RUnlock()
		if connected {
			return nil, nil
		}

		var client *mongo.Client
		err := retry.Do(ctx, retry.Config{
			Attempts: connectAttempts,
			Delay:    connectBackoff,
			OnRetry: func(attempt int, err error) {
				s.log.Warnw("Store connection attempt failed, retrying",
					"attempt", attempt, "maxAttempts", connectAttempts, "error", err)
			},
		}, func(ctx context.Context) error {
			c, dialErr := s.dial(ctx)
			if dialErr != nil {
				return dialErr
			}
			client = c
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: connection failed after %d attempts: %v", ErrUnavailable, connectAttempts, err)
		}

		s.mu.Lock()
		s.connected = true
		s.client = client
		if client != nil {
			s.coll = client.Database(s.cfg.Database).Collection(s.cfg.Collection)
		}
		s.mu.Unlock()
		s.log.Infow("Store connected", "database", s.cfg.Database, "collection", s.cfg.Collection)
		return nil, nil
	})
	return err
}

type document struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Number    string             `bson:"number"`
	Message   string             `bson:"message"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// Save inserts one timestamped record for the submission. The record is
// never mutated afterwards. Save-time errors are returned as-is and not
// retried here.
func (s *Store) Save(ctx context.Context, sub contact.Submission) (contact.Record, error) {
	if err := s.Connect(ctx); err != nil {
		return contact.Record{}, err
	}

	s.mu.RLock()
	coll := s.coll
	s.mu.RUnlock()
	if coll == nil {
		return contact.Record{}, fmt.Errorf("%w: no collection handle", ErrUnavailable)
	}

	now := time.Now().UTC()
	res, err := coll.InsertOne(ctx, document{
		Name:      sub.Name,
		Email:     sub.Email,
		Number:    sub.Number,
		Message:   sub.Message,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return contact.Record{}, fmt.Errorf("saving submission: %w", err)
	}

	record := contact.Record{Submission: sub, CreatedAt: now, UpdatedAt: now}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid.Hex()
	}
	return record, nil
}

// Disconnect tears down the cached connection, used on shutdown.
func (s *Store) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Disconnect(ctx)
	s.client = nil
	s.coll = nil
	s.connected = false
	return err
}
