// Package mongo loads roster snapshots from a MongoDB database.
//
// Each record type lives in its own collection. A snapshot reads all six
// collections concurrently; documents are returned in insertion order so
// that layouts are stable between loads of unchanged data.
package mongo

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/peoplepack/pkg/errors"
	rosterio "github.com/matzehuels/peoplepack/pkg/io"
	"github.com/matzehuels/peoplepack/pkg/roster"
	"github.com/matzehuels/peoplepack/pkg/source"
)

// Collection names.
const (
	CollPeople      = "people"
	CollSkills      = "skills"
	CollCategories  = "categories"
	CollTargets     = "targets"
	CollRoles       = "roles"
	CollAssignments = "assignments"
)

// DefaultTimeout bounds connecting and loading.
const DefaultTimeout = 10 * time.Second

const (
	pingAttempts = 3
	pingDelay    = 500 * time.Millisecond
)

// Source reads snapshots from a database.
type Source struct {
	db      *mongo.Database
	client  *mongo.Client
	owned   bool
	logger  *log.Logger
	timeout time.Duration
}

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger for load events.
func WithLogger(l *log.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTimeout bounds each Snapshot call.
func WithTimeout(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New wraps an existing database handle. Close does not disconnect it.
func New(db *mongo.Database, opts ...Option) *Source {
	s := &Source{
		db:      db,
		client:  db.Client(),
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		timeout: DefaultTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Connect dials uri, verifies the connection and returns a source for the
// named database. Close disconnects the client.
func Connect(ctx context.Context, uri, database string, opts ...Option) (*Source, error) {
	if err := errors.ValidateURI(uri); err != nil {
		return nil, err
	}
	if database == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "database name cannot be empty")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetAppName("peoplepack"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "connect")
	}
	s := New(client.Database(database), opts...)
	s.owned = true

	err = source.Retry(ctx, pingAttempts, pingDelay, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
			return &source.RetryableError{Err: err}
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "ping %s", database)
	}
	s.logger.Debug("connected to document store", "database", database)
	return s, nil
}

// Name returns "mongo:<database>".
func (s *Source) Name() string { return "mongo:" + s.db.Name() }

// Snapshot loads every collection concurrently. Missing collections are
// empty, not errors.
func (s *Source) Snapshot(ctx context.Context) (*roster.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	var snap roster.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return load(gctx, s.db.Collection(CollPeople), &snap.People) })
	g.Go(func() error { return load(gctx, s.db.Collection(CollSkills), &snap.Skills) })
	g.Go(func() error { return load(gctx, s.db.Collection(CollCategories), &snap.Categories) })
	g.Go(func() error { return load(gctx, s.db.Collection(CollTargets), &snap.Targets) })
	g.Go(func() error { return load(gctx, s.db.Collection(CollRoles), &snap.Roles) })
	g.Go(func() error { return load(gctx, s.db.Collection(CollAssignments), &snap.Assignments) })
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "load %s", s.db.Name())
	}

	rosterio.Normalize(&snap)
	if err := snap.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid records in %s", s.db.Name())
	}
	s.logger.Debug("snapshot loaded", "database", s.db.Name(), "people", len(snap.People), "took", time.Since(start))
	return &snap, nil
}

func load[T any](ctx context.Context, coll *mongo.Collection, out *[]T) error {
	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	var docs []T
	if err := cur.All(ctx, &docs); err != nil {
		return err
	}
	*out = docs
	return nil
}

// Close disconnects the client when the source created it.
func (s *Source) Close(ctx context.Context) error {
	if !s.owned {
		return nil
	}
	return s.client.Disconnect(ctx)
}

var _ source.Source = (*Source)(nil)
