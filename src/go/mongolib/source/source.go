// Package source reads index statistics from a MongoDB server.
package source

import (
	"context"

	"github.com/AlekSi/pointer"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/percona/pt-mongodb-index-review/src/go/mongolib/proto"
	"github.com/percona/pt-mongodb-index-review/src/go/mongolib/snapshot"
)

// Source runs the administrative commands needed by the snapshot builder.
// It issues one command at a time.
type Source struct {
	client *mongo.Client
}

// Connect opens a connection to uri and checks the server answers.
// A non empty password replaces the one in the URI.
func Connect(ctx context.Context, uri, password string) (*Source, error) {
	opts := options.Client().ApplyURI(uri).SetAppName("pt-mongodb-index-review")
	if err := opts.Validate(); err != nil {
		return nil, &snapshot.SourceError{Op: "parse connection URI", Err: err}
	}

	if password != "" {
		if opts.Auth == nil || opts.Auth.Username == "" {
			return nil, &snapshot.SourceError{Op: "set password", Err: errors.New("the URI has no user name")}
		}
		opts.Auth.Password = password
		opts.Auth.PasswordSet = true
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, &snapshot.SourceError{Op: "connect to MongoDB", Err: err}
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx) //nolint:errcheck
		return nil, &snapshot.SourceError{Op: "connect to MongoDB", Err: err}
	}
	log.Debugf("connected to %v", opts.Hosts)

	return New(client), nil
}

// New returns a Source using an already connected client.
func New(client *mongo.Client) *Source {
	return &Source{client: client}
}

// Disconnect closes the underlying client.
func (s *Source) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Source) ServerStatus(ctx context.Context) (*proto.ServerStatus, error) {
	ss := &proto.ServerStatus{}
	res := s.client.Database("admin").RunCommand(ctx, primitive.D{{Key: "serverStatus", Value: 1}})
	if err := res.Decode(ss); err != nil {
		return nil, errors.Wrap(err, "cannot run serverStatus")
	}
	return ss, nil
}

func (s *Source) ListDatabaseNames(ctx context.Context) ([]string, error) {
	opts := &options.ListDatabasesOptions{NameOnly: pointer.ToBool(true)}
	names, err := s.client.ListDatabaseNames(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "cannot list databases")
	}
	return names, nil
}

func (s *Source) ListCollections(ctx context.Context, database string) ([]proto.CollectionInfo, error) {
	opts := &options.ListCollectionsOptions{NameOnly: pointer.ToBool(true)}
	cursor, err := s.client.Database(database).ListCollections(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot list collections in %s", database)
	}

	var colls []proto.CollectionInfo
	if err := cursor.All(ctx, &colls); err != nil {
		return nil, errors.Wrapf(err, "cannot read collections list of %s", database)
	}
	return colls, nil
}

func (s *Source) CollectionStats(ctx context.Context, database, collection string) (bson.Raw, error) {
	cmd := primitive.D{{Key: "collStats", Value: collection}}
	raw, err := s.client.Database(database).RunCommand(ctx, cmd).DecodeBytes()
	if err != nil {
		return nil, errors.Wrapf(err, "cannot run collStats on %s.%s", database, collection)
	}
	return raw, nil
}

func (s *Source) IndexStats(ctx context.Context, database, collection string) ([]proto.IndexStat, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$indexStats", Value: primitive.M{}}},
	}

	cursor, err := s.client.Database(database).Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "cannot run $indexStats")
	}

	var stats []proto.IndexStat
	if err = cursor.All(ctx, &stats); err != nil {
		return nil, errors.Wrap(err, "cannot get $indexStats")
	}

	return stats, nil
}

var _ snapshot.Source = (*Source)(nil)
