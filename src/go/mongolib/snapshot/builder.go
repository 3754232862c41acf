package snapshot

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/percona/pt-mongodb-index-review/src/go/lib/versioncheck"
	"github.com/percona/pt-mongodb-index-review/src/go/mongolib/proto"
)

var (
	// ExcludedDatabases are never inventoried.
	ExcludedDatabases = []string{"admin", "config", "local", "system"} //nolint:gochecknoglobals
	// ExcludedCollections are skipped in every database.
	ExcludedCollections = []string{"system.profile"} //nolint:gochecknoglobals
)

//go:generate mockgen -destination=snapshotmock/source.go -package=snapshotmock . Source

// Source is the connection the builder reads statistics from.
// Calls are made one at a time.
type Source interface {
	ServerStatus(ctx context.Context) (*proto.ServerStatus, error)
	ListDatabaseNames(ctx context.Context) ([]string, error)
	ListCollections(ctx context.Context, database string) ([]proto.CollectionInfo, error)
	CollectionStats(ctx context.Context, database, collection string) (bson.Raw, error)
	IndexStats(ctx context.Context, database, collection string) ([]proto.IndexStat, error)
}

// BuildConfig is the immutable configuration of a collection run.
type BuildConfig struct {
	ServerAlias      string
	SkipVersionCheck bool
	ToolVersion      string

	// Now and Collector default to the wall clock and LocalCollectorInfo.
	Now       func() time.Time
	Collector func() CollectorInfo
}

// Builder collects a Snapshot from a Source.
type Builder struct {
	src    Source
	cfg    BuildConfig
	logger *logrus.Logger
}

// NewBuilder returns a Builder logging through the standard logrus logger.
func NewBuilder(src Source, cfg BuildConfig) *Builder {
	return NewBuilderWithLogger(src, cfg, logrus.StandardLogger())
}

// NewBuilderWithLogger returns a Builder using an external logger instance.
func NewBuilderWithLogger(src Source, cfg BuildConfig, l *logrus.Logger) *Builder {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Collector == nil {
		toolVersion := cfg.ToolVersion
		cfg.Collector = func() CollectorInfo { return LocalCollectorInfo(toolVersion) }
	}
	return &Builder{src: src, cfg: cfg, logger: l}
}

// ValidateServerAlias checks the alias can label a snapshot and name its file.
func ValidateServerAlias(alias string) error {
	if strings.TrimSpace(alias) == "" {
		return errors.New("server alias cannot be empty")
	}
	if strings.ContainsAny(alias, `/\`) {
		return errors.Errorf("server alias %q cannot contain path separators", alias)
	}
	return nil
}

// Build reads every non system collection and its indexes. Any source failure
// aborts the run and no snapshot is returned.
func (b *Builder) Build(ctx context.Context) (*Snapshot, error) {
	if err := ValidateServerAlias(b.cfg.ServerAlias); err != nil {
		return nil, err
	}

	ss, err := b.src.ServerStatus(ctx)
	if err != nil {
		return nil, sourceErrorf(err, "run serverStatus")
	}
	if !b.cfg.SkipVersionCheck {
		if err := versioncheck.CheckServerVersion(ss.Version); err != nil {
			return nil, err
		}
	}

	server, err := serverInfo(ss)
	if err != nil {
		return nil, err
	}

	s := &Snapshot{
		ServerAlias: b.cfg.ServerAlias,
		RunID:       uuid.New().String(),
		CapturedAt:  b.cfg.Now().UTC(),
		Collector:   b.cfg.Collector(),
		Server:      server,
	}

	dbNames, err := b.src.ListDatabaseNames(ctx)
	if err != nil {
		return nil, sourceErrorf(err, "list databases")
	}

	for _, dbName := range dbNames {
		if in(dbName, ExcludedDatabases) {
			b.logger.Debugf("skipping database %s", dbName)
			continue
		}
		db, err := b.buildDatabase(ctx, dbName)
		if err != nil {
			return nil, err
		}
		s.Databases = append(s.Databases, db)
	}

	return s, nil
}

func (b *Builder) buildDatabase(ctx context.Context, dbName string) (DatabaseStats, error) {
	db := DatabaseStats{Name: dbName}

	colls, err := b.src.ListCollections(ctx, dbName)
	if err != nil {
		return db, sourceErrorf(err, "list collections in %s", dbName)
	}

	for _, ci := range colls {
		if ci.IsView() || in(ci.Name, ExcludedCollections) {
			b.logger.Debugf("skipping %s.%s (%s)", dbName, ci.Name, ci.Type)
			continue
		}
		b.logger.Infof("%s.%s", dbName, ci.Name)

		coll, err := b.buildCollection(ctx, dbName, ci.Name)
		if err != nil {
			return db, err
		}
		db.Collections = append(db.Collections, coll)
	}

	return db, nil
}

func (b *Builder) buildCollection(ctx context.Context, dbName, collName string) (CollectionStats, error) {
	coll := CollectionStats{Name: collName}

	raw, err := b.src.CollectionStats(ctx, dbName, collName)
	if err != nil {
		return coll, sourceErrorf(err, "run collStats on %s.%s", dbName, collName)
	}
	if coll.StorageStats, err = proto.ToMap(raw); err != nil {
		return coll, sourceErrorf(err, "read collStats of %s.%s", dbName, collName)
	}

	stats, err := b.src.IndexStats(ctx, dbName, collName)
	if err != nil {
		return coll, sourceErrorf(err, "run $indexStats on %s.%s", dbName, collName)
	}

	coll.Indexes = make([]IndexStats, 0, len(stats))
	for _, st := range stats {
		idx := NewIndexStats(st.Name, KeyFromD(st.Key), st.Accesses.Ops)
		idx.Since = st.Accesses.Since.UTC()
		idx.Host = st.Host
		idx.Building = st.Building
		if idx.Spec, err = proto.ToMap(st.Spec); err != nil {
			return coll, sourceErrorf(err, "read spec of index %s on %s.%s", st.Name, dbName, collName)
		}
		coll.Indexes = append(coll.Indexes, idx)
	}

	return coll, nil
}

func serverInfo(ss *proto.ServerStatus) (ServerInfo, error) {
	info := ServerInfo{
		Host:    ss.Host,
		Version: ss.Version,
		Uptime:  ss.Uptime,
	}
	if !ss.LocalTime.IsZero() {
		info.LocalTime = ss.LocalTime.UTC().Format(time.RFC3339Nano)
	}

	var err error
	if info.Opcounters, err = proto.ToMap(ss.Opcounters); err != nil {
		return info, sourceErrorf(err, "read serverStatus opcounters")
	}
	if info.DocMetrics, err = proto.ToMap(ss.Metrics.Document); err != nil {
		return info, sourceErrorf(err, "read serverStatus document metrics")
	}

	return info, nil
}

func in(search string, items []string) bool {
	for _, item := range items {
		if search == item {
			return true
		}
	}
	return false
}
