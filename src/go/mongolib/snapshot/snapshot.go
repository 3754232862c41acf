// Package snapshot holds the point-in-time capture of index usage statistics,
// the builder that collects it from a server and the JSON codec used to persist it.
package snapshot

import (
	"time"
)

// IDIndexNames are the names MongoDB uses for the mandatory primary key index.
var IDIndexNames = []string{"_id", "_id_"} //nolint:gochecknoglobals

// IsIDIndex returns true if name is the primary key index.
func IsIDIndex(name string) bool {
	for _, n := range IDIndexNames {
		if name == n {
			return true
		}
	}
	return false
}

// Snapshot is one capture of server, database, collection and index statistics.
// It is built once and never modified afterwards.
type Snapshot struct {
	ServerAlias string
	RunID       string
	CapturedAt  time.Time
	Collector   CollectorInfo
	Server      ServerInfo
	Databases   []DatabaseStats
}

// CollectorInfo describes the machine and tool that took the snapshot.
type CollectorInfo struct {
	Hostname    string `json:"hostname,omitempty"`
	OS          string `json:"os,omitempty"`
	Platform    string `json:"platform,omitempty"`
	ToolVersion string `json:"toolVersion,omitempty"`
}

// ServerInfo is forwarded from serverStatus without interpretation.
type ServerInfo struct {
	Host       string
	Version    string
	Uptime     float64
	LocalTime  string
	Opcounters map[string]interface{}
	DocMetrics map[string]interface{}
}

// DatabaseStats lists the collections of a database in the order they were found.
type DatabaseStats struct {
	Name        string
	Collections []CollectionStats
}

// CollectionStats has the collStats reply and the usage of every index.
type CollectionStats struct {
	Name         string
	StorageStats map[string]interface{}
	Indexes      []IndexStats
}

// IndexStats is the usage and shape of one index.
type IndexStats struct {
	Name         string
	Key          IndexKey
	KeySignature string
	Ops          int64
	Since        time.Time
	Host         string
	Building     bool // still being built, its counter means nothing yet
	Spec         map[string]interface{}
}

// NewIndexStats returns an IndexStats with its signature computed from key.
func NewIndexStats(name string, key IndexKey, ops int64) IndexStats {
	return IndexStats{
		Name:         name,
		Key:          key,
		KeySignature: key.Signature(),
		Ops:          ops,
	}
}

// Database returns the stats of the named database.
func (s *Snapshot) Database(name string) (DatabaseStats, bool) {
	for _, db := range s.Databases {
		if db.Name == name {
			return db, true
		}
	}
	return DatabaseStats{}, false
}

// Collection returns the stats of the named collection.
func (d DatabaseStats) Collection(name string) (CollectionStats, bool) {
	for _, coll := range d.Collections {
		if coll.Name == name {
			return coll, true
		}
	}
	return CollectionStats{}, false
}
