// Package review flags unused and redundant indexes in a snapshot.
package review

import (
	"strings"

	"github.com/percona/pt-mongodb-index-review/src/go/mongolib/snapshot"
)

// Kind is the type of a finding.
type Kind int

const (
	// Unused indexes have not been used since their counters were reset.
	Unused Kind = iota
	// Redundant indexes have a key that is a leading part of another index key.
	Redundant
)

func (k Kind) String() string {
	switch k {
	case Unused:
		return "unused"
	case Redundant:
		return "redundant"
	}
	return "unknown"
}

// Finding is one fact about an index. CoveredBy is only set for Redundant findings.
type Finding struct {
	Database   string
	Collection string
	Index      string
	Kind       Kind
	Key        snapshot.IndexKey
	CoveredBy  []string
}

// Evaluate checks every index but the primary key index of every collection.
// Findings follow the snapshot order; for an index, Unused comes before Redundant.
func Evaluate(s *snapshot.Snapshot) []Finding {
	findings := []Finding{}
	for _, db := range s.Databases {
		for _, coll := range db.Collections {
			findings = append(findings, EvaluateCollection(db.Name, coll)...)
		}
	}
	return findings
}

// EvaluateCollection returns the findings of a single collection.
func EvaluateCollection(database string, coll snapshot.CollectionStats) []Finding {
	var findings []Finding

	for _, idx := range coll.Indexes {
		if snapshot.IsIDIndex(idx.Name) {
			continue
		}

		if idx.Ops == 0 && !idx.Building {
			findings = append(findings, Finding{
				Database:   database,
				Collection: coll.Name,
				Index:      idx.Name,
				Kind:       Unused,
				Key:        idx.Key,
			})
		}

		if covering := CoveredBy(idx, coll.Indexes); len(covering) > 0 {
			findings = append(findings, Finding{
				Database:   database,
				Collection: coll.Name,
				Index:      idx.Name,
				Kind:       Redundant,
				Key:        idx.Key,
				CoveredBy:  covering,
			})
		}
	}

	return findings
}

// CoveredBy returns the names of the other indexes whose key starts with every
// field and direction of the key of idx, in collection order. Indexes with the
// same key cover each other and the primary key index can cover others.
func CoveredBy(idx snapshot.IndexStats, indexes []snapshot.IndexStats) []string {
	var covering []string
	for _, other := range indexes {
		if other.Name == idx.Name {
			continue
		}
		if covers(other, idx) {
			covering = append(covering, other.Name)
		}
	}
	return covering
}

// covers compares the keys pair by pair; signatures are only used for indexes
// whose key is unknown.
func covers(other, idx snapshot.IndexStats) bool {
	if len(idx.Key) > 0 && len(other.Key) > 0 {
		return idx.Key.IsPrefixOf(other.Key)
	}
	if idx.KeySignature == "" {
		return false
	}
	return strings.HasPrefix(other.KeySignature, idx.KeySignature)
}
