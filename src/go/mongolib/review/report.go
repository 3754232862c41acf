package review

import (
	"io"
	"text/template"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/percona/pt-mongodb-index-review/src/go/mongolib/snapshot"
)

// IndexReport merges the findings of one index.
type IndexReport struct {
	Name      string
	Key       snapshot.IndexKey
	Unused    bool
	CoveredBy []string
}

type CollectionReport struct {
	Name    string
	Indexes []IndexReport
}

type DatabaseReport struct {
	Name        string
	Collections []CollectionReport
}

// Group nests findings by database, collection and index keeping the order in
// which they appear. Databases and collections without findings are absent.
func Group(findings []Finding) []DatabaseReport {
	var dbs []DatabaseReport

	for _, f := range findings {
		if len(dbs) == 0 || dbs[len(dbs)-1].Name != f.Database {
			dbs = append(dbs, DatabaseReport{Name: f.Database})
		}
		db := &dbs[len(dbs)-1]

		if len(db.Collections) == 0 || db.Collections[len(db.Collections)-1].Name != f.Collection {
			db.Collections = append(db.Collections, CollectionReport{Name: f.Collection})
		}
		coll := &db.Collections[len(db.Collections)-1]

		if len(coll.Indexes) == 0 || coll.Indexes[len(coll.Indexes)-1].Name != f.Index {
			coll.Indexes = append(coll.Indexes, IndexReport{Name: f.Index, Key: f.Key})
		}
		idx := &coll.Indexes[len(coll.Indexes)-1]

		switch f.Kind {
		case Unused:
			idx.Unused = true
		case Redundant:
			idx.CoveredBy = append(idx.CoveredBy, f.CoveredBy...)
		}
	}

	return dbs
}

// Report writes the findings as text. Nothing is written when there are no findings.
func Report(w io.Writer, findings []Finding) error {
	t := template.Must(template.New("findings").Parse(findingsTemplate))
	if err := t.Execute(w, Group(findings)); err != nil {
		return errors.Wrap(err, "cannot render findings")
	}
	return nil
}

// Summary has the totals of one evaluated snapshot.
type Summary struct {
	ServerAlias string
	Host        string
	CapturedAt  time.Time
	Uptime      time.Duration // bounds the period the usage counters cover
	Databases   int
	Collections int
	Indexes     int // indexes checked, the primary key index is not counted
	Unused      int
	Redundant   int
	MinOps      float64
	MedianOps   float64
	MaxOps      float64
}

// Summarize counts what was checked and what was found.
func Summarize(s *snapshot.Snapshot, findings []Finding) Summary {
	sum := Summary{
		ServerAlias: s.ServerAlias,
		Host:        s.Server.Host,
		CapturedAt:  s.CapturedAt,
		Uptime:      time.Duration(s.Server.Uptime * float64(time.Second)).Truncate(time.Second),
		Databases:   len(s.Databases),
	}

	ops := stats.Float64Data{}
	for _, db := range s.Databases {
		sum.Collections += len(db.Collections)
		for _, coll := range db.Collections {
			for _, idx := range coll.Indexes {
				if snapshot.IsIDIndex(idx.Name) {
					continue
				}
				ops = append(ops, float64(idx.Ops))
			}
		}
	}
	sum.Indexes = len(ops)

	for _, f := range findings {
		switch f.Kind {
		case Unused:
			sum.Unused++
		case Redundant:
			sum.Redundant++
		}
	}

	if len(ops) > 0 {
		sum.MinOps, _ = stats.Min(ops)
		sum.MedianOps, _ = stats.Median(ops)
		sum.MaxOps, _ = stats.Max(ops)
	}

	return sum
}

// ReportSummary writes the totals after the findings.
func ReportSummary(w io.Writer, sum Summary) error {
	t := template.Must(template.New("summary").Parse(summaryTemplate))
	if err := t.Execute(w, sum); err != nil {
		return errors.Wrap(err, "cannot render summary")
	}
	return nil
}
