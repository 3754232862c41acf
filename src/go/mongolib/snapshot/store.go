package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/percona/pt-mongodb-index-review/src/go/mongolib/proto"
)

const (
	fileNameTimeLayout = "20060102150405"
	fileNameSuffix     = "-index-review.json"
)

// Layouts accepted for the index counter start time. The second one is how
// Python's str() prints datetimes in files written by earlier versions of the tool.
var sinceLayouts = []string{ //nolint:gochecknoglobals
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05.999999",
}

// FileName returns the name of the snapshot file for alias captured at t.
func FileName(alias string, t time.Time) string {
	return fmt.Sprintf("%s-%s%s", alias, t.UTC().Format(fileNameTimeLayout), fileNameSuffix)
}

// WriteFile saves the snapshot in dir and returns the file path.
func WriteFile(dir string, s *Snapshot) (string, error) {
	path := filepath.Join(dir, FileName(s.ServerAlias, s.CapturedAt))

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "cannot create snapshot file")
	}

	if err := Save(f, s); err != nil {
		f.Close()
		os.Remove(path) //nolint:errcheck
		return "", err
	}

	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "cannot close %s", path)
	}

	return path, nil
}

// ReadFile loads a snapshot saved by WriteFile.
func ReadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open snapshot file")
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return s, nil
}

// Save writes the snapshot as indented JSON.
func Save(w io.Writer, s *Snapshot) error {
	doc := snapshotDoc{
		ServerAlias: s.ServerAlias,
		RunID:       s.RunID,
		Start: &startDoc{
			Opcounters: s.Server.Opcounters,
			DocMetrics: s.Server.DocMetrics,
			Uptime:     s.Server.Uptime,
			Host:       s.Server.Host,
			LocalTime:  s.Server.LocalTime,
			Version:    s.Server.Version,
			CollStats:  databasesDoc(s.Databases),
		},
	}
	if !s.CapturedAt.IsZero() {
		t := s.CapturedAt.UTC()
		doc.CapturedAt = &t
	}
	if s.Collector != (CollectorInfo{}) {
		ci := s.Collector
		doc.Collector = &ci
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "cannot encode snapshot")
	}
	return nil
}

// Load reads a snapshot written by Save or by earlier versions of the tool.
// Structural problems are reported as ErrSnapshotMalformed.
func Load(r io.Reader) (*Snapshot, error) {
	var doc snapshotDoc
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, ErrSnapshotMalformed) {
			return nil, err
		}
		return nil, malformedf("cannot decode snapshot: %s", err)
	}

	if doc.ServerAlias == "" {
		return nil, malformedf("missing serverAlias")
	}
	if doc.Start == nil {
		return nil, malformedf("missing start")
	}
	if doc.Start.CollStats == nil {
		return nil, malformedf("missing start.collstats")
	}

	s := &Snapshot{
		ServerAlias: doc.ServerAlias,
		RunID:       doc.RunID,
		Server: ServerInfo{
			Host:       doc.Start.Host,
			Version:    doc.Start.Version,
			Uptime:     doc.Start.Uptime,
			LocalTime:  doc.Start.LocalTime,
			Opcounters: doc.Start.Opcounters,
			DocMetrics: doc.Start.DocMetrics,
		},
		Databases: []DatabaseStats(doc.Start.CollStats),
	}
	if doc.CapturedAt != nil {
		s.CapturedAt = doc.CapturedAt.UTC()
	}
	if doc.Collector != nil {
		s.Collector = *doc.Collector
	}

	return s, nil
}

type snapshotDoc struct {
	ServerAlias string         `json:"serverAlias"`
	RunID       string         `json:"runId,omitempty"`
	CapturedAt  *time.Time     `json:"capturedAt,omitempty"`
	Collector   *CollectorInfo `json:"collector,omitempty"`
	Start       *startDoc      `json:"start"`
}

type startDoc struct {
	Opcounters map[string]interface{} `json:"opcounters"`
	DocMetrics map[string]interface{} `json:"docmetrics"`
	Uptime     float64                `json:"uptime"`
	Host       string                 `json:"host"`
	LocalTime  string                 `json:"localtime"`
	Version    string                 `json:"version,omitempty"`
	CollStats  databasesDoc           `json:"collstats"`
}

// databasesDoc is encoded as {"<db>": {"<collection>": {...}}} keeping the order of the slice.
type databasesDoc []DatabaseStats

func (d databasesDoc) MarshalJSON() ([]byte, error) {
	members := make([]proto.Member, 0, len(d))
	for _, db := range d {
		members = append(members, proto.Member{Key: db.Name, Value: collectionsDoc(db.Collections)})
	}
	return proto.EncodeObject(members)
}

func (d *databasesDoc) UnmarshalJSON(data []byte) error {
	dbs := databasesDoc{}
	err := proto.DecodeObject(data, func(name string, value json.RawMessage) error {
		var colls collectionsDoc
		if err := json.Unmarshal(value, &colls); err != nil {
			return errors.Wrapf(err, "database %s", name)
		}
		dbs = append(dbs, DatabaseStats{Name: name, Collections: []CollectionStats(colls)})
		return nil
	})
	if err != nil {
		return asMalformed(err, "collstats")
	}
	*d = dbs
	return nil
}

type collectionsDoc []CollectionStats

func (c collectionsDoc) MarshalJSON() ([]byte, error) {
	members := make([]proto.Member, 0, len(c))
	for _, coll := range c {
		members = append(members, proto.Member{Key: coll.Name, Value: collectionDoc(coll)})
	}
	return proto.EncodeObject(members)
}

func (c *collectionsDoc) UnmarshalJSON(data []byte) error {
	colls := collectionsDoc{}
	err := proto.DecodeObject(data, func(name string, value json.RawMessage) error {
		var coll collectionDoc
		if err := json.Unmarshal(value, &coll); err != nil {
			return errors.Wrapf(err, "collection %s", name)
		}
		coll.Name = name
		colls = append(colls, CollectionStats(coll))
		return nil
	})
	if err != nil {
		return asMalformed(err, "collections")
	}
	*c = colls
	return nil
}

// collectionDoc is the collStats reply with the index list added as indexInfo.
type collectionDoc CollectionStats

const indexInfoField = "indexInfo"

func (c collectionDoc) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, len(c.StorageStats)+1)
	for k, v := range c.StorageStats {
		m[k] = v
	}

	indexes := make([]indexDoc, 0, len(c.Indexes))
	for _, idx := range c.Indexes {
		indexes = append(indexes, newIndexDoc(idx))
	}
	m[indexInfoField] = indexes

	return json.Marshal(m)
}

func (c *collectionDoc) UnmarshalJSON(data []byte) error {
	var withIndexes struct {
		IndexInfo *[]indexDoc `json:"indexInfo"`
	}
	if err := proto.UnmarshalNumbers(data, &withIndexes); err != nil {
		return asMalformed(err, "collection")
	}
	if withIndexes.IndexInfo == nil {
		return malformedf("missing %s", indexInfoField)
	}

	storage := map[string]interface{}{}
	if err := proto.UnmarshalNumbers(data, &storage); err != nil {
		return asMalformed(err, "collection")
	}
	delete(storage, indexInfoField)

	indexes := make([]IndexStats, 0, len(*withIndexes.IndexInfo))
	for i, doc := range *withIndexes.IndexInfo {
		idx, err := doc.indexStats()
		if err != nil {
			return errors.Wrapf(err, "%s[%d]", indexInfoField, i)
		}
		indexes = append(indexes, idx)
	}

	c.StorageStats = storage
	c.Indexes = indexes
	return nil
}

type indexDoc struct {
	Name        *string                `json:"name"`
	Key         keyObject              `json:"key,omitempty"`
	KeyAsList   keyList                `json:"keyAsList,omitempty"`
	KeyAsString *string                `json:"keyAsString,omitempty"`
	Accesses    *accessesDoc           `json:"accesses"`
	Host        string                 `json:"host,omitempty"`
	Building    bool                   `json:"building,omitempty"`
	Spec        map[string]interface{} `json:"spec,omitempty"`
}

type accessesDoc struct {
	Ops   *int64 `json:"ops"`
	Since string `json:"since,omitempty"`
}

func newIndexDoc(idx IndexStats) indexDoc {
	name := idx.Name
	signature := idx.KeySignature
	if signature == "" {
		signature = idx.Key.Signature()
	}
	ops := idx.Ops

	doc := indexDoc{
		Name:        &name,
		Key:         keyObject(idx.Key),
		KeyAsList:   keyList(idx.Key),
		KeyAsString: &signature,
		Accesses:    &accessesDoc{Ops: &ops},
		Host:        idx.Host,
		Building:    idx.Building,
		Spec:        idx.Spec,
	}
	if !idx.Since.IsZero() {
		doc.Accesses.Since = idx.Since.UTC().Format(time.RFC3339Nano)
	}
	return doc
}

func (d indexDoc) indexStats() (IndexStats, error) {
	if d.Name == nil || *d.Name == "" {
		return IndexStats{}, malformedf("index without name")
	}
	if d.Accesses == nil || d.Accesses.Ops == nil {
		return IndexStats{}, malformedf("index %s: missing accesses.ops", *d.Name)
	}

	key := IndexKey(d.KeyAsList)
	if len(key) == 0 {
		key = IndexKey(d.Key)
	}
	if len(key) == 0 {
		return IndexStats{}, malformedf("index %s: missing key", *d.Name)
	}

	idx := IndexStats{
		Name: *d.Name,
		Key:  key,
		Ops:  *d.Accesses.Ops,
		Host:     d.Host,
		Building: d.Building,
		Spec:     d.Spec,
	}
	// An empty signature would be a prefix of every other one.
	if d.KeyAsString != nil && *d.KeyAsString != "" {
		idx.KeySignature = *d.KeyAsString
	} else {
		idx.KeySignature = key.Signature()
	}
	idx.Since = parseSince(d.Accesses.Since)

	return idx, nil
}

func parseSince(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range sinceLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// keyObject is the key as a JSON object: {"a": 1, "b": -1}.
type keyObject IndexKey

func (k keyObject) MarshalJSON() ([]byte, error) {
	members := make([]proto.Member, 0, len(k))
	for _, p := range k {
		members = append(members, proto.Member{Key: p.Field, Value: p.Direction})
	}
	return proto.EncodeObject(members)
}

func (k *keyObject) UnmarshalJSON(data []byte) error {
	key := keyObject{}
	err := proto.DecodeObject(data, func(field string, value json.RawMessage) error {
		var dir interface{}
		if err := json.Unmarshal(value, &dir); err != nil {
			return err
		}
		key = append(key, KeyPair{Field: field, Direction: dir})
		return nil
	})
	if err != nil {
		return asMalformed(err, "key")
	}
	*k = key
	return nil
}

// keyList is the key as a list of pairs: [["a", 1], ["b", -1]].
type keyList IndexKey

func (k keyList) MarshalJSON() ([]byte, error) {
	pairs := make([][2]interface{}, 0, len(k))
	for _, p := range k {
		pairs = append(pairs, [2]interface{}{p.Field, p.Direction})
	}
	return json.Marshal(pairs)
}

func (k *keyList) UnmarshalJSON(data []byte) error {
	var pairs [][]interface{}
	if err := json.Unmarshal(data, &pairs); err != nil {
		return asMalformed(err, "keyAsList")
	}

	key := make(keyList, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) != 2 {
			return malformedf("keyAsList[%d]: expected a [field, direction] pair", i)
		}
		field, ok := pair[0].(string)
		if !ok {
			return malformedf("keyAsList[%d]: field name is not a string", i)
		}
		key = append(key, KeyPair{Field: field, Direction: pair[1]})
	}
	*k = key
	return nil
}

func asMalformed(err error, what string) error {
	if errors.Is(err, ErrSnapshotMalformed) {
		return err
	}
	return malformedf("%s: %s", what, err)
}
