package review

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/percona/pt-mongodb-index-review/src/go/lib/tutil"
	"github.com/percona/pt-mongodb-index-review/src/go/mongolib/snapshot"
)

func key(pairs ...interface{}) snapshot.IndexKey {
	k := snapshot.IndexKey{}
	for i := 0; i < len(pairs); i += 2 {
		k = append(k, snapshot.KeyPair{Field: pairs[i].(string), Direction: pairs[i+1]})
	}
	return k
}

func index(name string, ops int64, k snapshot.IndexKey) snapshot.IndexStats {
	return snapshot.NewIndexStats(name, k, ops)
}

func collection(name string, indexes ...snapshot.IndexStats) snapshot.CollectionStats {
	return snapshot.CollectionStats{Name: name, StorageStats: map[string]interface{}{}, Indexes: indexes}
}

func oneCollection(indexes ...snapshot.IndexStats) *snapshot.Snapshot {
	return &snapshot.Snapshot{
		ServerAlias: "test",
		Databases: []snapshot.DatabaseStats{
			{Name: "db", Collections: []snapshot.CollectionStats{collection("c", indexes...)}},
		},
	}
}

var idIndex = index("_id_", 10, key("_id", int32(1)))

func TestUnusedAndRedundant(t *testing.T) {
	s := oneCollection(
		idIndex,
		index("a_1", 0, key("a", int32(1))),
		index("a_1_b_1", 5, key("a", int32(1), "b", int32(1))),
	)

	want := []Finding{
		{Database: "db", Collection: "c", Index: "a_1", Kind: Unused, Key: key("a", int32(1))},
		{Database: "db", Collection: "c", Index: "a_1", Kind: Redundant, Key: key("a", int32(1)), CoveredBy: []string{"a_1_b_1"}},
	}
	got := Evaluate(s)
	assert.Equal(t, want, got, "findings:\n%s", tutil.Pretty(got))
}

func TestDirectionMismatchIsNotRedundant(t *testing.T) {
	s := oneCollection(
		idIndex,
		index("a_1_b_1", 3, key("a", int32(1), "b", int32(1))),
		index("a_1_b_-1", 4, key("a", int32(1), "b", int32(-1))),
	)
	assert.Empty(t, Evaluate(s))
}

func TestDelimiterInFieldNameIsNotRedundant(t *testing.T) {
	s := oneCollection(
		idIndex,
		index("a_1", 3, key("a", int32(1))),
		index("weird", 4, key("a||1||b", int32(1))),
	)
	got := Evaluate(s)
	assert.Empty(t, got, "findings:\n%s", tutil.Pretty(got))
}

func TestCoveredByComparesKeysNotStoredSignatures(t *testing.T) {
	// signatures as written by older versions, without escaping
	a := index("a_1", 3, key("a", int32(1)))
	weird := index("weird", 4, key("a||1||b", int32(1)))
	weird.KeySignature = "a||1||b||1||"

	assert.Empty(t, CoveredBy(a, []snapshot.IndexStats{a, weird}))
}

func TestBuildingIndexIsNotUnused(t *testing.T) {
	building := index("b_1", 0, key("b", int32(1)))
	building.Building = true

	s := oneCollection(
		idIndex,
		building,
		index("b_1_c_1", 2, key("b", int32(1), "c", int32(1))),
	)

	want := []Finding{
		{Database: "db", Collection: "c", Index: "b_1", Kind: Redundant, Key: key("b", int32(1)), CoveredBy: []string{"b_1_c_1"}},
	}
	got := Evaluate(s)
	assert.Equal(t, want, got, "findings:\n%s", tutil.Pretty(got))
}

func TestDuplicatesCoverEachOther(t *testing.T) {
	s := oneCollection(
		idIndex,
		index("a_1", 2, key("a", int32(1))),
		index("a_1_dup", 8, key("a", float64(1))),
	)

	want := []Finding{
		{Database: "db", Collection: "c", Index: "a_1", Kind: Redundant, Key: key("a", int32(1)), CoveredBy: []string{"a_1_dup"}},
		{Database: "db", Collection: "c", Index: "a_1_dup", Kind: Redundant, Key: key("a", float64(1)), CoveredBy: []string{"a_1"}},
	}
	got := Evaluate(s)
	assert.Equal(t, want, got, "findings:\n%s", tutil.Pretty(got))
}

func TestOnlyIDIndex(t *testing.T) {
	s := oneCollection(index("_id_", 0, key("_id", int32(1))))

	findings := Evaluate(s)
	assert.Empty(t, findings)

	var buf bytes.Buffer
	require.NoError(t, Report(&buf, findings))
	assert.Empty(t, buf.String())
}

func TestIDIndexIsNeverASubject(t *testing.T) {
	s := oneCollection(
		index("_id", 0, key("_id", int32(1))),
		index("_id_", 0, key("_id", int32(1))),
		index("_id_1_created_1", 1, key("_id", int32(1), "created", int32(1))),
	)

	for _, f := range Evaluate(s) {
		assert.False(t, snapshot.IsIDIndex(f.Index), "%+v", f)
	}
}

func TestIDIndexCanCover(t *testing.T) {
	s := oneCollection(
		index("_id_", 4, key("_id", int32(1))),
		index("id_asc", 1, key("_id", int32(1))),
	)

	want := []Finding{
		{Database: "db", Collection: "c", Index: "id_asc", Kind: Redundant, Key: key("_id", int32(1)), CoveredBy: []string{"_id_"}},
	}
	got := Evaluate(s)
	assert.Equal(t, want, got, "findings:\n%s", tutil.Pretty(got))
}

func TestOutOfOrderFieldsAreNotRedundant(t *testing.T) {
	s := oneCollection(
		index("a_1_b_1", 1, key("a", 1, "b", 1)),
		index("b_1_a_1_c_1", 1, key("b", 1, "a", 1, "c", 1)),
		index("ab_1", 1, key("ab", 1)),
	)
	assert.Empty(t, Evaluate(s))
}

func TestCoveredByListsEveryLongerIndexInOrder(t *testing.T) {
	indexes := []snapshot.IndexStats{
		index("f1_1_f2_-1_f3_1_f4_1", 1, key("f1", 1, "f2", -1, "f3", 1, "f4", 1)),
		index("f1_1_f2_-1_f3_1", 1, key("f1", 1, "f2", -1, "f3", 1)),
		index("f1_1_f2_-1", 1, key("f1", 1, "f2", -1)),
		index("f3_-1", 1, key("f3", -1)),
	}

	assert.Equal(t, []string{"f1_1_f2_-1_f3_1_f4_1", "f1_1_f2_-1_f3_1"}, CoveredBy(indexes[2], indexes))
	assert.Equal(t, []string{"f1_1_f2_-1_f3_1_f4_1"}, CoveredBy(indexes[1], indexes))
	assert.Empty(t, CoveredBy(indexes[0], indexes))
	assert.Empty(t, CoveredBy(indexes[3], indexes))
}

func TestExactlyOneUnusedPerIndex(t *testing.T) {
	s := oneCollection(
		index("a_1", 0, key("a", 1)),
		index("a_1_again", 0, key("a", 1)),
		index("a_1_b_1", 0, key("a", 1, "b", 1)),
		index("c_1", 3, key("c", 1)),
	)

	unused := map[string]int{}
	for _, f := range Evaluate(s) {
		if f.Kind == Unused {
			unused[f.Index]++
		}
	}
	assert.Equal(t, map[string]int{"a_1": 1, "a_1_again": 1, "a_1_b_1": 1}, unused)
}

func TestFindingsFollowSnapshotOrder(t *testing.T) {
	s := &snapshot.Snapshot{
		ServerAlias: "test",
		Databases: []snapshot.DatabaseStats{
			{Name: "zeta", Collections: []snapshot.CollectionStats{
				collection("z", index("x_1", 0, key("x", 1))),
				collection("a", index("y_1", 0, key("y", 1))),
			}},
			{Name: "alpha", Collections: []snapshot.CollectionStats{
				collection("m", index("w_1", 0, key("w", 1))),
			}},
		},
	}

	var got []string
	for _, f := range Evaluate(s) {
		got = append(got, f.Database+"."+f.Collection+"."+f.Index)
	}
	assert.Equal(t, []string{"zeta.z.x_1", "zeta.a.y_1", "alpha.m.w_1"}, got)
}

func TestEvaluateAfterRoundTrip(t *testing.T) {
	s := &snapshot.Snapshot{
		ServerAlias: "test",
		Databases: []snapshot.DatabaseStats{
			{Name: "shop", Collections: []snapshot.CollectionStats{
				collection("orders",
					index("_id_", 9, key("_id", int32(1))),
					index("customer_1", 0, key("customer", int32(1))),
					index("customer_1_created_-1", 7, key("customer", int32(1), "created", int32(-1))),
					index("loc_2dsphere", 0, key("loc", "2dsphere")),
				),
				collection("carts", index("_id_", 0, key("_id", int32(1)))),
			}},
			{Name: "app", Collections: []snapshot.CollectionStats{
				collection("users",
					index("email_1", 4, key("email", float64(1))),
					index("email_1_dup", 4, key("email", int64(1))),
				),
			}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, snapshot.Save(&buf, s))
	loaded, err := snapshot.Load(&buf)
	require.NoError(t, err)

	want := Evaluate(s)
	got := Evaluate(loaded)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Database, got[i].Database)
		assert.Equal(t, want[i].Collection, got[i].Collection)
		assert.Equal(t, want[i].Index, got[i].Index)
		assert.Equal(t, want[i].Kind, got[i].Kind)
		assert.Equal(t, want[i].CoveredBy, got[i].CoveredBy)
		assert.Equal(t, want[i].Key.String(), got[i].Key.String())
	}

	var before, after bytes.Buffer
	require.NoError(t, Report(&before, want))
	require.NoError(t, Report(&after, got))
	assert.Equal(t, before.String(), after.String())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "unused", Unused.String())
	assert.Equal(t, "redundant", Redundant.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
