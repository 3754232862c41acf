package proto

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// IndexStat holds an index usage statistics document as returned by $indexStats.
type IndexStat struct {
	Name     string `bson:"name"`
	Key      bson.D `bson:"key"` // ordered key pattern
	Host     string `bson:"host"`
	Accesses struct {
		Ops   int64     `bson:"ops"`   // operations that used the index since Since
		Since time.Time `bson:"since"` // when the counter started
	} `bson:"accesses"`
	Spec     bson.Raw `bson:"spec"` // full index definition, 4.2+
	Building bool     `bson:"building,omitempty"`
}
