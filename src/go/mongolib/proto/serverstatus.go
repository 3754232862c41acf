package proto

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// ServerStatus holds the subset of the serverStatus reply kept in a snapshot.
// Opcounters and the document metrics are forwarded untouched.
type ServerStatus struct {
	Host       string    `bson:"host"`       // hostname:port of the server
	Version    string    `bson:"version"`    // MongoDB version
	Process    string    `bson:"process"`    // mongod or mongos
	Uptime     float64   `bson:"uptime"`     // seconds since the process started
	LocalTime  time.Time `bson:"localTime"`  // server clock at the time of the call
	Opcounters bson.Raw  `bson:"opcounters"` // operations by type since startup
	Metrics    struct {
		Document bson.Raw `bson:"document"` // documents deleted/inserted/returned/updated
	} `bson:"metrics"`
	Ok float64 `bson:"ok"`
}
