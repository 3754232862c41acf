package snapshot

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// SignatureDelimiter follows every field name and every direction in a signature.
const SignatureDelimiter = "||"

// KeyPair is one field of an index key and its direction. Direction is kept as
// the server reported it: 1, -1 or an index type like "hashed" or "2dsphere".
type KeyPair struct {
	Field     string
	Direction interface{}
}

// IndexKey is the ordered list of fields of an index.
type IndexKey []KeyPair

// KeyFromD builds an IndexKey from an ordered BSON document.
func KeyFromD(d bson.D) IndexKey {
	key := make(IndexKey, 0, len(d))
	for _, e := range d {
		key = append(key, KeyPair{Field: e.Key, Direction: e.Value})
	}
	return key
}

// Signature returns the comparable form of the key: every field and direction
// followed by the delimiter, e.g. "a||1||b||-1||". The signature of an index is
// a prefix of another one only if its whole key is a leading part of the other key.
// Pipes and backslashes inside names are escaped so a field can never contain
// the delimiter.
func (k IndexKey) Signature() string {
	var sb strings.Builder
	for _, p := range k {
		sb.WriteString(signatureEscaper.Replace(p.Field))
		sb.WriteString(SignatureDelimiter)
		sb.WriteString(signatureEscaper.Replace(DirectionToken(p.Direction)))
		sb.WriteString(SignatureDelimiter)
	}
	return sb.String()
}

var signatureEscaper = strings.NewReplacer(`\`, `\\`, "|", `\|`) //nolint:gochecknoglobals

// String returns the key as it is written in the mongo shell: { a: 1, b: -1 }.
func (k IndexKey) String() string {
	fields := make([]string, 0, len(k))
	for _, p := range k {
		dir := DirectionToken(p.Direction)
		if _, ok := p.Direction.(string); ok {
			dir = strconv.Quote(dir)
		}
		fields = append(fields, p.Field+": "+dir)
	}
	return "{ " + strings.Join(fields, ", ") + " }"
}

// Equal returns true if both keys have the same fields and directions in the same order.
func (k IndexKey) Equal(other IndexKey) bool {
	return len(k) == len(other) && k.IsPrefixOf(other)
}

// IsPrefixOf returns true if other starts with every pair of k.
func (k IndexKey) IsPrefixOf(other IndexKey) bool {
	if len(k) > len(other) {
		return false
	}
	for i, p := range k {
		if p.Field != other[i].Field || DirectionToken(p.Direction) != DirectionToken(other[i].Direction) {
			return false
		}
	}
	return true
}

// DirectionToken renders a direction for signatures. Numbers use their shortest
// decimal form whatever their type, so int32(1) from the server and float64(1)
// read back from JSON produce the same token.
func DirectionToken(direction interface{}) string {
	switch v := direction.(type) {
	case string:
		return v
	case int:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return formatFloat(float64(v))
	case float64:
		return formatFloat(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
