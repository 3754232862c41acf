package proto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// ToMap converts a raw BSON document into plain JSON values using the relaxed
// extended JSON form, so dates become {"$date": ...} and numbers are json.Number.
// An empty document converts to a nil map.
func ToMap(raw bson.Raw) (map[string]interface{}, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	buf, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, errors.Wrap(err, "cannot convert document to extended JSON")
	}
	m := map[string]interface{}{}
	if err := UnmarshalNumbers(buf, &m); err != nil {
		return nil, errors.Wrap(err, "cannot decode extended JSON")
	}
	return m, nil
}

// UnmarshalNumbers is json.Unmarshal keeping numbers as json.Number, so 64 bit
// counters survive a round trip.
func UnmarshalNumbers(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// DecodeObject walks the members of a JSON object in document order, calling fn
// for every key with its undecoded value.
func DecodeObject(data []byte, fn func(key string, value json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	t, err := dec.Token()
	if err != nil {
		return err
	}
	if t != json.Delim('{') {
		return fmt.Errorf("expected { but got %v", t)
	}

	for dec.More() {
		t, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := t.(string)
		if !ok {
			return fmt.Errorf("expected key to be a string but got %v", t)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return errors.Wrapf(err, "missing value for key %s", key)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}

	t, err = dec.Token()
	if err != nil {
		return err
	}
	if t != json.Delim('}') {
		return fmt.Errorf("expect delimeter %s but got %v", json.Delim('}'), t)
	}

	return nil
}

// Member is one key/value pair of an ordered JSON object.
type Member struct {
	Key   string
	Value interface{}
}

// EncodeObject writes the members as a JSON object keeping their order.
func EncodeObject(members []Member) ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')

	for i, m := range members {
		if i > 0 {
			b.WriteByte(',')
		}

		key, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')

		val, err := json.Marshal(m.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot encode %q", m.Key)
		}
		b.Write(val)
	}

	b.WriteByte('}')

	return b.Bytes(), nil
}
