package operations

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"reflect"
	"sync"

	"github.com/movedeploy/aptos-resource-publish/pkg/logger"
)

// IsSerializable returns true if v survives a JSON round trip unchanged. Reports are persisted
// as JSON, so inputs and outputs that lose data on the way (funcs, channels, unexported fields)
// would make resumed runs see different values than the original run produced.
func IsSerializable(lggr logger.Logger, v any) bool {
	if v == nil {
		return true
	}

	b, err := json.Marshal(v)
	if err != nil {
		lggr.Errorw("Value is not JSON serializable", "type", reflect.TypeOf(v).String(), "error", err)
		return false
	}

	ptr := reflect.New(reflect.TypeOf(v))
	if err = json.Unmarshal(b, ptr.Interface()); err != nil {
		lggr.Errorw("Value cannot be restored from JSON", "type", reflect.TypeOf(v).String(), "error", err)
		return false
	}

	if !reflect.DeepEqual(v, ptr.Elem().Interface()) {
		lggr.Errorw("Value changes across a JSON round trip", "type", reflect.TypeOf(v).String())
		return false
	}

	return true
}

// constructUniqueHashFrom hashes the definition ID, version and input. Two executions with the
// same hash are the same execution.
func constructUniqueHashFrom(cache *sync.Map, def Definition, input any) (string, error) {
	version := ""
	if def.Version != nil {
		version = def.Version.String()
	}

	canonicalInput, err := canonicalJSON(input)
	if err != nil {
		return "", err
	}

	key, err := json.Marshal(struct {
		ID      string          `json:"id"`
		Version string          `json:"version"`
		Input   json.RawMessage `json:"input"`
	}{def.ID, version, canonicalInput})
	if err != nil {
		return "", err
	}

	if cache != nil {
		if hash, ok := cache.Load(string(key)); ok {
			return hash.(string), nil
		}
	}

	sum := sha256.Sum256(key)
	hash := hex.EncodeToString(sum[:])

	if cache != nil {
		cache.Store(string(key), hash)
	}

	return hash, nil
}

// canonicalJSON encodes v so that a typed value and the generic value decoded from its JSON
// encoding produce the same bytes: object keys are sorted and numbers keep their literal form.
func canonicalJSON(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var generic any
	if err = dec.Decode(&generic); err != nil {
		return nil, err
	}

	return json.Marshal(generic)
}
