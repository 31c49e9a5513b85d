package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"zappavault/internal/normalize"
)

// DurationRow is one track duration reported by a duration source.
type DurationRow struct {
	Path            string
	DurationSeconds float64
}

// DurationIndex maps canonical path keys to durations in milliseconds. Keys
// iterate in insertion order.
type DurationIndex struct {
	keys   []string
	values map[string]int64
}

// NewDurationIndex returns an empty index.
func NewDurationIndex() *DurationIndex {
	return &DurationIndex{values: make(map[string]int64)}
}

// Set stores ms under key. Non-positive durations are ignored so the index
// only ever holds usable values.
func (d *DurationIndex) Set(key string, ms int64) {
	if ms <= 0 {
		return
	}
	if d.values == nil {
		d.values = make(map[string]int64)
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = ms
}

// Get returns the duration stored under the exact key.
func (d *DurationIndex) Get(key string) (int64, bool) {
	if d == nil {
		return 0, false
	}
	ms, ok := d.values[key]
	return ms, ok
}

// Keys returns the keys in insertion order. The slice is a copy.
func (d *DurationIndex) Keys() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len reports the number of keys, counting canonical and lowercase forms
// separately.
func (d *DurationIndex) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Range calls fn for every key in insertion order until fn returns false.
func (d *DurationIndex) Range(fn func(key string, ms int64) bool) {
	if d == nil {
		return
	}
	for _, key := range d.keys {
		if !fn(key, d.values[key]) {
			return
		}
	}
}

// MarshalJSON encodes the index as a JSON object with keys in insertion order.
func (d *DurationIndex) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if d != nil {
		for i, key := range d.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			encoded, err := json.Marshal(key)
			if err != nil {
				return nil, err
			}
			buf.Write(encoded)
			buf.WriteByte(':')
			fmt.Fprintf(&buf, "%d", d.values[key])
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of key to milliseconds, keeping the
// document order.
func (d *DurationIndex) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("duration index: expected object, got %v", tok)
	}
	d.keys = nil
	d.values = make(map[string]int64)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("duration index: expected key, got %v", tok)
		}
		var value json.Number
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("duration index: value for %q: %w", key, err)
		}
		ms, err := value.Int64()
		if err != nil {
			f, ferr := value.Float64()
			if ferr != nil {
				return fmt.Errorf("duration index: value for %q: %w", key, err)
			}
			ms = int64(f)
		}
		d.Set(key, ms)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// LoadFromDurationStore builds a duration index from source rows. Rows with
// no positive duration are dropped. Every row contributes its canonical key
// and the lowercase form of that key.
func LoadFromDurationStore(rows []DurationRow, paths normalize.PathNormalizer) *DurationIndex {
	index := NewDurationIndex()
	for _, row := range rows {
		if row.DurationSeconds <= 0 {
			continue
		}
		ms := int64(row.DurationSeconds * 1000)
		if ms <= 0 {
			continue
		}
		key := paths.Normalize(row.Path)
		index.Set(key, ms)
		index.Set(strings.ToLower(key), ms)
	}
	return index
}
