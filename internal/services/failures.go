package services

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Failure records one item that could not be processed.
type Failure struct {
	Key string
	Err error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Key, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// MarshalJSON encodes the failure with its message and kind.
func (f Failure) MarshalJSON() ([]byte, error) {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(struct {
		Key   string `json:"key"`
		Error string `json:"error"`
		Kind  string `json:"kind,omitempty"`
	}{Key: f.Key, Error: msg, Kind: FailureKind(f.Err)})
}

// Failures accumulates per-item failures so a batch can continue past them.
// The zero value is ready to use. It is not safe for concurrent use.
type Failures struct {
	items []Failure
}

// Add records err against key. Nil errors and a nil receiver are ignored.
func (f *Failures) Add(key string, err error) {
	if f == nil || err == nil {
		return
	}
	f.items = append(f.items, Failure{Key: key, Err: err})
}

// Len reports the number of failures.
func (f *Failures) Len() int {
	if f == nil {
		return 0
	}
	return len(f.items)
}

// Items returns the failures in the order they were added.
func (f *Failures) Items() []Failure {
	if f == nil {
		return nil
	}
	out := make([]Failure, len(f.items))
	copy(out, f.items)
	return out
}

// Keys returns the failing item keys in order.
func (f *Failures) Keys() []string {
	if f == nil {
		return nil
	}
	keys := make([]string, 0, len(f.items))
	for _, item := range f.items {
		keys = append(keys, item.Key)
	}
	return keys
}

// Err joins every failure into one error, or returns nil when there are none.
func (f *Failures) Err() error {
	if f.Len() == 0 {
		return nil
	}
	errs := make([]error, 0, len(f.items))
	for _, item := range f.items {
		errs = append(errs, item)
	}
	return errors.Join(errs...)
}

// MarshalJSON encodes the failures as a JSON array.
func (f *Failures) MarshalJSON() ([]byte, error) {
	items := f.Items()
	if items == nil {
		items = []Failure{}
	}
	return json.Marshal(items)
}
