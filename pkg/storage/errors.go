// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package storage defines the persistence contract: the typed
// error taxonomy, the durable row shapes, and the Store interface that every
// backend (presently only SQLite) must satisfy.
package storage

import "fmt"

// ErrorKind classifies a persistence failure.
type ErrorKind string

const (
	NotFound  ErrorKind = "NotFound"
	Conflict  ErrorKind = "Conflict"
	Immutable ErrorKind = "Immutable"
	Corrupt   ErrorKind = "Corrupt"
	Io        ErrorKind = "Io"
)

// PersistenceError is the single error type every Store operation returns on
// failure; callers switch on Kind rather than comparing sentinel values.
type PersistenceError struct {
	Kind    ErrorKind
	Op      string
	Entity  string
	ID      string
	Wrapped error
}

func (e *PersistenceError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s %s %q: %s: %v", e.Op, e.Entity, e.ID, e.Kind, e.Wrapped)
	}
	return fmt.Sprintf("%s %s %q: %s", e.Op, e.Entity, e.ID, e.Kind)
}

func (e *PersistenceError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target shares this error's Kind, so callers can write
// errors.Is(err, &PersistenceError{Kind: storage.NotFound}).
func (e *PersistenceError) Is(target error) bool {
	other, ok := target.(*PersistenceError)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

func newErr(kind ErrorKind, op, entity, id string, wrapped error) *PersistenceError {
	return &PersistenceError{Kind: kind, Op: op, Entity: entity, ID: id, Wrapped: wrapped}
}
