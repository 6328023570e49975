// Package persistence hides the storage technology behind a three-operation
// document contract: read every document of a collection, write one
// document, delete one document.
package persistence

import (
	"context"
	"fmt"
)

// Collection names used by the store.
const (
	CollectionPatients       = "patients"
	CollectionAppointments   = "appointments"
	CollectionMedicalRecords = "medical_records"
	CollectionInvoices       = "invoices"
	CollectionUsers          = "users"
	CollectionCabinet        = "cabinet"
	CollectionCounters       = "counters"
	CollectionSession        = "session"
)

// Document is one stored record: an identifier and its JSON payload.
type Document struct {
	ID   string
	Data []byte
}

type Backend interface {
	ReadAll(ctx context.Context, collection string) ([]Document, error)
	Write(ctx context.Context, collection, id string, data []byte) error
	Delete(ctx context.Context, collection, id string) error
}

type OpKind string

const (
	OpWrite  OpKind = "write"
	OpDelete OpKind = "delete"
)

// Op is one step of a batch.
type Op struct {
	Kind       OpKind
	Collection string
	ID         string
	Data       []byte
}

// Batcher is implemented by backends able to apply several operations
// atomically. Backends without it get step-by-step execution.
type Batcher interface {
	Apply(ctx context.Context, ops []Op) error
}

// Error reports a storage operation that failed for good.
type Error struct {
	Op         string
	Collection string
	ID         string
	Err        error
}

func (e *Error) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("persistence %s %s: %v", e.Op, e.Collection, e.Err)
	}
	return fmt.Sprintf("persistence %s %s/%s: %v", e.Op, e.Collection, e.ID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
