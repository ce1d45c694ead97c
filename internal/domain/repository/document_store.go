// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the usecase layer and the infrastructure layer.
package repository

import (
	"context"
	"errors"
	"time"
)

// ErrDocumentNotFound is returned by Update when the target document does not exist.
var ErrDocumentNotFound = errors.New("document not found")

// Fields is the content of one document, keyed by field name.
type Fields map[string]any

// serverTimestamp is the type of ServerTimestamp.
type serverTimestamp struct{}

// ServerTimestamp is a field value the store replaces with its own commit time.
//
//nolint:gochecknoglobals
var ServerTimestamp = serverTimestamp{}

// IsServerTimestamp reports whether v is the ServerTimestamp sentinel.
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)

	return ok
}

// Increment is a field value that atomically adds Delta to a numeric field.
type Increment struct {
	Delta int64
}

// Document is one document as delivered by the store.
type Document struct {
	ID         string
	Path       string
	Fields     Fields
	UpdateTime time.Time
}

// ChangeKind tells how a document changed between two collection snapshots.
type ChangeKind int

const (
	// ChangeAdded marks a document that entered the collection.
	ChangeAdded ChangeKind = iota
	// ChangeModified marks a document whose fields changed.
	ChangeModified
	// ChangeRemoved marks a document that left the collection.
	ChangeRemoved
)

// Change is a single document change within a collection snapshot.
type Change struct {
	Kind     ChangeKind
	Document Document
}

// CollectionSnapshot is the full current content of a collection plus the changes
// that produced it.
type CollectionSnapshot struct {
	Documents []Document
	Changes   []Change
	ReadTime  time.Time
}

// DocumentSnapshot is the current state of a single document.
type DocumentSnapshot struct {
	Exists   bool
	Document Document
}

// CollectionListener receives collection snapshots, or the error that ended the stream.
type CollectionListener func(snapshot *CollectionSnapshot, err error)

// DocumentListener receives document snapshots, or the error that ended the stream.
type DocumentListener func(snapshot *DocumentSnapshot, err error)

// Subscription is a live listener registration.
type Subscription interface {
	// Stop cancels the subscription. When Stop returns the listener is not running
	// and will never be called again. Stop is idempotent.
	Stop()
}

// DocumentStore is the remote document database the storefront synchronizes with.
// Paths are slash-separated; collection paths have an odd number of segments and
// document paths an even number.
type DocumentStore interface {
	// SubscribeCollection streams the collection at path, starting with its current content.
	SubscribeCollection(ctx context.Context, path string, listener CollectionListener) (Subscription, error)

	// SubscribeDocument streams the document at path, starting with its current state.
	SubscribeDocument(ctx context.Context, path string, listener DocumentListener) (Subscription, error)

	// Create adds a document with a store-assigned ID and returns that ID.
	Create(ctx context.Context, collectionPath string, fields Fields) (string, error)

	// Set writes the document at path, replacing any previous content.
	Set(ctx context.Context, documentPath string, fields Fields) error

	// Update merges fields into an existing document. Values may be Increment or
	// ServerTimestamp. Returns ErrDocumentNotFound if the document is absent.
	Update(ctx context.Context, documentPath string, fields Fields) error

	// Delete removes the document at path. Deleting an absent document succeeds.
	Delete(ctx context.Context, documentPath string) error

	// List reads the collection once, without subscribing.
	List(ctx context.Context, collectionPath string) ([]Document, error)
}
