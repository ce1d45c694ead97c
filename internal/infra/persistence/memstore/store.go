// Package memstore is an in-process, real-time DocumentStore. It backs local
// development and the test suites, and mirrors Firestore's observable behavior:
// snapshot listeners, server timestamps, atomic increments and ID-ordered collections.
package memstore

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"luxe/internal/domain/repository"
	"luxe/internal/reactive"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Operation names a write, for WriteHook.
type Operation string

const (
	OpCreate Operation = "create"
	OpSet    Operation = "set"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// WriteHook runs before every write; a non-nil error rejects the write.
type WriteHook func(op Operation, path string) error

type record struct {
	fields     repository.Fields
	updateTime time.Time
}

// Store implements repository.DocumentStore in memory.
type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]*record
	collSubs    map[string]map[*subscription]struct{}
	docSubs     map[string]map[*subscription]struct{}
	hook        WriteHook

	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for server timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the generator of document IDs.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		collections: make(map[string]map[string]*record),
		collSubs:    make(map[string]map[*subscription]struct{}),
		docSubs:     make(map[string]map[*subscription]struct{}),
		now:         time.Now,
		newID:       func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SetWriteHook installs hook, or removes it when hook is nil.
func (s *Store) SetWriteHook(hook WriteHook) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hook = hook
}

// BreakSubscriptions ends every listener on path with err, as a store would on a
// permission change or network partition.
func (s *Store) BreakSubscriptions(path string, err error) {
	s.mu.Lock()
	var broken []*subscription
	for sub := range s.collSubs[path] {
		broken = append(broken, sub)
	}
	for sub := range s.docSubs[path] {
		broken = append(broken, sub)
	}
	delete(s.collSubs, path)
	delete(s.docSubs, path)
	for _, sub := range broken {
		sub.fail(err)
	}
	s.mu.Unlock()
}

// SubscribeCollection implements repository.DocumentStore.
func (s *Store) SubscribeCollection(ctx context.Context, path string, listener repository.CollectionListener) (repository.Subscription, error) {
	if !isCollectionPath(path) {
		return nil, errors.Errorf("memstore: %q is not a collection path", path)
	}

	sub := &subscription{store: s, path: path, queue: reactive.NewQueue(), onCollection: listener}

	s.mu.Lock()
	if s.collSubs[path] == nil {
		s.collSubs[path] = make(map[*subscription]struct{})
	}
	s.collSubs[path][sub] = struct{}{}

	docs := s.documentsLocked(path)
	changes := make([]repository.Change, 0, len(docs))
	for _, doc := range docs {
		changes = append(changes, repository.Change{Kind: repository.ChangeAdded, Document: doc})
	}
	sub.deliverCollection(&repository.CollectionSnapshot{Documents: docs, Changes: changes, ReadTime: s.now()})
	s.mu.Unlock()

	context.AfterFunc(ctx, sub.Stop)

	return sub, nil
}

// SubscribeDocument implements repository.DocumentStore.
func (s *Store) SubscribeDocument(ctx context.Context, path string, listener repository.DocumentListener) (repository.Subscription, error) {
	collection, id, ok := splitDocumentPath(path)
	if !ok {
		return nil, errors.Errorf("memstore: %q is not a document path", path)
	}

	sub := &subscription{store: s, path: path, queue: reactive.NewQueue(), onDocument: listener}

	s.mu.Lock()
	if s.docSubs[path] == nil {
		s.docSubs[path] = make(map[*subscription]struct{})
	}
	s.docSubs[path][sub] = struct{}{}
	sub.deliverDocument(s.documentSnapshotLocked(collection, id))
	s.mu.Unlock()

	context.AfterFunc(ctx, sub.Stop)

	return sub, nil
}

// Create implements repository.DocumentStore.
func (s *Store) Create(ctx context.Context, collectionPath string, fields repository.Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.WithStack(err)
	}
	if !isCollectionPath(collectionPath) {
		return "", errors.Errorf("memstore: %q is not a collection path", collectionPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	if err := s.runHookLocked(OpCreate, collectionPath+"/"+id); err != nil {
		return "", err
	}

	now := s.now()
	s.putLocked(collectionPath, id, &record{fields: resolve(nil, fields, now), updateTime: now}, repository.ChangeAdded)

	return id, nil
}

// Set implements repository.DocumentStore.
func (s *Store) Set(ctx context.Context, documentPath string, fields repository.Fields) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}
	collection, id, ok := splitDocumentPath(documentPath)
	if !ok {
		return errors.Errorf("memstore: %q is not a document path", documentPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.runHookLocked(OpSet, documentPath); err != nil {
		return err
	}

	kind := repository.ChangeAdded
	if _, exists := s.collections[collection][id]; exists {
		kind = repository.ChangeModified
	}

	now := s.now()
	s.putLocked(collection, id, &record{fields: resolve(nil, fields, now), updateTime: now}, kind)

	return nil
}

// Update implements repository.DocumentStore.
func (s *Store) Update(ctx context.Context, documentPath string, fields repository.Fields) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}
	collection, id, ok := splitDocumentPath(documentPath)
	if !ok {
		return errors.Errorf("memstore: %q is not a document path", documentPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.runHookLocked(OpUpdate, documentPath); err != nil {
		return err
	}

	current, exists := s.collections[collection][id]
	if !exists {
		return errors.Wrapf(repository.ErrDocumentNotFound, "update %s", documentPath)
	}

	now := s.now()
	s.putLocked(collection, id, &record{fields: resolve(current.fields, fields, now), updateTime: now}, repository.ChangeModified)

	return nil
}

// Delete implements repository.DocumentStore.
func (s *Store) Delete(ctx context.Context, documentPath string) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}
	collection, id, ok := splitDocumentPath(documentPath)
	if !ok {
		return errors.Errorf("memstore: %q is not a document path", documentPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.runHookLocked(OpDelete, documentPath); err != nil {
		return err
	}

	current, exists := s.collections[collection][id]
	if !exists {
		return nil
	}
	delete(s.collections[collection], id)

	removed := toDocument(collection, id, current)
	s.notifyLocked(collection, id, repository.Change{Kind: repository.ChangeRemoved, Document: removed})

	return nil
}

// List implements repository.DocumentStore.
func (s *Store) List(ctx context.Context, collectionPath string) ([]repository.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	if !isCollectionPath(collectionPath) {
		return nil, errors.Errorf("memstore: %q is not a collection path", collectionPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.documentsLocked(collectionPath), nil
}

func (s *Store) runHookLocked(op Operation, path string) error {
	if s.hook == nil {
		return nil
	}
	if err := s.hook(op, path); err != nil {
		return errors.Wrapf(err, "memstore: %s %s", op, path)
	}

	return nil
}

func (s *Store) putLocked(collection, id string, rec *record, kind repository.ChangeKind) {
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]*record)
	}
	s.collections[collection][id] = rec

	s.notifyLocked(collection, id, repository.Change{Kind: kind, Document: toDocument(collection, id, rec)})
}

// notifyLocked enqueues fresh snapshots for every listener affected by a change.
// Enqueueing under the store lock keeps each listener's view in commit order.
func (s *Store) notifyLocked(collection, id string, change repository.Change) {
	if subs := s.collSubs[collection]; len(subs) > 0 {
		snapshot := &repository.CollectionSnapshot{
			Documents: s.documentsLocked(collection),
			Changes:   []repository.Change{change},
			ReadTime:  s.now(),
		}
		for sub := range subs {
			sub.deliverCollection(snapshot)
		}
	}

	if subs := s.docSubs[collection+"/"+id]; len(subs) > 0 {
		snapshot := s.documentSnapshotLocked(collection, id)
		for sub := range subs {
			sub.deliverDocument(snapshot)
		}
	}
}

func (s *Store) documentsLocked(collection string) []repository.Document {
	records := s.collections[collection]
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	docs := make([]repository.Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, toDocument(collection, id, records[id]))
	}

	return docs
}

func (s *Store) documentSnapshotLocked(collection, id string) *repository.DocumentSnapshot {
	rec, exists := s.collections[collection][id]
	if !exists {
		return &repository.DocumentSnapshot{
			Exists:   false,
			Document: repository.Document{ID: id, Path: collection + "/" + id},
		}
	}

	return &repository.DocumentSnapshot{Exists: true, Document: toDocument(collection, id, rec)}
}

func (s *Store) unsubscribe(sub *subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if subs := s.collSubs[sub.path]; subs != nil {
		delete(subs, sub)
	}
	if subs := s.docSubs[sub.path]; subs != nil {
		delete(subs, sub)
	}
}

func toDocument(collection, id string, rec *record) repository.Document {
	return repository.Document{
		ID:         id,
		Path:       collection + "/" + id,
		Fields:     copyFields(rec.fields),
		UpdateTime: rec.updateTime,
	}
}

func isCollectionPath(path string) bool {
	segments := strings.Split(path, "/")

	return len(segments)%2 == 1 && !hasEmptySegment(segments)
}

func splitDocumentPath(path string) (collection, id string, ok bool) {
	segments := strings.Split(path, "/")
	if len(segments) < 2 || len(segments)%2 != 0 || hasEmptySegment(segments) {
		return "", "", false
	}

	return strings.Join(segments[:len(segments)-1], "/"), segments[len(segments)-1], true
}

func hasEmptySegment(segments []string) bool {
	for _, segment := range segments {
		if segment == "" {
			return true
		}
	}

	return false
}
