// Package firestore implements repository.DocumentStore on Cloud Firestore.
package firestore

import (
	"context"
	"log/slog"
	"strings"

	"luxe/config"
	"luxe/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Store is a Firestore-backed repository.DocumentStore.
type Store struct {
	client *firestore.Client
	logger *slog.Logger
}

// New connects to the Firestore database named in cfg.
func New(ctx context.Context, cfg *config.FirebaseConfig, logger *slog.Logger) (*Store, error) {
	if cfg == nil || cfg.ProjectID == "" {
		return nil, errors.New("firebase project ID is required for the firestore store")
	}

	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	databaseID := cfg.DatabaseID
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, cfg.ProjectID, databaseID, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create firestore client")
	}

	logger.Info("Firestore store initialized",
		slog.String("project_id", cfg.ProjectID),
		slog.String("database_id", databaseID),
	)

	return &Store{client: client, logger: logger}, nil
}

// Close releases the client.
func (s *Store) Close() error {
	return errors.WithStack(s.client.Close())
}

// SubscribeCollection implements repository.DocumentStore.
func (s *Store) SubscribeCollection(ctx context.Context, path string, listener repository.CollectionListener) (repository.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	it := s.client.Collection(path).Snapshots(ctx)
	sub := newSubscription(cancel)

	go func() {
		defer close(sub.done)
		defer it.Stop()

		for {
			qs, err := it.Next()
			if err != nil {
				if !isStreamEnd(ctx, err) {
					listener(nil, errors.Wrapf(err, "listen %s", path))
				}

				return
			}

			snapshot, err := toCollectionSnapshot(qs)
			if err != nil {
				listener(nil, err)

				return
			}
			listener(snapshot, nil)
		}
	}()

	return sub, nil
}

// SubscribeDocument implements repository.DocumentStore.
func (s *Store) SubscribeDocument(ctx context.Context, path string, listener repository.DocumentListener) (repository.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	it := s.client.Doc(path).Snapshots(ctx)
	sub := newSubscription(cancel)

	go func() {
		defer close(sub.done)
		defer it.Stop()

		for {
			ds, err := it.Next()
			if err != nil {
				if !isStreamEnd(ctx, err) {
					listener(nil, errors.Wrapf(err, "listen %s", path))
				}

				return
			}

			snapshot := &repository.DocumentSnapshot{
				Exists:   ds.Exists(),
				Document: repository.Document{ID: ds.Ref.ID, Path: path},
			}
			if ds.Exists() {
				snapshot.Document = toDocument(ds)
			}
			listener(snapshot, nil)
		}
	}()

	return sub, nil
}

// Create implements repository.DocumentStore.
func (s *Store) Create(ctx context.Context, collectionPath string, fields repository.Fields) (string, error) {
	ref, _, err := s.client.Collection(collectionPath).Add(ctx, toFirestoreFields(fields))
	if err != nil {
		return "", errors.Wrapf(err, "create in %s", collectionPath)
	}

	return ref.ID, nil
}

// Set implements repository.DocumentStore.
func (s *Store) Set(ctx context.Context, documentPath string, fields repository.Fields) error {
	if _, err := s.client.Doc(documentPath).Set(ctx, toFirestoreFields(fields)); err != nil {
		return errors.Wrapf(err, "set %s", documentPath)
	}

	return nil
}

// Update implements repository.DocumentStore.
func (s *Store) Update(ctx context.Context, documentPath string, fields repository.Fields) error {
	updates := make([]firestore.Update, 0, len(fields))
	for key, value := range fields {
		updates = append(updates, firestore.Update{Path: key, Value: toFirestoreValue(value)})
	}

	if _, err := s.client.Doc(documentPath).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.Wrapf(repository.ErrDocumentNotFound, "update %s", documentPath)
		}

		return errors.Wrapf(err, "update %s", documentPath)
	}

	return nil
}

// Delete implements repository.DocumentStore.
func (s *Store) Delete(ctx context.Context, documentPath string) error {
	if _, err := s.client.Doc(documentPath).Delete(ctx); err != nil {
		return errors.Wrapf(err, "delete %s", documentPath)
	}

	return nil
}

// List implements repository.DocumentStore.
func (s *Store) List(ctx context.Context, collectionPath string) ([]repository.Document, error) {
	snaps, err := s.client.Collection(collectionPath).Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", collectionPath)
	}

	docs := make([]repository.Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, toDocument(snap))
	}

	return docs, nil
}

func toCollectionSnapshot(qs *firestore.QuerySnapshot) (*repository.CollectionSnapshot, error) {
	snaps, err := qs.Documents.GetAll()
	if err != nil {
		return nil, errors.Wrap(err, "read snapshot documents")
	}

	snapshot := &repository.CollectionSnapshot{
		Documents: make([]repository.Document, 0, len(snaps)),
		Changes:   make([]repository.Change, 0, len(qs.Changes)),
		ReadTime:  qs.ReadTime,
	}
	for _, snap := range snaps {
		snapshot.Documents = append(snapshot.Documents, toDocument(snap))
	}
	for _, change := range qs.Changes {
		snapshot.Changes = append(snapshot.Changes, repository.Change{
			Kind:     toChangeKind(change.Kind),
			Document: toDocument(change.Doc),
		})
	}

	return snapshot, nil
}

func toChangeKind(kind firestore.DocumentChangeKind) repository.ChangeKind {
	switch kind {
	case firestore.DocumentRemoved:
		return repository.ChangeRemoved
	case firestore.DocumentModified:
		return repository.ChangeModified
	default:
		return repository.ChangeAdded
	}
}

func toDocument(snap *firestore.DocumentSnapshot) repository.Document {
	return repository.Document{
		ID:         snap.Ref.ID,
		Path:       relativePath(snap.Ref.Path),
		Fields:     repository.Fields(snap.Data()),
		UpdateTime: snap.UpdateTime,
	}
}

// toFirestoreFields maps the store-neutral write transforms onto Firestore's.
func toFirestoreFields(fields repository.Fields) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		out[key] = toFirestoreValue(value)
	}

	return out
}

func toFirestoreValue(value any) any {
	if repository.IsServerTimestamp(value) {
		return firestore.ServerTimestamp
	}
	if inc, ok := value.(repository.Increment); ok {
		return firestore.Increment(inc.Delta)
	}

	return value
}

// isStreamEnd reports whether err only signals that the listener was stopped.
func isStreamEnd(ctx context.Context, err error) bool {
	if errors.Is(err, iterator.Done) || ctx.Err() != nil {
		return true
	}

	return status.Code(err) == codes.Canceled
}

// relativePath trims the "projects/p/databases/d/documents/" prefix of a resource name.
func relativePath(name string) string {
	const marker = "/documents/"
	if i := strings.Index(name, marker); i >= 0 {
		return name[i+len(marker):]
	}

	return name
}
