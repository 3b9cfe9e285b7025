package docstore

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
)

// firestoreStore implements Store over a live Firestore client.
type firestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore wraps an initialized Firestore client in the Store
// interface.
func NewFirestoreStore(client *firestore.Client) Store {
	return &firestoreStore{client: client}
}

func (s *firestoreStore) Create(ctx context.Context, collection string, data map[string]any) (map[string]any, error) {
	id, doc := prepareCreate(data)
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, doc); err != nil {
		return nil, fmt.Errorf("create %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

func (s *firestoreStore) CreateAt(ctx context.Context, collection, id string, data map[string]any) (map[string]any, error) {
	doc := cloneDoc(data)
	doc["id"] = id
	if _, ok := doc["created_at"]; !ok {
		doc["created_at"] = nowISO()
	}
	if _, err := s.client.Collection(collection).Doc(id).Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, fmt.Errorf("document %s/%s: %w", collection, id, apperr.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("create %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

func (s *firestoreStore) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("document %s/%s: %w", collection, id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	data := snap.Data()
	if _, ok := data["id"]; !ok {
		data["id"] = snap.Ref.ID
	}
	return data, nil
}

func (s *firestoreStore) Update(ctx context.Context, collection, id string, data map[string]any) (map[string]any, error) {
	ref := s.client.Collection(collection).Doc(id)
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("document %s/%s: %w", collection, id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	patch := cloneDoc(data)
	patch["updated_at"] = nowISO()
	if _, err := ref.Set(ctx, patch, firestore.MergeAll); err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return s.Get(ctx, collection, id)
}

func (s *firestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *firestoreStore) List(ctx context.Context, collection string, opts ListOptions) ([]map[string]any, error) {
	q := s.client.Collection(collection).Query
	for _, f := range opts.Filters {
		op := f.Op
		if op == "" {
			op = "=="
		}
		q = q.Where(f.Field, op, f.Value)
	}
	if opts.OrderBy != "" {
		dir := firestore.Asc
		if strings.EqualFold(opts.Direction, "desc") {
			dir = firestore.Desc
		}
		q = q.OrderBy(opts.OrderBy, dir)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	var out []map[string]any
	it := q.Documents(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", collection, err)
		}
		data := snap.Data()
		if _, ok := data["id"]; !ok {
			data["id"] = snap.Ref.ID
		}
		out = append(out, data)
	}
	return out, nil
}
