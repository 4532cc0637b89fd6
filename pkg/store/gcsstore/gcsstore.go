// Package gcsstore keeps documents as <collection>/<id>.json objects in a
// Cloud Storage bucket.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/JorgeHRP/renato-bi/pkg/store"
)

// Bucket is the object access the store needs. ReadObject returns
// store.ErrNotFound for a missing object.
type Bucket interface {
	ReadObject(ctx context.Context, name string) ([]byte, error)
	WriteObject(ctx context.Context, name string, data []byte) error
	DeleteObject(ctx context.Context, name string) error
	ListObjects(ctx context.Context, prefix string) ([]string, error)
}

// GCSBucket adapts *storage.BucketHandle to Bucket.
type GCSBucket struct {
	bucket *storage.BucketHandle
}

func (b *GCSBucket) ReadObject(ctx context.Context, name string) ([]byte, error) {
	r, err := b.bucket.Object(name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open GCS object reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read GCS object: %w", err)
	}
	return data, nil
}

func (b *GCSBucket) WriteObject(ctx context.Context, name string, data []byte) error {
	w := b.bucket.Object(name).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write GCS object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close GCS object writer: %w", err)
	}
	return nil
}

func (b *GCSBucket) DeleteObject(ctx context.Context, name string) error {
	err := b.bucket.Object(name).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete GCS object: %w", err)
	}
	return nil
}

func (b *GCSBucket) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	it := b.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list GCS objects: %w", err)
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}

type Store struct {
	bucket Bucket
	close  func() error
}

func New(bucket Bucket) *Store {
	return &Store{bucket: bucket, close: func() error { return nil }}
}

// Connect uses application default credentials.
func Connect(ctx context.Context, bucketName string) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	s := New(&GCSBucket{bucket: client.Bucket(bucketName)})
	s.close = client.Close
	return s, nil
}

func objectName(collection, id string) string {
	return path.Join(collection, id+".json")
}

func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, error) {
	data, err := s.bucket.ReadObject(ctx, objectName(collection, id))
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, err)
	}
	return data, nil
}

func (s *Store) Put(ctx context.Context, collection, id string, doc []byte) error {
	if err := store.ValidateID(id); err != nil {
		return err
	}
	return s.bucket.WriteObject(ctx, objectName(collection, id), doc)
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	return s.bucket.DeleteObject(ctx, objectName(collection, id))
}

func (s *Store) List(ctx context.Context, collection string) ([][]byte, error) {
	names, err := s.bucket.ListObjects(ctx, collection+"/")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	out := make([][]byte, 0, len(names))
	for _, name := range names {
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := s.bucket.ReadObject(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

func (s *Store) Close() error {
	return s.close()
}

var _ store.Documents = (*Store)(nil)
