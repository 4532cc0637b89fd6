// Package store persists companies and their records as JSON documents.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("not found")

const (
	CollectionRecords   = "records"
	CollectionCompanies = "companies"
)

// Documents is a backend holding opaque JSON documents grouped in
// collections. Delete of a missing document is not an error.
type Documents interface {
	Get(ctx context.Context, collection, id string) ([]byte, error)
	Put(ctx context.Context, collection, id string, doc []byte) error
	Delete(ctx context.Context, collection, id string) error
	// List returns every document of the collection ordered by id.
	List(ctx context.Context, collection string) ([][]byte, error)
	Close() error
}

// ValidateID rejects ids that could escape a collection when used as a file
// or object name.
func ValidateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("invalid document id %q", id)
	}
	return nil
}
