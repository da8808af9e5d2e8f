package query

import (
	"context"
	"fmt"
)

// Store errors
var ErrNotFound = fmt.Errorf("query not found")
var ErrDuplicateID = fmt.Errorf("query with this ID already exists")

// Store is the single owner of query records. Callers only ever see copies.
type Store interface {
	// Append inserts q at the front of the collection (most recent first).
	Append(ctx context.Context, q Query) error
	// Update applies patch to the record with the given id and returns the updated copy.
	// Unknown ids yield ErrNotFound and leave the collection untouched.
	Update(ctx context.Context, id string, patch Patch) (Query, error)
	Get(ctx context.Context, id string) (Query, error)
	List(ctx context.Context) ([]Query, error)
}
