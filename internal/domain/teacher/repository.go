package teacher

import (
	"context"
	"fmt"
)

var ErrTeacherNotFound = fmt.Errorf("teacher not found")

// Repository defines read access to the faculty directory.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Teacher, error)
	ListAll(ctx context.Context) ([]*Teacher, error)
}
