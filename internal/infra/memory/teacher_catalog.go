package memory

import (
	"context"

	"eduquery/internal/domain/teacher"
)

// TeacherCatalog is a read-only, in-memory teacher.Repository.
type TeacherCatalog struct {
	teachers []*teacher.Teacher
}

func NewTeacherCatalog(teachers []*teacher.Teacher) *TeacherCatalog {
	return &TeacherCatalog{teachers: teachers}
}

func (c *TeacherCatalog) GetByID(ctx context.Context, id string) (*teacher.Teacher, error) {
	for _, t := range c.teachers {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, teacher.ErrTeacherNotFound
}

func (c *TeacherCatalog) ListAll(ctx context.Context) ([]*teacher.Teacher, error) {
	out := make([]*teacher.Teacher, 0, len(c.teachers))
	for _, t := range c.teachers {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}
