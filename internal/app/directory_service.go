package app

import (
	"context"
	"errors"
	"fmt"

	"eduquery/internal/domain/teacher"

	"github.com/sirupsen/logrus"
)

// DirectoryService answers faculty lookups for the presentation layer.
type DirectoryService struct {
	teacherRepo teacher.Repository
	logger      *logrus.Entry
}

func NewDirectoryService(tr teacher.Repository, logger *logrus.Entry) *DirectoryService {
	return &DirectoryService{
		teacherRepo: tr,
		logger:      logger,
	}
}

func (s *DirectoryService) ListTeachers(ctx context.Context) ([]*teacher.Teacher, error) {
	teachers, err := s.teacherRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}
	return teachers, nil
}

func (s *DirectoryService) Teacher(ctx context.Context, id string) (*teacher.Teacher, error) {
	return s.teacherRepo.GetByID(ctx, id)
}

// TeacherName resolves a display name, falling back to teacher.UnknownName.
func (s *DirectoryService) TeacherName(ctx context.Context, id string) string {
	t, err := s.teacherRepo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, teacher.ErrTeacherNotFound) {
			s.logger.WithError(err).WithField("teacher_id", id).Warn("Teacher lookup failed")
		}
		return teacher.UnknownName
	}
	return t.Name
}
