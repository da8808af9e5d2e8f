package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eduquery/internal/domain/teacher"
)

// PostgresTeacherRepository reads the faculty directory from the teachers table.
type PostgresTeacherRepository struct {
	db *sql.DB
}

func NewPostgresTeacherRepository(db *sql.DB) *PostgresTeacherRepository {
	return &PostgresTeacherRepository{db: db}
}

func (r *PostgresTeacherRepository) GetByID(ctx context.Context, id string) (*teacher.Teacher, error) {
	query := `SELECT id, name, department, avatar_url FROM teachers WHERE id = $1`
	t := &teacher.Teacher{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.Department, &t.AvatarURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, teacher.ErrTeacherNotFound
		}
		return nil, fmt.Errorf("error getting teacher by ID: %w", err)
	}
	return t, nil
}

func (r *PostgresTeacherRepository) ListAll(ctx context.Context) ([]*teacher.Teacher, error) {
	query := `SELECT id, name, department, avatar_url FROM teachers ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing teachers: %w", err)
	}
	defer rows.Close()

	teachers := make([]*teacher.Teacher, 0)
	for rows.Next() {
		t := &teacher.Teacher{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Department, &t.AvatarURL); err != nil {
			return nil, fmt.Errorf("error scanning teacher: %w", err)
		}
		teachers = append(teachers, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teachers: %w", err)
	}
	return teachers, nil
}

// SeedIfEmpty inserts the given teachers when the table has no rows yet.
func (r *PostgresTeacherRepository) SeedIfEmpty(ctx context.Context, teachers []*teacher.Teacher) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teachers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting teachers: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error starting seed transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO teachers (id, name, department, avatar_url) VALUES ($1, $2, $3, $4)
               ON CONFLICT (id) DO NOTHING`
	for _, t := range teachers {
		if _, err := tx.ExecContext(ctx, query, t.ID, t.Name, t.Department, t.AvatarURL); err != nil {
			return 0, fmt.Errorf("error seeding teacher %s: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing teacher seed: %w", err)
	}
	return len(teachers), nil
}
