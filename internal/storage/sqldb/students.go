package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aanand-mishra/cantina-api/internal/storage"
	"github.com/aanand-mishra/cantina-api/internal/types"
)

const studentColumns = "id, full_name, classroom, registered_at"

// CreateStudent inserts a new row into the students table.
func (s *Store) CreateStudent(ctx context.Context, student types.Student) (int64, error) {
	id, err := s.insert(ctx, s.Db,
		"INSERT INTO students (full_name, classroom, registered_at) VALUES (?, ?, ?)",
		student.FullName, student.Classroom, s.timestamp(student.RegisteredAt),
	)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: %w", err)
	}
	return id, nil
}

func scanStudent(row interface{ Scan(...any) error }) (types.Student, error) {
	var (
		student    types.Student
		registered sql.NullTime
	)
	if err := row.Scan(&student.ID, &student.FullName, &student.Classroom, &registered); err != nil {
		return types.Student{}, err
	}
	student.RegisteredAt = nullTime(registered)
	return student, nil
}

// GetStudentByID fetches exactly one student row matched by primary key.
func (s *Store) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	return s.getStudent(ctx, s.Db, id)
}

func (s *Store) getStudent(ctx context.Context, q querier, id int64) (types.Student, error) {
	stmt, err := s.prepare(ctx, q,
		"SELECT "+studentColumns+" FROM students WHERE id = ? LIMIT 1")
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	student, err := scanStudent(stmt.QueryRowContext(ctx, id))
	if err == sql.ErrNoRows {
		return types.Student{}, fmt.Errorf("no student found with id %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}
	return student, nil
}

// GetStudents returns the students matching filter, ordered by name.
func (s *Store) GetStudents(ctx context.Context, filter storage.StudentFilter) ([]types.Student, error) {
	var (
		where []string
		args  []any
	)
	if filter.Name != "" {
		where = append(where, s.dialect.ContainsFold("full_name"))
		args = append(args, containsPattern(filter.Name))
	}
	if filter.Classroom != "" {
		where = append(where, "classroom = ?")
		args = append(args, filter.Classroom)
	}

	query := "SELECT " + studentColumns + " FROM students"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY full_name, id"

	stmt, err := s.prepare(ctx, s.Db, query)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}

	return students, nil
}

// UpdateStudentByID replaces the name and classroom of a student.
// registered_at is never rewritten.
func (s *Store) UpdateStudentByID(ctx context.Context, id int64, student types.Student) (types.Student, error) {
	n, err := s.exec(ctx, s.Db,
		"UPDATE students SET full_name = ?, classroom = ? WHERE id = ?",
		student.FullName, student.Classroom, id,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: %w", err)
	}
	if n == 0 {
		return types.Student{}, fmt.Errorf("no student found with id %d: %w", id, storage.ErrNotFound)
	}

	// Re-fetch the record so we return exactly what is stored in the DB.
	return s.GetStudentByID(ctx, id)
}

// DeleteStudentByID removes a student and its consumption history.
//
// The consumptions foreign key cascades as well; deleting the rows
// explicitly keeps the behaviour when foreign keys are not enforced.
func (s *Store) DeleteStudentByID(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.exec(ctx, tx, "DELETE FROM consumptions WHERE student_id = ?", id); err != nil {
			return fmt.Errorf("DeleteStudentByID: consumptions: %w", err)
		}

		n, err := s.exec(ctx, tx, "DELETE FROM students WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("DeleteStudentByID: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("no student found with id %d: %w", id, storage.ErrNotFound)
		}
		return nil
	})
}
