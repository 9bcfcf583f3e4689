package course

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pot-code/course-gate/internal/domain"
	"github.com/pot-code/course-gate/internal/infrastructure/driver"
)

// CourseSQL author changes stored as JSON documents, works with both mysql and postgres
type CourseSQL struct {
	Conn driver.ITransactionalDB
}

var _ CourseRepository = &CourseSQL{}

func NewCourseRepository(Conn driver.ITransactionalDB) *CourseSQL {
	return &CourseSQL{Conn}
}

func (repo *CourseSQL) FindOverride(ctx context.Context, id string) (*domain.Course, error) {
	rows, err := repo.Conn.QueryContext(ctx, `SELECT document FROM course WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		return scanCourse(rows)
	}
	return nil, nil
}

func (repo *CourseSQL) ListOverrides(ctx context.Context) ([]*domain.Course, error) {
	rows, err := repo.Conn.QueryContext(ctx, `SELECT document FROM course ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, course)
	}
	return result, nil
}

func (repo *CourseSQL) SaveOverride(ctx context.Context, course *domain.Course) (err error) {
	document, err := json.Marshal(course)
	if err != nil {
		return err
	}

	tx, err := repo.Conn.BeginTx(ctx, &driver.TxOptions{
		Isolation:  sql.LevelRepeatableRead,
		AccessMode: driver.AccessReadWrite,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM course WHERE id = $1`, course.ID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO course(id, document, updated_at) VALUES($1, $2, $3)`,
		course.ID, string(document), time.Now().UTC()); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM course_deleted WHERE id = $1`, course.ID)
	return err
}

func (repo *CourseSQL) IsDeleted(ctx context.Context, id string) (bool, error) {
	rows, err := repo.Conn.QueryContext(ctx, `SELECT id FROM course_deleted WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	return rows.Next(), nil
}

func (repo *CourseSQL) ListDeleted(ctx context.Context) ([]string, error) {
	rows, err := repo.Conn.QueryContext(ctx, `SELECT id FROM course_deleted`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	return result, nil
}

// MarkDeleted hide id from readers, the override itself is dropped
func (repo *CourseSQL) MarkDeleted(ctx context.Context, id string) (err error) {
	tx, err := repo.Conn.BeginTx(ctx, &driver.TxOptions{
		Isolation:  sql.LevelRepeatableRead,
		AccessMode: driver.AccessReadWrite,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM course WHERE id = $1`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM course_deleted WHERE id = $1`, id); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO course_deleted(id, deleted_at) VALUES($1, $2)`, id, time.Now().UTC())
	return err
}

func scanCourse(rows driver.ISQLRows) (*domain.Course, error) {
	var document string
	if err := rows.Scan(&document); err != nil {
		return nil, err
	}
	course := new(domain.Course)
	if err := json.Unmarshal([]byte(document), course); err != nil {
		return nil, fmt.Errorf("decode course document: %w", err)
	}
	return course, nil
}
