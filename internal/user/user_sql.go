package user

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgconn"
	"github.com/pot-code/course-gate/internal/domain"
	"github.com/pot-code/course-gate/internal/infrastructure/driver"
	"github.com/pot-code/course-gate/internal/infrastructure/uuid"
)

type UserSQL struct {
	Conn          driver.ITransactionalDB
	UUIDGenerator uuid.Generator
}

var _ UserRepository = &UserSQL{}

func NewUserRepository(Conn driver.ITransactionalDB, UUIDGenerator uuid.Generator) *UserSQL {
	return &UserSQL{Conn, UUIDGenerator}
}

func (repo *UserSQL) FindByEmail(ctx context.Context, email string) (*domain.UserModel, error) {
	return repo.findOne(ctx, `SELECT id, name, email, password, login_retry, last_login
	FROM "user" WHERE email = $1`, email)
}

func (repo *UserSQL) FindByID(ctx context.Context, id string) (*domain.UserModel, error) {
	return repo.findOne(ctx, `SELECT id, name, email, password, login_retry, last_login
	FROM "user" WHERE id = $1`, id)
}

func (repo *UserSQL) findOne(ctx context.Context, query string, arg string) (*domain.UserModel, error) {
	row, err := repo.Conn.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer row.Close()

	if row.Next() {
		user := new(domain.UserModel)
		if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.LoginRetry, &user.LastLogin); err != nil {
			return nil, err
		}
		return user, nil
	}
	return nil, nil
}

func (repo *UserSQL) SaveUser(ctx context.Context, post *domain.UserModel) error {
	conn := repo.Conn
	// generate id
	UUIDGenerator := repo.UUIDGenerator
	if uuid, err := UUIDGenerator.Generate(); err == nil {
		post.ID = uuid
	} else {
		return err
	}

	_, err := conn.ExecContext(ctx, `INSERT INTO "user"(id, name, email, password, login_retry, last_login)
	VALUES($1, $2, $3, $4, $5, $6)`, post.ID, post.Name, post.Email, post.Password, post.LoginRetry, post.LastLogin)
	if isDuplicateKey(err) {
		return domain.ErrDuplicatedUser
	}
	return err
}

func (repo *UserSQL) UpdateLogin(ctx context.Context, post *domain.UserModel) error {
	_, err := repo.Conn.ExecContext(ctx, `UPDATE "user"
	SET login_retry = $1,
			last_login = $2
	WHERE id = $3`, post.LoginRetry, post.LastLogin, post.ID)
	return err
}

func (repo *UserSQL) ListEnrolled(ctx context.Context, userID string) ([]string, error) {
	rows, err := repo.Conn.QueryContext(ctx, `SELECT course_id FROM enrollment WHERE user_id = $1 ORDER BY enrolled_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	return result, nil
}

func (repo *UserSQL) Enroll(ctx context.Context, userID, courseID string) error {
	_, err := repo.Conn.ExecContext(ctx, `INSERT INTO enrollment(user_id, course_id, enrolled_at) VALUES($1, $2, $3)`,
		userID, courseID, time.Now().UTC())
	if isDuplicateKey(err) {
		return nil
	}
	return err
}

func (repo *UserSQL) Unenroll(ctx context.Context, userID, courseID string) error {
	_, err := repo.Conn.ExecContext(ctx, `DELETE FROM enrollment WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	return err
}

// isDuplicateKey unique constraint violation of either driver
func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
