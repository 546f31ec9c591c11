package repository

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/okian/shopapi/internal/domain/model"
)

// bcrypt ignores input past this length, so longer passwords are refused instead of silently truncated.
const maxBcryptPasswordBytes = 72

const userColumns = `id, COALESCE(email, ''), COALESCE("firstName", ''), COALESCE("lastName", ''),
	COALESCE(password, ''), COALESCE("cardNumber", 0), COALESCE("cardCRV", 0),
	COALESCE("cardAddress", ''), COALESCE("cardName", '')`

func scanUser(r rowScanner) (model.User, error) {
	var u model.User
	err := r.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Password,
		&u.CardNumber, &u.CardCRV, &u.CardAddress, &u.CardName)
	return u, err
}

func getUser(ctx context.Context, q rowQuerier, id int64) (model.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM "user" WHERE id = ?`, id))
	if err != nil {
		return model.User{}, classify(err)
	}
	return u, nil
}

// storedPassword returns the value written to the password column.
func (s *SQLiteStore) storedPassword(password string) (string, error) {
	if s.bcryptCost == 0 {
		return password, nil
	}
	if len(password) > maxBcryptPasswordBytes {
		return "", fmt.Errorf("%w: password longer than %d bytes", ErrInvalidInput, maxBcryptPasswordBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CreateUser inserts u and reads the row back.
func (s *SQLiteStore) CreateUser(ctx context.Context, u model.User) (out model.User, err error) {
	defer s.observe(ctx, "create", model.ResourceUser, time.Now(), &err)

	password, err := s.storedPassword(u.Password)
	if err != nil {
		return model.User{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO "user" (email, "firstName", "lastName", password, "cardNumber", "cardCRV", "cardAddress", "cardName")
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Email, u.FirstName, u.LastName, password, u.CardNumber, u.CardCRV, u.CardAddress, u.CardName,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("insert user: %w", classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	return getUser(ctx, s.db, id)
}

// ListUsers returns every user ordered by id.
func (s *SQLiteStore) ListUsers(ctx context.Context) (out []model.User, err error) {
	defer s.observe(ctx, "list", model.ResourceUser, time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM "user" ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetUser returns ErrNotFound if no row has id.
func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (out model.User, err error) {
	defer s.observe(ctx, "get", model.ResourceUser, time.Now(), &err)
	return getUser(ctx, s.db, id)
}

// UpdateUser overwrites every column of row id and returns the updated row.
func (s *SQLiteStore) UpdateUser(ctx context.Context, id int64, u model.User) (out model.User, err error) {
	defer s.observe(ctx, "update", model.ResourceUser, time.Now(), &err)

	password, err := s.storedPassword(u.Password)
	if err != nil {
		return model.User{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, fmt.Errorf("begin: %w", err)
	}
	defer rollback(tx)

	res, err := tx.ExecContext(ctx,
		`UPDATE "user" SET email = ?, "firstName" = ?, "lastName" = ?, password = ?,
		"cardNumber" = ?, "cardCRV" = ?, "cardAddress" = ?, "cardName" = ? WHERE id = ?`,
		u.Email, u.FirstName, u.LastName, password, u.CardNumber, u.CardCRV, u.CardAddress, u.CardName, id,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("update user %d: %w", id, classify(err))
	}
	if err := requireAffected(res); err != nil {
		return model.User{}, err
	}
	out, err = getUser(ctx, tx, id)
	if err != nil {
		return model.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.User{}, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

// DeleteUser removes row id and returns it as it was before deletion.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id int64) (out model.User, err error) {
	defer s.observe(ctx, "delete", model.ResourceUser, time.Now(), &err)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, fmt.Errorf("begin: %w", err)
	}
	defer rollback(tx)

	out, err = getUser(ctx, tx, id)
	if err != nil {
		return model.User{}, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM "user" WHERE id = ?`, id); err != nil {
		return model.User{}, fmt.Errorf("delete user %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return model.User{}, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}
