package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("user not found")

const selectCols = `
	user_id, name, email, role, password_hash,
	sub_id AS "sub.id", sub_status AS "sub.status", sub_course_id AS "sub.course_id",
	created_at, updated_at`

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (User, error) {
	const q = `SELECT` + selectCols + ` FROM users WHERE user_id = $1`

	var u User
	if err := sqlx.GetContext(ctx, db, &u, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("selecting user[%s]: %w", id, err)
	}

	return u, nil
}

func FetchByEmail(ctx context.Context, db sqlx.ExtContext, email string) (User, error) {
	const q = `SELECT` + selectCols + ` FROM users WHERE email = $1`

	var u User
	if err := sqlx.GetContext(ctx, db, &u, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("selecting user by email: %w", err)
	}

	return u, nil
}

func Create(ctx context.Context, db sqlx.ExtContext, u User) error {
	const q = `
	INSERT INTO users
		(user_id, name, email, role, password_hash, sub_id, sub_status, sub_course_id, created_at, updated_at)
	VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := db.ExecContext(ctx, q,
		u.ID, u.Name, u.Email, u.Role, u.PasswordHash,
		u.Subscription.ID, u.Subscription.Status, u.Subscription.CourseID,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// UpdateSubscription stores the gateway order reference on the user.
func UpdateSubscription(ctx context.Context, db sqlx.ExtContext, userID string, sub Subscription) error {
	const q = `
	UPDATE users SET
		sub_id = $2, sub_status = $3, sub_course_id = $4, updated_at = now()
	WHERE user_id = $1`

	res, err := db.ExecContext(ctx, q, userID, sub.ID, sub.Status, sub.CourseID)
	if err != nil {
		return fmt.Errorf("updating subscription of user[%s]: %w", userID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	return nil
}

// SetSubscriptionStatus flips only the status, leaving the order id and
// course reference untouched.
func SetSubscriptionStatus(ctx context.Context, db sqlx.ExtContext, userID string, status string) error {
	const q = `UPDATE users SET sub_status = $2, updated_at = now() WHERE user_id = $1`

	res, err := db.ExecContext(ctx, q, userID, status)
	if err != nil {
		return fmt.Errorf("updating subscription status of user[%s]: %w", userID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	return nil
}
