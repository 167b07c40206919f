package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("course not found")

const selectCols = `
	course_id, title, description, category, created_by,
	thumbnail_public_id AS "thumbnail.public_id", thumbnail_url AS "thumbnail.secure_url",
	lectures, number_of_lectures, created_at, updated_at`

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Course, error) {
	const q = `SELECT` + selectCols + ` FROM courses WHERE course_id = $1`

	var c Course
	if err := sqlx.GetContext(ctx, db, &c, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, ErrNotFound
		}
		return Course{}, fmt.Errorf("selecting course[%s]: %w", id, err)
	}

	return c, nil
}

// FetchAll lists courses without their lecture sequences, matching the
// public catalog view.
func FetchAll(ctx context.Context, db sqlx.ExtContext) ([]Course, error) {
	const q = `
	SELECT
		course_id, title, description, category, created_by,
		thumbnail_public_id AS "thumbnail.public_id", thumbnail_url AS "thumbnail.secure_url",
		number_of_lectures, created_at, updated_at
	FROM courses
	ORDER BY created_at`

	cs := []Course{}
	if err := sqlx.SelectContext(ctx, db, &cs, q); err != nil {
		return nil, fmt.Errorf("selecting courses: %w", err)
	}

	return cs, nil
}

func Create(ctx context.Context, db sqlx.ExtContext, c Course) error {
	const q = `
	INSERT INTO courses
		(course_id, title, description, category, created_by,
		 thumbnail_public_id, thumbnail_url, lectures, number_of_lectures,
		 created_at, updated_at)
	VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := db.ExecContext(ctx, q,
		c.ID, c.Title, c.Description, c.Category, c.CreatedBy,
		c.Thumbnail.PublicID, c.Thumbnail.SecureURL, c.Lectures, len(c.Lectures),
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting course: %w", err)
	}

	return nil
}

// Save writes the whole course back in one row update. The lecture count
// is always recomputed from the embedded sequence, never trusted.
func Save(ctx context.Context, db sqlx.ExtContext, c Course) error {
	const q = `
	UPDATE courses SET
		title = $2, description = $3, category = $4, created_by = $5,
		thumbnail_public_id = $6, thumbnail_url = $7,
		lectures = $8, number_of_lectures = $9, updated_at = now()
	WHERE course_id = $1`

	res, err := db.ExecContext(ctx, q,
		c.ID, c.Title, c.Description, c.Category, c.CreatedBy,
		c.Thumbnail.PublicID, c.Thumbnail.SecureURL,
		c.Lectures, len(c.Lectures),
	)
	if err != nil {
		return fmt.Errorf("updating course[%s]: %w", c.ID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	return nil
}

func Delete(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `DELETE FROM courses WHERE course_id = $1`

	res, err := db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("deleting course[%s]: %w", id, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	return nil
}
