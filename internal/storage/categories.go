package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"faturas/internal/core"
)

const categoryColumns = "id, name, code, created_at, updated_at"

// ListCategories returns all categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+categoryColumns+" FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	cats := make([]core.Category, 0, 16)
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// CategoryCodes returns the codes of every category.
func (r *Repository) CategoryCodes(ctx context.Context) ([]string, error) {
	cats, err := r.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	codes := make([]string, len(cats))
	for i, c := range cats {
		codes[i] = c.Code
	}
	return codes, nil
}

// CreateCategory inserts a category, deriving its code from the name.
// A collision on the derived code returns core.ErrDuplicateCode.
func (r *Repository) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	c := core.Category{Name: name, Code: core.CategoryCode(name)}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	taken, err := r.codeTaken(ctx, c.Code, 0)
	if err != nil {
		return core.Category{}, err
	}
	if taken {
		return core.Category{}, core.ErrDuplicateCode
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (name, code) VALUES (?, ?)", c.Name, c.Code)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	return r.getCategory(ctx, id)
}

// UpdateCategory renames a category, re-deriving its code. Returns
// core.ErrNotFound for an unknown id and core.ErrDuplicateCode when the
// new code collides with another category.
func (r *Repository) UpdateCategory(ctx context.Context, id int64, name string) (core.Category, error) {
	c := core.Category{ID: id, Name: name, Code: core.CategoryCode(name)}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	taken, err := r.codeTaken(ctx, c.Code, id)
	if err != nil {
		return core.Category{}, err
	}
	if taken {
		return core.Category{}, core.ErrDuplicateCode
	}

	res, err := r.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, code = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		c.Name, c.Code, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Category{}, fmt.Errorf("update category result: %w", err)
	}
	if affected == 0 {
		return core.Category{}, core.ErrNotFound
	}
	return r.getCategory(ctx, id)
}

// DeleteCategory removes a category by id.
func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category result: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) getCategory(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.Code, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *Repository) codeTaken(ctx context.Context, code string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM categories WHERE code = ? AND id <> ?)",
		code, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category code: %w", err)
	}
	return exists, nil
}
