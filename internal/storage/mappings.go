package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"faturas/internal/core"
)

const mappingColumns = "id, place_key, clean_name, category, status, created_at, updated_at"

// MappingsByStatus returns mappings filtered by status, or all mappings
// when status is empty, ordered by place key.
func (r *Repository) MappingsByStatus(ctx context.Context, status core.MappingStatus) ([]core.Mapping, error) {
	query := "SELECT " + mappingColumns + " FROM mappings"
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY place_key"
	return r.queryMappings(ctx, query, args...)
}

// LabeledMappings returns every mapping with a non-empty category. Used as
// the training corpus for the categorizer.
func (r *Repository) LabeledMappings(ctx context.Context) ([]core.Mapping, error) {
	return r.queryMappings(ctx,
		"SELECT "+mappingColumns+" FROM mappings WHERE status = ? AND TRIM(category) <> '' ORDER BY place_key",
		string(core.StatusLabeled))
}

// MappingByID returns a single mapping by id.
func (r *Repository) MappingByID(ctx context.Context, id int64) (core.Mapping, error) {
	mappings, err := r.queryMappings(ctx,
		"SELECT "+mappingColumns+" FROM mappings WHERE id = ?", id)
	if err != nil {
		return core.Mapping{}, err
	}
	if len(mappings) == 0 {
		return core.Mapping{}, core.ErrNotFound
	}
	return mappings[0], nil
}

// MappingsForKeys returns the mappings for the given place keys, indexed by
// place key. Missing keys are simply absent from the result.
func (r *Repository) MappingsForKeys(ctx context.Context, keys []string) (map[string]core.Mapping, error) {
	out := make(map[string]core.Mapping, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	placeholders := strings.Repeat("?,", len(keys))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	mappings, err := r.queryMappings(ctx,
		"SELECT "+mappingColumns+" FROM mappings WHERE place_key IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}
	for _, m := range mappings {
		out[m.PlaceKey] = m
	}
	return out, nil
}

// UpdateMappingByID sets the clean name and category of an existing
// mapping. Assigning a non-empty category promotes the mapping to labeled;
// clearing the category never demotes it back to pending.
func (r *Repository) UpdateMappingByID(ctx context.Context, id int64, cleanName, category string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE mappings
		SET clean_name = ?,
		    category = ?,
		    status = CASE WHEN TRIM(?) <> '' THEN 'labeled' ELSE status END,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		cleanName, category, category, id)
	if err != nil {
		return fmt.Errorf("update mapping: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update mapping result: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// UpsertMappingByPlace creates or updates the mapping for a raw place
// string, keyed by its normalized form.
func (r *Repository) UpsertMappingByPlace(ctx context.Context, place, cleanName, category string) error {
	key := core.PlaceKey(place)
	if key == "" {
		return core.ErrEmptyPlace
	}
	status := core.StatusPending
	if strings.TrimSpace(category) != "" {
		status = core.StatusLabeled
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mappings (place_key, clean_name, category, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(place_key) DO UPDATE SET
		    clean_name = excluded.clean_name,
		    category = excluded.category,
		    status = CASE WHEN TRIM(excluded.category) <> '' THEN 'labeled' ELSE mappings.status END,
		    updated_at = CURRENT_TIMESTAMP`,
		key, cleanName, category, string(status))
	if err != nil {
		return fmt.Errorf("upsert mapping: %w", err)
	}
	return nil
}

// InsertPendingMappings inserts a pending mapping for every key that does
// not already have one and returns how many were created. Existing
// mappings, labeled or pending, are left untouched.
func (r *Repository) InsertPendingMappings(ctx context.Context, keys []string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR IGNORE INTO mappings (place_key, clean_name, category, status) VALUES (?, ?, '', 'pending')")
	if err != nil {
		return 0, fmt.Errorf("prepare mapping insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, raw := range keys {
		key := core.PlaceKey(raw)
		if key == "" {
			continue
		}
		res, err := stmt.ExecContext(ctx, key, key)
		if err != nil {
			return 0, fmt.Errorf("insert mapping %q: %w", key, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("insert mapping result: %w", err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit mappings: %w", err)
	}
	if inserted > 0 {
		slog.InfoContext(ctx, "Pending mappings inserted", "count", inserted)
	}
	return inserted, nil
}

func (r *Repository) queryMappings(ctx context.Context, query string, args ...any) ([]core.Mapping, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mappings: %w", err)
	}
	defer rows.Close()

	mappings := make([]core.Mapping, 0, 32)
	for rows.Next() {
		var m core.Mapping
		var status string
		if err := rows.Scan(&m.ID, &m.PlaceKey, &m.CleanName, &m.Category, &status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		m.Status = core.MappingStatus(status)
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}
