package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"cardtrack/internal/core"
)

// SeedDefaultCategories inserts the default category set for an owner
// that has none yet. Idempotent: owners with categories are left alone.
func (r *SQLiteRepository) SeedDefaultCategories(ctx context.Context, ownerID int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM categories WHERE owner_id = ?", ownerID,
		).Scan(&count); err != nil {
			return fmt.Errorf("count categories: %w", err)
		}
		if count > 0 {
			return nil
		}

		for _, c := range core.DefaultCategories {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO categories (owner_id, name, icon, color, is_default) VALUES (?, ?, ?, ?, ?)",
				ownerID, c.Name, c.Icon, c.Color, c.IsDefault,
			); err != nil {
				return fmt.Errorf("seed category %s: %w", c.Name, err)
			}
		}

		slog.InfoContext(ctx, "Default categories seeded", "owner_id", ownerID, "count", len(core.DefaultCategories))
		return nil
	})
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, ownerID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, icon, color, is_default, created_at
		 FROM categories WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, ownerID, id int64) (*core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, icon, color, is_default, created_at
		 FROM categories WHERE id = ?`, id)

	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.OwnerID != ownerID {
		return nil, core.ErrForbidden
	}
	return &c, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c *core.Category) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if err := categoryNameFree(ctx, tx, c.OwnerID, c.Name, 0); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			"INSERT INTO categories (owner_id, name, icon, color, is_default) VALUES (?, ?, ?, ?, 0)",
			c.OwnerID, c.Name, c.Icon, c.Color)
		if err != nil {
			return fmt.Errorf("create category: %w", err)
		}
		c.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("category insert id: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c *core.Category) error {
	existing, err := r.GetCategory(ctx, c.OwnerID, c.ID)
	if err != nil {
		return err
	}

	return r.withTx(ctx, func(tx *sql.Tx) error {
		if c.Name != existing.Name {
			if err := categoryNameFree(ctx, tx, c.OwnerID, c.Name, c.ID); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE categories SET name = ?, icon = ?, color = ? WHERE id = ?",
			c.Name, c.Icon, c.Color, c.ID,
		); err != nil {
			return fmt.Errorf("update category: %w", err)
		}
		c.IsDefault = existing.IsDefault
		return nil
	})
}

// DeleteCategory removes a category after reassigning every referent
// transaction to the owner's default bucket, all in one transaction.
// Deleting the default bucket promotes the oldest remaining category so
// the owner always keeps a fallback; the last category cannot be deleted.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, ownerID, id int64) error {
	target, err := r.GetCategory(ctx, ownerID, id)
	if err != nil {
		return err
	}

	return r.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM categories WHERE owner_id = ?", ownerID,
		).Scan(&count); err != nil {
			return fmt.Errorf("count categories: %w", err)
		}
		if count <= 1 {
			return &core.ValidationError{Field: "id", Message: "cannot delete the only remaining category"}
		}

		var fallbackID int64
		if target.IsDefault {
			if err := tx.QueryRowContext(ctx,
				"SELECT id FROM categories WHERE owner_id = ? AND id != ? ORDER BY id LIMIT 1",
				ownerID, id,
			).Scan(&fallbackID); err != nil {
				return fmt.Errorf("find fallback category: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				"UPDATE categories SET is_default = 1 WHERE id = ?", fallbackID,
			); err != nil {
				return fmt.Errorf("promote fallback category: %w", err)
			}
		} else {
			if err := tx.QueryRowContext(ctx,
				"SELECT id FROM categories WHERE owner_id = ? AND is_default = 1 AND id != ? LIMIT 1",
				ownerID, id,
			).Scan(&fallbackID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					// no flagged default, fall back to the oldest category
					if err := tx.QueryRowContext(ctx,
						"SELECT id FROM categories WHERE owner_id = ? AND id != ? ORDER BY id LIMIT 1",
						ownerID, id,
					).Scan(&fallbackID); err != nil {
						return fmt.Errorf("find fallback category: %w", err)
					}
				} else {
					return fmt.Errorf("find default category: %w", err)
				}
			}
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE transactions SET category_id = ? WHERE category_id = ?", fallbackID, id,
		); err != nil {
			return fmt.Errorf("reassign transactions: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM categories WHERE id = ?", id,
		); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}

		slog.InfoContext(ctx, "Category deleted",
			"owner_id", ownerID, "category_id", id, "reassigned_to", fallbackID)
		return nil
	})
}

func categoryNameFree(ctx context.Context, tx *sql.Tx, ownerID int64, name string, excludeID int64) error {
	var count int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE owner_id = ? AND name = ? AND id != ?",
		ownerID, name, excludeID,
	).Scan(&count); err != nil {
		return fmt.Errorf("check category name: %w", err)
	}
	if count > 0 {
		return &core.ValidationError{Field: "name", Message: "a category with this name already exists"}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (core.Category, error) {
	var c core.Category
	var createdAt sql.NullTime
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Icon, &c.Color, &c.IsDefault, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, err
		}
		return c, fmt.Errorf("scan category: %w", err)
	}
	c.CreatedAt = createdAt.Time
	return c, nil
}
