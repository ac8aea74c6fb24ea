package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/emerssive/Chrome-Extension/internal/models"
	"github.com/jackc/pgx/v5"
)

func (db *DB) CreateRegistry(ctx context.Context, r *models.Registry) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO registries (user_id, name, description) VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		r.UserID, r.Name, r.Description,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create registry: %w", err)
	}
	return nil
}

func (db *DB) ListRegistries(ctx context.Context, userID int64) ([]models.Registry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, name, description, created_at
		FROM registries WHERE user_id = $1 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list registries: %w", err)
	}
	defer rows.Close()

	registries := []models.Registry{}
	for rows.Next() {
		var r models.Registry
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.Description, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan registry: %w", err)
		}
		registries = append(registries, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return registries, nil
}

// GetRegistry returns the registry only when userID owns it.
func (db *DB) GetRegistry(ctx context.Context, id, userID int64) (*models.Registry, error) {
	r := &models.Registry{}

	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, name, description, created_at
		FROM registries WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&r.ID, &r.UserID, &r.Name, &r.Description, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get registry: %w", err)
	}

	return r, nil
}
