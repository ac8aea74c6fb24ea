package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/emerssive/Chrome-Extension/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100

	// MaxPage bounds 1-based page numbers so offsets stay well inside int range.
	MaxPage = 1_000_000
)

// ProductFilter narrows ListProducts to one user's products. Zero-valued fields
// do not filter.
type ProductFilter struct {
	UserID     int64
	RegistryID int64
	Query      string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	MinRating  *float64
	Limit      int
	Offset     int
}

type ProductPage struct {
	Items []models.SavedProduct `json:"items"`
	Total int                   `json:"total"`
}

const productColumns = `p.id, rp.registry_id, p.name, p.price, p.description, p.image_url,
	p.rating, p.review_count, p.product_url, p.store_url, p.affiliate_link, p.created_at`

// InsertProductTx stores p and sets its ID and CreatedAt.
func (db *DB) InsertProductTx(ctx context.Context, tx pgx.Tx, p *models.SavedProduct) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO products (
			name, price, description, image_url, rating,
			review_count, product_url, store_url, affiliate_link
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		p.Name, p.Price, p.Description, p.ImageURL, p.Rating,
		p.ReviewCount, p.ProductURL, p.StoreURL, p.AffiliateLink,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (db *DB) LinkRegistryProductTx(ctx context.Context, tx pgx.Tx, registryID, productID int64) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO registry_products (registry_id, product_id) VALUES ($1, $2)`,
		registryID, productID,
	)
	if err != nil {
		return fmt.Errorf("failed to link product to registry: %w", err)
	}
	return nil
}

func (db *DB) GetProduct(ctx context.Context, id int64) (*models.SavedProduct, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+productColumns+`
		FROM products p
		JOIN registry_products rp ON rp.product_id = p.id
		WHERE p.id = $1`,
		id,
	)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// DeleteProductTx removes a product owned by userID. It returns ErrNotFound when
// the product does not exist or belongs to someone else.
func (db *DB) DeleteProductTx(ctx context.Context, tx pgx.Tx, id, userID int64) (*models.SavedProduct, error) {
	row := tx.QueryRow(ctx,
		`SELECT `+productColumns+`
		FROM products p
		JOIN registry_products rp ON rp.product_id = p.id
		JOIN registries r ON r.id = rp.registry_id
		WHERE p.id = $1 AND r.user_id = $2
		FOR UPDATE OF p`,
		id, userID,
	)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	return p, nil
}

func (db *DB) ListProducts(ctx context.Context, f ProductFilter) (*ProductPage, error) {
	where, args := f.conditions()

	var total int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*)
		FROM products p
		JOIN registry_products rp ON rp.product_id = p.id
		JOIN registries r ON r.id = rp.registry_id
		WHERE `+where,
		args...,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	args = append(args, limit, offset)
	rows, err := db.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s
		FROM products p
		JOIN registry_products rp ON rp.product_id = p.id
		JOIN registries r ON r.id = rp.registry_id
		WHERE %s
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $%d OFFSET $%d`, productColumns, where, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	page := &ProductPage{Items: []models.SavedProduct{}, Total: total}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		page.Items = append(page.Items, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return page, nil
}

func (f ProductFilter) conditions() (string, []any) {
	clauses := []string{"r.user_id = $1"}
	args := []any{f.UserID}

	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if f.RegistryID > 0 {
		add("rp.registry_id = $%d", f.RegistryID)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		add("(p.name ILIKE $%[1]d OR p.description ILIKE $%[1]d)", "%"+escapeLike(q)+"%")
	}
	if f.MinPrice != nil {
		add("p.price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("p.price <= $%d", *f.MaxPrice)
	}
	if f.MinRating != nil {
		add("p.rating >= $%d", *f.MinRating)
	}

	return strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanProduct(row pgx.Row) (*models.SavedProduct, error) {
	p := &models.SavedProduct{}
	err := row.Scan(
		&p.ID, &p.RegistryID, &p.Name, &p.Price, &p.Description, &p.ImageURL,
		&p.Rating, &p.ReviewCount, &p.ProductURL, &p.StoreURL, &p.AffiliateLink, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
