package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const productColumns = `
	SELECT p.id, p.name, p.description, p.category_id, c.name, p.brand_id, b.name,
	       p.images, p.listed, p.created_at, p.updated_at
	FROM products p
	JOIN categories c ON c.id = p.category_id
	JOIN brands b ON b.id = p.brand_id`

// ListListed returns products visible in the storefront: the product, its brand and its
// category must all be listed.
func (r *Repo) ListListed(ctx context.Context) ([]Product, error) {
	return r.queryProducts(ctx, productColumns+` WHERE p.listed AND c.listed AND b.listed`)
}

func (r *Repo) ListAll(ctx context.Context) ([]Product, error) {
	return r.queryProducts(ctx, productColumns)
}

// Get returns a product regardless of listing state.
func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	ps, err := r.queryProducts(ctx, productColumns+` WHERE p.id=$1`, id)
	if err != nil {
		return Product{}, err
	}
	if len(ps) == 0 {
		return Product{}, ErrNotFound
	}
	return ps[0], nil
}

// GetListed returns a product only if it is visible in the storefront.
func (r *Repo) GetListed(ctx context.Context, id string) (Product, error) {
	ps, err := r.queryProducts(ctx, productColumns+` WHERE p.id=$1 AND p.listed AND c.listed AND b.listed`, id)
	if err != nil {
		return Product{}, err
	}
	if len(ps) == 0 {
		return Product{}, ErrNotFound
	}
	return ps[0], nil
}

func (r *Repo) queryProducts(ctx context.Context, q string, args ...any) ([]Product, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	idx := map[string]int{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.CategoryName, &p.BrandID, &p.BrandName,
			&p.Images, &p.Listed, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Variants = []Variant{}
		idx[p.ID] = len(out)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(out))
	for _, p := range out {
		ids = append(ids, p.ID)
	}
	vrows, err := r.DB.Query(ctx, `
		SELECT id, product_id, size, color, price_cents, stock
		FROM variants WHERE product_id = ANY($1)
		ORDER BY price_cents, size, color`, ids)
	if err != nil {
		return nil, err
	}
	defer vrows.Close()
	for vrows.Next() {
		var v Variant
		if err := vrows.Scan(&v.ID, &v.ProductID, &v.Size, &v.Color, &v.PriceCents, &v.Stock); err != nil {
			return nil, err
		}
		i := idx[v.ProductID]
		out[i].Variants = append(out[i].Variants, v)
	}
	return out, vrows.Err()
}

func (r *Repo) CreateProduct(ctx context.Context, p Product) (Product, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Product{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Images == nil {
		p.Images = []string{}
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO products(id, name, description, category_id, brand_id, images, listed, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.Name, p.Description, p.CategoryID, p.BrandID, p.Images, p.Listed, now, now); err != nil {
		return Product{}, mapPgErr(err, errUnknownRef)
	}
	for i := range p.Variants {
		v := &p.Variants[i]
		v.ID = uuid.NewString()
		v.ProductID = p.ID
		if _, err := tx.Exec(ctx, `
			INSERT INTO variants(id, product_id, size, color, price_cents, stock)
			VALUES ($1,$2,$3,$4,$5,$6)`, v.ID, p.ID, v.Size, v.Color, v.PriceCents, v.Stock); err != nil {
			return Product{}, mapPgErr(err, errUnknownRef)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Product{}, err
	}
	return p, nil
}

type ProductUpdate struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	CategoryID  *string   `json:"category_id,omitempty"`
	BrandID     *string   `json:"brand_id,omitempty"`
	Images      *[]string `json:"images,omitempty"`
}

func (u ProductUpdate) empty() bool {
	return u.Name == nil && u.Description == nil && u.CategoryID == nil && u.BrandID == nil && u.Images == nil
}

func (r *Repo) UpdateProduct(ctx context.Context, id string, u ProductUpdate) error {
	assignments := make([]string, 0, 6)
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.Name != nil {
		add("name", strings.TrimSpace(*u.Name))
	}
	if u.Description != nil {
		add("description", strings.TrimSpace(*u.Description))
	}
	if u.CategoryID != nil {
		add("category_id", *u.CategoryID)
	}
	if u.BrandID != nil {
		add("brand_id", *u.BrandID)
	}
	if u.Images != nil {
		add("images", *u.Images)
	}
	add("updated_at", time.Now().UTC())

	ct, err := r.DB.Exec(ctx, `UPDATE products SET `+strings.Join(assignments, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		return mapPgErr(err, errUnknownRef)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) SetProductListed(ctx context.Context, id string, listed bool) error {
	ct, err := r.DB.Exec(ctx, `UPDATE products SET listed=$2, updated_at=NOW() WHERE id=$1`, id, listed)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertVariant adds a variant or updates price/stock of the (size, color) variant that exists.
func (r *Repo) UpsertVariant(ctx context.Context, productID string, v Variant) (Variant, error) {
	v.ProductID = productID
	err := r.DB.QueryRow(ctx, `
		INSERT INTO variants(id, product_id, size, color, price_cents, stock)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (product_id, size, color)
		DO UPDATE SET price_cents = EXCLUDED.price_cents, stock = EXCLUDED.stock, updated_at = NOW()
		RETURNING id`,
		uuid.NewString(), productID, v.Size, v.Color, v.PriceCents, v.Stock).Scan(&v.ID)
	if err != nil {
		return Variant{}, mapPgErr(err, ErrNotFound)
	}
	return v, nil
}

var errUnknownRef = fmt.Errorf("%w: unknown brand or category", ErrInvalid)

// mapPgErr translates unique and foreign key violations; onForeignKey depends on whether the
// statement inserted a reference or removed a referenced row.
func mapPgErr(err, onForeignKey error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrNameTaken
		case "23503":
			return onForeignKey
		}
	}
	return err
}
