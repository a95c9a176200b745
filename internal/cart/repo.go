package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Repo struct{ DB *pgxpool.Pool }

const linesSQL = `
	SELECT v.id, p.id, p.name, p.category_id, p.brand_id, COALESCE(p.images[1], ''),
		v.size, v.color, ci.qty, v.stock, (p.listed AND b.listed AND c.listed), v.price_cents
	FROM cart_items ci
	JOIN variants v ON v.id = ci.variant_id
	JOIN products p ON p.id = v.product_id
	JOIN brands b ON b.id = p.brand_id
	JOIN categories c ON c.id = p.category_id
	WHERE ci.user_id = $1
	ORDER BY ci.added_at`

// LoadLines reads the cart of userID through q. With lock set the cart and variant rows
// are locked FOR UPDATE: stock can be decremented safely, and a concurrent checkout of
// the same cart waits and then sees it emptied.
func LoadLines(ctx context.Context, q Querier, userID string, lock bool) ([]Line, error) {
	sql := linesSQL
	if lock {
		sql += ` FOR UPDATE OF ci, v`
	}
	rows, err := q.Query(ctx, sql, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Line{}
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.VariantID, &l.ProductID, &l.ProductName, &l.CategoryID, &l.BrandID, &l.Image,
			&l.Size, &l.Color, &l.Qty, &l.Stock, &l.Available, &l.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func ClearTx(ctx context.Context, q Querier, userID string) error {
	_, err := q.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
	return err
}

func (r *Repo) Lines(ctx context.Context, userID string) ([]Line, error) {
	return LoadLines(ctx, r.DB, userID, false)
}

func (r *Repo) VariantState(ctx context.Context, userID, variantID string) (VariantState, error) {
	var s VariantState
	err := r.DB.QueryRow(ctx, `
		SELECT v.stock, (p.listed AND b.listed AND c.listed), COALESCE(ci.qty, 0)
		FROM variants v
		JOIN products p ON p.id = v.product_id
		JOIN brands b ON b.id = p.brand_id
		JOIN categories c ON c.id = p.category_id
		LEFT JOIN cart_items ci ON ci.variant_id = v.id AND ci.user_id = $1
		WHERE v.id = $2`, userID, variantID).Scan(&s.Stock, &s.Available, &s.InCart)
	if errors.Is(err, pgx.ErrNoRows) {
		return VariantState{}, ErrNotFound
	}
	return s, err
}

func (r *Repo) SetQty(ctx context.Context, userID, variantID string, qty int) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO cart_items(user_id, variant_id, qty) VALUES ($1,$2,$3)
		ON CONFLICT (user_id, variant_id) DO UPDATE SET qty = EXCLUDED.qty`,
		userID, variantID, qty)
	return err
}

func (r *Repo) Remove(ctx context.Context, userID, variantID string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1 AND variant_id=$2`, userID, variantID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Wishlist(ctx context.Context, userID string) ([]WishItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT p.id, p.name, b.name, COALESCE(p.images[1], ''),
			COALESCE(MIN(v.price_cents), 0), COALESCE(BOOL_OR(v.stock > 0), FALSE), w.added_at
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		JOIN brands b ON b.id = p.brand_id
		LEFT JOIN variants v ON v.product_id = p.id
		WHERE w.user_id = $1
		GROUP BY p.id, p.name, b.name, p.images, w.added_at
		ORDER BY w.added_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []WishItem{}
	for rows.Next() {
		var w WishItem
		if err := rows.Scan(&w.ProductID, &w.Name, &w.BrandName, &w.Image, &w.FromPriceCents, &w.InStock, &w.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// AddWish is a no-op when the product is already on the list.
func (r *Repo) AddWish(ctx context.Context, userID, productID string) error {
	var listed bool
	err := r.DB.QueryRow(ctx, `SELECT listed FROM products WHERE id=$1`, productID).Scan(&listed)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if !listed {
		return ErrUnavailable
	}
	_, err = r.DB.Exec(ctx, `
		INSERT INTO wishlist_items(user_id, product_id) VALUES ($1,$2)
		ON CONFLICT (user_id, product_id) DO NOTHING`, userID, productID)
	return err
}

func (r *Repo) RemoveWish(ctx context.Context, userID, productID string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id=$1 AND product_id=$2`, userID, productID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
