package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) SaleLines(ctx context.Context, from, to time.Time) ([]SaleLine, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT o.id, o.status, o.payment_status, o.total_cents, o.created_at,
			oi.product_id, oi.product_name,
			COALESCE(c.id, ''), COALESCE(c.name, ''), COALESCE(b.id, ''), COALESCE(b.name, ''),
			oi.qty, oi.line_total_cents
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		LEFT JOIN products p ON p.id = oi.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN brands b ON b.id = p.brand_id
		WHERE o.created_at >= $1 AND o.created_at < $2
		ORDER BY o.created_at`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SaleLine
	for rows.Next() {
		var l SaleLine
		if err := rows.Scan(&l.OrderID, &l.Status, &l.PaymentStatus, &l.OrderTotalCents, &l.CreatedAt,
			&l.ProductID, &l.ProductName, &l.CategoryID, &l.CategoryName, &l.BrandID, &l.BrandName,
			&l.Qty, &l.LineTotalCents); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
