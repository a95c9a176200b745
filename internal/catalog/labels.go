package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LabelRepo stores brands or categories; both tables share the same columns.
type LabelRepo struct {
	DB    *pgxpool.Pool
	table string
}

func NewBrandRepo(db *pgxpool.Pool) *LabelRepo    { return &LabelRepo{DB: db, table: "brands"} }
func NewCategoryRepo(db *pgxpool.Pool) *LabelRepo { return &LabelRepo{DB: db, table: "categories"} }

func (r *LabelRepo) List(ctx context.Context, onlyListed bool) ([]Label, error) {
	q := `SELECT id, name, description, listed, created_at, updated_at FROM ` + r.table
	if onlyListed {
		q += ` WHERE listed`
	}
	rows, err := r.DB.Query(ctx, q+` ORDER BY LOWER(name)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Label{}
	for rows.Next() {
		var l Label
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.Listed, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *LabelRepo) Get(ctx context.Context, id string) (Label, error) {
	var l Label
	err := r.DB.QueryRow(ctx, `SELECT id, name, description, listed, created_at, updated_at FROM `+r.table+` WHERE id=$1`, id).
		Scan(&l.ID, &l.Name, &l.Description, &l.Listed, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Label{}, ErrNotFound
	}
	return l, err
}

func (r *LabelRepo) Create(ctx context.Context, name, description string) (Label, error) {
	now := time.Now().UTC()
	l := Label{ID: uuid.NewString(), Name: name, Description: description, Listed: true, CreatedAt: now, UpdatedAt: now}
	_, err := r.DB.Exec(ctx, `INSERT INTO `+r.table+`(id, name, description, listed, created_at, updated_at) VALUES ($1,$2,$3,TRUE,$4,$4)`,
		l.ID, l.Name, l.Description, now)
	if err != nil {
		return Label{}, mapPgErr(err, ErrInUse)
	}
	return l, nil
}

func (r *LabelRepo) Update(ctx context.Context, id, name, description string) (Label, error) {
	ct, err := r.DB.Exec(ctx, `UPDATE `+r.table+` SET name=$2, description=$3, updated_at=NOW() WHERE id=$1`,
		id, strings.TrimSpace(name), strings.TrimSpace(description))
	if err != nil {
		return Label{}, mapPgErr(err, ErrInUse)
	}
	if ct.RowsAffected() == 0 {
		return Label{}, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *LabelRepo) SetListed(ctx context.Context, id string, listed bool) error {
	ct, err := r.DB.Exec(ctx, `UPDATE `+r.table+` SET listed=$2, updated_at=NOW() WHERE id=$1`, id, listed)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete fails with ErrInUse while products still reference the label.
func (r *LabelRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM `+r.table+` WHERE id=$1`, id)
	if err != nil {
		return mapPgErr(err, ErrInUse)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
