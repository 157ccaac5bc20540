package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type CreateProductInput struct {
	SKU   string
	Name  string
	Stock int
	Price decimal.Decimal
}

var ErrDuplicateSKU = errors.New("sku already exists")

func (r *Repo) CreateProduct(ctx context.Context, in CreateProductInput) (*Product, error) {
	p := Product{
		ID:    uuid.NewString(),
		SKU:   in.SKU,
		Name:  in.Name,
		Stock: in.Stock,
		Price: in.Price,
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO products(id, sku, name, stock, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		p.ID, p.SKU, p.Name, p.Stock, p.Price.StringFixed(2),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateSKU
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, sku, name, stock, price::text, created_at, updated_at
		FROM products ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		var priceText string
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Stock, &priceText, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if p.Price, err = decimal.NewFromString(priceText); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	var priceText string
	err := r.DB.QueryRow(ctx, `
		SELECT id, sku, name, stock, price::text, created_at, updated_at
		FROM products WHERE id=$1`, id,
	).Scan(&p.ID, &p.SKU, &p.Name, &p.Stock, &priceText, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.Price, err = decimal.NewFromString(priceText); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOrder ambil order + payment-nya sekali jalan (payment one-to-one).
func (r *Repo) GetOrder(ctx context.Context, id string) (*Receipt, error) {
	var rc Receipt
	var totalText, amountText string
	err := r.DB.QueryRow(ctx, `
		SELECT o.id, o.user_id, o.product_id, o.qty, o.total::text, o.status, o.created_at,
		       p.id, p.order_id, p.amount::text, p.provider, p.reference, p.status, p.created_at
		FROM orders o
		JOIN payments p ON p.order_id = o.id
		WHERE o.id=$1`, id,
	).Scan(
		&rc.Order.ID, &rc.Order.UserID, &rc.Order.ProductID, &rc.Order.Qty,
		&totalText, &rc.Order.Status, &rc.Order.CreatedAt,
		&rc.Payment.ID, &rc.Payment.OrderID, &amountText, &rc.Payment.Provider,
		&rc.Payment.Reference, &rc.Payment.Status, &rc.Payment.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if rc.Order.Total, err = decimal.NewFromString(totalText); err != nil {
		return nil, err
	}
	if rc.Payment.Amount, err = decimal.NewFromString(amountText); err != nil {
		return nil, err
	}
	return &rc, nil
}
