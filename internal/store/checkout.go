package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const DefaultProvider = "internal-ledger"

type Repo struct{ DB *pgxpool.Pool }

type PlaceOrderInput struct {
	UserID    string
	ProductID string
	Qty       int    // 0 = default 1
	Provider  string // kosong = DefaultProvider
	Reference string // kosong = disintesis dari order id + timestamp

	// SimulateFailure memaksa abort setelah semua write, utk membuktikan
	// rollback. Sengaja tetap reachable di runtime (kontrak QA dari versi
	// aslinya).
	SimulateFailure bool
}

type Receipt struct {
	Order   Order
	Payment Payment
}

// PlaceOrderTx: place order sebagai satu unit of work atomik.
// Urutan dalam 1 transaksi: lock row produk (FOR UPDATE) -> cek stok ->
// insert order -> decrement relatif stok -> insert payment CAPTURED.
// Gagal di langkah mana pun = tidak ada write yang persist.
func (r *Repo) PlaceOrderTx(ctx context.Context, in PlaceOrderInput) (*Receipt, error) {
	qty := in.Qty
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, ErrInvalidQty
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// 1) baca stok + harga dengan row lock, supaya cek & decrement tidak
	// balapan dengan checkout lain utk produk yang sama
	var stock int
	var priceText string
	err = tx.QueryRow(ctx,
		`SELECT stock, price::text FROM products WHERE id=$1 FOR UPDATE`,
		in.ProductID).Scan(&stock, &priceText)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	// 2) cek kecukupan stok sebelum decrement
	if stock < qty {
		return nil, &InsufficientStockError{
			ProductID: in.ProductID, Required: qty, Available: stock,
		}
	}

	// 3) total = price * qty, aritmetika fixed-point (jangan float)
	price, err := decimal.NewFromString(priceText)
	if err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}
	total := price.Mul(decimal.NewFromInt(int64(qty)))

	// 4) insert order PLACED
	orderID := uuid.NewString()
	var orderCreated time.Time
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(id, user_id, product_id, qty, total, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		orderID, in.UserID, in.ProductID, qty, total.StringFixed(2), OrderPlaced,
	).Scan(&orderCreated)
	if err != nil {
		return nil, err
	}

	// 5) decrement relatif, bukan tulis nilai absolut
	ct, err := tx.Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = now() WHERE id=$1`,
		in.ProductID, qty)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() != 1 {
		return nil, ErrProductNotFound
	}

	// 6) insert payment CAPTURED, amount = total
	provider := in.Provider
	if provider == "" {
		provider = DefaultProvider
	}
	ref := in.Reference
	if ref == "" {
		ref = synthesizeReference(orderID)
	}
	paymentID := uuid.NewString()
	var payCreated time.Time
	err = tx.QueryRow(ctx, `
		INSERT INTO payments(id, order_id, amount, provider, reference, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		paymentID, orderID, total.StringFixed(2), provider, ref, PaymentCaptured,
	).Scan(&payCreated)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrInvalidReference
		}
		return nil, err
	}

	// 7) jalur uji rollback: semua write di atas sudah dilakukan, lalu abort
	if in.SimulateFailure {
		return nil, ErrRollbackTest
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &Receipt{
		Order: Order{
			ID: orderID, UserID: in.UserID, ProductID: in.ProductID,
			Qty: qty, Total: total, Status: OrderPlaced, CreatedAt: orderCreated,
		},
		Payment: Payment{
			ID: paymentID, OrderID: orderID, Amount: total,
			Provider: provider, Reference: ref, Status: PaymentCaptured,
			CreatedAt: payCreated,
		},
	}, nil
}

// synthesizeReference: prefix order id + token dari nanosecond clock.
// UNIQUE constraint di kolom reference jadi pagar terakhir.
func synthesizeReference(orderID string) string {
	return fmt.Sprintf("PAY-%s-%x", orderID[:8], time.Now().UnixNano())
}
