package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/LakLN/Book-Garden-Server-v2/internal/entity"
	"github.com/LakLN/Book-Garden-Server-v2/internal/usecase"
)

type MySQLOrderRepo struct{ db *DB }

func NewMySQLOrderRepo(db *DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

const orderColumns = `id,user_id,address_id,status,payment_method,payment_status,order_date,payment_date`

func (r *MySQLOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	_, err := r.db.exec(ctx).ExecContext(ctx, `
INSERT INTO orders (id,user_id,address_id,status,payment_method,payment_status,order_date,payment_date,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,NULL,NOW(),NOW())
`, o.ID, o.UserID, o.AddressID, o.Status, o.PaymentMethod, o.PaymentStatus, o.OrderDate)
	return err
}

func (r *MySQLOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.exec(ctx).QueryRowContext(ctx, `
SELECT `+orderColumns+` FROM orders WHERE id=?`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItemIDs(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *MySQLOrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id=? ORDER BY order_date DESC`, userID)
}

func (r *MySQLOrderRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY order_date DESC`)
}

func (r *MySQLOrderRepo) ListByUserPage(ctx context.Context, userID string, page, size int) ([]domain.Order, int64, error) {
	orders, err := r.list(ctx, `
SELECT `+orderColumns+` FROM orders WHERE user_id=? ORDER BY order_date DESC LIMIT ? OFFSET ?`,
		userID, size, page*size)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx, `SELECT COUNT(*) FROM orders WHERE user_id=?`, userID)
	return orders, total, err
}

func (r *MySQLOrderRepo) ListAllPage(ctx context.Context, page, size int) ([]domain.Order, int64, error) {
	orders, err := r.list(ctx, `
SELECT `+orderColumns+` FROM orders ORDER BY order_date DESC LIMIT ? OFFSET ?`, size, page*size)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx, `SELECT COUNT(*) FROM orders`)
	return orders, total, err
}

func (r *MySQLOrderRepo) UpdateStatusIf(ctx context.Context, id string, from, to domain.Status) (bool, error) {
	res, err := r.db.exec(ctx).ExecContext(ctx, `
        UPDATE orders
        SET status = ?, updated_at = NOW()
        WHERE id = ? AND status = ?`,
		to, id, from,
	)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	// rows == 0 → nothing matched (either not found or status mismatch)
	return rows > 0, nil
}

func (r *MySQLOrderRepo) UpdateStatus(ctx context.Context, id string, to domain.Status) error {
	res, err := r.db.exec(ctx).ExecContext(ctx, `
        UPDATE orders
        SET status = ?, updated_at = NOW()
        WHERE id = ?`,
		to, id,
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPaid flips payment_status to PAID; COALESCE keeps the first payment
// date on duplicate callbacks.
func (r *MySQLOrderRepo) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	res, err := r.db.exec(ctx).ExecContext(ctx, `
        UPDATE orders
        SET payment_status = ?, payment_date = COALESCE(payment_date, ?), updated_at = NOW()
        WHERE id = ?`,
		domain.PaymentPaid, paidAt, id,
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MySQLOrderRepo) ListUnpaidOnline(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, `
SELECT `+orderColumns+` FROM orders WHERE payment_method=? AND payment_status=?`,
		domain.PaymentOnline, domain.PaymentNotPaid)
}

func (r *MySQLOrderRepo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE status=?`, status)
}

func (r *MySQLOrderRepo) TopCustomers(ctx context.Context, limit int) ([]usecase.CustomerOrderCount, error) {
	rows, err := r.db.exec(ctx).QueryContext(ctx, `
SELECT user_id, COUNT(*) AS order_count
FROM orders
GROUP BY user_id
ORDER BY order_count DESC, user_id
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []usecase.CustomerOrderCount
	for rows.Next() {
		var row usecase.CustomerOrderCount
		if err := rows.Scan(&row.UserID, &row.OrderCount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *MySQLOrderRepo) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.exec(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadItemIDs(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *MySQLOrderRepo) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	err := r.db.exec(ctx).QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *MySQLOrderRepo) loadItemIDs(ctx context.Context, o *domain.Order) error {
	rows, err := r.db.exec(ctx).QueryContext(ctx, `
SELECT id FROM order_items WHERE order_id=? ORDER BY seq`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		o.ItemIDs = append(o.ItemIDs, id)
	}
	return rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanOrder(row scannable) (*domain.Order, error) {
	var (
		o      domain.Order
		paidAt sql.NullTime
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.AddressID, &o.Status, &o.PaymentMethod,
		&o.PaymentStatus, &o.OrderDate, &paidAt); err != nil {
		return nil, err
	}
	if paidAt.Valid {
		o.PaymentDate = paidAt.Time
	}
	return &o, nil
}

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)
