package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	domain "github.com/LakLN/Book-Garden-Server-v2/internal/entity"
	"github.com/LakLN/Book-Garden-Server-v2/internal/usecase"
)

// MySQLCatalogRepo covers the collaborator entities the engine touches:
// users, addresses, books and cart items.
type MySQLCatalogRepo struct{ db *DB }

func NewMySQLCatalogRepo(db *DB) *MySQLCatalogRepo { return &MySQLCatalogRepo{db: db} }

// --- users ---

func (r *MySQLCatalogRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.exec(ctx).QueryRowContext(ctx, `
SELECT id,full_name,email,avatar,role FROM users WHERE id=?`, id)
	var u domain.User
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Avatar, &u.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.exec(ctx).QueryContext(ctx, `
SELECT address_id FROM user_addresses WHERE user_id=?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var aid string
		if err := rows.Scan(&aid); err != nil {
			return nil, err
		}
		u.AddressIDs = append(u.AddressIDs, aid)
	}
	return &u, rows.Err()
}

// AttachAddress links an address to a user; INSERT IGNORE makes re-linking a
// no-op.
func (r *MySQLCatalogRepo) AttachAddress(ctx context.Context, userID, addressID string) error {
	_, err := r.db.exec(ctx).ExecContext(ctx, `
INSERT IGNORE INTO user_addresses (user_id,address_id) VALUES (?,?)`, userID, addressID)
	return err
}

var _ usecase.UserRepo = (*MySQLCatalogRepo)(nil)

// --- addresses ---

type MySQLAddressRepo struct{ db *DB }

func NewMySQLAddressRepo(db *DB) *MySQLAddressRepo { return &MySQLAddressRepo{db: db} }

func (r *MySQLAddressRepo) FindExact(ctx context.Context, name, phone, address string) (*domain.Address, error) {
	row := r.db.exec(ctx).QueryRowContext(ctx, `
SELECT id,name,phone,address FROM addresses WHERE name=? AND phone=? AND address=?`, name, phone, address)
	var a domain.Address
	if err := row.Scan(&a.ID, &a.Name, &a.Phone, &a.Address); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *MySQLAddressRepo) Create(ctx context.Context, a *domain.Address) error {
	_, err := r.db.exec(ctx).ExecContext(ctx, `
INSERT INTO addresses (id,name,phone,address) VALUES (?,?,?,?)`, a.ID, a.Name, a.Phone, a.Address)
	return err
}

func (r *MySQLAddressRepo) GetByID(ctx context.Context, id string) (*domain.Address, error) {
	row := r.db.exec(ctx).QueryRowContext(ctx, `
SELECT id,name,phone,address FROM addresses WHERE id=?`, id)
	var a domain.Address
	if err := row.Scan(&a.ID, &a.Name, &a.Phone, &a.Address); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

var _ usecase.AddressRepo = (*MySQLAddressRepo)(nil)

// --- books ---

type MySQLBookRepo struct{ db *DB }

func NewMySQLBookRepo(db *DB) *MySQLBookRepo { return &MySQLBookRepo{db: db} }

func (r *MySQLBookRepo) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	row := r.db.exec(ctx).QueryRowContext(ctx, `
SELECT id,title,stock,sold_quantity FROM books WHERE id=?`, id)
	var b domain.Book
	if err := row.Scan(&b.ID, &b.Title, &b.Stock, &b.SoldQuantity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// AdjustStock has no floor: stock may go negative on oversell.
func (r *MySQLBookRepo) AdjustStock(ctx context.Context, id string, qty int) error {
	res, err := r.db.exec(ctx).ExecContext(ctx, `
UPDATE books SET stock = stock - ?, sold_quantity = sold_quantity + ? WHERE id = ?`, qty, qty, id)
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

var _ usecase.BookRepo = (*MySQLBookRepo)(nil)

// --- cart items ---

type MySQLCartRepo struct{ db *DB }

func NewMySQLCartRepo(db *DB) *MySQLCartRepo { return &MySQLCartRepo{db: db} }

func (r *MySQLCartRepo) ListByIDs(ctx context.Context, ids []string) ([]domain.CartItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id,user_id,book_id,quantity FROM cart_items WHERE id IN (?` +
		strings.Repeat(",?", len(ids)-1) + `)`
	rows, err := r.db.exec(ctx).QueryContext(ctx, query, toAny(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CartItem
	for rows.Next() {
		var ci domain.CartItem
		if err := rows.Scan(&ci.ID, &ci.UserID, &ci.BookID, &ci.Quantity); err != nil {
			return nil, err
		}
		out = append(out, ci)
	}
	return out, rows.Err()
}

func (r *MySQLCartRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM cart_items WHERE id IN (?` + strings.Repeat(",?", len(ids)-1) + `)`
	_, err := r.db.exec(ctx).ExecContext(ctx, query, toAny(ids)...)
	return err
}

var _ usecase.CartRepo = (*MySQLCartRepo)(nil)

// --- order items ---

type MySQLOrderItemRepo struct{ db *DB }

func NewMySQLOrderItemRepo(db *DB) *MySQLOrderItemRepo { return &MySQLOrderItemRepo{db: db} }

// Create relies on the auto-increment seq column to preserve insertion order
// within an order.
func (r *MySQLOrderItemRepo) Create(ctx context.Context, item *domain.OrderItem) error {
	_, err := r.db.exec(ctx).ExecContext(ctx, `
INSERT INTO order_items (id,order_id,book_id,quantity)
VALUES (?,?,?,?)
`, item.ID, item.OrderID, item.BookID, item.Quantity)
	return err
}

func (r *MySQLOrderItemRepo) ListByOrder(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.db.exec(ctx).QueryContext(ctx, `
SELECT id,order_id,book_id,quantity FROM order_items WHERE order_id=? ORDER BY seq`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.BookID, &item.Quantity); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

var _ usecase.OrderItemRepo = (*MySQLOrderItemRepo)(nil)

func toAny(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
