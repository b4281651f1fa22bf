package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/reseller_portal/internal/models"
)

// OrderRepo provides data access methods for the orders table.
type OrderRepo struct {
	db *sqlx.DB
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *sqlx.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

const orderColumns = `id, order_no, partner_id, plan_id, package_code, destination, mode, recipients, group_ids,
        quantity, currency, exchange_rate, unit_price, package_total, partner_discount, partner_profit,
        total_payment, status, supplier_order_no, failed_reason, created_at, updated_at`

// List returns a page of the partner's orders, newest first, and the total count.
func (r *OrderRepo) List(ctx context.Context, partnerID int, f OrderFilter) ([]models.Order, int, error) {
	where := `WHERE partner_id = $1`
	args := []any{partnerID}
	if f.Status != "" {
		where += ` AND status = $2`
		args = append(args, f.Status)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM orders `+where, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset())

	orders := []models.Order{}
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Get returns one of the partner's orders or sql.ErrNoRows.
func (r *OrderRepo) Get(ctx context.Context, partnerID int, id string) (*models.Order, error) {
	var o models.Order
	query := `SELECT ` + orderColumns + ` FROM orders WHERE partner_id = $1 AND id::text = $2`
	if err := r.db.GetContext(ctx, &o, query, partnerID, id); err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserts o. The caller assigns id and order number.
func (r *OrderRepo) Create(ctx context.Context, o *models.Order) error {
	query := `INSERT INTO orders (id, order_no, partner_id, plan_id, package_code, destination, mode, recipients,
              group_ids, quantity, currency, exchange_rate, unit_price, package_total, partner_discount,
              partner_profit, total_payment, status, supplier_order_no, failed_reason)
              VALUES (:id, :order_no, :partner_id, :plan_id, :package_code, :destination, :mode, :recipients,
              :group_ids, :quantity, :currency, :exchange_rate, :unit_price, :package_total, :partner_discount,
              :partner_profit, :total_payment, :status, :supplier_order_no, :failed_reason)
              RETURNING created_at, updated_at`
	rows, err := r.db.NamedQueryContext(ctx, query, o)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&o.CreatedAt, &o.UpdatedAt)
	}
	return rows.Err()
}

// UpdateStatus persists status, supplier reference and failure reason.
func (r *OrderRepo) UpdateStatus(ctx context.Context, o *models.Order) error {
	query := `UPDATE orders SET status = $2, supplier_order_no = $3, failed_reason = $4, updated_at = NOW()
              WHERE id::text = $1 RETURNING updated_at`
	return r.db.QueryRowxContext(ctx, query, o.ID, o.Status, o.SupplierOrderNo, o.FailedReason).
		Scan(&o.UpdatedAt)
}

// ListByStatus returns orders in status created after since, oldest first.
func (r *OrderRepo) ListByStatus(ctx context.Context, status models.OrderStatus, since time.Time, limit int) ([]models.Order, error) {
	orders := []models.Order{}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = $1 AND created_at >= $2 ORDER BY created_at LIMIT $3`
	if err := r.db.SelectContext(ctx, &orders, query, status, since, limit); err != nil {
		return nil, err
	}
	return orders, nil
}

// NextOrderNo returns an id like ORD-YYYYMMDD-NNNNNN using the Tashkent date.
func (r *OrderRepo) NextOrderNo(ctx context.Context) (string, error) {
	const seqQ = `
        SELECT COALESCE(MAX(
            CAST(SUBSTRING(order_no FROM 14) AS INT)
        ), 0) + 1
        FROM orders
        WHERE order_no LIKE 'ORD-' || TO_CHAR(NOW() AT TIME ZONE 'Asia/Tashkent', 'YYYYMMDD') || '-%'`

	var next int
	if err := r.db.GetContext(ctx, &next, seqQ); err != nil {
		return "", err
	}

	// Date comes from the DB to avoid TZ mismatches.
	const dateQ = `SELECT TO_CHAR(NOW() AT TIME ZONE 'Asia/Tashkent', 'YYYYMMDD')`
	var ymd string
	if err := r.db.GetContext(ctx, &ymd, dateQ); err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%s-%06d", ymd, next), nil
}
