package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/reseller_portal/internal/models"
)

// GroupRepo provides data access methods for the customer_groups table.
type GroupRepo struct {
	db *sqlx.DB
}

// NewGroupRepo creates a new GroupRepo.
func NewGroupRepo(db *sqlx.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

const groupColumns = `id, partner_id, name, members, delivery_method, delivery_time, created_at, updated_at`

// List returns all groups of a partner ordered by name.
func (r *GroupRepo) List(ctx context.Context, partnerID int) ([]models.Group, error) {
	groups := []models.Group{}
	query := `SELECT ` + groupColumns + ` FROM customer_groups WHERE partner_id = $1 ORDER BY name, created_at`
	if err := r.db.SelectContext(ctx, &groups, query, partnerID); err != nil {
		return nil, err
	}
	return groups, nil
}

// GetByIDs returns the partner's groups among ids. Unknown ids are skipped.
func (r *GroupRepo) GetByIDs(ctx context.Context, partnerID int, ids []string) ([]models.Group, error) {
	groups := []models.Group{}
	if len(ids) == 0 {
		return groups, nil
	}
	query := `SELECT ` + groupColumns + ` FROM customer_groups WHERE partner_id = $1 AND id::text = ANY($2) ORDER BY name`
	if err := r.db.SelectContext(ctx, &groups, query, partnerID, pq.Array(ids)); err != nil {
		return nil, err
	}
	return groups, nil
}

// Get returns one group or sql.ErrNoRows.
func (r *GroupRepo) Get(ctx context.Context, partnerID int, id string) (*models.Group, error) {
	var g models.Group
	query := `SELECT ` + groupColumns + ` FROM customer_groups WHERE partner_id = $1 AND id::text = $2`
	if err := r.db.GetContext(ctx, &g, query, partnerID, id); err != nil {
		return nil, err
	}
	return &g, nil
}

// Create inserts g. The caller assigns the id.
func (r *GroupRepo) Create(ctx context.Context, g *models.Group) error {
	query := `INSERT INTO customer_groups (id, partner_id, name, members, delivery_method, delivery_time)
              VALUES (:id, :partner_id, :name, :members, :delivery_method, :delivery_time)
              RETURNING created_at, updated_at`
	rows, err := r.db.NamedQueryContext(ctx, query, g)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&g.CreatedAt, &g.UpdatedAt)
	}
	return rows.Err()
}

// Update overwrites the mutable fields of g.
func (r *GroupRepo) Update(ctx context.Context, g *models.Group) error {
	query := `UPDATE customer_groups
              SET name = $3, members = $4, delivery_method = $5, delivery_time = $6, updated_at = NOW()
              WHERE partner_id = $1 AND id::text = $2
              RETURNING updated_at`
	return r.db.QueryRowxContext(ctx, query, g.PartnerID, g.ID, g.Name, g.Members, g.DeliveryMethod, g.DeliveryTime).
		Scan(&g.UpdatedAt)
}

// Delete removes a group. Missing groups yield sql.ErrNoRows.
func (r *GroupRepo) Delete(ctx context.Context, partnerID int, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customer_groups WHERE partner_id = $1 AND id::text = $2`, partnerID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
