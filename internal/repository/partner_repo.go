package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/reseller_portal/internal/models"
)

// PartnerRepo provides data access methods for the partners table.
type PartnerRepo struct {
	db *sqlx.DB
}

// NewPartnerRepo creates a new PartnerRepo.
func NewPartnerRepo(db *sqlx.DB) *PartnerRepo {
	return &PartnerRepo{db: db}
}

const partnerColumns = `id, email, password_hash, name, is_active, created_at, updated_at`

// GetByEmail finds a partner by login email.
func (r *PartnerRepo) GetByEmail(ctx context.Context, email string) (*models.Partner, error) {
	var p models.Partner
	query := `SELECT ` + partnerColumns + ` FROM partners WHERE LOWER(email) = LOWER($1)`
	if err := r.db.GetContext(ctx, &p, query, email); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID finds a partner by id.
func (r *PartnerRepo) GetByID(ctx context.Context, id int) (*models.Partner, error) {
	var p models.Partner
	query := `SELECT ` + partnerColumns + ` FROM partners WHERE id = $1`
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a partner and fills its generated fields.
func (r *PartnerRepo) Create(ctx context.Context, p *models.Partner) error {
	query := `INSERT INTO partners (email, password_hash, name, is_active)
              VALUES ($1, $2, $3, $4)
              RETURNING id, created_at, updated_at`
	return r.db.QueryRowxContext(ctx, query, p.Email, p.PasswordHash, p.Name, p.IsActive).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}
