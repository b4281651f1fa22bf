package repository

import (
	"context"
	"math"
	"time"

	"github.com/GTDGit/reseller_portal/internal/models"
)

//go:generate mockgen -source=repository.go -destination=mocks/repository_mock.go -package=mocks

// PartnerRepository stores reseller accounts.
type PartnerRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.Partner, error)
	GetByID(ctx context.Context, id int) (*models.Partner, error)
	Create(ctx context.Context, p *models.Partner) error
}

// GroupRepository stores customer groups scoped to a partner. Lookups for
// a group owned by another partner behave as not found.
type GroupRepository interface {
	List(ctx context.Context, partnerID int) ([]models.Group, error)
	GetByIDs(ctx context.Context, partnerID int, ids []string) ([]models.Group, error)
	Get(ctx context.Context, partnerID int, id string) (*models.Group, error)
	Create(ctx context.Context, g *models.Group) error
	Update(ctx context.Context, g *models.Group) error
	Delete(ctx context.Context, partnerID int, id string) error
}

// OrderFilter narrows an order listing.
type OrderFilter struct {
	Status models.OrderStatus
	Page   int
	Limit  int
}

// Offset returns the row offset for the filter's page. Offsets that would
// overflow saturate at math.MaxInt, which every store treats as past the end.
func (f OrderFilter) Offset() int {
	if f.Page <= 1 || f.Limit <= 0 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.Limit {
		return math.MaxInt
	}
	return (f.Page - 1) * f.Limit
}

// OrderRepository stores placed orders.
type OrderRepository interface {
	List(ctx context.Context, partnerID int, f OrderFilter) ([]models.Order, int, error)
	Get(ctx context.Context, partnerID int, id string) (*models.Order, error)
	Create(ctx context.Context, o *models.Order) error
	UpdateStatus(ctx context.Context, o *models.Order) error
	ListByStatus(ctx context.Context, status models.OrderStatus, since time.Time, limit int) ([]models.Order, error)
	NextOrderNo(ctx context.Context) (string, error)
}
