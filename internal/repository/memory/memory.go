// Package memory implements the repository interfaces in process memory.
// It backs STORAGE_DRIVER=memory and service tests.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GTDGit/reseller_portal/internal/models"
	"github.com/GTDGit/reseller_portal/internal/repository"
	"github.com/GTDGit/reseller_portal/internal/utils"
)

var (
	_ repository.PartnerRepository = (*PartnerRepo)(nil)
	_ repository.GroupRepository   = (*GroupRepo)(nil)
	_ repository.OrderRepository   = (*OrderRepo)(nil)
)

// PartnerRepo is an in-memory PartnerRepository.
type PartnerRepo struct {
	mu       sync.RWMutex
	partners []models.Partner
}

// NewPartnerRepo creates an empty PartnerRepo.
func NewPartnerRepo() *PartnerRepo {
	return &PartnerRepo{}
}

func (r *PartnerRepo) GetByEmail(_ context.Context, email string) (*models.Partner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.partners {
		if strings.EqualFold(p.Email, email) {
			return &p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *PartnerRepo) GetByID(_ context.Context, id int) (*models.Partner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.partners {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *PartnerRepo) Create(_ context.Context, p *models.Partner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.partners {
		if strings.EqualFold(existing.Email, p.Email) {
			return fmt.Errorf("partner %s already exists", p.Email)
		}
	}
	now := time.Now()
	p.ID = len(r.partners) + 1
	p.CreatedAt, p.UpdatedAt = now, now
	r.partners = append(r.partners, *p)
	return nil
}

// GroupRepo is an in-memory GroupRepository.
type GroupRepo struct {
	mu     sync.RWMutex
	groups map[string]models.Group
}

// NewGroupRepo creates an empty GroupRepo.
func NewGroupRepo() *GroupRepo {
	return &GroupRepo{groups: make(map[string]models.Group)}
}

func (r *GroupRepo) List(_ context.Context, partnerID int) ([]models.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Group{}
	for _, g := range r.groups {
		if g.PartnerID == partnerID {
			out = append(out, cloneGroup(g))
		}
	}
	sortGroups(out)
	return out, nil
}

func (r *GroupRepo) GetByIDs(_ context.Context, partnerID int, ids []string) ([]models.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Group{}
	for _, id := range ids {
		if g, ok := r.groups[id]; ok && g.PartnerID == partnerID {
			out = append(out, cloneGroup(g))
		}
	}
	sortGroups(out)
	return out, nil
}

func (r *GroupRepo) Get(_ context.Context, partnerID int, id string) (*models.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[id]
	if !ok || g.PartnerID != partnerID {
		return nil, sql.ErrNoRows
	}
	g = cloneGroup(g)
	return &g, nil
}

func (r *GroupRepo) Create(_ context.Context, g *models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[g.ID]; ok {
		return fmt.Errorf("group %s already exists", g.ID)
	}
	now := time.Now()
	g.CreatedAt, g.UpdatedAt = now, now
	r.groups[g.ID] = cloneGroup(*g)
	return nil
}

func (r *GroupRepo) Update(_ context.Context, g *models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.groups[g.ID]
	if !ok || existing.PartnerID != g.PartnerID {
		return sql.ErrNoRows
	}
	g.CreatedAt = existing.CreatedAt
	g.UpdatedAt = time.Now()
	r.groups[g.ID] = cloneGroup(*g)
	return nil
}

func (r *GroupRepo) Delete(_ context.Context, partnerID int, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok || g.PartnerID != partnerID {
		return sql.ErrNoRows
	}
	delete(r.groups, id)
	return nil
}

func cloneGroup(g models.Group) models.Group {
	g.Members = append(models.Members{}, g.Members...)
	return g
}

func sortGroups(groups []models.Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Name != groups[j].Name {
			return groups[i].Name < groups[j].Name
		}
		return groups[i].CreatedAt.Before(groups[j].CreatedAt)
	})
}

// OrderRepo is an in-memory OrderRepository.
type OrderRepo struct {
	mu     sync.RWMutex
	orders []models.Order
	seq    map[string]int
	now    func() time.Time
}

// NewOrderRepo creates an empty OrderRepo.
func NewOrderRepo() *OrderRepo {
	return &OrderRepo{seq: make(map[string]int), now: time.Now}
}

func (r *OrderRepo) List(_ context.Context, partnerID int, f repository.OrderFilter) ([]models.Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := []models.Order{}
	for i := len(r.orders) - 1; i >= 0; i-- {
		o := r.orders[i]
		if o.PartnerID != partnerID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		matched = append(matched, o)
	}
	total := len(matched)
	start := f.Offset()
	if start >= total {
		return []models.Order{}, total, nil
	}
	end := total
	if f.Limit > 0 && f.Limit < end-start {
		end = start + f.Limit
	}
	return matched[start:end], total, nil
}

func (r *OrderRepo) Get(_ context.Context, partnerID int, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.ID == id && o.PartnerID == partnerID {
			return &o, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *OrderRepo) Create(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	o.CreatedAt, o.UpdatedAt = now, now
	r.orders = append(r.orders, *o)
	return nil
}

func (r *OrderRepo) UpdateStatus(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID == o.ID {
			r.orders[i].Status = o.Status
			r.orders[i].SupplierOrderNo = o.SupplierOrderNo
			r.orders[i].FailedReason = o.FailedReason
			r.orders[i].UpdatedAt = r.now()
			o.UpdatedAt = r.orders[i].UpdatedAt
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *OrderRepo) ListByStatus(_ context.Context, status models.OrderStatus, since time.Time, limit int) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Order{}
	for _, o := range r.orders {
		if o.Status == status && !o.CreatedAt.Before(since) {
			out = append(out, o)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *OrderRepo) NextOrderNo(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ymd := r.now().In(utils.Tashkent).Format("20060102")
	r.seq[ymd]++
	return fmt.Sprintf("ORD-%s-%06d", ymd, r.seq[ymd]), nil
}
