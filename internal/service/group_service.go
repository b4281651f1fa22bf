package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/GTDGit/reseller_portal/internal/models"
	"github.com/GTDGit/reseller_portal/internal/repository"
	"github.com/GTDGit/reseller_portal/internal/utils"
)

// GroupService manages a partner's customer groups.
type GroupService struct {
	groupRepo repository.GroupRepository
}

// NewGroupService constructs a GroupService.
func NewGroupService(groupRepo repository.GroupRepository) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

// GroupRequest represents the request to create a group.
type GroupRequest struct {
	Name           string                `json:"name" binding:"required"`
	Members        []models.Customer     `json:"members"`
	DeliveryMethod models.DeliveryMethod `json:"deliveryMethod" binding:"omitempty,oneof=sms email operator"`
	DeliveryTime   models.DeliveryTime   `json:"deliveryTime" binding:"omitempty,oneof=now scheduled"`
}

// List returns the partner's groups.
func (s *GroupService) List(ctx context.Context, partnerID int) ([]models.Group, error) {
	return s.groupRepo.List(ctx, partnerID)
}

// Get returns one group.
func (s *GroupService) Get(ctx context.Context, partnerID int, id string) (*models.Group, error) {
	g, err := s.groupRepo.Get(ctx, partnerID, id)
	if err != nil {
		return nil, notFound(err, utils.ErrGroupNotFound)
	}
	return g, nil
}

// Create stores a new group. Missing delivery settings default to SMS now.
func (s *GroupService) Create(ctx context.Context, partnerID int, req *GroupRequest) (*models.Group, error) {
	g := &models.Group{
		ID:             uuid.NewString(),
		PartnerID:      partnerID,
		Name:           strings.TrimSpace(req.Name),
		Members:        normalizeMembers(req.Members),
		DeliveryMethod: req.DeliveryMethod,
		DeliveryTime:   req.DeliveryTime,
	}
	if g.DeliveryMethod == "" {
		g.DeliveryMethod = models.DeliverySMS
	}
	if g.DeliveryTime == "" {
		g.DeliveryTime = models.DeliveryNow
	}
	if err := validateGroup(g); err != nil {
		return nil, err
	}
	if err := s.groupRepo.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Update applies a partial update. The result must satisfy the same rules as
// a newly created group.
func (s *GroupService) Update(ctx context.Context, partnerID int, id string, patch *models.GroupPatch) (*models.Group, error) {
	g, err := s.Get(ctx, partnerID, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(g)
	g.Name = strings.TrimSpace(g.Name)
	g.Members = normalizeMembers(g.Members)
	if err := validateGroup(g); err != nil {
		return nil, err
	}
	if err := s.groupRepo.Update(ctx, g); err != nil {
		return nil, notFound(err, utils.ErrGroupNotFound)
	}
	return g, nil
}

// Delete removes a group.
func (s *GroupService) Delete(ctx context.Context, partnerID int, id string) error {
	return notFound(s.groupRepo.Delete(ctx, partnerID, id), utils.ErrGroupNotFound)
}

func validateGroup(g *models.Group) error {
	switch {
	case g.Name == "":
		return fmt.Errorf("%w: name is required", utils.ErrInvalidGroup)
	case !g.DeliveryMethod.Valid():
		return fmt.Errorf("%w: unknown delivery method %q", utils.ErrInvalidGroup, g.DeliveryMethod)
	case !g.DeliveryTime.Valid():
		return fmt.Errorf("%w: unknown delivery time %q", utils.ErrInvalidGroup, g.DeliveryTime)
	}
	return nil
}

func normalizeMembers(in []models.Customer) models.Members {
	out := make(models.Members, 0, len(in))
	for _, c := range in {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		c.FullName = strings.TrimSpace(c.FullName)
		c.Errors = nil
		out = append(out, c)
	}
	return out
}

// notFound maps sql.ErrNoRows to sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}
