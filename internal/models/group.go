package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Members is the JSONB-backed list of customers stored with a group.
type Members []Customer

// Value implements driver.Valuer.
func (m Members) Value() (driver.Value, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *Members) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Members{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("members: unsupported scan type")
	}
}

// Group is a named set of end customers a partner can order for collectively.
type Group struct {
	ID             string         `db:"id" json:"id"`
	PartnerID      int            `db:"partner_id" json:"-"`
	Name           string         `db:"name" json:"name"`
	Members        Members        `db:"members" json:"members"`
	DeliveryMethod DeliveryMethod `db:"delivery_method" json:"deliveryMethod"`
	DeliveryTime   DeliveryTime   `db:"delivery_time" json:"deliveryTime"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`
}

// GroupPatch carries a partial group update; nil fields are left untouched.
type GroupPatch struct {
	Name           *string         `json:"name"`
	Members        *Members        `json:"members"`
	DeliveryMethod *DeliveryMethod `json:"deliveryMethod" binding:"omitempty,oneof=sms email operator"`
	DeliveryTime   *DeliveryTime   `json:"deliveryTime" binding:"omitempty,oneof=now scheduled"`
}

// Apply copies the non-nil patch fields onto g.
func (p *GroupPatch) Apply(g *Group) {
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.Members != nil {
		g.Members = *p.Members
	}
	if p.DeliveryMethod != nil {
		g.DeliveryMethod = *p.DeliveryMethod
	}
	if p.DeliveryTime != nil {
		g.DeliveryTime = *p.DeliveryTime
	}
}
