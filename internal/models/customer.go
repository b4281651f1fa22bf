package models

// DeliveryMethod is the channel eSIM credentials are delivered through.
type DeliveryMethod string

const (
	DeliverySMS      DeliveryMethod = "sms"
	DeliveryEmail    DeliveryMethod = "email"
	DeliveryOperator DeliveryMethod = "operator"
)

// DeliveryTime says whether delivery happens immediately or at a scheduled moment.
type DeliveryTime string

const (
	DeliveryNow       DeliveryTime = "now"
	DeliveryScheduled DeliveryTime = "scheduled"
)

// Valid reports whether m is a known delivery method.
func (m DeliveryMethod) Valid() bool {
	switch m {
	case DeliverySMS, DeliveryEmail, DeliveryOperator:
		return true
	}
	return false
}

// Valid reports whether t is a known delivery time.
func (t DeliveryTime) Valid() bool {
	return t == DeliveryNow || t == DeliveryScheduled
}

// DefaultPhonePrefix is the value a fresh customer entry starts with.
const DefaultPhonePrefix = "+998"

// Customer is a single recipient inside an order composition or a group.
type Customer struct {
	ID             string            `json:"id"`
	FullName       string            `json:"fullName" validate:"notblank"`
	DeliveryMethod DeliveryMethod    `json:"deliveryMethod" validate:"oneof=sms email operator"`
	DeliveryTime   DeliveryTime      `json:"deliveryTime" validate:"oneof=now scheduled"`
	Phone          string            `json:"phone"`
	Email          string            `json:"email"`
	ScheduleDate   string            `json:"scheduleDate,omitempty"`
	ScheduleTime   string            `json:"scheduleTime,omitempty"`
	Errors         map[string]string `json:"errors,omitempty"`
}

// IsScheduled reports whether the customer needs a schedule date and time.
// Operator delivery is always handed over in person and ignores scheduling.
func (c *Customer) IsScheduled() bool {
	return c.DeliveryTime == DeliveryScheduled && c.DeliveryMethod != DeliveryOperator
}
