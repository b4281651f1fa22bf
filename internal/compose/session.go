// Package compose holds the in-memory state of an order being composed and
// gates its confirmation.
package compose

import (
	"errors"

	"github.com/google/uuid"

	"github.com/GTDGit/reseller_portal/internal/models"
)

var (
	ErrUnknownMode            = errors.New("unknown order mode")
	ErrCustomerNotFound       = errors.New("customer not found")
	ErrValidationFailed       = errors.New("order validation failed")
	ErrGroupSelectionRequired = errors.New("select at least one group")
)

// SelfNotice is shown instead of a form when ordering for oneself.
const SelfNotice = "The eSIM will be issued to your partner account and shown in the order details."

// CustomerPatch is a partial customer update; nil fields are untouched.
type CustomerPatch struct {
	FullName       *string                `json:"fullName"`
	DeliveryMethod *models.DeliveryMethod `json:"deliveryMethod"`
	DeliveryTime   *models.DeliveryTime   `json:"deliveryTime"`
	Phone          *string                `json:"phone"`
	Email          *string                `json:"email"`
	ScheduleDate   *string                `json:"scheduleDate"`
	ScheduleTime   *string                `json:"scheduleTime"`
}

// Result is the outcome of Validate.
type Result struct {
	Valid           bool                         `json:"valid"`
	OpenGroupPicker bool                         `json:"openGroupPicker,omitempty"`
	Notice          string                       `json:"notice,omitempty"`
	FormError       string                       `json:"formError,omitempty"`
	Errors          map[string]map[string]string `json:"errors,omitempty"`
}

// Draft is a validated composition ready to be priced and placed.
type Draft struct {
	Mode      models.OrderMode
	Customers []models.Customer
	GroupIDs  []string
}

// Session is the composition state of one order. It is not safe for
// concurrent use.
type Session struct {
	mode      models.OrderMode
	customers []models.Customer
	groupIDs  []string
}

// NewSession starts a composition in self mode.
func NewSession() *Session {
	return &Session{mode: models.ModeSelf}
}

// Restore rebuilds a session from a submitted composition. Customers without
// an id get one.
func Restore(mode models.OrderMode, customers []models.Customer, groupIDs []string) (*Session, error) {
	s := NewSession()
	if err := s.SetMode(mode); err != nil {
		return nil, err
	}
	for _, c := range customers {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		c.Errors = nil
		s.customers = append(s.customers, c)
	}
	for _, id := range groupIDs {
		s.SelectGroup(id)
	}
	return s, nil
}

// NewCustomer returns an entry with the form defaults.
func NewCustomer() models.Customer {
	return models.Customer{
		ID:             uuid.NewString(),
		DeliveryMethod: models.DeliverySMS,
		DeliveryTime:   models.DeliveryNow,
		Phone:          models.DefaultPhonePrefix,
	}
}

func (s *Session) Mode() models.OrderMode { return s.mode }

// SetMode switches the recipient mode. Validation errors never survive a switch.
func (s *Session) SetMode(mode models.OrderMode) error {
	switch mode {
	case models.ModeSelf, models.ModeCustomer, models.ModeGroup:
	default:
		return ErrUnknownMode
	}
	s.mode = mode
	for i := range s.customers {
		s.customers[i].Errors = nil
	}
	return nil
}

// AddCustomer appends a default entry and returns it.
func (s *Session) AddCustomer() models.Customer {
	c := NewCustomer()
	s.customers = append(s.customers, c)
	return c
}

// Customers returns a copy of the current entries.
func (s *Session) Customers() []models.Customer {
	out := make([]models.Customer, len(s.customers))
	copy(out, s.customers)
	return out
}

// UpdateCustomer applies patch to the entry with id and drops the errors of
// the fields it touched.
func (s *Session) UpdateCustomer(id string, patch CustomerPatch) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrCustomerNotFound
	}
	c := &s.customers[i]

	set := func(field string, dst *string, v *string) {
		if v == nil {
			return
		}
		*dst = *v
		delete(c.Errors, field)
	}
	set("fullName", &c.FullName, patch.FullName)
	set("phone", &c.Phone, patch.Phone)
	set("email", &c.Email, patch.Email)
	set("scheduleDate", &c.ScheduleDate, patch.ScheduleDate)
	set("scheduleTime", &c.ScheduleTime, patch.ScheduleTime)
	if patch.DeliveryMethod != nil {
		c.DeliveryMethod = *patch.DeliveryMethod
		delete(c.Errors, "deliveryMethod")
	}
	if patch.DeliveryTime != nil {
		c.DeliveryTime = *patch.DeliveryTime
		delete(c.Errors, "deliveryTime")
	}
	if len(c.Errors) == 0 {
		c.Errors = nil
	}
	return nil
}

// RemoveCustomer deletes the entry with id.
func (s *Session) RemoveCustomer(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrCustomerNotFound
	}
	s.customers = append(s.customers[:i], s.customers[i+1:]...)
	return nil
}

// SelectGroup adds a group reference; selecting twice is a no-op.
func (s *Session) SelectGroup(id string) {
	for _, g := range s.groupIDs {
		if g == id {
			return
		}
	}
	s.groupIDs = append(s.groupIDs, id)
}

// DeselectGroup drops a group reference.
func (s *Session) DeselectGroup(id string) {
	for i, g := range s.groupIDs {
		if g == id {
			s.groupIDs = append(s.groupIDs[:i], s.groupIDs[i+1:]...)
			return
		}
	}
}

// SelectedGroups returns a copy of the selected group ids.
func (s *Session) SelectedGroups() []string {
	out := make([]string, len(s.groupIDs))
	copy(out, s.groupIDs)
	return out
}

// Validate runs the rules of the current mode and records field errors on
// the affected customers. Entered data is never discarded.
func (s *Session) Validate() Result {
	switch s.mode {
	case models.ModeCustomer:
		return s.validateCustomers()
	case models.ModeGroup:
		if len(s.groupIDs) == 0 {
			return Result{OpenGroupPicker: true, FormError: ErrGroupSelectionRequired.Error()}
		}
		return Result{Valid: true}
	default:
		return Result{Valid: true, Notice: SelfNotice}
	}
}

func (s *Session) validateCustomers() Result {
	if len(s.customers) == 0 {
		return Result{FormError: "add at least one customer"}
	}

	res := Result{Valid: true}
	for i := range s.customers {
		errs := validateCustomer(s.customers[i])
		s.customers[i].Errors = errs
		if errs == nil {
			continue
		}
		res.Valid = false
		if res.Errors == nil {
			res.Errors = make(map[string]map[string]string)
		}
		res.Errors[s.customers[i].ID] = errs
	}
	return res
}

// Confirm validates and, on success, returns the draft to place.
func (s *Session) Confirm() (*Draft, Result, error) {
	res := s.Validate()
	if res.OpenGroupPicker {
		return nil, res, ErrGroupSelectionRequired
	}
	if !res.Valid {
		return nil, res, ErrValidationFailed
	}

	d := &Draft{Mode: s.mode}
	switch s.mode {
	case models.ModeCustomer:
		d.Customers = s.Customers()
	case models.ModeGroup:
		d.GroupIDs = s.SelectedGroups()
	}
	return d, res, nil
}

// CustomerCount is the logical number of recipients. groups resolves the
// selected ids; unknown ids count as empty. The result may be zero.
func (s *Session) CustomerCount(groups []models.Group) int {
	switch s.mode {
	case models.ModeCustomer:
		return len(s.customers)
	case models.ModeGroup:
		byID := make(map[string]int, len(groups))
		for _, g := range groups {
			byID[g.ID] = len(g.Members)
		}
		n := 0
		for _, id := range s.groupIDs {
			n += byID[id]
		}
		return n
	default:
		return 1
	}
}

func (s *Session) indexOf(id string) int {
	for i := range s.customers {
		if s.customers[i].ID == id {
			return i
		}
	}
	return -1
}
