package compose

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/reseller_portal/internal/models"
)

func ptr[T any](v T) *T { return &v }

func validCustomer(s *Session) models.Customer {
	c := s.AddCustomer()
	_ = s.UpdateCustomer(c.ID, CustomerPatch{
		FullName: ptr("Aziza Karimova"),
		Phone:    ptr("+998901234567"),
	})
	return c
}

func TestSession_DefaultsToSelf(t *testing.T) {
	s := NewSession()
	assert.Equal(t, models.ModeSelf, s.Mode())

	res := s.Validate()
	assert.True(t, res.Valid)
	assert.Equal(t, SelfNotice, res.Notice)
	assert.Equal(t, 1, s.CustomerCount(nil))
}

func TestSession_NewCustomerDefaults(t *testing.T) {
	c := NewSession().AddCustomer()
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, models.DeliverySMS, c.DeliveryMethod)
	assert.Equal(t, models.DeliveryNow, c.DeliveryTime)
	assert.Equal(t, models.DefaultPhonePrefix, c.Phone)
}

func TestSession_DefaultPhoneBlocksConfirm(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.SetMode(models.ModeCustomer))
	c := s.AddCustomer()
	require.NoError(t, s.UpdateCustomer(c.ID, CustomerPatch{FullName: ptr("Aziza Karimova")}))

	draft, res, err := s.Confirm()
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Nil(t, draft)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors[c.ID], "phone")

	got := s.Customers()[0]
	assert.Equal(t, "Aziza Karimova", got.FullName, "entered data must be kept")
	assert.Equal(t, "+998", got.Phone)
	assert.Contains(t, got.Errors, "phone")
}

func TestSession_CustomerRules(t *testing.T) {
	tests := []struct {
		name       string
		patch      CustomerPatch
		wantFields []string
	}{
		{
			name:       "blank name",
			patch:      CustomerPatch{FullName: ptr("   "), Phone: ptr("+998901234567")},
			wantFields: []string{"fullName"},
		},
		{
			name:       "short phone",
			patch:      CustomerPatch{FullName: ptr("A"), Phone: ptr("+99890123")},
			wantFields: []string{"phone"},
		},
		{
			name: "email required",
			patch: CustomerPatch{
				FullName:       ptr("A"),
				DeliveryMethod: ptr(models.DeliveryEmail),
			},
			wantFields: []string{"email"},
		},
		{
			name: "email malformed",
			patch: CustomerPatch{
				FullName:       ptr("A"),
				DeliveryMethod: ptr(models.DeliveryEmail),
				Email:          ptr("not-an-email"),
			},
			wantFields: []string{"email"},
		},
		{
			name: "email ignores default phone",
			patch: CustomerPatch{
				FullName:       ptr("A"),
				DeliveryMethod: ptr(models.DeliveryEmail),
				Email:          ptr("a@example.com"),
			},
		},
		{
			name: "scheduled needs date and time",
			patch: CustomerPatch{
				FullName:     ptr("A"),
				Phone:        ptr("+998901234567"),
				DeliveryTime: ptr(models.DeliveryScheduled),
			},
			wantFields: []string{"scheduleDate", "scheduleTime"},
		},
		{
			name: "scheduled with date only",
			patch: CustomerPatch{
				FullName:     ptr("A"),
				Phone:        ptr("+998901234567"),
				DeliveryTime: ptr(models.DeliveryScheduled),
				ScheduleDate: ptr("2026-11-01"),
			},
			wantFields: []string{"scheduleTime"},
		},
		{
			name: "operator ignores schedule and phone",
			patch: CustomerPatch{
				FullName:       ptr("A"),
				DeliveryMethod: ptr(models.DeliveryOperator),
				DeliveryTime:   ptr(models.DeliveryScheduled),
			},
		},
		{
			name: "unknown method",
			patch: CustomerPatch{
				FullName:       ptr("A"),
				DeliveryMethod: ptr(models.DeliveryMethod("pigeon")),
			},
			wantFields: []string{"deliveryMethod"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession()
			require.NoError(t, s.SetMode(models.ModeCustomer))
			c := s.AddCustomer()
			require.NoError(t, s.UpdateCustomer(c.ID, tt.patch))

			res := s.Validate()
			if len(tt.wantFields) == 0 {
				assert.True(t, res.Valid, "unexpected errors: %v", res.Errors)
				return
			}
			assert.False(t, res.Valid)
			fields := make([]string, 0)
			for f := range res.Errors[c.ID] {
				fields = append(fields, f)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestSession_EmptyCustomerListIsInvalid(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.SetMode(models.ModeCustomer))

	res := s.Validate()
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.FormError)
}

func TestSession_GroupModeWithoutSelectionOpensPicker(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.SetMode(models.ModeCustomer))
	validCustomer(s)
	require.NoError(t, s.SetMode(models.ModeGroup))

	draft, res, err := s.Confirm()
	assert.ErrorIs(t, err, ErrGroupSelectionRequired)
	assert.Nil(t, draft)
	assert.True(t, res.OpenGroupPicker)

	s.SelectGroup("g1")
	draft, _, err = s.Confirm()
	require.NoError(t, err)
	assert.Equal(t, models.ModeGroup, draft.Mode)
	assert.Equal(t, []string{"g1"}, draft.GroupIDs)
	assert.Empty(t, draft.Customers)
}

func TestSession_SwitchingModeClearsErrors(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.SetMode(models.ModeCustomer))
	s.AddCustomer()
	assert.False(t, s.Validate().Valid)
	assert.NotEmpty(t, s.Customers()[0].Errors)

	require.NoError(t, s.SetMode(models.ModeGroup))
	assert.Empty(t, s.Customers()[0].Errors)

	require.NoError(t, s.SetMode(models.ModeCustomer))
	assert.Empty(t, s.Customers()[0].Errors)

	assert.ErrorIs(t, s.SetMode("everyone"), ErrUnknownMode)
}

func TestSession_PatchClearsTouchedFieldErrors(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.SetMode(models.ModeCustomer))
	c := s.AddCustomer()
	s.Validate()
	require.Contains(t, s.Customers()[0].Errors, "fullName")
	require.Contains(t, s.Customers()[0].Errors, "phone")

	require.NoError(t, s.UpdateCustomer(c.ID, CustomerPatch{Phone: ptr("+998901234567")}))
	errs := s.Customers()[0].Errors
	assert.NotContains(t, errs, "phone")
	assert.Contains(t, errs, "fullName")

	assert.ErrorIs(t, s.UpdateCustomer("missing", CustomerPatch{}), ErrCustomerNotFound)
}

func TestSession_RemoveCustomer(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.SetMode(models.ModeCustomer))
	a := validCustomer(s)
	b := validCustomer(s)

	require.NoError(t, s.RemoveCustomer(a.ID))
	assert.Len(t, s.Customers(), 1)
	assert.Equal(t, b.ID, s.Customers()[0].ID)
	assert.ErrorIs(t, s.RemoveCustomer(a.ID), ErrCustomerNotFound)
}

func TestSession_CustomerCount(t *testing.T) {
	groups := []models.Group{
		{ID: "g1", Members: models.Members{{ID: "m1"}, {ID: "m2"}}},
		{ID: "g2", Members: models.Members{{ID: "m3"}}},
		{ID: "empty"},
	}

	s := NewSession()
	require.NoError(t, s.SetMode(models.ModeGroup))
	assert.Equal(t, 0, s.CustomerCount(groups))

	s.SelectGroup("empty")
	assert.Equal(t, 0, s.CustomerCount(groups))

	s.SelectGroup("g1")
	s.SelectGroup("g2")
	s.SelectGroup("g1")
	assert.Equal(t, 3, s.CustomerCount(groups))

	s.DeselectGroup("g1")
	assert.Equal(t, 1, s.CustomerCount(groups))
	assert.Equal(t, []string{"empty", "g2"}, s.SelectedGroups())

	require.NoError(t, s.SetMode(models.ModeCustomer))
	validCustomer(s)
	validCustomer(s)
	assert.Equal(t, 2, s.CustomerCount(groups))
}

func TestRestore(t *testing.T) {
	s, err := Restore(models.ModeCustomer, []models.Customer{
		{FullName: "Jasur", DeliveryMethod: models.DeliverySMS, DeliveryTime: models.DeliveryNow,
			Phone: "+998901112233", Errors: map[string]string{"stale": "x"}},
	}, []string{"g1", "g1"})
	require.NoError(t, err)

	cs := s.Customers()
	require.Len(t, cs, 1)
	assert.NotEmpty(t, cs[0].ID)
	assert.Nil(t, cs[0].Errors)
	assert.Equal(t, []string{"g1"}, s.SelectedGroups())

	_, err = Restore("all", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestNewValidator_NotBlank(t *testing.T) {
	var v *validator.Validate
	require.NotPanics(t, func() { v = newValidator() })

	tests := []struct {
		value string
		ok    bool
	}{
		{value: "Aziza", ok: true},
		{value: " a ", ok: true},
		{value: "", ok: false},
		{value: " \t ", ok: false},
	}
	for _, tt := range tests {
		err := v.Var(tt.value, "notblank")
		if tt.ok {
			assert.NoError(t, err, "%q", tt.value)
		} else {
			assert.Error(t, err, "%q", tt.value)
		}
	}
}
