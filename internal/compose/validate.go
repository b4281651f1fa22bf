package compose

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/GTDGit/reseller_portal/internal/models"
)

// MinPhoneLength is the length of a full number including the +998 prefix.
const MinPhoneLength = 13

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}
	v.RegisterStructValidation(customerRules, models.Customer{})
	return v
}

// customerRules holds the rules that depend on more than one field.
func customerRules(sl validator.StructLevel) {
	c := sl.Current().Interface().(models.Customer)

	switch c.DeliveryMethod {
	case models.DeliverySMS:
		phone := strings.TrimSpace(c.Phone)
		if phone == models.DefaultPhonePrefix || len(phone) < MinPhoneLength {
			sl.ReportError(c.Phone, "phone", "Phone", "phone", "")
		}
	case models.DeliveryEmail:
		email := strings.TrimSpace(c.Email)
		if email == "" {
			sl.ReportError(c.Email, "email", "Email", "required", "")
		} else if sl.Validator().Var(email, "email") != nil {
			sl.ReportError(c.Email, "email", "Email", "email", "")
		}
	}

	if c.IsScheduled() {
		if strings.TrimSpace(c.ScheduleDate) == "" {
			sl.ReportError(c.ScheduleDate, "scheduleDate", "ScheduleDate", "required", "")
		}
		if strings.TrimSpace(c.ScheduleTime) == "" {
			sl.ReportError(c.ScheduleTime, "scheduleTime", "ScheduleTime", "required", "")
		}
	}
}

var messages = map[string]string{
	"fullName.notblank":     "Full name is required",
	"deliveryMethod.oneof":  "Unknown delivery method",
	"deliveryTime.oneof":    "Unknown delivery time",
	"phone.phone":           "Enter a full phone number",
	"email.required":        "Email is required",
	"email.email":           "Enter a valid email address",
	"scheduleDate.required": "Schedule date is required",
	"scheduleTime.required": "Schedule time is required",
}

// validateCustomer returns field → message for every broken rule, or nil.
func validateCustomer(c models.Customer) map[string]string {
	c.Errors = nil
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		msg, ok := messages[field+"."+fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		out[field] = msg
	}
	return out
}
