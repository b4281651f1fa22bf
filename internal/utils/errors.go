package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken          = errors.New("INVALID_TOKEN")
	ErrInvalidCredentials    = errors.New("INVALID_CREDENTIALS")
	ErrPartnerInactive       = errors.New("PARTNER_INACTIVE")
	ErrAuthTimeout           = errors.New("AUTH_TIMEOUT")
	ErrPlanNotFound          = errors.New("PLAN_NOT_FOUND")
	ErrGroupNotFound         = errors.New("GROUP_NOT_FOUND")
	ErrOrderNotFound         = errors.New("ORDER_NOT_FOUND")
	ErrOrderActionNotAllowed = errors.New("ORDER_ACTION_NOT_ALLOWED")
	ErrInvalidCurrency       = errors.New("INVALID_CURRENCY")
	ErrInvalidGroup          = errors.New("INVALID_GROUP")
	ErrProvider              = errors.New("PROVIDER_ERROR")
)
