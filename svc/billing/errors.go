package billing

import "errors"

var (
	ErrMissingUserOrEmail = errors.New("missing userId or email")
	ErrMissingCustomerID  = errors.New("missing customerId")
)
