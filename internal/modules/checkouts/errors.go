package checkouts

import "errors"

var (
	ErrNotFound         = errors.New("checkout not found")
	ErrCartEmpty        = errors.New("checkout has no items")
	ErrMissingDepositID = errors.New("missing deposit id")
)
