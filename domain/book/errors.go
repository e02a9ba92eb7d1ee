package book

import "errors"

var (
	ErrInvalidOrder     = errors.New("invalid order")
	ErrDuplicateOrderID = errors.New("order id already resting")
	ErrUnknownOrder     = errors.New("order not found")
)
