package perps

import "errors"

var (
	ErrInsufficientMargin = errors.New("insufficient margin")
	ErrInvalidLeverage    = errors.New("invalid leverage")
	ErrOracleStale        = errors.New("oracle sample stale")
	ErrUnknownPosition    = errors.New("position not found")
)
