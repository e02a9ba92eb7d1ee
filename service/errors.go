package service

import "errors"

// ErrNoLiquidity is returned when a market-style order finds nothing
// to cross against.
var ErrNoLiquidity = errors.New("no liquidity on opposing side")
