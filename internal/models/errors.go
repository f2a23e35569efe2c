package models

import "errors"

var (
	ErrInvalidSymbol      = errors.New("invalid symbol")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrInvalidTimestamp   = errors.New("invalid timestamp")
	ErrInvalidBar         = errors.New("invalid bar (high < low)")
	ErrInvalidVolume      = errors.New("invalid volume")
	ErrOutOfOrderBar      = errors.New("bar timestamp not after last bar")
	ErrDuplicateTimestamp = errors.New("duplicate bar timestamp")
)
