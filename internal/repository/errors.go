package repository

import "errors"

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrUnknownTask        = errors.New("unknown task")
	ErrWithdrawalNotFound = errors.New("withdrawal not found")
)
