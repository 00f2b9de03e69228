package rules

import "errors"

var (
	ErrNotFound  = errors.New("rule not found")
	ErrDuplicate = errors.New("rule id already exists")
)
