package service

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrFieldLocked = errors.New("field is locked")
)
