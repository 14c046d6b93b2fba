package model

import "errors"

// Sentinel validation errors for domain models.
var (
	ErrInvalidSkill = errors.New("invalid skill rating")
	ErrMissingID    = errors.New("missing id")
	ErrMissingName  = errors.New("missing name")
)
