package repository

import "github.com/hray3182/daybook/internal/apperr"

var (
	ErrLabelNotFound  = apperr.NotFound("label")
	ErrLabelNotOwned  = apperr.Forbidden("label belongs to another user")
	ErrUserNotFound   = apperr.NotFound("user")
	ErrEventNotFound  = apperr.NotFound("event")
	ErrSeriesNotFound = apperr.NotFound("recurring event")
)
