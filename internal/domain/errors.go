package domain

import "errors"

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrPrinterNotFound      = errors.New("printer not found")
	ErrInvalidID            = errors.New("invalid id")
	ErrInvalidTicketKind    = errors.New("invalid ticket kind")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrClaimConflict        = errors.New("items already claimed by a concurrent ticket")
	ErrTicketNumberConflict = errors.New("ticket number already exists")
)
