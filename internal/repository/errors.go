// Package repository provides MySQL persistence for the entities this
// service owns (invoices, their line items, and the locally mirrored
// schedule rows maintained by the linkage consumer). Sentinel errors let
// callers distinguish absence from infrastructure failure without inspecting
// driver errors.
package repository

import "errors"

// ErrInvoiceNotFound is returned when an invoice id resolves to no row.
var ErrInvoiceNotFound = errors.New("invoice not found")

// ErrScheduleNotFound is returned when a seat-slot addressed by its natural
// key (movie, date, time, seat) does not exist.
var ErrScheduleNotFound = errors.New("schedule not found")
