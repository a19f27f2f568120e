package domain

import "errors"

var (
	// ErrDuplicateGUID is returned by the ledger when inserting a guid that is
	// already present. Callers treat it as a benign race and skip the entry.
	ErrDuplicateGUID = errors.New("ledger: duplicate guid")

	// ErrNotFound is returned when marking a guid that is not in the ledger.
	ErrNotFound = errors.New("ledger: guid not found")
)
