package session

import "errors"

var (
	// ErrNotBalanced rejects a commit whose statement and calculated
	// balances differ by the tolerance or more.
	ErrNotBalanced = errors.New("reconciliation is not in balance")

	// ErrNoActiveAccount is returned when an operation needs an activated
	// account session and none exists.
	ErrNoActiveAccount = errors.New("no active account")

	// ErrBusy is returned when a matching or import operation is requested
	// while another one is still running for the session.
	ErrBusy = errors.New("another matching or import operation is in progress")

	// ErrCommitInFlight rejects mutations while a commit is being processed.
	ErrCommitInFlight = errors.New("commit in progress")

	// ErrUnknownEntry is returned when a selection references a register
	// entry that is not in the currently loaded register.
	ErrUnknownEntry = errors.New("unknown register entry")

	// ErrUnknownField is returned for an edit against a draft field that
	// does not exist.
	ErrUnknownField = errors.New("unknown draft field")
)
