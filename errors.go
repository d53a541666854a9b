package binpool

import (
	"errors"
	"fmt"
)

// Contract violations. Pool operations panic with a *ContractError wrapping one
// of these when a precondition or internal invariant does not hold.
var (
	ErrNotSetUp            = errors.New("pool is not set up")
	ErrAlreadySetUp        = errors.New("pool is already set up")
	ErrClosed              = errors.New("pool is closed")
	ErrInvalidBins         = errors.New("invalid bin configuration")
	ErrBackend             = errors.New("backend allocation failed")
	ErrShortAllocation     = errors.New("backend returned a region of the wrong size")
	ErrLayout              = errors.New("slot layout is inconsistent")
	ErrSlotOutOfRange      = errors.New("slot id is out of range")
	ErrOwnerMismatch       = errors.New("buffer belongs to another pool")
	ErrSlotNotAllocated    = errors.New("slot is not allocated")
	ErrDataMismatch        = errors.New("buffer data does not match slot memory")
	ErrSizeExceedsCapacity = errors.New("buffer size exceeds slot capacity")
)

// ContractError is the panic value of a fatal pool contract violation.
type ContractError struct {
	Op  string // Operation that detected the violation.
	Err error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("binpool: %s: %v", e.Op, e.Err)
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

// fatal logs the violation and panics with a *ContractError.
func (p *Pool) fatal(op string, err error) {
	p.logger.Error(
		"Pool contract violation. The operation cannot proceed",
		"manager", p.managerID,
		"op", op,
		"error", err,
	)
	panic(&ContractError{Op: op, Err: err})
}
