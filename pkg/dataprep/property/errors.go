package property

import "github.com/pkg/errors"

var (
	// ErrUnresolvable is returned when a chain no longer leads to a value.
	ErrUnresolvable = errors.New("property chain is unresolvable")
	// ErrKindMismatch is returned when a chain resolves to a value of another kind.
	ErrKindMismatch = errors.New("property kind mismatch")
	ErrInvalidChain = errors.New("invalid property chain")
)
