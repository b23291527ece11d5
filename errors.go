// errors.go
package droidkit

import (
	"fmt"

	"github.com/arc-language/droidkit/pkg/abi"
)

// ErrUnsupportedAbi indicates an ABI identifier outside the supported set
var ErrUnsupportedAbi = abi.ErrUnsupportedAbi

// Error wraps an error with additional context
type Error struct {
	Op  string // Operation that failed
	Abi string // ABI identifier if applicable
	Err error  // Underlying error
}

func (e *Error) Error() string {
	if e.Abi != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Abi, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
