// pkg/abi/constants.go
package abi

import "fmt"

// API is an Android platform API level
type API int

const (
	// DefaultMinAPI is the lowest API level current NDK toolchains can
	// compile for. Requests below this are clamped or rejected by the
	// resolver, never passed through.
	DefaultMinAPI API = 21

	// MaxKnownAPI is the highest API level this catalog knows about.
	// Updated only by a new release, never computed.
	MaxKnownAPI API = 35
)

// Valid checks the API level against the catalog's known range
func (v API) Valid() bool {
	return v >= DefaultMinAPI && v <= MaxKnownAPI
}

// String returns the decimal representation of the API level
func (v API) String() string {
	return fmt.Sprintf("%d", int(v))
}
