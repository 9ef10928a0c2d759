package orbital

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedOperation is returned for operation names outside the allow-list.
	ErrUnsupportedOperation = errors.New("orbital: unsupported operation")

	// ErrLockContention is returned when another switch holds the switch lock.
	// Nothing was changed; the caller may retry later.
	ErrLockContention = errors.New("orbital: switch already in progress")

	// ErrCorruptOrbit means the stored orbit pointer is neither "0" nor "1".
	// This is a configuration problem (foreign writer, shared prefix) and is never coerced.
	ErrCorruptOrbit = errors.New("orbital: corrupt orbit pointer")

	// ErrInvalidOrbit is returned when a caller passes an orbit other than 0 or 1.
	ErrInvalidOrbit = errors.New("orbital: orbit must be 0 or 1")

	// ErrComputeRequired is returned by Remember, RememberForever and Sear without a compute func.
	ErrComputeRequired = errors.New("orbital: compute func is required")

	ErrStoreRequired       = errors.New("orbital: store is required")
	ErrCodecRequired       = errors.New("orbital: codec is required")
	ErrCoordinatorRequired = errors.New("orbital: coordinator is required")
)

// Switch stages reported in SwitchError.
const (
	StageAcquire = "acquire"
	StageRead    = "read"
	StageDrain   = "drain"
	StageFlip    = "flip"
)

// SwitchError reports where a switch failed. The pointer is unchanged for every
// stage; the lock has been released (or release was attempted and logged).
type SwitchError struct {
	Stage string
	From  Orbit // valid for stages after "read"
	Err   error
}

func (e *SwitchError) Error() string {
	switch e.Stage {
	case StageAcquire, StageRead:
		return fmt.Sprintf("orbital: switch %s: %v", e.Stage, e.Err)
	default:
		return fmt.Sprintf("orbital: switch from orbit %s %s: %v", e.From, e.Stage, e.Err)
	}
}

func (e *SwitchError) Unwrap() error { return e.Err }
