package installer

import "time"

// State identifies a phase of the install sequence.
type State string

// States of an install session, in order of progression. Failed is reachable
// from every non-terminal state.
const (
	StateIdle               State = "idle"
	StateResolvingImage     State = "resolving-image"
	StateRestartingDevice   State = "restarting-device"
	StateAwaitingBootloader State = "awaiting-bootloader"
	StateMounting           State = "mounting"
	StateCopying            State = "copying"
	StateAwaitingReboot     State = "awaiting-reboot"
	StateDone               State = "done"
	StateFailed             State = "failed"
)

// Progress is a snapshot of an install session, passed to the configured
// ProgressCallback on every state transition and during the image copy.
type Progress struct {
	// State is the session's current state
	State State

	// Elapsed is the time since the session started
	Elapsed time.Duration

	// BytesWritten and TotalBytes describe the image copy; they are zero
	// outside StateCopying
	BytesWritten int64
	TotalBytes   int64
}

// ProgressCallback receives session progress. Implementations should return
// quickly to avoid stalling the install.
type ProgressCallback func(Progress)
