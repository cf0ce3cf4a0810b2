package engine

import "time"

type UpdateFrame struct {
	// Now is the elapsed time since the scheduler started.
	Now       time.Duration
	DeltaTime time.Duration
	// Surface is nil when the host only advances state.
	Surface  Surface
	Commands *Commands
}

func newUpdateFrame(now, dt time.Duration, surface Surface) *UpdateFrame {
	return &UpdateFrame{
		Now:       now,
		DeltaTime: dt,
		Surface:   surface,
		Commands:  newCommands(),
	}
}
