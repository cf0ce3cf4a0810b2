package engine

import "fmt"

type EventKind uint8

const (
	EventSpawn EventKind = iota + 1
	EventLand
	EventRowsCleared
	EventOverflowReset
	EventBatchLanded
	EventPatternDone
)

func (k EventKind) String() string {
	switch k {
	case EventSpawn:
		return "spawn"
	case EventLand:
		return "land"
	case EventRowsCleared:
		return "rows_cleared"
	case EventOverflowReset:
		return "overflow_reset"
	case EventBatchLanded:
		return "batch_landed"
	case EventPatternDone:
		return "pattern_done"
	default:
		return fmt.Sprintf("event(%d)", uint8(k))
	}
}

// Event describes a state transition. Shape is set for free-fall piece events,
// X/Y carry the unit's offsets and Rows the number of cleared rows or landed
// cells.
type Event struct {
	Kind  EventKind
	Shape string
	X, Y  int
	Rows  int
}

// Listener receives events synchronously from inside Tick. It must not call
// back into the simulator.
type Listener func(Event)
