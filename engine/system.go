package engine

// System is anything the Scheduler advances once per frame. FreeFall and
// Sequencer implement it by ticking with frame.Now and, when the frame
// carries a Surface, drawing themselves onto it.
type System interface {
	Execute(frame *UpdateFrame)
}
