package canvas

// Recorder is an append-only command queue for one frame. Reset keeps the
// backing array so steady-state frames do not allocate.
type Recorder struct {
	cmds []Command
}

// NewRecorder returns a recorder with room for capacity commands.
func NewRecorder(capacity int) *Recorder {
	return &Recorder{cmds: make([]Command, 0, capacity)}
}

// Record appends c to the queue.
func (r *Recorder) Record(c Command) {
	r.cmds = append(r.cmds, c)
}

// Commands returns the queued commands in emission order. The slice is
// only valid until the next Reset.
func (r *Recorder) Commands() []Command {
	return r.cmds
}

// Len returns the number of queued commands.
func (r *Recorder) Len() int {
	return len(r.cmds)
}

// Reset empties the queue.
func (r *Recorder) Reset() {
	clear(r.cmds)
	r.cmds = r.cmds[:0]
}
