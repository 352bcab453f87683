// Package canvas holds the immediate-mode drawing state of a sketch.
//
// A State tracks the canvas size, the current style (fill, stroke, stroke
// weight, rect mode) and the transform stack. Primitive methods such as
// Line and Rect resolve their arguments against the current transform and
// style and return a Command whose geometry is already in device space.
// Commands are plain values; a Recorder queues them until the frame is
// flushed to a backend.
//
// The package performs no rasterization and no locking. A State belongs to
// exactly one goroutine.
package canvas
