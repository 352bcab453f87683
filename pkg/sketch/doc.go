// Package sketch runs creative-coding sketches.
//
// A [Sketch] has two methods: Setup, called once, and Draw, called once
// per frame. Both receive a [Frame], the immediate-mode drawing API bound
// to the engine's canvas state for the duration of the call:
//
//	s := sketch.Funcs{
//		SetupFunc: func(f *sketch.Frame) error {
//			return f.Background(canvas.Black)
//		},
//		DrawFunc: func(f *sketch.Frame) error {
//			f.Translate(200, 200)
//			f.Rotate(float64(f.FrameCount()) * 0.01)
//			return f.Rect(-50, -50, 100, 100)
//		},
//	}
//
//	eng, err := sketch.New(backend, sketch.DefaultOptions())
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := eng.Run(ctx, s); err != nil {
//		log.Fatal(err)
//	}
//
// # Frame Loop
//
// Each tick the engine checks for a stop request, clears the command
// queue, calls Draw, flushes the queued commands to the [Backend] and
// presents them, then sleeps until the frame interval has elapsed. A
// frame that overruns its interval is followed immediately by the next
// one; missed frames are never replayed.
//
// # Stopping
//
// The run ends when [Engine.Stop] or [Frame.Halt] is called, the
// [Host] reports a close request, the context is cancelled, or
// Options.MaxFrames frames have been drawn. The frame in progress always
// completes its flush first.
//
// # Errors
//
// Bad arguments to drawing calls are recovered: the call returns an
// error, nothing is drawn and a [Diagnostic] is recorded. Lifecycle
// failures end the run and are returned from Run as [*SetupError],
// [*DrawError] or [*BackendError].
package sketch
