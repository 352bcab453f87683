package main

import (
	"fmt"
	"io"
	"time"

	"github.com/muesli/termenv"
	"github.com/opd-ai/go-sketch/pkg/sketch"
)

// writeSummary prints a short report of the finished run.
func writeSummary(w io.Writer, st sketch.Status, m sketch.MetricsSnapshot, snapshot string) {
	out := termenv.NewOutput(w)
	label := func(s string) termenv.Style { return out.String(fmt.Sprintf("%-12s", s)).Bold() }

	fmt.Fprintf(w, "%s %s (%dx%d)\n", label("sketch"), st.Title, st.Width, st.Height)
	fmt.Fprintf(w, "%s %d at %.4g fps target\n", label("frames"), m.Frames, st.FrameRate)
	fmt.Fprintf(w, "%s %d\n", label("commands"), m.Commands)
	fmt.Fprintf(w, "%s draw %s, flush %s\n", label("avg"), m.DrawAvg.Round(time.Microsecond), m.FlushAvg.Round(time.Microsecond))
	if m.Overruns > 0 {
		fmt.Fprintf(w, "%s %s\n", label("overruns"), out.String(fmt.Sprint(m.Overruns)).Foreground(termenv.ANSIYellow))
	}
	if m.Diagnostics > 0 {
		fmt.Fprintf(w, "%s %s\n", label("diagnostics"), out.String(fmt.Sprint(m.Diagnostics)).Foreground(termenv.ANSIYellow))
	}
	if snapshot != "" {
		fmt.Fprintf(w, "%s %s\n", label("snapshot"), snapshot)
	}
	if st.LastError != nil {
		fmt.Fprintf(w, "%s %s\n", label("error"), out.String(st.LastError.Error()).Foreground(termenv.ANSIRed))
	}
}
