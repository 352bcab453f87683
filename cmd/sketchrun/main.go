// Command sketchrun runs Lua sketches: scripts that define setup and draw
// functions and paint with a small immediate-mode drawing API.
//
//	sketchrun run sketch.lua
//	sketchrun run --headless --frames 60 --snapshot out.png sketch.lua
//	sketchrun validate run.yaml
package main

// Version is the current version of sketchrun.
// This default value can be overridden at build time using:
//
//	go build -ldflags "-X main.Version=x.y.z"
var Version = "0.1.0-dev"

func main() {
	Execute()
}
