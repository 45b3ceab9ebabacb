package main

import (
	"os"

	"asciidecoder/cmd"
)

// Version holds the current version, set at build time with
// -ldflags "-X main.Version=..."
var Version = "development"

func main() {
	app := cmd.NewMainApp(cmd.AppVersion{Version: Version})
	_ = cmd.RunMainApp(app, os.Args...)
}
