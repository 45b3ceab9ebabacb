// Package cmd wires the decoder into the asciidecoder command line.
package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

const progName = "asciidecoder"

const usageText = progName + " [-v] [-C DIR] [FILE]"

func init() {
	// "-v" is taken by --verbose
	cli.VersionFlag = &cli.BoolFlag{
		Name:               "version",
		Usage:              "print the version",
		DisableDefaultText: true,
	}
}

// AppVersion is stamped into the binary at build time.
type AppVersion struct {
	Version string
	Extra   string
}

// NewMainApp builds the command line application.
func NewMainApp(appVer AppVersion) *cli.App {
	app := cli.NewApp()
	app.Name = progName // must be lower-cased because it appears in the "USAGE" section
	app.Usage = "Recover the files embedded in AsciiCoder.DecodeFiles archives"
	app.UsageText = usageText
	app.Description = `Reads FILE, or standard input, skips everything up to the archive marker
and writes every file listed in the archive. Existing files with the same
name are overwritten.`
	app.Version = appVer.Version + appVer.Extra
	app.HideHelpCommand = true
	// directory names may contain commas
	app.DisableSliceFlagSeparator = true
	app.Flags = decodeFlags()
	app.Action = runDecode
	app.OnUsageError = func(c *cli.Context, err error, _ bool) error {
		_, _ = fmt.Fprintf(c.App.ErrWriter, "%s: %v\n", progName, err)
		return usageError(c)
	}
	return app
}

// RunMainApp runs app and makes sure every failure ends with exit status 1.
func RunMainApp(app *cli.App, args ...string) error {
	err := app.Run(args)
	if err == nil {
		return nil
	}
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		// already reported and exited by cli.HandleExitCoder
		return err
	}
	if !strings.HasPrefix(err.Error(), "flag provided but not defined:") {
		_, _ = fmt.Fprintf(app.ErrWriter, "%s: %v\n", progName, err)
	}
	cli.OsExiter(1)
	return err
}
