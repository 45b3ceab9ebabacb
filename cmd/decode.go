package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"asciidecoder/pkg/agcp"
	"asciidecoder/pkg/archive"
	"asciidecoder/pkg/logging"
	"asciidecoder/pkg/progress"
	"asciidecoder/pkg/sink"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func decodeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "print file names as they are processed",
			EnvVars: []string{"ASCIIDECODER_VERBOSE"},
		},
		&cli.StringSliceFlag{
			Name:    "directory",
			Aliases: []string{"C"},
			Usage:   "write files below `DIR`, creating it if needed",
			EnvVars: []string{"ASCIIDECODER_DIRECTORY"},
		},
		&cli.StringFlag{
			Name:  "repack",
			Usage: "store the recovered files in the AGCP archive `FILE` instead",
		},
		&cli.StringFlag{
			Name:  "method",
			Value: agcp.MethodLZ4.String(),
			Usage: "compression for --repack: lz4 or zstd",
		},
	}
}

func usageError(c *cli.Context) error {
	_, _ = fmt.Fprintf(c.App.ErrWriter, "Usage: %s\n", usageText)
	return cli.Exit("", 1)
}

// storage is the sink chosen on the command line.
type storage interface {
	archive.Sink
	Close() error
}

// aborter is implemented by storage that must be discarded when the run
// fails, such as a half-built repack archive.
type aborter interface {
	Abort() error
}

func openStorage(c *cli.Context, dir, input string, tracker *progress.Tracker) (storage, error) {
	if c.IsSet("repack") {
		method, err := agcp.ParseMethod(c.String("method"))
		if err != nil {
			return nil, err
		}
		output := c.String("repack")
		if dir != "" && !filepath.IsAbs(output) {
			output = filepath.Join(dir, output)
		}
		w, err := agcp.Create(output, method, rootName(input))
		if err != nil {
			return nil, fmt.Errorf("can't create archive '%s': %w", output, err)
		}
		w.Tracker = tracker
		return w, nil
	}

	d := &sink.Dir{}
	if dir != "" {
		var err error
		if d, err = sink.OpenDir(dir); err != nil {
			return nil, fmt.Errorf("can't change to directory '%s': %w", dir, err)
		}
	}
	d.Tracker = tracker
	return d, nil
}

// rootName names a repacked archive after its input file.
func rootName(input string) string {
	if input == "" {
		return ""
	}
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func runDecode(c *cli.Context) error {
	logger := logging.New(progName, c.App.ErrWriter, logrus.InfoLevel)

	if c.Args().Len() > 1 {
		return usageError(c)
	}
	dirs := c.StringSlice("directory")
	if len(dirs) > 1 {
		return usageError(c)
	}
	if c.IsSet("method") && !c.IsSet("repack") {
		return usageError(c)
	}
	var dir string
	if len(dirs) == 1 {
		dir = dirs[0]
	}

	var in io.Reader = c.App.Reader
	input := c.Args().First()
	if input != "" && input != "-" {
		f, err := os.Open(input)
		if err != nil {
			logger.WithError(err).Errorf("can't open '%s'", input)
			return cli.Exit("", 1)
		}
		defer f.Close()
		in = f
	} else {
		input = ""
	}

	tracker := progress.New()
	store, err := openStorage(c, dir, input, tracker)
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit("", 1)
	}

	verbose := c.Bool("verbose")
	report, err := archive.Extract(in, archive.Options{
		Sink:     store,
		Logger:   logger,
		Progress: tracker,
		OnEntry: func(name string) {
			if verbose {
				_, _ = fmt.Fprintln(c.App.Writer, name)
			}
		},
	})
	if a, ok := store.(aborter); ok && err != nil {
		if aerr := a.Abort(); aerr != nil {
			logger.WithError(aerr).Error("can't remove incomplete archive")
		}
	} else if cerr := store.Close(); cerr != nil {
		logger.WithError(cerr).Error("can't finish archive")
		if err == nil {
			return cli.Exit("", 1)
		}
	}
	if err != nil {
		var entryErr *archive.EntryError
		if errors.As(err, &entryErr) {
			logger.Error(entryErr.Error())
		} else {
			logger.Error(err.Error())
		}
		return cli.Exit("", 1)
	}

	if verbose {
		tracker.Report(c.App.Writer)
	}
	logger.WithField("failed", len(report.Failed)).Debug("done")
	return nil
}
