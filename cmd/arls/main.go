// Command arls lists the members of an ar archive.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	ar "github.com/please-build/arscan"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI are the cli parameters for arls
type CLI struct {
	Archive string           `arg:"" name:"archive" help:"Path to the ar archive." type:"existingfile"`
	Stream  bool             `short:"s" help:"Seek through the archive instead of loading it into memory."`
	Human   bool             `short:"H" help:"Print member sizes in human-readable units."`
	Verbose bool             `short:"v" optional:"" help:"Verbose logging."`
	Version kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run lists the archive named in args and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	var cli CLI
	exited := false
	parser, err := kong.New(&cli,
		kong.Name("arls"),
		kong.Description("List the members of an ar archive"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) { exited = true }),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date),
		},
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	// --help and --version exit before the archive argument is validated.
	_, err = parser.Parse(args)
	if exited {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	logLevel := slog.LevelError
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	if err := list(cli, stdout, logger); err != nil {
		var ferr *ar.FormatError
		if errors.As(err, &ferr) {
			logger.Debug("malformed archive", "kind", ferr.Kind, "field", ferr.Field)
		}
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func list(cli CLI, w io.Writer, logger *slog.Logger) error {
	var it *ar.Iterator
	if cli.Stream {
		f, err := os.Open(cli.Archive)
		if err != nil {
			return errors.Wrap(err, "opening archive failed")
		}
		defer f.Close()
		if it, err = ar.NewStreamIterator(f, ar.WithLogger(logger)); err != nil {
			return errors.Wrap(err, cli.Archive)
		}
	} else {
		b, err := os.ReadFile(cli.Archive)
		if err != nil {
			return errors.Wrap(err, "reading archive failed")
		}
		if it, err = ar.NewIterator(b, ar.WithLogger(logger)); err != nil {
			return errors.Wrap(err, cli.Archive)
		}
	}

	for hdr, err := range it.All() {
		if err != nil {
			return errors.Wrap(err, cli.Archive)
		}
		fmt.Fprintln(w, formatHeader(hdr, cli.Human))
	}
	return nil
}

// formatHeader renders a header the way "ar tv" does.
func formatHeader(hdr *ar.Header, human bool) string {
	mode := "?---------"
	if m, err := hdr.FileMode(); err == nil {
		mode = m.String()
	}
	size := fmt.Sprintf("%8d", hdr.Size)
	if human {
		size = fmt.Sprintf("%8s", humanize.IBytes(uint64(hdr.Size)))
	}
	return fmt.Sprintf("%s %d/%d %s %s %s",
		mode, hdr.Uid, hdr.Gid, size, hdr.Modified().UTC().Format("Jan _2 15:04 2006"), hdr.Name)
}
