// Command lipsync-client converts Italian text to viseme timelines locally.
package main

import (
	"fmt"
	"os"

	"github.com/book-expert/lipsync-service/internal/lipsync"
	"github.com/book-expert/lipsync-service/internal/timeline"
	"github.com/book-expert/logger"
	"github.com/spf13/cobra"
)

const logFileName = "lipsync-client.log"

// Flag names.
const (
	flagFormat     = "format"
	flagMsPerUnit  = "ms-per-unit"
	flagPadSilence = "pad-silence"
	flagLogDir     = "log-dir"
	flagFile       = "file"
	flagOutput     = "output"
	flagRaw        = "raw"
)

// app carries the state shared by all commands.
type app struct {
	format     string
	msPerUnit  float64
	padSilence bool
	logDir     string

	engine *lipsync.Engine
	log    *logger.Logger
}

func newRootCmd(state *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lipsync-client",
		Short: "Convert Italian text into viseme timelines",
		Long: `Convert Italian text into lip-sync viseme timelines.

The text is normalized (numbers and symbols are spelled out), scanned with
the Italian pronunciation rules and scaled into a millisecond timeline.

Examples:
  lipsync-client convert "Ciao, come stai?"
  lipsync-client convert --file pagina.txt --output out/ --format msgpack
  lipsync-client rules C`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return state.init()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&state.format, flagFormat, string(timeline.FormatJSON), "timeline format: json or msgpack")
	flags.Float64Var(&state.msPerUnit, flagMsPerUnit, timeline.DefaultMsPerUnit, "milliseconds per duration unit")
	flags.BoolVar(&state.padSilence, flagPadSilence, false, "add silence before and after the visemes")
	flags.StringVar(&state.logDir, flagLogDir, os.TempDir(), "directory for the client log file")

	rootCmd.AddCommand(newConvertCmd(state), newRulesCmd(state))

	return rootCmd
}

func (a *app) init() error {
	log, err := logger.New(a.logDir, logFileName)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Assigned first so close releases the file even when setup fails later.
	a.log = log

	engine, err := lipsync.NewEngine(lipsync.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to build viseme engine: %w", err)
	}

	a.engine = engine

	return nil
}

func (a *app) close() error {
	if a.log == nil {
		return nil
	}

	err := a.log.Close()
	a.log = nil

	if err != nil {
		return fmt.Errorf("failed to close logger: %w", err)
	}

	return nil
}

func (a *app) timelineOptions() timeline.Options {
	return timeline.Options{
		MsPerUnit:    a.msPerUnit,
		PadSilence:   a.padSilence,
		SilenceUnits: timeline.DefaultSilenceUnits,
	}
}

func main() {
	os.Exit(run())
}

// run executes the client and returns the process exit code. The logger is
// closed here because cobra skips post-run hooks when a command fails.
func run() int {
	state := &app{}

	defer func() {
		closeErr := state.close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", closeErr)
		}
	}()

	err := newRootCmd(state).Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		return 1
	}

	return 0
}
