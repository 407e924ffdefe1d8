package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/book-expert/lipsync-service/internal/fsutil"
	"github.com/book-expert/lipsync-service/internal/lipsync"
	"github.com/book-expert/lipsync-service/internal/timeline"
	"github.com/spf13/cobra"
)

var (
	errNoInput   = errors.New("either a text argument or --file must be provided")
	errBothInput = errors.New("cannot specify both a text argument and --file")
)

const defaultOutputName = "timeline"

type convertOptions struct {
	file   string
	output string
	raw    bool
}

func newConvertCmd(state *app) *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert [text]",
		Short: "Convert text into a viseme timeline",
		Long: `Convert text into a viseme timeline.

Without --output the encoded timeline is written to standard output. With
--output it is written into that directory and a summary is printed.
--raw prints the unscaled visemes, start times and durations instead.

Examples:
  lipsync-client convert "Ciao"
  lipsync-client convert --raw "50%"
  lipsync-client convert --file capitolo.txt --output timelines/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, state, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.file, flagFile, "f", "", "text file to convert (.txt, .md, .text)")
	cmd.Flags().StringVarP(&opts.output, flagOutput, "o", "", "directory to write the timeline into")
	cmd.Flags().BoolVar(&opts.raw, flagRaw, false, "print the unscaled conversion result")

	return cmd
}

func runConvert(cmd *cobra.Command, state *app, opts *convertOptions, args []string) error {
	input, err := readInput(opts, args)
	if err != nil {
		return err
	}

	format, err := timeline.ParseFormat(state.format)
	if err != nil {
		return err
	}

	result := state.engine.Convert(input)
	state.log.Info("Converted %d characters into %d visemes", len(input), result.Len())

	out := cmd.OutOrStdout()

	if opts.raw {
		return printRaw(out, result)
	}

	built, err := timeline.Build(result, state.timelineOptions())
	if err != nil {
		return fmt.Errorf("failed to build timeline: %w", err)
	}

	encoded, err := timeline.Encode(built, format)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err = out.Write(encoded)
		if err != nil {
			return fmt.Errorf("failed to write timeline: %w", err)
		}

		return nil
	}

	name := opts.file
	if name == "" {
		name = defaultOutputName
	}

	path := fsutil.TimelinePath(opts.output, name, format.FileExtension())

	err = fsutil.WriteFile(path, encoded)
	if err != nil {
		return err
	}

	state.log.Info("Wrote timeline: %s", path)
	fmt.Fprintf(out, "Wrote %d events (%s) to %s\n",
		len(built.Events), fsutil.FormatMilliseconds(built.Duration), path)

	return nil
}

func readInput(opts *convertOptions, args []string) (string, error) {
	switch {
	case len(args) == 0 && opts.file == "":
		return "", errNoInput
	case len(args) > 0 && opts.file != "":
		return "", errBothInput
	case opts.file != "":
		return fsutil.ReadTextFile(opts.file)
	default:
		return args[0], nil
	}
}

func printRaw(out io.Writer, result *lipsync.Result) error {
	var builder strings.Builder

	fmt.Fprintf(&builder, "text: %s\n", result.NormalizedText)

	for k, viseme := range result.Visemes {
		fmt.Fprintf(&builder, "%-3s %8.3f %8.3f\n", viseme, result.StartTimes[k], result.Durations[k])
	}

	fmt.Fprintf(&builder, "end: %.3f\n", result.EndTime)

	_, err := io.WriteString(out, builder.String())
	if err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	return nil
}
