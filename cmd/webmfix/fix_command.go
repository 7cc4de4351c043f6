package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/luispater/webmfix"
	"github.com/luispater/webmfix/internal/config"
	"github.com/luispater/webmfix/internal/filesink"
)

var (
	statusFixed     = color.New(color.FgGreen, color.Bold)
	statusCorrect   = color.New(color.FgCyan)
	statusUnchanged = color.New(color.FgYellow)
	statusFailed    = color.New(color.FgRed, color.Bold)
)

func newFixCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var inPlace bool
	var elapsed time.Duration

	cmd := &cobra.Command{
		Use:   "fix FILE...",
		Short: "Rewrite the Duration of one or more recordings",
		Long: `Rewrite the Segment Duration of each recording so players can seek.

Without --duration the stored value is converted to milliseconds using the
file's TimecodeScale. With --duration the given elapsed time is written.
Files that cannot be parsed, or that carry no Duration, are copied through
unchanged. Output names without an extension get .webm.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			if outputFlag != "" && len(args) != 1 {
				return errors.New("--output requires exactly one input file")
			}
			if elapsed < 0 {
				return fmt.Errorf("--duration must not be negative: %s", elapsed)
			}

			out := cfg.Output
			if cmd.Flags().Changed("in-place") {
				out.InPlace = inPlace
			}

			fixer := webmfix.NewFixer(webmfix.WithLogger(logger))
			stdout := cmd.OutOrStdout()

			var failed int
			for _, input := range args {
				target := outputTarget(input, out, strings.TrimSpace(outputFlag))
				if err := fixFile(cmd, fixer, logger, input, target, elapsed); err != nil {
					if ctxErr := cmd.Context().Err(); ctxErr != nil {
						return ctxErr
					}
					failed++
					logger.Error("fix failed", slog.String("file", input), slog.String("error", err.Error()))
					printStatus(stdout, statusFailed, "failed", input, err.Error())
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write the repaired file to this path (single input only)")
	cmd.Flags().BoolVar(&inPlace, "in-place", false, "Overwrite each input file")
	cmd.Flags().DurationVar(&elapsed, "duration", 0, "Known recording length to write, e.g. 1m30s")
	cmd.MarkFlagsMutuallyExclusive("output", "in-place")

	return cmd
}

func fixFile(cmd *cobra.Command, fixer *webmfix.Fixer, logger *slog.Logger, input, target string, elapsed time.Duration) error {
	buf, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	sink, err := filesink.New(filepath.Dir(target), logger)
	if err != nil {
		return err
	}
	name := filepath.Base(target)

	res, err := fixer.Deliver(cmd.Context(), sink, name, buf, elapsed)
	if err != nil {
		return err
	}

	written := sink.Path(name)
	size := humanize.IBytes(uint64(len(buf)))
	stdout := cmd.OutOrStdout()
	switch {
	case res.Changed:
		printStatus(stdout, statusFixed, "fixed", input,
			fmt.Sprintf("%s -> %s, %s, %s", formatTicks(res.Previous, res.TimecodeScale), formatTicks(res.Duration, res.TimecodeScale), size, written))
	case res.Patched:
		printStatus(stdout, statusCorrect, "ok", input,
			fmt.Sprintf("%s already correct, %s, %s", formatTicks(res.Duration, res.TimecodeScale), size, written))
	default:
		printStatus(stdout, statusUnchanged, "unchanged", input, fmt.Sprintf("copied as is, %s, %s", size, written))
	}
	return nil
}

// outputTarget picks the destination for input: the explicit path, the
// input itself, or a suffixed name in the configured or input directory.
func outputTarget(input string, out config.Output, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if out.InPlace {
		return input
	}

	dir := filepath.Dir(input)
	if out.Dir != "" {
		dir = out.Dir
	}
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = filesink.DefaultExt
	}
	return filepath.Join(dir, stem+out.Suffix+ext)
}

// formatTicks renders a Duration in ticks as wall-clock time.
func formatTicks(ticks float64, scale uint64) string {
	d := time.Duration(ticks * float64(scale))
	return d.Round(time.Millisecond).String()
}

func printStatus(w io.Writer, status *color.Color, label, file, detail string) {
	fmt.Fprintf(w, "%s %s: %s\n", status.Sprintf("%-9s", label), file, detail)
}
