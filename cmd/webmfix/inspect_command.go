package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/luispater/webmfix"
	"github.com/luispater/webmfix/internal/logging"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var showTree bool

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show the header, segment info and element tree of a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}

			path := args[0]
			buf, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			fi, err := webmfix.Inspect(buf)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", path, err)
			}
			if logging.Enabled(logger, slog.LevelDebug) {
				logger.Debug("recording parsed",
					slog.String("file", path),
					slog.Int("bytes", len(buf)),
					slog.Int("elements", countElements(fi.Tree)),
				)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Field", "Value"},
				summaryRows(path, len(buf), fi),
				[]columnAlignment{alignLeft, alignLeft},
			))
			if showTree {
				fmt.Fprintln(out, renderTable(
					[]string{"Element", "ID", "Offset", "Size", "Value"},
					treeRows(fi.Tree),
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showTree, "tree", false, "Also print every parsed element")
	return cmd
}

func summaryRows(path string, size int, fi *webmfix.FileInfo) [][]string {
	rows := [][]string{
		{"File", path},
		{"Size", fmt.Sprintf("%s (%s bytes)", humanize.IBytes(uint64(size)), humanize.Comma(int64(size)))},
	}
	if h := fi.Header; h != nil {
		rows = append(rows, []string{"Doc type", fmt.Sprintf("%s v%d", h.DocType, h.DocTypeVersion)})
	}

	info := fi.Info
	if info == nil {
		return append(rows, []string{"Segment", "missing"})
	}
	for _, field := range [][2]string{
		{"Title", info.Title},
		{"Muxing app", info.MuxingApp},
		{"Writing app", info.WritingApp},
	} {
		if field[1] != "" {
			rows = append(rows, []string{field[0], field[1]})
		}
	}
	if !info.DateUTC.IsZero() {
		rows = append(rows, []string{"Date", info.DateUTC.Format(time.RFC3339)})
	}
	rows = append(rows, []string{"Timecode scale", humanize.Comma(int64(info.TimecodeScale)) + " ns"})
	if info.HasDuration {
		rows = append(rows, []string{"Duration", fmt.Sprintf("%s ticks (%s, %d-byte float)",
			strconv.FormatFloat(info.Duration, 'f', -1, 64), info.Length().Round(time.Millisecond), info.DurationWidth)})
	} else {
		rows = append(rows, []string{"Duration", "missing"})
	}

	return append(rows,
		[]string{"Tracks", strconv.Itoa(fi.Tracks)},
		[]string{"Cues", yesNo(fi.Cues)},
		[]string{"Streamed", yesNo(fi.Streams)},
	)
}

func treeRows(tree []*webmfix.Element) [][]string {
	var rows [][]string
	for _, root := range tree {
		root.Walk(func(el *webmfix.Element, depth int) bool {
			size := humanize.Comma(int64(el.Size))
			if el.UnknownSize {
				size = "unknown"
			}
			rows = append(rows, []string{
				strings.Repeat("  ", depth) + el.Name(),
				fmt.Sprintf("0x%X", el.ID),
				humanize.Comma(int64(el.HeaderOffset)),
				size,
				elementValue(el),
			})
			return true
		})
	}
	return rows
}

func elementValue(el *webmfix.Element) string {
	if v, ok := el.Uint(); ok {
		return strconv.FormatUint(v, 10)
	}
	if v, ok := el.Float(); ok {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return ""
}

func countElements(tree []*webmfix.Element) int {
	var n int
	for _, root := range tree {
		root.Walk(func(*webmfix.Element, int) bool {
			n++
			return true
		})
	}
	return n
}
