package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/luispater/webmfix"
	"github.com/luispater/webmfix/internal/filesink"
	"github.com/luispater/webmfix/internal/logging"
)

// chunkSize mimics the blobs a browser recorder hands out per timeslice.
const chunkSize = 64 * 1024

// collect reads r in recorder-sized chunks and joins them the way a
// capture page concatenates its blobs before download.
func collect(r io.Reader) ([]byte, int, error) {
	var (
		recording []byte
		chunks    int
	)
	chunk := make([]byte, chunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			recording = append(recording, chunk[:n]...)
			chunks++
		}
		if err == io.EOF {
			return recording, chunks, nil
		}
		if err != nil {
			return nil, chunks, err
		}
	}
}

func main() {
	if len(os.Args) < 3 {
		fmt.Printf("usage: %s INPUT.webm OUTPUT_DIR [ELAPSED]\n", filepath.Base(os.Args[0]))
		return
	}
	inputFile := os.Args[1]
	outputDir := os.Args[2]

	var elapsed time.Duration
	if len(os.Args) > 3 {
		var err error
		if elapsed, err = time.ParseDuration(os.Args[3]); err != nil {
			fmt.Printf("Invalid elapsed time: %v\n", err)
			return
		}
	}

	file, err := os.Open(inputFile)
	if err != nil {
		fmt.Printf("Error opening file: %v\n", err)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	recording, chunks, err := collect(file)
	if err != nil {
		fmt.Printf("Error reading recording: %v\n", err)
		return
	}
	fmt.Printf("Collected %d chunks, %d bytes\n", chunks, len(recording))

	logger, err := logging.New(logging.Options{Level: "debug", Format: "console"})
	if err != nil {
		fmt.Printf("Error creating logger, continuing without logs: %v\n", err)
		logger = logging.NewNop()
	}

	sink, err := filesink.New(outputDir, logger)
	if err != nil {
		fmt.Printf("Error creating sink: %v\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fixer := webmfix.NewFixer(webmfix.WithLogger(logger))
	name := filepath.Base(inputFile)
	res, err := fixer.Deliver(ctx, sink, name, recording, elapsed)
	if err != nil {
		fmt.Printf("Error delivering recording: %v\n", err)
		return
	}

	fmt.Printf("Saved: %s\n", sink.Path(name))
	if res.Patched {
		fmt.Printf("Duration: %g -> %g ticks of %d ns\n", res.Previous, res.Duration, res.TimecodeScale)
	}
}
