package webmfix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type recordingSink struct {
	name string
	data []byte
	err  error
}

func (s *recordingSink) Deliver(_ context.Context, name string, data []byte) error {
	s.name = name
	s.data = append([]byte(nil), data...)
	return s.err
}

func jsonLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &record); err != nil {
		t.Fatalf("decode log record %q: %v", lines[len(lines)-1], err)
	}
	return record
}

func TestFixerDeliverPatched(t *testing.T) {
	var logs bytes.Buffer
	fixer := NewFixer(WithLogger(jsonLogger(&logs)))
	sink := &recordingSink{}

	buf := recording{duration: float64Bytes(1), scale: uintBytes(1_000_000), streamed: true}.bytes()
	off := durationPayloadOffset(buf, 8)

	res, err := fixer.Deliver(context.Background(), sink, "clip.webm", buf, 3*time.Second)
	if err != nil {
		t.Fatalf("Deliver() failed: %v", err)
	}
	if !res.Patched || res.Duration != 3000 {
		t.Errorf("Result = %+v, want patched to 3000", res)
	}
	if sink.name != "clip.webm" || len(sink.data) != len(buf) {
		t.Fatalf("sink got %q with %d bytes", sink.name, len(sink.data))
	}
	if got, _ := decodeFloat(sink.data[off : off+8]); got != 3000 {
		t.Errorf("delivered Duration = %v, want 3000", got)
	}

	record := lastRecord(t, &logs)
	if record["msg"] != "duration repaired" || record["duration"] != float64(3000) || record["file"] != "clip.webm" {
		t.Errorf("unexpected log record: %v", record)
	}
}

func TestFixerDeliverUnparseable(t *testing.T) {
	var logs bytes.Buffer
	fixer := NewFixer(WithLogger(jsonLogger(&logs)))
	sink := &recordingSink{}

	buf := []byte{0x00, 0x01, 0x02}
	res, err := fixer.Deliver(context.Background(), sink, "broken.webm", buf, 0)
	if err != nil {
		t.Fatalf("Deliver() failed: %v", err)
	}
	if res.Patched {
		t.Error("unparseable input reported as patched")
	}
	if !bytes.Equal(sink.data, []byte{0x00, 0x01, 0x02}) {
		t.Errorf("sink got %x, want original bytes", sink.data)
	}
	if record := lastRecord(t, &logs); record["level"] != "WARN" {
		t.Errorf("expected a warning, got %v", record)
	}
}

func TestFixerRepairMissingMetadata(t *testing.T) {
	var logs bytes.Buffer
	fixer := NewFixer(WithLogger(jsonLogger(&logs)))

	_, err := fixer.Repair("short.webm", recording{scale: uintBytes(1_000_000)}.bytes(), 0)
	if !errors.Is(err, ErrMissingMetadata) {
		t.Fatalf("Repair() error = %v, want ErrMissingMetadata", err)
	}
	if record := lastRecord(t, &logs); record["level"] != "INFO" || record["msg"] != "duration metadata absent, left unchanged" {
		t.Errorf("unexpected log record: %v", record)
	}
}

func TestFixerDeliverErrors(t *testing.T) {
	buf := recording{duration: float64Bytes(1), scale: uintBytes(1_000_000)}.bytes()

	t.Run("sink failure", func(t *testing.T) {
		errDisk := errors.New("disk full")
		_, err := NewFixer().Deliver(context.Background(), &recordingSink{err: errDisk}, "a.webm", buf, 0)
		if !errors.Is(err, errDisk) {
			t.Fatalf("Deliver() error = %v, want wrapped sink error", err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		sink := &recordingSink{}
		_, err := NewFixer().Deliver(ctx, sink, "a.webm", buf, 0)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Deliver() error = %v, want context.Canceled", err)
		}
		if sink.data != nil {
			t.Error("sink called after cancellation")
		}
	})
}

func TestWithNilLoggerKeepsDefault(t *testing.T) {
	fixer := NewFixer(WithLogger(nil))
	if fixer.logger == nil {
		t.Fatal("expected default logger")
	}
}
