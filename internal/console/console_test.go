package console

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestRecorder(t *testing.T) {
	rec := &Recorder{}
	sink := rec.Sink()
	sink(Info, "one")
	sink(Warn, "two")

	events := rec.Events()
	if len(events) != 2 {
		t.Fatalf("events = %d", len(events))
	}
	if events[0] != (Event{Info, "one"}) || events[1] != (Event{Warn, "two"}) {
		t.Fatalf("events = %+v", events)
	}

	// returned slice is a copy
	events[0].Message = "mutated"
	if rec.Events()[0].Message != "one" {
		t.Fatal("Events leaked internal slice")
	}
}

func TestTee(t *testing.T) {
	a := &Recorder{}
	b := &Recorder{}
	Tee(a.Sink(), nil, b.Sink())(Error, "boom")

	if len(a.Events()) != 1 || len(b.Events()) != 1 {
		t.Fatalf("a=%d b=%d", len(a.Events()), len(b.Events()))
	}
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink(&buf)
	sink(Warn, "look out")
	sink(Success, "done")

	want := "[warn] look out\n[success] done\n"
	if buf.String() != want {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestLevelMarshalJSON(t *testing.T) {
	b, err := json.Marshal(Event{Level: Success, Message: "ok"})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"level":"success","msg":"ok"}` {
		t.Fatalf("json = %s", b)
	}
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.jsonl.zst")
	fs, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sink := fs.Sink()
	sink(Info, "alpha")
	sink(Error, "beta")
	if err := fs.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zr, err := zstd.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	var lines []fileEvent
	sc := bufio.NewScanner(zr)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var ev fileEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("line %q: %v", line, err)
		}
		lines = append(lines, ev)
	}
	if err := sc.Err(); err != nil && err != io.EOF {
		t.Fatal(err)
	}

	if len(lines) != 2 {
		t.Fatalf("lines = %d", len(lines))
	}
	if lines[0].Level != "info" || lines[0].Msg != "alpha" {
		t.Fatalf("first = %+v", lines[0])
	}
	if lines[1].Level != "error" || lines[1].Msg != "beta" {
		t.Fatalf("second = %+v", lines[1])
	}
	if lines[0].TS == "" {
		t.Fatal("missing timestamp")
	}
}
