package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Sternrassler/burst-fetch/pkg/dispatch"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		body string
		n    int
		want string
	}{
		{"shorter than limit", "OK", 100, "OK"},
		{"exact length", "abc", 3, "abc"},
		{"truncated", "abcdef", 4, "abcd"},
		{"empty body", "", 100, ""},
		{"zero limit", "abc", 0, ""},
		{"multibyte counted as characters", "ääääää", 3, "äää"},
		{"mixed width", "a日b本c", 4, "a日b本"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preview(tt.body, tt.n); got != tt.want {
				t.Errorf("Preview(%q, %d) = %q, want %q", tt.body, tt.n, got, tt.want)
			}
		})
	}
}

func TestLine(t *testing.T) {
	if got := Line(0, "http://localhost/", "OK"); got != "Response 1 from http://localhost/: OK" {
		t.Errorf("Line = %q", got)
	}

	long := strings.Repeat("x", 250)
	got := Line(19, "http://localhost/", long)
	want := "Response 20 from http://localhost/: " + strings.Repeat("x", PreviewLength)
	if got != want {
		t.Errorf("Line = %q, want %q", got, want)
	}
}

func TestWrite_AllSucceeded(t *testing.T) {
	results := make(dispatch.Results, 20)
	for i := range results {
		results[i] = dispatch.Result{Task: dispatch.Task{Index: i, URL: "http://localhost/"}, Body: "OK"}
	}

	var buf bytes.Buffer
	if err := Write(&buf, "http://localhost/", results); err != nil {
		t.Fatalf("Write: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 20 {
		t.Fatalf("got %d lines, want 20", len(lines))
	}
	for k, line := range lines {
		want := fmt.Sprintf("Response %d from http://localhost/: OK", k+1)
		if line != want {
			t.Errorf("line %d = %q, want %q", k, line, want)
		}
	}
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "http://localhost/", dispatch.Results{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestWrite_FailFast(t *testing.T) {
	refused := errors.New("connection refused")
	results := dispatch.Results{
		{Task: dispatch.Task{Index: 0}, Body: "OK"},
		{Task: dispatch.Task{Index: 1}, Err: refused},
		{Task: dispatch.Task{Index: 2}, Body: "OK"},
	}

	var buf bytes.Buffer
	err := Write(&buf, "http://localhost/", results)
	if !errors.Is(err, refused) {
		t.Fatalf("Write err = %v, want %v", err, refused)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output on failure, got %q", buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWrite_WriterError(t *testing.T) {
	results := dispatch.Results{{Task: dispatch.Task{Index: 0}, Body: "OK"}}

	err := Write(failingWriter{}, "http://localhost/", results)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Write err = %v, want disk full", err)
	}
}
