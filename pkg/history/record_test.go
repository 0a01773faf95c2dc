package history

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/burst-fetch/pkg/dispatch"
	"github.com/google/uuid"
)

func sampleResults() dispatch.Results {
	return dispatch.Results{
		{Task: dispatch.Task{Index: 0, URL: "http://localhost/"}, StatusCode: 200, Body: "OK", Duration: time.Millisecond},
		{Task: dispatch.Task{Index: 1, URL: "http://localhost/"}, StatusCode: 200, Body: strings.Repeat("y", 300)},
		{Task: dispatch.Task{Index: 2, URL: "http://localhost/"}, StatusCode: 503, Err: errors.New("server error")},
	}
}

func TestNewRunRecord(t *testing.T) {
	started := time.Date(2026, 10, 19, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	rec := NewRunRecord("http://localhost/", started, 2*time.Second, sampleResults())

	if _, err := uuid.Parse(rec.ID); err != nil {
		t.Errorf("ID %q is not a uuid: %v", rec.ID, err)
	}
	if rec.Requests != 3 || rec.Succeeded != 2 || rec.Failed() != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1", rec.Requests, rec.Succeeded, rec.Failed())
	}
	if !rec.StartedAt.Equal(started) || rec.StartedAt.Location() != time.UTC {
		t.Errorf("StartedAt = %v, want %v in UTC", rec.StartedAt, started)
	}

	if rec.Results[0].Preview != "OK" || rec.Results[0].Bytes != 2 {
		t.Errorf("Results[0] = %+v", rec.Results[0])
	}
	if len(rec.Results[1].Preview) != 100 || rec.Results[1].Bytes != 300 {
		t.Errorf("Results[1] preview len = %d, bytes = %d", len(rec.Results[1].Preview), rec.Results[1].Bytes)
	}
	if rec.Results[2].OK() || rec.Results[2].Error != "server error" || rec.Results[2].StatusCode != 503 {
		t.Errorf("Results[2] = %+v", rec.Results[2])
	}
}

func TestNewRunRecord_UniqueIDs(t *testing.T) {
	a := NewRunRecord("http://localhost/", time.Now(), 0, nil)
	b := NewRunRecord("http://localhost/", time.Now(), 0, nil)
	if a.ID == b.ID {
		t.Error("expected distinct run ids")
	}
	if a.Requests != 0 || len(a.Results) != 0 {
		t.Errorf("empty run = %+v", a)
	}
}

func TestRunRecord_SameShape(t *testing.T) {
	base := NewRunRecord("http://localhost/", time.Now(), 0, sampleResults())

	same := NewRunRecord("http://localhost/", time.Now(), 0, sampleResults())
	same.Results[0].Preview = "different body"

	otherURL := NewRunRecord("http://other/", time.Now(), 0, sampleResults())

	shorter := NewRunRecord("http://localhost/", time.Now(), 0, sampleResults()[:2])

	flipped := NewRunRecord("http://localhost/", time.Now(), 0, sampleResults())
	flipped.Results[2].Error = ""

	tests := []struct {
		name  string
		other *RunRecord
		want  bool
	}{
		{"identical outcomes", same, true},
		{"nil", nil, false},
		{"different url", otherURL, false},
		{"different count", shorter, false},
		{"different outcome", flipped, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.SameShape(tt.other); got != tt.want {
				t.Errorf("SameShape = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunRecord_JSON(t *testing.T) {
	rec := NewRunRecord("http://localhost/", time.Now(), time.Second, sampleResults())

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	for _, field := range []string{`"id"`, `"started_at"`, `"results"`, `"status_code"`, `"error"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("JSON missing %s: %s", field, data)
		}
	}
}

func TestRunKey_String(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"abc", "burst:run:abc"},
		{" abc ", "burst:run:abc"},
		{"6f1c2b9e-3a51-4e0c-9b7d-2f4e8a1c0d55", "burst:run:6f1c2b9e-3a51-4e0c-9b7d-2f4e8a1c0d55"},
	}

	for _, tt := range tests {
		if got := (RunKey{ID: tt.id}).String(); got != tt.want {
			t.Errorf("RunKey{%q}.String() = %q, want %q", tt.id, got, tt.want)
		}
	}
}
