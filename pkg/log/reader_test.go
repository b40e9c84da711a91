package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"
)

func writeCapture(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture"+FileExtension)

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("create capture: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()
	return path
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	var out []Event
	for {
		e, err := r.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		out = append(out, e)
	}
}

func TestFilteredReader(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: base, SessionID: "a", DeviceID: 1, Bus: "USB", Direction: DirectionOut, Layer: LayerTransport},
		{Timestamp: base.Add(time.Second), SessionID: "a", DeviceID: 1, Bus: "USB", Direction: DirectionIn, Layer: LayerTransport},
		{Timestamp: base.Add(2 * time.Second), SessionID: "b", DeviceID: 2, Bus: "TCP", Layer: LayerExchange},
		{Timestamp: base.Add(3 * time.Second), DeviceID: 2, Layer: LayerDevice, Category: CategoryState},
	}
	path := writeCapture(t, events)

	in := DirectionIn
	out := DirectionOut
	exchange := LayerExchange
	state := CategoryState
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 4},
		{"session", Filter{SessionID: "a"}, 2},
		{"device", Filter{DeviceID: 2}, 2},
		{"bus", Filter{Bus: "TCP"}, 1},
		{"direction", Filter{Direction: &in}, 1},
		{"direction out", Filter{Direction: &out}, 1},
		{"layer", Filter{Layer: &exchange}, 1},
		{"category", Filter{Category: &state}, 1},
		{"time window", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"combined no match", Filter{SessionID: "a", Bus: "TCP"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader: %v", err)
			}
			defer r.Close()

			if got := len(readAll(t, r)); got != tt.want {
				t.Errorf("got %d events, want %d", got, tt.want)
			}
		})
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "absent.splog")); err == nil {
		t.Error("expected error for missing file")
	}
}
