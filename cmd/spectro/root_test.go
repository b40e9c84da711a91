package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-instruments/spectro-go/pkg/log"
)

// run executes the root command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestProbeSim(t *testing.T) {
	out, err := run(t, "--sim", "probe")
	require.NoError(t, err)

	rows := lines(out)
	require.Len(t, rows, 4, out)
	assert.Contains(t, rows[0], "LOCATION")
	assert.Regexp(t, `^1\s+SIM-2048\s+USB\s+usb:ffff:2048@1\.4\s+closed`, rows[1])
	assert.Regexp(t, `^2\s+SIM-2048\s+TCP\s+tcp:192\.0\.2\.10:57357`, rows[2])
	assert.Regexp(t, `^3\s+SIM-LEGACY\s+USB\s+usb:ffff:0001@1\.7`, rows[3])
}

func TestProbeFeatures(t *testing.T) {
	out, err := run(t, "--sim", "probe", "--features")
	require.NoError(t, err)
	assert.Contains(t, out, "FAST_BUFFER=")
	assert.Contains(t, out, "SPECTROMETER=1")
}

func TestProbeSpecifiedFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spectro.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
discovery:
  types: [SIM-LEGACY]
devices:
  - type: SIM-LEGACY
    serial: {path: /dev/ttySIM0, baud: 9600}
`), 0o644))

	out, err := run(t, "--sim", "--config", path, "probe")
	require.NoError(t, err)

	rows := lines(out)
	require.Len(t, rows, 3, out)
	assert.Regexp(t, `^1\s+SIM-LEGACY\s+RS232\s+rs232:/dev/ttySIM0@9600`, rows[1])
	assert.Regexp(t, `^2\s+SIM-LEGACY\s+USB`, rows[2])
}

func TestInvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("devices:\n  - type: SIM-LEGACY\n"), 0o644))

	_, err := run(t, "--sim", "--config", path, "probe")
	assert.Error(t, err)

	_, err = run(t, "--sim", "--log-level", "loud", "probe")
	assert.Error(t, err)
}

func TestSpectrumSim(t *testing.T) {
	out, err := run(t, "--sim", "spectrum", "--integration", "20000", "1")
	require.NoError(t, err)

	rows := lines(out)
	require.Len(t, rows, 2048)
	for _, row := range []string{rows[0], rows[1024], rows[2047]} {
		assert.Len(t, strings.Split(row, "\t"), 2, row)
	}
}

func TestSpectrumRaw(t *testing.T) {
	out, err := run(t, "--sim", "spectrum", "--raw", "3")
	require.NoError(t, err)

	rows := lines(out)
	require.Len(t, rows, 2048)
	assert.True(t, strings.HasPrefix(rows[0], "0\t"))
	assert.True(t, strings.HasPrefix(rows[2047], "2047\t"))
}

func TestSpectrumErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad id", []string{"--sim", "spectrum", "x"}, "invalid device ID"},
		{"zero id", []string{"--sim", "spectrum", "0"}, "invalid device ID"},
		{"unknown device", []string{"--sim", "spectrum", "9"}, "NO_DEVICE"},
		{"out of range integration", []string{"--sim", "spectrum", "-i", "1", "1"}, "INVALID_ARGUMENT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAcquireSim(t *testing.T) {
	out, err := run(t, "--sim", "acquire", "-n", "5", "1")
	require.NoError(t, err)

	rows := lines(out)
	require.Len(t, rows, 5)
	for i, row := range rows {
		fields := strings.Split(row, "\t")
		require.Len(t, fields, 3, row)
		assert.Equal(t, []string{"1", "2", "3", "4", "5"}[i], fields[0])
	}
}

func TestAcquireWithoutFastBuffer(t *testing.T) {
	_, err := run(t, "--sim", "acquire", "-n", "5", "3")
	require.Error(t, err)
}

func TestCaptureThenView(t *testing.T) {
	capture := filepath.Join(t.TempDir(), "run"+log.FileExtension)

	_, err := run(t, "--sim", "--capture", capture, "spectrum", "1")
	require.NoError(t, err)

	out, err := run(t, "log", "view", "--layer", "device", "--category", "state", capture)
	require.NoError(t, err)
	assert.Contains(t, out, "Entity: REGISTRY")
	assert.Contains(t, out, "-> ADDED")
	assert.NotContains(t, out, "Frame")

	out, err = run(t, "log", "view", "--layer", "transport", "--device", "1", "--json", capture)
	require.NoError(t, err)
	rows := lines(out)
	require.NotEmpty(t, rows)
	var event log.Event
	require.NoError(t, json.Unmarshal([]byte(rows[0]), &event))
	assert.Equal(t, uint32(1), event.DeviceID)
	assert.NotNil(t, event.Frame)

	out, err = run(t, "log", "view", "--direction", "in", "--json", capture)
	require.NoError(t, err)
	for _, row := range lines(out) {
		var event log.Event
		require.NoError(t, json.Unmarshal([]byte(row), &event))
		assert.Equal(t, log.DirectionIn, event.Direction, row)
		assert.NotNil(t, event.Frame, "only transport frames move data")
	}
}

func TestViewOptionsReject(t *testing.T) {
	tests := []struct {
		name string
		opts viewOptions
	}{
		{"layer", viewOptions{layer: "wire"}},
		{"direction", viewOptions{direction: "sideways"}},
		{"category", viewOptions{category: "snapshot"}},
		{"since", viewOptions{since: "yesterday"}},
		{"until", viewOptions{until: "2026-13-01T00:00:00Z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.opts.filter()
			assert.Error(t, err)
		})
	}

	f, err := viewOptions{bus: "usb", layer: "Exchange", direction: "OUT"}.filter()
	require.NoError(t, err)
	assert.Equal(t, "USB", f.Bus)
	assert.Equal(t, log.LayerExchange, *f.Layer)
	assert.Equal(t, log.DirectionOut, *f.Direction)
}

func TestShellSession(t *testing.T) {
	a := &app{sim: true}
	cmd := &cobra.Command{}
	cmd.SetErr(io.Discard)
	s, err := a.open(cmd)
	require.NoError(t, err)
	defer s.Close()

	var out bytes.Buffer
	sh := &shell{api: s.api, reg: s.reg, out: &out}
	ctx := context.Background()

	steps := []struct {
		line string
		want string
	}{
		{"probe", "3 probed device(s)"},
		{"serial 1", "NO_DEVICE"},
		{"open 1", "open 1: OK"},
		{"serial 1", "serial: SIM2048-01"},
		{"integration 1 20000", "integration time: 20000 us"},
		{"integration 1 1", "INVALID_ARGUMENT"},
		{"spectrum 1", "pixels: 2048"},
		{"temp 1", "temperature:"},
		{"features 1", "THERMO_ELECTRIC="},
		{"temp 3", "has no THERMO_ELECTRIC feature"},
		{"open", "expected 1 argument(s)"},
		{"frobnicate", "Unknown command: frobnicate"},
		{"close 1", "close 1: OK"},
	}
	for _, step := range steps {
		out.Reset()
		assert.False(t, sh.exec(ctx, step.line), step.line)
		assert.Contains(t, out.String(), step.want, step.line)
	}

	out.Reset()
	assert.True(t, sh.exec(ctx, "quit"))
	assert.False(t, sh.exec(ctx, "   "))
}

func TestLoadConfigOverrides(t *testing.T) {
	a := &app{logLevel: "debug", capture: "/tmp/x.splog"}
	cfg, err := a.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/x.splog", cfg.Log.Capture)
	assert.True(t, cfg.Discovery.USB)
}
