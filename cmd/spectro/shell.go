package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/lumen-instruments/spectro-go/pkg/api"
	"github.com/lumen-instruments/spectro-go/pkg/model"
	"github.com/lumen-instruments/spectro-go/pkg/registry"
)

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session",
		Long:  `Starts an interactive prompt that keeps devices open between commands.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "spectro> ",
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
				AutoComplete:    shellCompleter(),
			})
			if err != nil {
				return fmt.Errorf("failed to create readline: %w", err)
			}
			defer rl.Close()

			sh := &shell{api: s.api, reg: s.reg, out: rl.Stdout()}
			sh.printHelp()
			for {
				line, err := rl.Readline()
				if err != nil {
					if errors.Is(err, readline.ErrInterrupt) {
						continue
					}
					return nil
				}
				if sh.exec(cmd.Context(), line) {
					return nil
				}
			}
		},
	}
}

func shellCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("probe"),
		readline.PcItem("list"),
		readline.PcItem("features"),
		readline.PcItem("open"),
		readline.PcItem("close"),
		readline.PcItem("integration"),
		readline.PcItem("spectrum"),
		readline.PcItem("serial"),
		readline.PcItem("temp"),
		readline.PcItem("quit"),
	)
}

// shell executes interactive commands against the boundary.
type shell struct {
	api *api.API
	reg *registry.Registry
	out io.Writer
}

// exec runs one input line and reports whether the session should end.
func (sh *shell) exec(ctx context.Context, line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch cmd {
	case "help", "?":
		sh.printHelp()
	case "probe":
		n := sh.api.ProbeDevices(ctx)
		fmt.Fprintf(sh.out, "%d probed device(s)\n", n)
		writeDevices(sh.out, sh.reg, false)
	case "list", "ls":
		writeDevices(sh.out, sh.reg, false)
	case "features", "f":
		err = sh.cmdFeatures(args)
	case "open":
		err = sh.withID(args, "open", sh.api.OpenDevice)
	case "close":
		err = sh.withID(args, "close", sh.api.CloseDevice)
	case "integration", "it":
		err = sh.cmdIntegration(args)
	case "spectrum", "s":
		err = sh.cmdSpectrum(args)
	case "serial":
		err = sh.cmdSerial(args)
	case "temp":
		err = sh.cmdTemperature(args)
	case "quit", "exit", "q":
		fmt.Fprintln(sh.out, "Exiting...")
		return true
	default:
		fmt.Fprintf(sh.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
	}
	return false
}

func (sh *shell) printHelp() {
	fmt.Fprintln(sh.out, `Commands:
  probe                     - Probe for instruments
  list                      - List known devices
  features <id>             - List feature IDs of a device
  open <id> / close <id>    - Open or close a device
  integration <id> <us>     - Set integration time
  spectrum <id>             - Acquire a spectrum and show its peak
  serial <id>               - Read the serial number
  temp <id>                 - Read the TEC temperature
  quit                      - Exit`)
}

func (sh *shell) deviceID(args []string, want int) (uint32, error) {
	if len(args) < want {
		return 0, fmt.Errorf("expected %d argument(s)", want)
	}
	return parseDeviceID(args[0])
}

func (sh *shell) withID(args []string, op string, fn func(uint32, *api.Code)) error {
	id, err := sh.deviceID(args, 1)
	if err != nil {
		return err
	}
	var code api.Code
	fn(id, &code)
	if err := codeError(op, code); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "%s %d: OK\n", op, id)
	return nil
}

// firstFeature returns the first feature of family on device id.
func (sh *shell) firstFeature(id uint32, family model.FeatureFamily) (uint32, error) {
	var code api.Code
	fids := make([]uint32, 1)
	n := sh.api.FeatureIDs(id, family, &code, fids)
	if err := codeError("feature-ids", code); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("device %d has no %s feature", id, family)
	}
	return fids[0], nil
}

func (sh *shell) cmdFeatures(args []string) error {
	id, err := sh.deviceID(args, 1)
	if err != nil {
		return err
	}
	d, err := sh.reg.Device(model.ID(id))
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "%s: %s\n", d.Type(), featureSummary(d))
	return nil
}

func (sh *shell) cmdIntegration(args []string) error {
	id, err := sh.deviceID(args, 2)
	if err != nil {
		return err
	}
	micros, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid integration time %q", args[1])
	}
	fid, err := sh.firstFeature(id, model.FamilySpectrometer)
	if err != nil {
		return err
	}
	var code api.Code
	sh.api.SetIntegrationTimeMicros(id, fid, &code, uint32(micros))
	if err := codeError("set-integration-time", code); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "integration time: %d us\n", micros)
	return nil
}

func (sh *shell) cmdSpectrum(args []string) error {
	id, err := sh.deviceID(args, 1)
	if err != nil {
		return err
	}
	fid, err := sh.firstFeature(id, model.FamilySpectrometer)
	if err != nil {
		return err
	}

	var code api.Code
	pixels := sh.api.FormattedSpectrumLength(id, fid, &code)
	if err := codeError("formatted-length", code); err != nil {
		return err
	}
	values := make([]float64, pixels)
	sh.api.FormattedSpectrum(id, fid, &code, values)
	if err := codeError("formatted-spectrum", code); err != nil {
		return err
	}
	wl := make([]float64, pixels)
	sh.api.Wavelengths(id, fid, &code, wl)
	if err := codeError("wavelengths", code); err != nil {
		return err
	}

	peak := 0
	for i, v := range values {
		if v > values[peak] {
			peak = i
		}
	}
	fmt.Fprintf(sh.out, "pixels: %d  peak: %.1f at %.3f nm (pixel %d)\n", pixels, values[peak], wl[peak], peak)
	return nil
}

func (sh *shell) cmdSerial(args []string) error {
	id, err := sh.deviceID(args, 1)
	if err != nil {
		return err
	}
	fid, err := sh.firstFeature(id, model.FamilySerialNumber)
	if err != nil {
		return err
	}
	var code api.Code
	size := sh.api.SerialNumberMaxLength(id, fid, &code)
	if err := codeError("serial-max-length", code); err != nil {
		return err
	}
	buf := make([]byte, size)
	n := sh.api.SerialNumber(id, fid, &code, buf)
	if err := codeError("serial-number", code); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "serial: %s\n", buf[:n])
	return nil
}

func (sh *shell) cmdTemperature(args []string) error {
	id, err := sh.deviceID(args, 1)
	if err != nil {
		return err
	}
	fid, err := sh.firstFeature(id, model.FamilyThermoElectric)
	if err != nil {
		return err
	}
	var code api.Code
	t := sh.api.TECReadTemperature(id, fid, &code)
	if err := codeError("tec-temperature", code); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "temperature: %.2f C\n", t)
	return nil
}
