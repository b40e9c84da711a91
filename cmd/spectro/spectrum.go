package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lumen-instruments/spectro-go/pkg/api"
	"github.com/lumen-instruments/spectro-go/pkg/model"
	"github.com/lumen-instruments/spectro-go/pkg/wire"
)

// ErrNoSpectrometer indicates a device without a spectrometer feature.
var ErrNoSpectrometer = errors.New("device has no spectrometer feature")

type spectrumOptions struct {
	integration uint32
	raw         bool
}

func newSpectrumCmd(a *app) *cobra.Command {
	var opts spectrumOptions
	cmd := &cobra.Command{
		Use:   "spectrum <device-id>",
		Short: "Read one spectrum from a device",
		Long: `Opens the device, optionally sets the integration time and prints one
wavelength/intensity pair per pixel. With --raw it prints raw pixel counts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDeviceID(args[0])
			if err != nil {
				return err
			}
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			s.api.ProbeDevices(cmd.Context())
			return readSpectrum(cmd.OutOrStdout(), s.api, id, opts)
		},
	}
	cmd.Flags().Uint32VarP(&opts.integration, "integration", "i", 0, "Integration time in microseconds (0 keeps the device default)")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print raw pixel counts")
	return cmd
}

func parseDeviceID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid device ID %q", s)
	}
	return uint32(id), nil
}

// spectrometerID returns the first spectrometer feature of an open device.
func spectrometerID(a *api.API, id uint32) (uint32, error) {
	var code api.Code
	fids := make([]uint32, 1)
	n := a.FeatureIDs(id, model.FamilySpectrometer, &code, fids)
	if err := codeError("feature-ids", code); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrNoSpectrometer
	}
	return fids[0], nil
}

// readSpectrum opens device id through the boundary and writes one
// spectrum to w. The device is closed again on return.
func readSpectrum(w io.Writer, a *api.API, id uint32, opts spectrumOptions) error {
	var code api.Code
	a.OpenDevice(id, &code)
	if err := codeError("open", code); err != nil {
		return err
	}
	defer a.CloseDevice(id, nil)

	fid, err := spectrometerID(a, id)
	if err != nil {
		return err
	}

	if opts.integration > 0 {
		a.SetIntegrationTimeMicros(id, fid, &code, opts.integration)
		if err := codeError("set-integration-time", code); err != nil {
			return err
		}
	}

	bw := bufio.NewWriter(w)
	defer bw.Flush()

	if opts.raw {
		buf := make([]byte, a.UnformattedSpectrumLength(id, fid, &code))
		if err := codeError("unformatted-length", code); err != nil {
			return err
		}
		n := a.UnformattedSpectrum(id, fid, &code, buf)
		if err := codeError("unformatted-spectrum", code); err != nil {
			return err
		}
		counts, err := wire.U16s(buf[:n], n/2)
		if err != nil {
			return err
		}
		for i, c := range counts {
			fmt.Fprintf(bw, "%d\t%d\n", i, c)
		}
		return nil
	}

	pixels := a.FormattedSpectrumLength(id, fid, &code)
	if err := codeError("formatted-length", code); err != nil {
		return err
	}
	intensities := make([]float64, pixels)
	a.FormattedSpectrum(id, fid, &code, intensities)
	if err := codeError("formatted-spectrum", code); err != nil {
		return err
	}
	wavelengths := make([]float64, pixels)
	a.Wavelengths(id, fid, &code, wavelengths)
	if err := codeError("wavelengths", code); err != nil {
		return err
	}
	for i := range intensities {
		fmt.Fprintf(bw, "%.3f\t%.1f\n", wavelengths[i], intensities[i])
	}
	return nil
}
