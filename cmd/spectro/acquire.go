package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lumen-instruments/spectro-go/pkg/acquire"
	"github.com/lumen-instruments/spectro-go/pkg/features"
	"github.com/lumen-instruments/spectro-go/pkg/model"
	"github.com/lumen-instruments/spectro-go/pkg/protocol/obp"
	"github.com/lumen-instruments/spectro-go/pkg/registry"
)

type acquireOptions struct {
	count       int
	integration uint32
	pixels      bool
}

func newAcquireCmd(a *app) *cobra.Command {
	var opts acquireOptions
	cmd := &cobra.Command{
		Use:   "acquire <device-id>",
		Short: "Stream fast buffer records to stdout",
		Long: `Captures --count records through the device's fast buffer and prints one
line per record: sequence, device tick and integration time. With --pixels
the raw pixel counts follow on the same line.`,
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
			cfg := acquire.Config{
				Batch:   s.cfg.Acquire.Batch,
				MaxWait: s.cfg.Acquire.MaxWait,
				Logger:  s.logger,
			}
			return runAcquire(cmd.Context(), cmd.OutOrStdout(), s.reg, model.ID(id), cfg, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.count, "count", "n", 100, "Number of records to capture")
	cmd.Flags().Uint32VarP(&opts.integration, "integration", "i", 0, "Integration time in microseconds (0 keeps the device default)")
	cmd.Flags().BoolVar(&opts.pixels, "pixels", false, "Print pixel counts")
	return cmd
}

// runAcquire opens device id, streams opts.count records and writes them
// to w. The device is closed again on return.
func runAcquire(ctx context.Context, w io.Writer, reg *registry.Registry, id model.ID, cfg acquire.Config, opts acquireOptions) error {
	d, err := reg.Device(id)
	if err != nil {
		return err
	}
	if err := d.Open(); err != nil {
		return err
	}
	defer d.Close()

	if opts.integration > 0 {
		spec, err := model.FeatureOf[*features.Spectrometer](d)
		if err != nil {
			return err
		}
		if err := spec.SetIntegrationTime(opts.integration); err != nil {
			return err
		}
	}

	fb, err := model.FeatureOf[*features.FastBuffer](d)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	defer bw.Flush()

	st, err := acquire.NewStreamer(fb, cfg).Run(ctx, opts.count, func(records []obp.Record) error {
		for _, r := range records {
			writeRecord(bw, r, opts.pixels)
		}
		return nil
	})
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Info("acquisition finished",
		"device", id,
		"records", st.Records,
		"batches", st.Batches,
		"retries", st.Retries,
		"duration", st.Duration,
		"rate", fmt.Sprintf("%.1f/s", st.Rate()))
	return err
}

func writeRecord(w io.Writer, r obp.Record, pixels bool) {
	fmt.Fprintf(w, "%d\t%d\t%d", r.Sequence, r.TickMicros, r.IntegrationMicros)
	if pixels {
		for _, p := range r.Pixels {
			fmt.Fprintf(w, "\t%d", p)
		}
	}
	fmt.Fprintln(w)
}
