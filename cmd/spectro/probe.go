package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lumen-instruments/spectro-go/pkg/model"
	"github.com/lumen-instruments/spectro-go/pkg/registry"
)

func newProbeCmd(a *app) *cobra.Command {
	var features bool
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "List attached instruments",
		Long:  `Probes every enabled transport for known instrument types and lists them together with the devices named in the configuration file.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			s.api.ProbeDevices(cmd.Context())
			writeDevices(cmd.OutOrStdout(), s.reg, features)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&features, "features", "f", false, "Also list feature IDs per family")
	return cmd
}

// writeDevices prints one row per device in registry order.
func writeDevices(w io.Writer, reg *registry.Registry, features bool) {
	ids := reg.IDs()
	if len(ids) == 0 {
		fmt.Fprintln(w, "No devices found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := "ID\tTYPE\tBUS\tLOCATION\tSTATE"
	if features {
		header += "\tFEATURES"
	}
	fmt.Fprintln(tw, header)
	for _, id := range ids {
		d, err := reg.Device(id)
		if err != nil {
			continue
		}
		state := "closed"
		if d.IsOpen() {
			state = "open"
		}
		loc := d.Locator()
		row := fmt.Sprintf("%d\t%s\t%s\t%s\t%s", id, d.Type(), loc.Kind(), loc, state)
		if features {
			row += "\t" + featureSummary(d)
		}
		fmt.Fprintln(tw, row)
	}
	_ = tw.Flush()
}

// featureSummary renders "FAMILY=id,id" pairs for every family d has.
func featureSummary(d *model.Device) string {
	var parts []string
	for _, f := range model.Families {
		ids := d.FeatureIDs(f)
		if len(ids) == 0 {
			continue
		}
		nums := make([]string, len(ids))
		for i, id := range ids {
			nums[i] = fmt.Sprint(id)
		}
		parts = append(parts, f.String()+"="+strings.Join(nums, ","))
	}
	return strings.Join(parts, " ")
}
