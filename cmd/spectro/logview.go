package main

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumen-instruments/spectro-go/pkg/log"
)

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Work with protocol capture files",
	}
	cmd.AddCommand(newLogViewCmd())
	return cmd
}

// viewOptions are the raw flag values of log view.
type viewOptions struct {
	session   string
	device    uint32
	bus       string
	layer     string
	direction string
	category  string
	since     string
	until     string
	jsonl     bool
}

func newLogViewCmd() *cobra.Command {
	var opts viewOptions
	cmd := &cobra.Command{
		Use:   "view <file.splog>",
		Short: "Print a capture file",
		Long:  `Prints the events of a capture file in human-readable form, or as JSON lines with --json.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := opts.filter()
			if err != nil {
				return err
			}
			return runView(cmd.OutOrStdout(), args[0], filter, opts.jsonl)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.session, "session", "", "Filter by session ID")
	f.Uint32Var(&opts.device, "device", 0, "Filter by device ID")
	f.StringVar(&opts.bus, "bus", "", "Filter by bus (usb, rs232, tcp)")
	f.StringVar(&opts.layer, "layer", "", "Filter by layer (transport, exchange, device)")
	f.StringVar(&opts.direction, "direction", "", "Filter by direction (in, out)")
	f.StringVar(&opts.category, "category", "", "Filter by category (message, state, error)")
	f.StringVar(&opts.since, "since", "", "Only events at or after this RFC 3339 time")
	f.StringVar(&opts.until, "until", "", "Only events before this RFC 3339 time")
	f.BoolVar(&opts.jsonl, "json", false, "Print one JSON object per event")
	return cmd
}

// filter converts the flag values into a log.Filter.
func (o viewOptions) filter() (log.Filter, error) {
	f := log.Filter{
		SessionID: o.session,
		DeviceID:  o.device,
		Bus:       strings.ToUpper(o.bus),
	}
	if o.layer != "" {
		l, err := parseLayer(o.layer)
		if err != nil {
			return f, err
		}
		f.Layer = &l
	}
	if o.direction != "" {
		d, err := parseDirection(o.direction)
		if err != nil {
			return f, err
		}
		f.Direction = &d
	}
	if o.category != "" {
		c, err := parseCategory(o.category)
		if err != nil {
			return f, err
		}
		f.Category = &c
	}
	if o.since != "" {
		t, err := time.Parse(time.RFC3339, o.since)
		if err != nil {
			return f, fmt.Errorf("invalid --since: %w", err)
		}
		f.TimeStart = &t
	}
	if o.until != "" {
		t, err := time.Parse(time.RFC3339, o.until)
		if err != nil {
			return f, fmt.Errorf("invalid --until: %w", err)
		}
		f.TimeEnd = &t
	}
	return f, nil
}

func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "exchange":
		return log.LayerExchange, nil
	case "device":
		return log.LayerDevice, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, exchange, or device)", s)
	}
}

func parseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, state, or error)", s)
	}
}

// runView streams the matching events of path to w.
func runView(w io.Writer, path string, filter log.Filter, jsonl bool) error {
	r, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return err
	}
	defer r.Close()

	bw := bufio.NewWriter(w)
	defer bw.Flush()
	enc := json.NewEncoder(bw)

	for {
		event, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if jsonl {
			if err := enc.Encode(event); err != nil {
				return err
			}
			continue
		}
		formatEvent(bw, event)
	}
}

// formatEvent writes a human-readable representation of event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")

	var label string
	switch {
	case event.Frame != nil:
		label = "Frame"
	case event.Exchange != nil:
		label = "Exchange"
	case event.StateChange != nil:
		label = "State"
	case event.Error != nil:
		label = "Error"
	default:
		label = "Unknown"
	}

	fmt.Fprintf(w, "%s [dev:%d %s] %-3s %s %s\n", ts, event.DeviceID, shortenSession(event.SessionID),
		event.Direction, event.Layer, label)
	if event.DeviceType != "" || event.Location != "" {
		fmt.Fprintf(w, "  Device: %s %s\n", event.DeviceType, event.Location)
	}

	switch {
	case event.Frame != nil:
		f := event.Frame
		fmt.Fprintf(w, "  Size: %d bytes", f.Size)
		if f.Padded > 0 {
			fmt.Fprintf(w, " (padded to %d)", f.Padded)
		}
		if f.Hint != "" {
			fmt.Fprintf(w, "  Hint: %s", f.Hint)
		}
		fmt.Fprintln(w)
		if len(f.Data) > 0 {
			fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(f.Data))
			if f.Truncated {
				fmt.Fprint(w, " (truncated)")
			}
			fmt.Fprintln(w)
		}
	case event.Exchange != nil:
		x := event.Exchange
		fmt.Fprintf(w, "  %s %s (0x%x)  Transfers: %d  Duration: %s  Result: %s\n",
			x.Protocol, x.Name, x.MessageType, x.Transfers, x.Duration, x.Result)
	case event.StateChange != nil:
		sc := event.StateChange
		fmt.Fprintf(w, "  Entity: %s\n", sc.Entity)
		if sc.OldState != "" {
			fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
		} else {
			fmt.Fprintf(w, "  -> %s\n", sc.NewState)
		}
		if sc.Reason != "" {
			fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
		}
	case event.Error != nil:
		e := event.Error
		fmt.Fprintf(w, "  Error: %s\n", e.Message)
		if e.Kind != "" {
			fmt.Fprintf(w, "  Kind: %s\n", e.Kind)
		}
		if e.Context != "" {
			fmt.Fprintf(w, "  Context: %s\n", e.Context)
		}
	}
	fmt.Fprintln(w)
}

// shortenSession returns the first 8 characters of a session ID.
func shortenSession(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
