package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes capture events to an slog.Logger at debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates an adapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event as one structured record.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.SessionID != "" {
		attrs = append(attrs, slog.String("session", event.SessionID))
	}
	if event.DeviceID != 0 {
		attrs = append(attrs, slog.Uint64("device_id", uint64(event.DeviceID)))
	}
	if event.DeviceType != "" {
		attrs = append(attrs, slog.String("device_type", event.DeviceType))
	}
	if event.Bus != "" {
		attrs = append(attrs, slog.String("bus", event.Bus))
	}
	if event.Location != "" {
		attrs = append(attrs, slog.String("location", event.Location))
	}

	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.Int("size", event.Frame.Size),
			slog.String("hint", event.Frame.Hint),
		)
		if event.Frame.Padded != 0 {
			attrs = append(attrs, slog.Int("padded", event.Frame.Padded))
		}
		if event.Frame.Truncated {
			attrs = append(attrs, slog.Bool("truncated", true))
		}
	case event.Exchange != nil:
		attrs = append(attrs,
			slog.String("protocol", event.Exchange.Protocol),
			slog.String("exchange", event.Exchange.Name),
			slog.Int("transfers", event.Exchange.Transfers),
			slog.Duration("duration", event.Exchange.Duration),
			slog.String("result", event.Exchange.Result),
		)
		if event.Exchange.MessageType != 0 {
			attrs = append(attrs, slog.Uint64("msg_type", uint64(event.Exchange.MessageType)))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_kind", event.Error.Kind),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "capture", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
