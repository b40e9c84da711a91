package protocol

import (
	"errors"
	"fmt"
	"time"

	"github.com/lumen-instruments/spectro-go/pkg/bus"
	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/log"
	"github.com/lumen-instruments/spectro-go/pkg/metrics"
)

// ErrNoTransfers indicates an empty transaction.
var ErrNoTransfers = errors.New("transaction has no transfers")

// Link is the active protocol and bus of an open device, plus the sinks
// exchanges report to.
type Link struct {
	Protocol Protocol
	Bus      bus.Bus

	DeviceID uint32
	Capture  log.Logger
	Metrics  *metrics.Collector
}

// Transaction is an ordered list of transfers over one helper whose result
// is the decoded response of the last transfer.
type Transaction[T any] struct {
	// Name identifies the exchange in logs and metrics.
	Name string

	// Code is the opcode or message type, for logs.
	Code uint32

	// Hint selects the TransferHelper.
	Hint bus.Hint

	Transfers []Transfer

	// Decode turns the last response into a value. A nil Decode returns
	// the zero T.
	Decode func(last []byte) (T, error)
}

// Execute runs the transaction on l. Any transfer failure aborts the
// remaining transfers and is returned unchanged.
func (tx Transaction[T]) Execute(l *Link) (T, error) {
	var zero T
	if l == nil || l.Bus == nil {
		return zero, fmt.Errorf("%w: no active bus", fault.ErrNotOpen)
	}
	if len(tx.Transfers) == 0 {
		return zero, fmt.Errorf("%w: %s: %w", fault.ErrIllegalArgument, tx.Name, ErrNoTransfers)
	}

	h, err := l.Bus.Helper(tx.Hint)
	if err != nil {
		return zero, err
	}

	start := time.Now()
	result, err := tx.run(h)
	l.observe(tx.Name, tx.Code, len(tx.Transfers), time.Since(start), err)
	return result, err
}

func (tx Transaction[T]) run(h bus.TransferHelper) (T, error) {
	var zero T
	var last []byte
	for i, t := range tx.Transfers {
		resp, err := t.Do(h)
		if err != nil {
			return zero, fmt.Errorf("%s: transfer %d/%d: %w", tx.Name, i+1, len(tx.Transfers), err)
		}
		last = resp
	}
	if tx.Decode == nil {
		return zero, nil
	}
	v, err := tx.Decode(last)
	if err != nil {
		return zero, fmt.Errorf("%s: decode: %w", tx.Name, err)
	}
	return v, nil
}

func (l *Link) observe(name string, code uint32, transfers int, d time.Duration, err error) {
	l.Metrics.Exchange(l.Protocol.String(), name, d)
	if l.Capture == nil {
		return
	}
	ev := log.Event{
		Timestamp: time.Now(),
		SessionID: l.Bus.SessionID(),
		Layer:     log.LayerExchange,
		Category:  log.CategoryMessage,
		DeviceID:  l.DeviceID,
		Bus:       l.Bus.Kind().String(),
		Exchange: &log.ExchangeEvent{
			Protocol:    l.Protocol.String(),
			Name:        name,
			MessageType: code,
			Transfers:   transfers,
			Duration:    d,
			Result:      fault.KindOf(err).String(),
		},
	}
	if err != nil {
		ev.Category = log.CategoryError
	}
	l.Capture.Log(ev)
}
