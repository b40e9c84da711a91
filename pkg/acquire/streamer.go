// Package acquire drives sustained buffered acquisition.
//
// The driver never retries. A Streamer is the caller-side policy on top of
// a fast buffer: it starts batches, retrieves records as they become
// available and retries retrievals that time out with exponential backoff.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/protocol/obp"
)

// Default retry settings.
const (
	DefaultInitialInterval = 5 * time.Millisecond
	DefaultMaxInterval     = 250 * time.Millisecond
	DefaultMaxWait         = 5 * time.Second
	DefaultBatch           = 100
)

// ErrStopped is returned by a handler to end a run early without error.
var ErrStopped = errors.New("acquisition stopped")

// Source is a pipelined record source. *features.FastBuffer implements it.
type Source interface {
	RecordSize() int
	Begin(n int) error
	Retrieve(out []byte) (int, error)
	Records(p []byte, count int) ([]obp.Record, error)
}

// Config tunes a Streamer.
type Config struct {
	// Batch is the number of records requested per Begin. At most two
	// batches are outstanding at once.
	Batch int

	// InitialInterval and MaxInterval shape the retry backoff.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// MaxWait bounds the total retry time of one retrieval. A retrieval
	// still timing out after MaxWait fails the run with fault.ErrTimeout.
	MaxWait time.Duration

	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Batch <= 0 {
		c.Batch = DefaultBatch
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = DefaultInitialInterval
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = DefaultMaxInterval
	}
	if c.MaxWait <= 0 {
		c.MaxWait = DefaultMaxWait
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// Stats summarizes a run.
type Stats struct {
	Records  int
	Batches  int
	Retries  int
	Duration time.Duration
}

// Rate returns records per second.
func (s Stats) Rate() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Records) / s.Duration.Seconds()
}

// Streamer acquires records from a Source.
type Streamer struct {
	src Source
	cfg Config
	buf []byte
}

// NewStreamer creates a streamer whose retrieve buffer holds one batch.
func NewStreamer(src Source, cfg Config) *Streamer {
	cfg = cfg.withDefaults()
	return &Streamer{
		src: src,
		cfg: cfg,
		buf: make([]byte, cfg.Batch*src.RecordSize()),
	}
}

// Run acquires total records, passing each retrieved group to handle in
// acquisition order. A handler returning ErrStopped ends the run cleanly.
//
// The next batch is started before the current one is drained, so the
// device keeps acquiring while records are read back. Its buffer must hold
// two batches.
func (s *Streamer) Run(ctx context.Context, total int, handle func([]obp.Record) error) (st Stats, err error) {
	if total < 1 {
		return st, fmt.Errorf("%w: %d records", fault.ErrIllegalArgument, total)
	}
	start := time.Now()
	defer func() { st.Duration = time.Since(start) }()

	begun := 0
	begin := func() error {
		n := min(s.cfg.Batch, total-begun)
		if err := s.src.Begin(n); err != nil {
			return fmt.Errorf("begin batch of %d: %w", n, err)
		}
		begun += n
		st.Batches++
		return nil
	}
	if err := begin(); err != nil {
		return st, err
	}

	for st.Records < total {
		if begun < total && begun-st.Records <= s.cfg.Batch {
			if err := begin(); err != nil {
				return st, err
			}
		}

		count, err := s.retrieve(ctx, &st)
		if err != nil {
			return st, err
		}
		if outstanding := begun - st.Records; count > outstanding {
			return st, fmt.Errorf("%w: retrieved %d records with %d outstanding", fault.ErrFormat, count, outstanding)
		}
		recs, err := s.src.Records(s.buf, count)
		if err != nil {
			return st, err
		}
		st.Records += count
		if err := handle(recs); err != nil {
			if errors.Is(err, ErrStopped) {
				return st, nil
			}
			return st, err
		}
	}
	s.cfg.Logger.Debug("acquisition complete", "records", st.Records, "batches", st.Batches, "retries", st.Retries)
	return st, nil
}

// retrieve fills s.buf, retrying timeouts. Other errors end the retries.
func (s *Streamer) retrieve(ctx context.Context, st *Stats) (int, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.cfg.InitialInterval
	eb.MaxInterval = s.cfg.MaxInterval
	eb.MaxElapsedTime = s.cfg.MaxWait
	eb.Reset()

	op := func() (int, error) {
		n, err := s.src.Retrieve(s.buf)
		if err != nil && !fault.IsTimeout(err) {
			return 0, backoff.Permanent(err)
		}
		return n, err
	}
	notify := func(err error, next time.Duration) {
		st.Retries++
		s.cfg.Logger.Debug("retrieve timed out, retrying", "next", next, "error", err)
	}
	return backoff.RetryNotifyWithData(op, backoff.WithContext(eb, ctx), notify)
}
