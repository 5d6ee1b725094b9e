// Package extractor turns raw emulation reads into validated GameState
// snapshots. The actual memory decoding is title-specific and stays behind
// the Decoder interface; this package owns the validity contract: snapshots
// violating the documented ranges (a common artifact of mid-transition
// memory) are discarded in favour of the previous known-good snapshot, with
// a warning, never surfaced as a hard failure.
package extractor

import (
	"sync/atomic"
	"time"

	"github.com/vaibhavi8/autoplay/core"
	"github.com/vaibhavi8/autoplay/logging"
)

// Decoder reads the live emulation memory and produces a raw snapshot.
// Implementations are title-specific (memory map, encodings) and may return
// an error on unreadable memory; the extractor treats any error the same way
// it treats a range violation.
type Decoder interface {
	Decode() (core.GameState, error)
}

// Options configures an Extractor.
type Options struct {
	Logger logging.Logger
}

// Extractor wraps a Decoder with range validation and a degrade-to-previous
// policy. Extract is called from the orchestrator's loop only; the cadence
// is the orchestrator's concern and is decoupled from frame advancement.
type Extractor struct {
	decoder Decoder
	opts    Options

	prev core.GameState
	seq  atomic.Uint64
}

// New constructs an Extractor. Until the first good decode, Extract returns
// a zero snapshot, which always validates.
func New(decoder Decoder, optFns ...func(o *Options)) *Extractor {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Extractor{decoder: decoder, opts: opts}
}

// Extract produces the next snapshot. On a decode error or range violation
// it logs a warning and returns the previous known-good snapshot with a
// fresh sequence number, so snapshot ordering stays monotonic even across
// bad reads.
func (e *Extractor) Extract() core.GameState {
	seq := e.seq.Add(1)

	s, err := e.decoder.Decode()
	if err == nil {
		err = s.Validate()
	}
	if err != nil {
		e.warn(seq, err)
		s = e.prev.Clone()
	} else {
		e.prev = s.Clone()
	}

	s.Seq = seq
	s.ExtractedAt = time.Now().UTC()
	return s
}

// Last returns the previous known-good snapshot without touching the
// emulation.
func (e *Extractor) Last() core.GameState { return e.prev.Clone() }

func (e *Extractor) warn(seq uint64, err error) {
	if sl, ok := e.opts.Logger.(*logging.SessionLogger); ok {
		sl.LogExtractionWarning(seq, err)
		return
	}
	e.opts.Logger.Warn("extraction degraded to previous snapshot", "seq", seq, "cause", err)
}
