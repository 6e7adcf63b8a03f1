// Package engine runs image operators against a linear processing history.
// Each invocation validates its source indices, executes on a worker pool,
// and either appends one new record or records a single error message.
// Only one operator runs at a time; a concurrent invocation fails with
// ErrBusy.
package engine

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/Fepozopo/imgbench/pkg/imgproc"
	"github.com/Fepozopo/imgbench/pkg/pixel"
	"github.com/Fepozopo/imgbench/pkg/workerpool"
)

// StatusIdle is the status while no operator runs.
const StatusIdle = "idle"

// DefaultMaxPixels bounds the size of any grid the engine creates.
const DefaultMaxPixels = 64 << 20

// Options configures an Engine. The zero value is usable.
type Options struct {
	// Workers sizes the engine's own pool when Pool is nil.
	Workers int
	// Pool, when set, is used instead of a private pool and is not closed
	// by Engine.Close.
	Pool *workerpool.Pool
	// Logger receives one record per operator invocation. Nil discards.
	Logger *slog.Logger
	// NoiseSeed seeds the generator that picks per-call noise seeds.
	// Zero seeds it from the clock.
	NoiseSeed int64
	// MaxPixels bounds width*height of loaded and resampled grids.
	// Zero means DefaultMaxPixels.
	MaxPixels int
}

// Engine owns a History and serializes operators against it.
type Engine struct {
	history   History
	pool      *workerpool.Pool
	ownsPool  bool
	logger    *slog.Logger
	maxPixels int

	seedMu sync.Mutex
	seeds  *rand.Rand

	stateMu sync.Mutex
	status  string
	lastErr string
}

// New creates an Engine.
func New(opts Options) *Engine {
	e := &Engine{
		pool:      opts.Pool,
		logger:    opts.Logger,
		maxPixels: opts.MaxPixels,
		status:    StatusIdle,
	}
	if e.pool == nil {
		e.pool = workerpool.New(opts.Workers)
		e.ownsPool = true
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.maxPixels <= 0 {
		e.maxPixels = DefaultMaxPixels
	}
	seed := opts.NoiseSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	e.seeds = rand.New(rand.NewSource(seed))
	return e
}

// Close releases the engine's private worker pool.
func (e *Engine) Close() {
	if e.ownsPool {
		e.pool.Close()
	}
}

// Status returns StatusIdle or the name of the running operator.
func (e *Engine) Status() string {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.status
}

// LastError returns the message of the most recent failure, or "" if the
// last operator succeeded.
func (e *Engine) LastError() string {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.lastErr
}

// Len returns the number of history records.
func (e *Engine) Len() int { return e.history.Len() }

// Records returns a snapshot of the history.
func (e *Engine) Records() []Record { return e.history.Snapshot() }

// Record returns the record at index i.
func (e *Engine) Record(i int) (Record, error) { return e.history.Get(i) }

func (e *Engine) begin(name string) error {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	if e.status != StatusIdle {
		return errors.Wrapf(ErrBusy, "cannot start %s while %s is running", name, e.status)
	}
	e.status = name
	return nil
}

func (e *Engine) finish(err error) {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	e.status = StatusIdle
	if err != nil {
		e.lastErr = err.Error()
	} else {
		e.lastErr = ""
	}
}

// sourceRef names a history index an operator reads.
type sourceRef struct {
	role  string
	index int
}

// operation describes one operator invocation for runOperator.
type operation struct {
	name    string
	kind    RecordKind
	sources []sourceRef
	params  Params
	// bitDepth of the result; zero means 8.
	bitDepth int
	// forceGray marks the result grayscale without scanning it.
	forceGray bool
	// replace clears the history before appending the result.
	replace bool
	run     func(ctx context.Context, inputs []*pixel.Grid) (*pixel.Grid, error)
}

// runOperator validates the operation's sources, runs it on the pool and
// appends the result. On failure the history is untouched and the error
// message is kept for LastError.
func (e *Engine) runOperator(ctx context.Context, op operation) (rec Record, err error) {
	if err := e.begin(op.name); err != nil {
		return Record{}, err
	}
	start := time.Now()
	log := e.logger.With("operator", op.name)
	defer func() {
		if err != nil {
			log.Warn("operator failed", "error", err, "duration", time.Since(start))
		}
		e.finish(err)
	}()

	inputs := make([]*pixel.Grid, len(op.sources))
	indices := make([]int, len(op.sources))
	for i, ref := range op.sources {
		r, gerr := e.history.Get(ref.index)
		if gerr != nil {
			return Record{}, errors.Wrapf(gerr, "%s: %s image", op.name, ref.role)
		}
		inputs[i] = r.Grid
		indices[i] = ref.index
	}
	log.Info("operator started", "sources", indices)

	var out *pixel.Grid
	err = e.pool.Run(ctx, func(ctx context.Context) error {
		var rerr error
		out, rerr = op.run(ctx, inputs)
		return rerr
	})
	if err != nil {
		return Record{}, errors.Wrapf(err, "%s failed", op.name)
	}

	rec = Record{
		Kind:        op.kind,
		Grid:        out,
		Source:      NoSource,
		BitDepth:    op.bitDepth,
		IsGrayscale: op.forceGray || out.IsGrayscale(),
		Params:      op.params,
		Elapsed:     time.Since(start),
	}
	if len(indices) > 0 {
		rec.Source = indices[0]
	}
	if rec.BitDepth == 0 {
		rec.BitDepth = 8
	}
	if op.replace {
		e.history.reset()
	}
	rec = e.history.append(rec)
	log.Info("operator finished", "index", rec.Index, "width", out.Width, "height", out.Height, "duration", rec.Elapsed)
	return rec, nil
}

func (e *Engine) checkSize(w, h int) error {
	if int64(w)*int64(h) > int64(e.maxPixels) {
		return errors.Wrapf(imgproc.ErrInvalidParameter, "%dx%d exceeds the %d pixel limit", w, h, e.maxPixels)
	}
	return nil
}

// nextNoiseSeed returns a non-zero seed for one noise invocation.
func (e *Engine) nextNoiseSeed() int64 {
	e.seedMu.Lock()
	defer e.seedMu.Unlock()
	for {
		if s := e.seeds.Int63(); s != 0 {
			return s
		}
	}
}

// PopLast removes the newest record. Records whose Source pointed at it
// are left as they are.
func (e *Engine) PopLast() error {
	if err := e.begin("pop-last"); err != nil {
		return err
	}
	r, err := e.history.pop()
	e.finish(err)
	if err != nil {
		return err
	}
	e.logger.Info("record popped", "index", r.Index, "kind", r.Kind.String())
	return nil
}

// Reset clears the history.
func (e *Engine) Reset() error {
	if err := e.begin("reset"); err != nil {
		return err
	}
	e.history.reset()
	e.finish(nil)
	e.logger.Info("history reset")
	return nil
}
