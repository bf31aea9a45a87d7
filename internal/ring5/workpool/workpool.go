// Package workpool implements the Parse Work unit and the persistent,
// process-wide worker pool that dispatches Parse Works across a fixed set
// of tokenizer-invoking goroutines.
package workpool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/nikiitin/ring5/internal/ring5/stattype"
	"github.com/nikiitin/ring5/internal/ring5/tokenizer"
)

// DefaultPoolSize is used when RING5_WORKER_POOL_SIZE is unset or invalid.
const DefaultPoolSize = 4

// PoolSizeEnvVar names the environment variable controlling the number of
// persistent tokenizer workers.
const PoolSizeEnvVar = "RING5_WORKER_POOL_SIZE"

// ErrMissingFile is returned when a Work's file does not exist at
// execution time.
var ErrMissingFile = errors.New("parse work file missing")

// Work bundles one file's parse job: the file path and the Stat-by-name
// map (including parsed_ids aliases) that the Line Parser feeds.
type Work struct {
	FilePath      string
	StatByName    map[string]stattype.Stat
	RequestedKind map[string]stattype.Kind
	Names         []string
}

// Result is the outcome of one Work: either the populated StatByName map
// (observations fed, not yet balanced/reduced) or an error. A failed Work
// never cancels its siblings.
type Result struct {
	FilePath   string
	StatByName map[string]stattype.Stat
	Warnings   []string
	Err        error
}

// Future is a handle to one Work's eventual Result. Futures are correlated
// to submissions positionally: submission i corresponds to futures[i].
type Future struct {
	done chan Result
}

// Wait blocks until the Work completes or ctx is done.
func (f *Future) Wait(ctx context.Context) (Result, error) {
	select {
	case res := <-f.done:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

type job struct {
	work     Work
	resultCh chan Result
}

// Pool is a process-wide, explicitly-constructed persistent worker pool.
// Its size is fixed at construction (read from the environment, not
// lazily initialized on first use), and its goroutines live for the
// pool's entire lifetime, amortizing goroutine start-up cost across many
// batches the way a persistent tokenizer worker set would.
type Pool struct {
	tokenizerPath string
	logger        *slog.Logger
	jobs          chan job
	quit          chan struct{}
	wg            sync.WaitGroup
	closeOnce     sync.Once
}

// SizeFromEnv reads RING5_WORKER_POOL_SIZE, falling back to
// DefaultPoolSize when unset or not a positive integer.
func SizeFromEnv() int {
	raw := os.Getenv(PoolSizeEnvVar)
	if raw == "" {
		return DefaultPoolSize
	}

	size, err := strconv.Atoi(raw)
	if err != nil || size <= 0 {
		return DefaultPoolSize
	}

	return size
}

// New constructs a Pool with size persistent workers dispatching to the
// external tokenizer at tokenizerPath.
func New(tokenizerPath string, size int, logger *slog.Logger) *Pool {
	if size <= 0 {
		size = DefaultPoolSize
	}

	if logger == nil {
		logger = slog.Default()
	}

	p := &Pool{
		tokenizerPath: tokenizerPath,
		logger:        logger,
		jobs:          make(chan job, size),
		quit:          make(chan struct{}),
	}

	for range size {
		p.wg.Add(1)

		go p.runWorker()
	}

	return p
}

func (p *Pool) runWorker() {
	defer p.wg.Done()

	for {
		select {
		case j, ok := <-p.jobs:
			if !ok {
				return
			}

			res := p.execute(j.work)
			if res.Err != nil {
				p.logger.Warn("parse work failed", "file", res.FilePath, "error", res.Err)
			}

			j.resultCh <- res
		case <-p.quit:
			return
		}
	}
}

// Submit enqueues a batch of Works and returns one Future per Work, in
// submission order. Work execution order is unspecified; the pool
// guarantees at-least-once execution and exactly-once result delivery per
// submitted Work.
func (p *Pool) Submit(works []Work) []*Future {
	futures := make([]*Future, len(works))

	for i, w := range works {
		f := &Future{done: make(chan Result, 1)}
		futures[i] = f

		p.jobs <- job{work: w, resultCh: f.done}
	}

	return futures
}

func (p *Pool) execute(w Work) Result {
	if _, err := os.Stat(w.FilePath); err != nil {
		return Result{FilePath: w.FilePath, Err: fmt.Errorf("%w: %s", ErrMissingFile, w.FilePath)}
	}

	ctx := context.Background()

	records, err := tokenizer.Run(ctx, p.tokenizerPath, w.FilePath, w.Names)
	if err != nil {
		return Result{FilePath: w.FilePath, Err: err}
	}

	parser := tokenizer.NewLineParser(w.StatByName, w.RequestedKind)

	for _, record := range records {
		if err := parser.Feed(record); err != nil {
			return Result{FilePath: w.FilePath, Err: fmt.Errorf("%s: %w", w.FilePath, err)}
		}
	}

	if err := parser.Finish(); err != nil {
		return Result{FilePath: w.FilePath, Err: fmt.Errorf("%s: %w", w.FilePath, err)}
	}

	return Result{FilePath: w.FilePath, StatByName: w.StatByName, Warnings: parser.Warnings()}
}

// Shutdown stops accepting new work and signals workers to exit once
// idle. Pending Works not yet picked up by a worker are abandoned
// best-effort; in-flight Works run to completion or their tokenizer
// timeout.
func (p *Pool) Shutdown() {
	p.closeOnce.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}
