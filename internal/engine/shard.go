package engine

import (
	"context"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/monetate/monte-carlo-simulator/internal/constants"
	"github.com/monetate/monte-carlo-simulator/internal/draws"
	"github.com/monetate/monte-carlo-simulator/internal/record"
)

// trialRange is a half-open range of trial indices owned by one worker.
type trialRange struct {
	lo, hi int
}

// splitTrials divides [0, trials) into n contiguous ranges whose sizes
// differ by at most one.
func splitTrials(trials, n int) []trialRange {
	ranges := make([]trialRange, n)
	size, rem := trials/n, trials%n
	lo := 0
	for k := range ranges {
		hi := lo + size
		if k < rem {
			hi++
		}
		ranges[k] = trialRange{lo: lo, hi: hi}
		lo = hi
	}
	return ranges
}

// runSharded partitions the trial axis across workers. A reader goroutine
// fans out batches of entities to every worker; worker k draws from shard k
// and writes only its own rows, so the matrix needs no locking. Each cell is
// updated by one worker in input order, which makes the output reproducible
// for a fixed worker count.
func (e *Engine) runSharded(ctx context.Context, records RecordSource) (*Result, error) {
	m, err := e.newMatrix()
	if err != nil {
		return nil, err
	}

	ranges := splitTrials(e.cfg.Trials, e.cfg.Workers)
	sources := make([]draws.Source, len(ranges))
	for k := range ranges {
		src, err := draws.New(e.cfg.Algorithm, e.cfg.Seed, k)
		if err != nil {
			return nil, err
		}
		sources[k] = src
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	feeds := make([]chan []record.Summary, len(ranges))
	perWorker := make([][]uint64, len(ranges))
	for k, r := range ranges {
		feed := make(chan []record.Summary, 2)
		feeds[k] = feed
		assignments := make([]uint64, m.groups)
		perWorker[k] = assignments
		src := sources[k]

		g.Go(func() error {
			buf := make([]float64, r.hi-r.lo)
			for batch := range feed {
				for _, s := range batch {
					src.Fill(buf)
					accumulate(m, r.lo, buf, s, e.sampler, assignments)
				}
			}
			return nil
		})
	}

	var entities int64
	g.Go(func() error {
		defer func() {
			for _, feed := range feeds {
				close(feed)
			}
		}()

		// Batches are shared read-only by all workers, so each send gets a
		// fresh slice.
		batch := make([]record.Summary, 0, constants.ShardBatchSize)
		send := func() error {
			for _, feed := range feeds {
				select {
				case feed <- batch:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			batch = make([]record.Summary, 0, constants.ShardBatchSize)
			return nil
		}

		for {
			s, err := records.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
			batch = append(batch, s)
			entities++
			if len(batch) == constants.ShardBatchSize {
				if err := send(); err != nil {
					return err
				}
			}
		}
		if len(batch) > 0 {
			return send()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The parent context may be cancelled after the last send.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	assignments := make([]uint64, m.groups)
	for _, wa := range perWorker {
		for gi, n := range wa {
			assignments[gi] += n
		}
	}
	return e.finish(m, entities, assignments, start), nil
}
