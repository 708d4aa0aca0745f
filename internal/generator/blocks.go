package generator

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"
)

// blockSize is the number of rows sharing one random stream. It is fixed so
// that output does not depend on how many workers run the blocks.
const blockSize = 1024

type stage uint64

const (
	stageUsers stage = iota + 1
	stageSubscriptions
	stageWatchHistory
)

// stream returns the random source owned by one block of one stage.
func stream(seed uint64, s stage, block int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(s)<<32|uint64(block)))
}

// fillBlocks splits [0, n) into blocks and runs fill for each on at most
// workers goroutines. Each call owns the disjoint index range [lo, hi).
func fillBlocks(ctx context.Context, seed uint64, s stage, n, workers int, fill func(r *rand.Rand, lo, hi int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for block, lo := 0, 0; lo < n; block, lo = block+1, lo+blockSize {
		hi := min(lo+blockSize, n)
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fill(stream(seed, s, block), lo, hi)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// randomDate samples a day uniformly from the inclusive range.
func randomDate(r *rand.Rand, start time.Time, days int) time.Time {
	return start.AddDate(0, 0, r.IntN(days+1))
}
