package mysearch

import (
	"context"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
)

// runParallel запускает cfg.Workers независимых зондирующих горутин.
// У каждой свои буферы цепочек и свой prng, общие только словарь
// (с короткой блокировкой на PopInsert) и счетчики.
func (e *Engine[A, B, C]) runParallel(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	for i := 0; i < e.cfg.Workers; i++ {
		prng := rand.New(rand.NewPCG(e.prng.Uint64(), e.prng.Uint64()))
		w, err := e.newWorker(prng)
		if err != nil {
			return err
		}
		g.Go(func() error {
			for gctx.Err() == nil {
				if e.finished() {
					cancel()
					return nil
				}
				e.probe(w, e.embedding.Load())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
