package myattacks

import (
	"context"
	"fmt"

	"github.com/sagilyp/lab4/mydomain"
	"github.com/sagilyp/lab4/mysearch"
)

// PollardConfig - параметры поиска по отличительным точкам для эксперимента
func PollardConfig(distinguishedBits, numColls, numWorkers int, slots uint64) mysearch.Config {
	cfg := mysearch.DefaultConfig()
	cfg.Theta = distinguishedBits
	cfg.Target = numColls
	cfg.Workers = numWorkers
	if slots != 0 {
		cfg.Slots = slots
	}
	if numWorkers > 1 {
		cfg.Shards = numWorkers
	}
	return cfg
}

// PollardAttack ищет коллизии методом отличительных точек
// (параллельная версия ро-метода Полларда).
func PollardAttack[A, B, C any](ctx context.Context, pb mydomain.Problem[A, B, C], cfg mysearch.Config, opts ...mysearch.Option) ([]Collision, mysearch.Stats, error) {
	e, err := mysearch.New(pb, cfg, opts...)
	if err != nil {
		return nil, mysearch.Stats{}, err
	}
	res, err := e.Run(ctx)
	collisions := make([]Collision, 0, len(res.Pairs))
	for _, pair := range res.Pairs {
		collisions = append(collisions, FromPair(pb.DomainC(), pair))
	}
	st := res.Stats
	fmt.Printf("Pollard Attack (%d-bit): Found %d collisions after %d probes, %d steps, %d false alarms (%s elapsed).\n",
		domainBits(pb.DomainC()), len(collisions), st.Probes, st.Steps, st.FalsePositives, st.Elapsed)
	return collisions, st, err
}
