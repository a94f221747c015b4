package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/sagilyp/lab4/myattacks"
	"github.com/sagilyp/lab4/myproblems"
	"github.com/sagilyp/lab4/mysearch"
)

// сколько коллизий последнего запуска сохранять в файл
const collisionsToSave = 100

func main() {
	st, err := loadSettings(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}
	lvl, _ := st.level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))

	prng, err := newRand(st.Seed)
	if err != nil {
		log.Fatalf("Cannot seed PRNG: %v", err)
	}

	reg := prometheus.NewRegistry()
	metrics := mysearch.NewMetrics(reg)
	if st.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(st.MetricsAddr, mux); err != nil {
				logger.Error("metrics server stopped", "err", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	opts := []mysearch.Option{mysearch.WithLogger(logger), mysearch.WithMetrics(metrics), mysearch.WithRand(prng)}

	// Запустим эксперименты для разных значений outBits
	var bResults []Result
	var pResults []Result
	for _, bits := range st.OutBits {
		fmt.Printf("\n=== Experiment for %s truncated to %d bits ===\n", st.Algo, bits)
		pb, err := myproblems.NewTruncatedHash(st.Algo, st.MsgLen, bits)
		if err != nil {
			log.Fatalf("Problem error for %d bits: %v", bits, err)
		}
		if st.Birthday {
			bColls, bIters, bMem, bElapsed, err := myattacks.BirthdayAttack[string, string, uint64](pb, st.Search.Target, prng)
			if err != nil {
				log.Fatalf("Birthday Attack error for %d bits: %v", bits, err)
			}
			bResults = append(bResults, Result{
				OutBits:    bits,
				Iterations: uint64(bIters),
				Passed:     bElapsed,
				Memory:     uint64(bMem) / 8,
				Collisions: bColls,
			})
		}
		cfg, err := searchConfig(st, pb.DomainC())
		if err != nil {
			log.Fatalf("Search config for %d bits: %v", bits, err)
		}
		pColls, pStats, err := myattacks.PollardAttack[string, string, uint64](ctx, pb, cfg, opts...)
		res := Result{
			OutBits:    bits,
			Iterations: pStats.Steps,
			Passed:     pStats.Elapsed,
			Memory:     pStats.DictBytes,
			Stats:      pStats,
			Collisions: pColls,
		}
		printRun(os.Stdout, res)
		if err != nil {
			logger.Warn("search interrupted", "bits", bits, "err", err)
			break
		}
		pResults = append(pResults, res)
	}

	if len(pResults) > 0 {
		last := pResults[len(pResults)-1]
		if err := writeCollisions(st.CollFile, last.Collisions, collisionsToSave); err != nil {
			log.Fatalf("Cannot write collisions: %v", err)
		}
		fmt.Printf("Collisions for %d-bit output saved to %s\n", last.OutBits, st.CollFile)
		if st.GraphDir != "" {
			if err := plotResults(st.GraphDir, st.Search.Target, bResults[:min(len(bResults), len(pResults))], pResults); err != nil {
				log.Fatal(err)
			}
			fmt.Printf("Graphs saved to %s\n", st.GraphDir)
		}
	}

	if st.ClawBits > 0 && ctx.Err() == nil {
		if err := runClaw(ctx, st, prng, opts); err != nil {
			log.Fatalf("Double AES attack: %v", err)
		}
	}
}

func newRand(seed uint64) (*rand.Rand, error) {
	if seed == 0 {
		return mysearch.NewEntropyRand()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), nil
}

// runClaw - встреча посередине для двойного AES с короткими ключами.
func runClaw(ctx context.Context, st Settings, prng *rand.Rand, opts []mysearch.Option) error {
	fmt.Printf("\n=== Meet-in-the-middle on double AES with %d-bit keys ===\n", st.ClawBits)
	pb, k1, k2, err := myproblems.NewDoubleAESChallenge(st.ClawBits, prng)
	if err != nil {
		return err
	}
	cfg, err := searchConfig(st, pb.DomainC())
	if err != nil {
		return err
	}
	r1, r2, stats, err := recoverKeys(ctx, pb, cfg, opts...)
	printRun(os.Stdout, Result{Stats: stats})
	if err != nil {
		return err
	}
	fmt.Printf("  planted keys:    %x %x\n", k1, k2)
	fmt.Printf("  recovered keys:  %x %x\n", r1, r2)
	return nil
}

// recoverKeys ищет claw, прошедший проверку второй парой текстов,
// и возвращает ключи (k1, k2).
func recoverKeys(ctx context.Context, pb *myproblems.DoubleAES, cfg mysearch.Config, opts ...mysearch.Option) (k1, k2 uint64, stats mysearch.Stats, err error) {
	cfg.Target = 1
	cfg.RequireClaw = true
	colls, stats, err := myattacks.PollardAttack[uint64, uint64, uint64](ctx, pb, cfg, opts...)
	if err != nil {
		return 0, 0, stats, err
	}
	if len(colls) == 0 {
		return 0, 0, stats, errors.New("keys not found within the probe budget")
	}
	if k1, err = decodeKey(pb, colls[0].X); err != nil {
		return 0, 0, stats, err
	}
	if k2, err = decodeKey(pb, colls[0].Y); err != nil {
		return 0, 0, stats, err
	}
	return k1, k2, stats, nil
}

// decodeKey - ключ из hex-записи сериализованного прообраза
func decodeKey(pb *myproblems.DoubleAES, s string) (uint64, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return 0, err
	}
	dom := pb.DomainA()
	if len(raw) != dom.Length() {
		return 0, fmt.Errorf("key %s: want %d bytes", s, dom.Length())
	}
	var k uint64
	dom.Unserialize(raw, &k)
	return k, nil
}
