package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/sagilyp/lab4/myattacks"
	"github.com/sagilyp/lab4/mydomain"
	"github.com/sagilyp/lab4/myproblems"
	"github.com/sagilyp/lab4/mysearch"
)

var OutBitsList = []int{8, 10, 12, 14, 16, 18, 20, 22, 24}

// Settings - параметры запуска экспериментов
type Settings struct {
	Algo        string          `yaml:"algo"`
	MsgLen      int             `yaml:"msg_len"`
	OutBits     []int           `yaml:"out_bits"`
	MaxMem      string          `yaml:"max_mem"` // ограничение на словарь, например "512MB"
	Birthday    bool            `yaml:"birthday"`
	ClawBits    int             `yaml:"claw_bits"` // >0: атака на двойной AES с ключами из ClawBits бит
	Seed        uint64          `yaml:"seed"`      // 0 - случайное зерно
	CollFile    string          `yaml:"collisions_file"`
	GraphDir    string          `yaml:"graph_dir"`
	LogLevel    string          `yaml:"log_level"`
	MetricsAddr string          `yaml:"metrics_addr"`
	Search      mysearch.Config `yaml:"search"`
}

func defaultSettings() Settings {
	search := mysearch.DefaultConfig()
	search.Theta = myattacks.DistBits
	search.Target = myattacks.NumCollisionNeeded
	search.Workers = myattacks.NumWorkers
	search.Shards = myattacks.NumWorkers
	search.Slots = 0 // из MaxMem
	return Settings{
		Algo:     myproblems.AlgoSHA256,
		MsgLen:   myattacks.MsgLen,
		OutBits:  OutBitsList,
		MaxMem:   "64MB",
		Birthday: true,
		CollFile: "collisions.txt",
		GraphDir: "graphs",
		LogLevel: "info",
		Search:   search,
	}
}

// loadSettings: значения по умолчанию, затем YAML из --config,
// затем явно заданные флаги.
func loadSettings(args []string) (Settings, error) {
	st := defaultSettings()
	fs := pflag.NewFlagSet("lab4", pflag.ContinueOnError)
	configPath := fs.String("config", "", "YAML file with settings")
	algo := fs.String("algo", st.Algo, "hash function: sha256, blake3, blake2b, sha3")
	msgLen := fs.Int("msg-len", st.MsgLen, "message length in bytes")
	outBits := fs.IntSlice("out-bits", st.OutBits, "truncated output sizes to sweep")
	collisions := fs.IntP("collisions", "n", st.Search.Target, "collisions per experiment")
	theta := fs.Int("theta", st.Search.Theta, "distinguishing bits")
	workers := fs.IntP("workers", "w", st.Search.Workers, "search goroutines")
	shards := fs.Int("shards", st.Search.Shards, "dictionary shards")
	slots := fs.Uint64("slots", st.Search.Slots, "dictionary slots, 0 to derive from --max-mem")
	maxMem := fs.String("max-mem", st.MaxMem, "dictionary memory cap")
	birthday := fs.Bool("birthday", st.Birthday, "also run the naive birthday attack")
	clawBits := fs.Int("claw-bits", st.ClawBits, "key size of the double AES demo, 0 to skip")
	seed := fs.Uint64("seed", st.Seed, "PRNG seed, 0 for OS entropy")
	collFile := fs.StringP("out", "o", st.CollFile, "collisions output file")
	graphDir := fs.String("graphs", st.GraphDir, "directory for plots, empty to skip")
	logLevel := fs.String("log-level", st.LogLevel, "debug, info, warn or error")
	metricsAddr := fs.String("metrics-addr", st.MetricsAddr, "serve prometheus metrics on this address")
	if err := fs.Parse(args); err != nil {
		return st, err
	}
	if fs.NArg() > 0 {
		return st, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return st, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &st); err != nil {
			return st, fmt.Errorf("parse config %s: %w", *configPath, err)
		}
	}

	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("algo", func() { st.Algo = *algo })
	set("msg-len", func() { st.MsgLen = *msgLen })
	set("out-bits", func() { st.OutBits = *outBits })
	set("collisions", func() { st.Search.Target = *collisions })
	set("theta", func() { st.Search.Theta = *theta })
	set("workers", func() { st.Search.Workers = *workers })
	set("shards", func() { st.Search.Shards = *shards })
	set("slots", func() { st.Search.Slots = *slots })
	set("max-mem", func() { st.MaxMem = *maxMem })
	set("birthday", func() { st.Birthday = *birthday })
	set("claw-bits", func() { st.ClawBits = *clawBits })
	set("seed", func() { st.Seed = *seed })
	set("out", func() { st.CollFile = *collFile })
	set("graphs", func() { st.GraphDir = *graphDir })
	set("log-level", func() { st.LogLevel = *logLevel })
	set("metrics-addr", func() { st.MetricsAddr = *metricsAddr })

	return st, st.Validate()
}

func (st Settings) Validate() error {
	if len(st.OutBits) == 0 {
		return errors.New("no output sizes to sweep")
	}
	for _, bits := range st.OutBits {
		if _, err := myproblems.NewTruncatedHash(st.Algo, st.MsgLen, bits); err != nil {
			return fmt.Errorf("%d-bit experiment: %w", bits, err)
		}
	}
	if st.ClawBits < 0 || st.ClawBits > 64 {
		return fmt.Errorf("invalid claw key size %d", st.ClawBits)
	}
	if _, err := st.level(); err != nil {
		return err
	}
	if _, err := humanize.ParseBytes(st.MaxMem); err != nil {
		return fmt.Errorf("max-mem: %w", err)
	}
	search := st.Search
	if search.Slots == 0 {
		search.Slots = mysearch.DefaultSlots
	}
	return search.Validate()
}

func (st Settings) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(st.LogLevel)); err != nil {
		return lvl, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}

// slotsFor - сколько слотов словаря для значений длины length помещается
// в maxMem (начало цепочки плюс 4 байта эпохи на слот).
func slotsFor(maxMem string, length int) (uint64, error) {
	total, err := humanize.ParseBytes(maxMem)
	if err != nil {
		return 0, err
	}
	slots := total / uint64(length+4)
	if slots == 0 {
		return 0, fmt.Errorf("memory cap %s is below one dictionary slot", maxMem)
	}
	return min(slots, mysearch.DesignSlots), nil
}

// searchConfig подбирает размер словаря под домен задачи, если
// search.slots не задан явно.
func searchConfig[C any](st Settings, dom mydomain.Domain[C]) (mysearch.Config, error) {
	cfg := st.Search
	if cfg.Slots != 0 {
		return cfg, cfg.Validate()
	}
	slots, err := slotsFor(st.MaxMem, dom.Length())
	if err != nil {
		return cfg, err
	}
	if n := dom.NElements(); n != 0 && n < slots {
		slots = n
	}
	cfg.Slots = slots
	if uint64(cfg.Shards) > slots {
		cfg.Shards = int(slots)
	}
	return cfg, cfg.Validate()
}
