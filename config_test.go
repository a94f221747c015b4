package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagilyp/lab4/myattacks"
	"github.com/sagilyp/lab4/mydomain"
	"github.com/sagilyp/lab4/mysearch"
)

func TestDefaultSettings(t *testing.T) {
	st, err := loadSettings(nil)
	require.NoError(t, err)
	assert.Equal(t, OutBitsList, st.OutBits)
	assert.Equal(t, myattacks.NumCollisionNeeded, st.Search.Target)
	assert.Equal(t, myattacks.DistBits, st.Search.Theta)
	assert.True(t, st.Birthday)
}

func TestFlagsOverride(t *testing.T) {
	st, err := loadSettings([]string{"--algo", "blake3", "--out-bits", "12,14", "-n", "7", "--theta", "3", "--birthday=false", "-w", "2"})
	require.NoError(t, err)
	assert.Equal(t, "blake3", st.Algo)
	assert.Equal(t, []int{12, 14}, st.OutBits)
	assert.Equal(t, 7, st.Search.Target)
	assert.Equal(t, 3, st.Search.Theta)
	assert.Equal(t, 2, st.Search.Workers)
	assert.False(t, st.Birthday)
}

func TestYAMLThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lab4.yaml")
	yml := `algo: sha3
msg_len: 8
out_bits: [16, 20]
max_mem: 1MB
claw_bits: 10
search:
  theta: 4
  slots: 1024
  target: 3
  workers: 1
  shards: 1
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	st, err := loadSettings([]string{"--config", path, "--theta", "5"})
	require.NoError(t, err)
	assert.Equal(t, "sha3", st.Algo)
	assert.Equal(t, 8, st.MsgLen)
	assert.Equal(t, []int{16, 20}, st.OutBits)
	assert.Equal(t, "1MB", st.MaxMem)
	assert.Equal(t, 10, st.ClawBits)
	assert.Equal(t, 3, st.Search.Target)
	assert.Equal(t, 5, st.Search.Theta)
}

func TestInvalidSettings(t *testing.T) {
	for name, args := range map[string][]string{
		"algo":      {"--algo", "md5"},
		"out bits":  {"--out-bits", "60"},
		"theta":     {"--theta", "99"},
		"max mem":   {"--max-mem", "lots"},
		"log level": {"--log-level", "loud"},
		"claw":      {"--claw-bits", "65"},
		"argument":  {"extra"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := loadSettings(args)
			assert.Error(t, err)
		})
	}
	_, err := loadSettings([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestSlotsFor(t *testing.T) {
	slots, err := slotsFor("1KB", 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(125), slots)

	slots, err = slotsFor("1TB", 1)
	require.NoError(t, err)
	assert.Equal(t, mysearch.DesignSlots, slots)

	_, err = slotsFor("3B", 4)
	assert.Error(t, err)
}

func TestSearchConfigFitsDomain(t *testing.T) {
	st := defaultSettings()
	cfg, err := searchConfig(st, mydomain.Domain[uint64](mydomain.UintDomain{Bits: 8}))
	require.NoError(t, err)
	assert.Equal(t, uint64(256), cfg.Slots)
	assert.Equal(t, myattacks.NumWorkers, cfg.Shards)

	st.MaxMem = "10B"
	cfg, err = searchConfig(st, mydomain.Domain[uint64](mydomain.UintDomain{Bits: 32}))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cfg.Slots)
	assert.Equal(t, 1, cfg.Shards)
}

func TestExplicitSlotsWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lab4.yaml")
	yml := `max_mem: 64MB
search:
  theta: 2
  slots: 1024
  target: 1
  workers: 1
  shards: 1
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	st, err := loadSettings([]string{"--config", path})
	require.NoError(t, err)
	cfg, err := searchConfig(st, mydomain.Domain[uint64](mydomain.UintDomain{Bits: 24}))
	require.NoError(t, err)
	assert.Equal(t, uint64(1024), cfg.Slots)

	st, err = loadSettings([]string{"--config", path, "--slots", "0", "--max-mem", "1KB"})
	require.NoError(t, err)
	cfg, err = searchConfig(st, mydomain.Domain[uint64](mydomain.UintDomain{Bits: 24}))
	require.NoError(t, err)
	assert.Equal(t, uint64(1000/7), cfg.Slots)

	st, err = loadSettings([]string{"--slots", "4096"})
	require.NoError(t, err)
	cfg, err = searchConfig(st, mydomain.Domain[uint64](mydomain.UintDomain{Bits: 8}))
	require.NoError(t, err)
	assert.Equal(t, uint64(4096), cfg.Slots)
}
