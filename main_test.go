package main

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagilyp/lab4/myproblems"
	"github.com/sagilyp/lab4/mysearch"
)

func TestRecoverKeysMatchesPlanted(t *testing.T) {
	prng := rand.New(rand.NewPCG(9, 99))
	pb, k1, k2, err := myproblems.NewDoubleAESChallenge(8, prng)
	require.NoError(t, err)

	cfg := mysearch.DefaultConfig()
	cfg.Theta = 2
	cfg.Slots = 64
	cfg.MaxProbes = 1 << 20
	r1, r2, stats, err := recoverKeys(context.Background(), pb, cfg, mysearch.WithRand(prng))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.Satisfied)
	assert.Equal(t, k1, r1)
	assert.Equal(t, k2, r2)
}

func TestDecodeKey(t *testing.T) {
	pb, _, _, err := myproblems.NewDoubleAESChallenge(12, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	k, err := decodeKey(pb, "a306")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x6a3), k)

	_, err = decodeKey(pb, "a3")
	assert.Error(t, err)
	_, err = decodeKey(pb, "zz")
	assert.Error(t, err)
}
