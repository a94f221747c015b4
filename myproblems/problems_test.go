package myproblems

import (
	"context"
	"encoding/hex"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagilyp/lab4/mydomain"
	"github.com/sagilyp/lab4/mymac"
	"github.com/sagilyp/lab4/mysearch"
)

func testRand() *rand.Rand { return rand.New(rand.NewPCG(3, 5)) }

func searchConfig(theta int, slots uint64, target int) mysearch.Config {
	cfg := mysearch.DefaultConfig()
	cfg.Theta = theta
	cfg.Slots = slots
	cfg.Target = target
	cfg.MaxProbes = 1 << 20
	return cfg
}

func message(p mysearch.Preimage[string, string]) string {
	if p.FromF {
		return p.A
	}
	return p.B
}

// checkMessages: сообщения пары различны и дают одно значение f.
func checkMessages(t *testing.T, pb mydomain.Problem[string, string, uint64], pairs []mysearch.Pair[string, string, uint64]) {
	t.Helper()
	for _, pair := range pairs {
		m1, m2 := message(pair.PreX), message(pair.PreY)
		require.NotEqual(t, m1, m2)
		var h1, h2 uint64
		pb.F(m1, &h1)
		pb.F(m2, &h2)
		assert.Equal(t, h1, h2)
		assert.Equal(t, pair.Image, h1)
	}
}

func TestTruncatedHashCollisions(t *testing.T) {
	for _, algo := range Algos() {
		t.Run(algo, func(t *testing.T) {
			pb, err := NewTruncatedHash(algo, 8, 16)
			require.NoError(t, err)
			assert.Equal(t, algo, pb.Algo())

			e, err := mysearch.New[string, string, uint64](pb, searchConfig(3, 1<<10, 3), mysearch.WithRand(testRand()))
			require.NoError(t, err)
			res, err := e.Run(context.Background())
			require.NoError(t, err)
			require.True(t, res.Complete)
			require.Len(t, res.Pairs, 3)
			checkMessages(t, pb, res.Pairs)
		})
	}
}

func TestTruncatedHashAlgosDiffer(t *testing.T) {
	seen := map[uint64]string{}
	for _, algo := range Algos() {
		pb, err := NewTruncatedHash(algo, 16, 64)
		require.NoError(t, err)
		var h uint64
		pb.F("0123456789abcdef", &h)
		_, dup := seen[h]
		assert.False(t, dup, algo)
		seen[h] = algo
	}
}

func TestTruncatedHashRejects(t *testing.T) {
	_, err := NewTruncatedHash("md5", 8, 16)
	assert.Error(t, err)
	_, err = NewTruncatedHash(AlgoSHA256, 2, 16)
	assert.Error(t, err)
	_, err = NewTruncatedHash(AlgoSHA256, 8, 65)
	assert.Error(t, err)
}

func TestEmbedIsInjective(t *testing.T) {
	pb, err := NewTruncatedHash(AlgoSHA256, 6, 16)
	require.NoError(t, err)
	var a, b string
	pb.SendCToA(0x1234, 0, &a)
	pb.SendCToA(0x1234, 1, &b)
	assert.NotEqual(t, a, b)
	assert.Equal(t, "\x34\x12\x00\x00\x00\x00", a)
	assert.Equal(t, "\x34\x12\x01\x00\x00\x00", b)

	pb.SendCToA(0x1235, 0, &b)
	assert.NotEqual(t, a, b)
}

func TestDoubleAESRecoversKeys(t *testing.T) {
	pb, k1, k2, err := NewDoubleAESChallenge(8, testRand())
	require.NoError(t, err)
	require.True(t, pb.IsGoodPair(k1, k2))
	assert.False(t, pb.IsGoodPair(k1^1, k2))

	var mid1, mid2 uint64
	pb.F(k1, &mid1)
	pb.G(k2, &mid2)
	require.Equal(t, mid1, mid2)

	cfg := searchConfig(2, 64, 1)
	cfg.RequireClaw = true
	e, err := mysearch.New[uint64, uint64, uint64](pb, cfg, mysearch.WithRand(testRand()))
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Complete)
	require.Len(t, res.Pairs, 1)

	a, b, ok := res.Pairs[0].Claw()
	require.True(t, ok)
	assert.True(t, pb.IsGoodPair(a, b))
	assert.GreaterOrEqual(t, res.Stats.Collisions, res.Stats.Satisfied)
}

func TestDoubleAESPermutations(t *testing.T) {
	pb, _, _, err := NewDoubleAESChallenge(10, testRand())
	require.NoError(t, err)
	for _, emb := range []uint64{0, 1, 77} {
		seenA := map[uint64]bool{}
		seenB := map[uint64]bool{}
		for c := uint64(0); c < 1<<10; c++ {
			var a, b uint64
			pb.SendCToA(c, emb, &a)
			pb.SendCToB(c, emb, &b)
			require.Less(t, a, uint64(1<<10))
			seenA[a] = true
			seenB[b] = true
		}
		assert.Len(t, seenA, 1<<10)
		assert.Len(t, seenB, 1<<10)
	}
}

func TestDoubleAESRejectsShortBlocks(t *testing.T) {
	blk := make([]byte, 16)
	_, err := NewDoubleAES(8, blk, blk, blk, blk[:8])
	assert.Error(t, err)
	_, err = NewDoubleAES(0, blk, blk, blk, blk)
	assert.Error(t, err)
}

func TestTruncatedMACCollisions(t *testing.T) {
	key := []byte("0123456789abcdef")
	for _, mode := range []string{mymac.OMAC, mymac.HMAC} {
		t.Run(mode, func(t *testing.T) {
			pb, err := NewTruncatedMAC(mode, key, 8, 16)
			require.NoError(t, err)
			assert.Equal(t, mode, pb.Mode())

			cfg := searchConfig(3, 1<<10, 4)
			cfg.Workers = 4
			e, err := mysearch.New[string, string, uint64](pb, cfg, mysearch.WithRand(testRand()))
			require.NoError(t, err)
			res, err := e.Run(context.Background())
			require.NoError(t, err)
			require.True(t, res.Complete)
			checkMessages(t, pb, res.Pairs)
		})
	}
}

func TestTruncatedMACMatchesMAC(t *testing.T) {
	// RFC 4493, пример 2: тег 070a16b46b4d4144f79bdd9dd04a287c
	key, err := hex.DecodeString("2b7e151628aed2a6abf7158809cf4f3c")
	require.NoError(t, err)
	msg, err := hex.DecodeString("6bc1bee22e409f96e93d7e117393172a")
	require.NoError(t, err)

	for bits, want := range map[int]uint64{
		12: 0xa07,
		16: 0x0a07,
		64: 0x44414d6bb4160a07,
	} {
		pb, err := NewTruncatedMAC(mymac.OMAC, key, len(msg), bits)
		require.NoError(t, err)
		var got uint64
		pb.F(string(msg), &got)
		assert.Equal(t, want, got, "%d bits", bits)

		mm := &mymac.MyMAC{}
		require.NoError(t, mm.SetMode(mymac.TRUNCATED))
		require.NoError(t, mm.SetTagBits(bits))
		require.NoError(t, mm.SetKey(key))
		tag, err := mm.ComputeMac(msg)
		require.NoError(t, err)
		assert.Equal(t, tagValue(tag, bits), got)
	}
}

func TestTruncatedMACHMACPrefix(t *testing.T) {
	key := []byte("0123456789abcdef")
	pb, err := NewTruncatedMAC(mymac.HMAC, key, 9, 20)
	require.NoError(t, err)

	mm := &mymac.MyMAC{}
	require.NoError(t, mm.SetMode(mymac.HMAC))
	require.NoError(t, mm.SetKey(key))
	tag, err := mm.ComputeMac([]byte("messages!"))
	require.NoError(t, err)

	var got uint64
	pb.F("messages!", &got)
	want := uint64(tag[0]) | uint64(tag[1])<<8 | uint64(tag[2]&0x0f)<<16
	assert.Equal(t, want, got)
}

func TestTruncatedMACRejects(t *testing.T) {
	_, err := NewTruncatedMAC("GMAC", make([]byte, 16), 8, 16)
	assert.Error(t, err)
	_, err = NewTruncatedMAC(mymac.OMAC, make([]byte, 5), 8, 16)
	assert.Error(t, err)
	_, err = NewTruncatedMAC(mymac.OMAC, make([]byte, 16), 2, 16)
	assert.Error(t, err)
	_, err = NewTruncatedMAC(mymac.OMAC, make([]byte, 16), 8, 64)
	assert.Error(t, err)

	pb, err := NewTruncatedMAC(mymac.TRUNCATED, make([]byte, 16), 8, 16)
	require.NoError(t, err)
	assert.Equal(t, mymac.TRUNCATED, pb.Mode())
}

func TestSHA256BlockContracts(t *testing.T) {
	pb := NewSHA256Block()
	require.NoError(t, mydomain.CheckProblem[string, string, string](pb, testRand()))

	var c, a1, a2, y1, y2 string
	pb.DomainC().Randomize(&c, testRand())
	pb.SendCToA(c, 0, &a1)
	pb.SendCToA(c, 1, &a2)
	require.Len(t, a1, 64)
	assert.Equal(t, c, a1[:32])
	assert.NotEqual(t, a1, a2)

	pb.F(a1, &y1)
	pb.F(a2, &y2)
	assert.Len(t, y1, 32)
	assert.NotEqual(t, y1, y2)
}

func TestSHA256BlockSearchFindsNothing(t *testing.T) {
	cfg := searchConfig(4, 1<<8, 1)
	cfg.MaxProbes = 200
	e, err := mysearch.New[string, string, string](NewSHA256Block(), cfg, mysearch.WithRand(testRand()))
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Complete)
	assert.Equal(t, uint64(200), res.Stats.Probes)
	assert.Zero(t, res.Stats.Collisions)
}
