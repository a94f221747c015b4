package mydomain

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/dchest/siphash"
)

// BytesDomain - байтовые строки ровно N байт.
// Строки неизменяемы, поэтому копирование значения не создает алиасов.
type BytesDomain struct {
	N int
}

// NewBytesDomain создает домен строк длины n.
func NewBytesDomain(n int) (BytesDomain, error) {
	if n < 1 {
		return BytesDomain{}, fmt.Errorf("bytes domain: invalid length %d", n)
	}
	return BytesDomain{N: n}, nil
}

func (d BytesDomain) Length() int { return d.N }

func (d BytesDomain) NElements() uint64 {
	if d.N >= 8 {
		return 0
	}
	return uint64(1) << uint(8*d.N)
}

func (d BytesDomain) Randomize(x *string, prng *rand.Rand) {
	b := make([]byte, d.N+7)
	for i := 0; i < d.N; i += 8 {
		binary.LittleEndian.PutUint64(b[i:], prng.Uint64())
	}
	*x = string(b[:d.N])
}

func (d BytesDomain) IsEqual(x, y string) bool { return x == y }

func (d BytesDomain) Serialize(x string, out []byte) {
	copy(out[:d.N], x)
}

func (d BytesDomain) Unserialize(in []byte, x *string) {
	*x = string(in[:d.N])
}

func (d BytesDomain) Copy(dst *string, src string) { *dst = src }

// Extract1Bit берет старший бит последнего байта, он не пересекается
// с отличительными битами начала строки.
func (d BytesDomain) Extract1Bit(x string) int {
	return int(x[d.N-1] >> 7)
}

func (d BytesDomain) ExtractKBits(x string, k int) uint64 {
	var v uint64
	for i := 0; i < d.N && i < 8; i++ {
		v |= uint64(x[i]) << (8 * uint(i))
	}
	return v & kMask(k)
}

func (d BytesDomain) Hash(x string) uint64 {
	return siphash.Hash(hashKey0, hashKey1, []byte(x))
}

// IthElement - i-я строка в little-endian порядке, только для N <= 8.
func (d BytesDomain) IthElement(i uint64, x *string) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], i)
	b := make([]byte, d.N)
	copy(b, buf[:])
	*x = string(b)
}
