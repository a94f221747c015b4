package mydomain

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/dchest/siphash"
)

// Ключи SipHash для адресации словаря. Менять нельзя: адреса должны быть
// воспроизводимы между запусками.
const (
	hashKey0 = 0x0706050403020100
	hashKey1 = 0x0f0e0d0c0b0a0908
)

// UintDomain - целые числа из Bits младших бит uint64.
// Бит выбора f/g - старший бит, отличительные биты - младшие.
type UintDomain struct {
	Bits int
}

// NewUintDomain создает домен на bits бит (1..64).
func NewUintDomain(bits int) (UintDomain, error) {
	if bits < 1 || bits > 64 {
		return UintDomain{}, fmt.Errorf("uint domain: invalid bit size %d", bits)
	}
	return UintDomain{Bits: bits}, nil
}

func (d UintDomain) mask() uint64 { return kMask(d.Bits) }

func (d UintDomain) Length() int { return (d.Bits + 7) / 8 }

func (d UintDomain) NElements() uint64 {
	if d.Bits >= 64 {
		return 0
	}
	return uint64(1) << uint(d.Bits)
}

func (d UintDomain) Randomize(x *uint64, prng *rand.Rand) {
	*x = prng.Uint64() & d.mask()
}

func (d UintDomain) IsEqual(x, y uint64) bool { return x == y }

func (d UintDomain) Serialize(x uint64, out []byte) {
	for i := 0; i < d.Length(); i++ {
		out[i] = byte(x >> (8 * uint(i)))
	}
}

func (d UintDomain) Unserialize(in []byte, x *uint64) {
	var v uint64
	for i := 0; i < d.Length(); i++ {
		v |= uint64(in[i]) << (8 * uint(i))
	}
	*x = v & d.mask()
}

func (d UintDomain) Copy(dst *uint64, src uint64) { *dst = src }

func (d UintDomain) Extract1Bit(x uint64) int {
	return int(x>>uint(d.Bits-1)) & 1
}

func (d UintDomain) ExtractKBits(x uint64, k int) uint64 {
	return x & kMask(k)
}

func (d UintDomain) Hash(x uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], x)
	return siphash.Hash(hashKey0, hashKey1, buf[:d.Length()])
}

// IthElement - i-й элемент домена (по модулю мощности).
func (d UintDomain) IthElement(i uint64, x *uint64) {
	*x = i & d.mask()
}
