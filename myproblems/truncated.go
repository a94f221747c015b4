// Package myproblems - подключаемые примитивы для поиска коллизий.
package myproblems

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/sagilyp/lab4/mydomain"
)

// Поддерживаемые хеш-функции
const (
	AlgoSHA256  = "sha256"
	AlgoBLAKE3  = "blake3"
	AlgoBLAKE2b = "blake2b"
	AlgoSHA3    = "sha3"
)

var hashFuncs = map[string]func([]byte) [32]byte{
	AlgoSHA256:  sha256.Sum256,
	AlgoBLAKE3:  blake3.Sum256,
	AlgoBLAKE2b: blake2b.Sum256,
	AlgoSHA3:    sha3.Sum256,
}

// Algos - имена поддерживаемых хеш-функций
func Algos() []string {
	return []string{AlgoSHA256, AlgoBLAKE3, AlgoBLAKE2b, AlgoSHA3}
}

// TruncatedHash - поиск коллизий хеш-функции, усеченной до outBits бит:
// сообщения a != b из MsgLen байт с H(a) = H(b) в последних outBits битах.
type TruncatedHash struct {
	algo string
	sum  func([]byte) [32]byte
	msg  mydomain.BytesDomain
	out  mydomain.UintDomain
}

// NewTruncatedHash создает задачу. Сообщение должно вмещать значение из C
// и хотя бы один байт вложения.
func NewTruncatedHash(algo string, msgLen, outBits int) (*TruncatedHash, error) {
	sum, ok := hashFuncs[algo]
	if !ok {
		return nil, fmt.Errorf("unknown hash %q", algo)
	}
	out, err := mydomain.NewUintDomain(outBits)
	if err != nil {
		return nil, err
	}
	msg, err := mydomain.NewBytesDomain(msgLen)
	if err != nil {
		return nil, err
	}
	if msgLen <= out.Length() {
		return nil, fmt.Errorf("message of %d bytes cannot embed %d-bit values", msgLen, outBits)
	}
	return &TruncatedHash{algo: algo, sum: sum, msg: msg, out: out}, nil
}

func (p *TruncatedHash) Algo() string { return p.algo }

func (p *TruncatedHash) DomainA() mydomain.Domain[string] { return p.msg }
func (p *TruncatedHash) DomainB() mydomain.Domain[string] { return p.msg }
func (p *TruncatedHash) DomainC() mydomain.Domain[uint64] { return p.out }

// F - последние outBits бит хеша
func (p *TruncatedHash) F(x string, y *uint64) {
	h := p.sum([]byte(x))
	*y = truncate(h[:], p.out.Bits)
}

func (p *TruncatedHash) G(x string, y *uint64) { p.F(x, y) }

func (p *TruncatedHash) SendCToA(c uint64, embedding uint64, out *string) {
	*out = embed(p.out, p.msg.N, c, embedding)
}

func (p *TruncatedHash) SendCToB(c uint64, embedding uint64, out *string) {
	p.SendCToA(c, embedding, out)
}

// truncate берет младшие bits бит числа, записанного в digest big-endian
func truncate(digest []byte, bits int) uint64 {
	v := binary.BigEndian.Uint64(digest[len(digest)-8:])
	if bits < 64 {
		v &= uint64(1)<<uint(bits) - 1
	}
	return v
}

// embed кладет c в начало сообщения длины n, остальные байты заполняет
// параметром вложения.
func embed(dom mydomain.UintDomain, n int, c, embedding uint64) string {
	b := make([]byte, n)
	l := dom.Length()
	for i := l; i < n; i++ {
		b[i] = byte(embedding >> (8 * uint((i-l)%8)))
	}
	dom.Serialize(c, b[:l])
	return string(b)
}
