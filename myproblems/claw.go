package myproblems

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/sagilyp/lab4/mycrypto"
	"github.com/sagilyp/lab4/mydomain"
)

// DoubleAES - атака "встреча посередине" на двойное шифрование
// E_k2(E_k1(p)) с ключами из keyBits бит.
// f(k1) = E_k1(P1), g(k2) = D_k2(C1), обе усечены до keyBits бит.
// Пара (k1, k2) проверяется на второй паре (P2, C2).
type DoubleAES struct {
	keys mydomain.UintDomain
	p1   []byte
	c1   []byte
	p2   []byte
	c2   []byte
}

func NewDoubleAES(keyBits int, p1, c1, p2, c2 []byte) (*DoubleAES, error) {
	keys, err := mydomain.NewUintDomain(keyBits)
	if err != nil {
		return nil, err
	}
	for _, b := range [][]byte{p1, c1, p2, c2} {
		if len(b) != mycrypto.AESBlockSize {
			return nil, fmt.Errorf("double aes: blocks must be %d bytes", mycrypto.AESBlockSize)
		}
	}
	return &DoubleAES{keys: keys, p1: p1, c1: c1, p2: p2, c2: c2}, nil
}

// NewDoubleAESChallenge выбирает случайные ключи и тексты и возвращает
// задачу вместе с загаданными ключами.
func NewDoubleAESChallenge(keyBits int, prng *rand.Rand) (pb *DoubleAES, k1, k2 uint64, err error) {
	keys, err := mydomain.NewUintDomain(keyBits)
	if err != nil {
		return nil, 0, 0, err
	}
	keys.Randomize(&k1, prng)
	keys.Randomize(&k2, prng)
	dc, err := mycrypto.NewDoubleCipher(mycrypto.ExpandKey(k1, keyBits), mycrypto.ExpandKey(k2, keyBits))
	if err != nil {
		return nil, 0, 0, err
	}
	p1, p2 := randomBlock(prng), randomBlock(prng)
	c1, err := dc.Encrypt(p1)
	if err != nil {
		return nil, 0, 0, err
	}
	c2, err := dc.Encrypt(p2)
	if err != nil {
		return nil, 0, 0, err
	}
	pb, err = NewDoubleAES(keyBits, p1, c1, p2, c2)
	return pb, k1, k2, err
}

func randomBlock(prng *rand.Rand) []byte {
	b := make([]byte, mycrypto.AESBlockSize)
	binary.LittleEndian.PutUint64(b, prng.Uint64())
	binary.LittleEndian.PutUint64(b[8:], prng.Uint64())
	return b
}

func (p *DoubleAES) DomainA() mydomain.Domain[uint64] { return p.keys }
func (p *DoubleAES) DomainB() mydomain.Domain[uint64] { return p.keys }
func (p *DoubleAES) DomainC() mydomain.Domain[uint64] { return p.keys }

func (p *DoubleAES) cipher(k uint64) *mycrypto.MyCipher {
	mc := &mycrypto.MyCipher{}
	if err := mc.SetKey(mycrypto.ExpandKey(k, p.keys.Bits)); err != nil {
		panic(fmt.Sprintf("double aes: %v", err)) // ключ AES-128 всегда корректен
	}
	return mc
}

func (p *DoubleAES) F(k1 uint64, y *uint64) {
	mid, err := p.cipher(k1).BlockCipherEncrypt(p.p1)
	if err != nil {
		panic(fmt.Sprintf("double aes: %v", err))
	}
	*y = binary.LittleEndian.Uint64(mid) & (p.keys.NElements() - 1)
}

func (p *DoubleAES) G(k2 uint64, y *uint64) {
	mid, err := p.cipher(k2).BlockCipherDecrypt(p.c1)
	if err != nil {
		panic(fmt.Sprintf("double aes: %v", err))
	}
	*y = binary.LittleEndian.Uint64(mid) & (p.keys.NElements() - 1)
}

// SendCToA - аффинная перестановка c -> c*m + s (mod 2^keyBits),
// m нечетное; m и s зависят от вложения.
func (p *DoubleAES) SendCToA(c uint64, embedding uint64, out *uint64) {
	*out = p.permute(c, splitmix(embedding))
}

// SendCToB использует другую перестановку, иначе при k1 = k2 claw
// отображался бы в одну точку C.
func (p *DoubleAES) SendCToB(c uint64, embedding uint64, out *uint64) {
	*out = p.permute(c, splitmix(^embedding))
}

func (p *DoubleAES) permute(c, m uint64) uint64 {
	s := splitmix(m)
	return (c*(m|1) + s) & (p.keys.NElements() - 1)
}

// IsGoodPair проверяет ключи на обеих известных парах текстов.
func (p *DoubleAES) IsGoodPair(k1, k2 uint64) bool {
	dc, err := mycrypto.NewDoubleCipher(mycrypto.ExpandKey(k1, p.keys.Bits), mycrypto.ExpandKey(k2, p.keys.Bits))
	if err != nil {
		return false
	}
	for _, pc := range [][2][]byte{{p.p1, p.c1}, {p.p2, p.c2}} {
		c, err := dc.Encrypt(pc[0])
		if err != nil || !bytes.Equal(c, pc[1]) {
			return false
		}
	}
	return true
}

func splitmix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
