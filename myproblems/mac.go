package myproblems

import (
	"fmt"
	"sync"

	"github.com/sagilyp/lab4/mydomain"
	"github.com/sagilyp/lab4/mymac"
)

// TruncatedMAC - коллизии тега, усеченного до tagBits бит, при фиксированном
// ключе. OMAC считается в режиме mymac.TRUNCATED, тег HMAC усекается так же:
// первые байты тега, лишние старшие биты последнего байта обнулены.
type TruncatedMAC struct {
	mode string
	msg  mydomain.BytesDomain
	out  mydomain.UintDomain
	pool sync.Pool // *mymac.MyMAC, объект не потокобезопасен
}

// NewTruncatedMAC: mode - mymac.OMAC (или mymac.TRUNCATED) либо mymac.HMAC,
// tagBits <= 64.
func NewTruncatedMAC(mode string, key []byte, msgLen, tagBits int) (*TruncatedMAC, error) {
	macMode := mode
	switch mode {
	case mymac.OMAC, mymac.TRUNCATED:
		macMode = mymac.TRUNCATED
	case mymac.HMAC:
	default:
		return nil, fmt.Errorf("truncated mac: unsupported mode %q", mode)
	}
	out, err := mydomain.NewUintDomain(tagBits)
	if err != nil {
		return nil, err
	}
	msg, err := mydomain.NewBytesDomain(msgLen)
	if err != nil {
		return nil, err
	}
	if msgLen <= out.Length() {
		return nil, fmt.Errorf("message of %d bytes cannot embed %d-bit tags", msgLen, tagBits)
	}
	// ключ проверяется сразу, чтобы New в пуле не мог упасть
	if _, err := newMAC(macMode, key, tagBits); err != nil {
		return nil, err
	}
	p := &TruncatedMAC{mode: mode, msg: msg, out: out}
	k := append([]byte(nil), key...)
	p.pool.New = func() any {
		mm, _ := newMAC(macMode, k, tagBits)
		return mm
	}
	return p, nil
}

func newMAC(mode string, key []byte, tagBits int) (*mymac.MyMAC, error) {
	mm := &mymac.MyMAC{}
	if err := mm.SetMode(mode); err != nil {
		return nil, err
	}
	if mode == mymac.TRUNCATED {
		if err := mm.SetTagBits(tagBits); err != nil {
			return nil, err
		}
	}
	if err := mm.SetKey(key); err != nil {
		return nil, err
	}
	return mm, nil
}

func (p *TruncatedMAC) Mode() string { return p.mode }

func (p *TruncatedMAC) DomainA() mydomain.Domain[string] { return p.msg }
func (p *TruncatedMAC) DomainB() mydomain.Domain[string] { return p.msg }
func (p *TruncatedMAC) DomainC() mydomain.Domain[uint64] { return p.out }

func (p *TruncatedMAC) F(x string, y *uint64) {
	mm := p.pool.Get().(*mymac.MyMAC)
	defer p.pool.Put(mm)
	tag, err := mm.ComputeMac([]byte(x))
	if err != nil {
		panic(fmt.Sprintf("truncated mac: %v", err))
	}
	*y = tagValue(tag, p.out.Bits)
}

// tagValue - первые bits бит тега как little-endian число
func tagValue(tag []byte, bits int) uint64 {
	var v uint64
	for i := 0; i < len(tag) && i < 8; i++ {
		v |= uint64(tag[i]) << (8 * uint(i))
	}
	if bits < 64 {
		v &= uint64(1)<<uint(bits) - 1
	}
	return v
}

func (p *TruncatedMAC) G(x string, y *uint64) { p.F(x, y) }

func (p *TruncatedMAC) SendCToA(c uint64, embedding uint64, out *string) {
	*out = embed(p.out, p.msg.N, c, embedding)
}

func (p *TruncatedMAC) SendCToB(c uint64, embedding uint64, out *string) {
	p.SendCToA(c, embedding, out)
}
