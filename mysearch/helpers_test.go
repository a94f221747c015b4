package mysearch

import (
	"math/rand/v2"

	"github.com/sagilyp/lab4/mydomain"
)

// toyDomain - 8-битный домен с подменяемым адресным хешем.
type toyDomain struct {
	mydomain.UintDomain
	hash func(uint64) uint64
}

func newToyDomain(hash func(uint64) uint64) toyDomain {
	return toyDomain{UintDomain: mydomain.UintDomain{Bits: 8}, hash: hash}
}

func (d toyDomain) Hash(x uint64) uint64 {
	if d.hash != nil {
		return d.hash(x)
	}
	return d.UintDomain.Hash(x)
}

// tableProblem - f = g задаются таблицей, вне таблицы значение не меняется
// (такая цепочка исчерпывает бюджет).
type tableProblem struct {
	dom  toyDomain
	next map[uint64]uint64
}

func (p tableProblem) DomainA() mydomain.Domain[uint64] { return p.dom }
func (p tableProblem) DomainB() mydomain.Domain[uint64] { return p.dom }
func (p tableProblem) DomainC() mydomain.Domain[uint64] { return p.dom }

func (p tableProblem) F(x uint64, y *uint64) {
	if v, ok := p.next[x]; ok {
		*y = v
		return
	}
	*y = x
}

func (p tableProblem) G(x uint64, y *uint64) { p.F(x, y) }

func (p tableProblem) SendCToA(c uint64, _ uint64, out *uint64) { *out = c }
func (p tableProblem) SendCToB(c uint64, _ uint64, out *uint64) { *out = c }

// mixProblem - случайные на вид f и g на C из bits бит.
// Вложение дописывается в старшие биты входа.
type mixProblem struct {
	in  mydomain.UintDomain
	out mydomain.UintDomain
}

func newMixProblem(bits int) mixProblem {
	return mixProblem{
		in:  mydomain.UintDomain{Bits: bits + 16},
		out: mydomain.UintDomain{Bits: bits},
	}
}

func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

func (p mixProblem) DomainA() mydomain.Domain[uint64] { return p.in }
func (p mixProblem) DomainB() mydomain.Domain[uint64] { return p.in }
func (p mixProblem) DomainC() mydomain.Domain[uint64] { return p.out }

func (p mixProblem) F(x uint64, y *uint64) { *y = mix64(x) & (1<<uint(p.out.Bits) - 1) }

func (p mixProblem) G(x uint64, y *uint64) {
	*y = mix64(x^0x9e3779b97f4a7c15) & (1<<uint(p.out.Bits) - 1)
}

func (p mixProblem) SendCToA(c uint64, emb uint64, out *uint64) {
	*out = c | (emb&0xffff)<<uint(p.out.Bits)
}

func (p mixProblem) SendCToB(c uint64, emb uint64, out *uint64) { p.SendCToA(c, emb, out) }

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

// listSeeder выдает seeds по кругу.
func listSeeder(seeds ...uint64) func(*uint64, *rand.Rand) {
	i := 0
	return func(x *uint64, _ *rand.Rand) {
		*x = seeds[i%len(seeds)]
		i++
	}
}
