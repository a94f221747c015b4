package myproblems

import (
	"crypto/sha256"

	"github.com/sagilyp/lab4/mydomain"
)

// SHA256Block - полный SHA-256 на 64-байтных блоках. Коллизию найти
// нельзя; задача нужна для проверки вложения и контрактов на широком C.
type SHA256Block struct {
	block  mydomain.BytesDomain
	digest mydomain.BytesDomain
}

func NewSHA256Block() *SHA256Block {
	return &SHA256Block{
		block:  mydomain.BytesDomain{N: 64},
		digest: mydomain.BytesDomain{N: sha256.Size},
	}
}

func (p *SHA256Block) DomainA() mydomain.Domain[string] { return p.block }
func (p *SHA256Block) DomainB() mydomain.Domain[string] { return p.block }
func (p *SHA256Block) DomainC() mydomain.Domain[string] { return p.digest }

func (p *SHA256Block) F(x string, y *string) {
	h := sha256.Sum256([]byte(x))
	*y = string(h[:])
}

func (p *SHA256Block) G(x string, y *string) { p.F(x, y) }

// SendCToA: первые 32 байта - значение из C, остальные - байт вложения.
func (p *SHA256Block) SendCToA(c string, embedding uint64, out *string) {
	b := make([]byte, p.block.N)
	copy(b, c)
	for i := len(c); i < len(b); i++ {
		b[i] = byte(embedding)
	}
	*out = string(b)
}

func (p *SHA256Block) SendCToB(c string, embedding uint64, out *string) {
	p.SendCToA(c, embedding, out)
}
