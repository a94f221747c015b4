package mysearch

import (
	"errors"
	"fmt"

	"github.com/sagilyp/lab4/mydomain"
)

// MaxTheta - наибольшая допустимая ширина отличительного префикса.
const MaxTheta = 30

// ErrTheta - недопустимое значение theta.
var ErrTheta = errors.New("invalid theta")

// MaxSteps - бюджет шагов одной цепочки, 3 * 2^theta.
func MaxSteps(theta int) int {
	return 3 << uint(theta)
}

func checkTheta(theta int) error {
	if theta < 0 || theta > MaxTheta {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrTheta, theta, MaxTheta)
	}
	return nil
}

// Generator строит цепочку от seed до отличительной точки, не сохраняя
// промежуточные значения. Текущее и следующее значения лежат в двух слотах
// buf, после каждого шага слоты меняются ролями.
type Generator[A, B, C any] struct {
	it     *Iterator[A, B, C]
	dom    mydomain.Domain[C]
	theta  int
	budget int
	buf    [2]C
}

func NewGenerator[A, B, C any](it *Iterator[A, B, C], theta int) (*Generator[A, B, C], error) {
	if err := checkTheta(theta); err != nil {
		return nil, err
	}
	return &Generator[A, B, C]{
		it:     it,
		dom:    it.dom,
		theta:  theta,
		budget: MaxSteps(theta),
	}, nil
}

// IsDistinguished - младшие theta бит x равны нулю.
func (g *Generator[A, B, C]) IsDistinguished(x C) bool {
	return g.dom.ExtractKBits(x, g.theta) == 0
}

// Run возвращает отличительную точку цепочки из seed и число сделанных шагов.
// ok == false, если бюджет 3*2^theta исчерпан - это не ошибка, зонд просто
// отбрасывается.
func (g *Generator[A, B, C]) Run(seed C, embedding uint64) (end C, steps int, ok bool) {
	cur := 0
	g.dom.Copy(&g.buf[cur], seed)
	if g.IsDistinguished(g.buf[cur]) {
		g.dom.Copy(&end, g.buf[cur])
		return end, 0, true
	}
	for steps = 1; steps <= g.budget; steps++ {
		g.it.Step(g.buf[cur], embedding, &g.buf[cur^1])
		cur ^= 1
		if g.IsDistinguished(g.buf[cur]) {
			g.dom.Copy(&end, g.buf[cur])
			return end, steps, true
		}
	}
	return end, g.budget, false
}

// Recorder - вариант генератора, который запоминает всю цепочку.
// Нужен только при разборе кандидата в коллизию.
type Recorder[A, B, C any] struct {
	gen   *Generator[A, B, C]
	chain []C
}

func NewRecorder[A, B, C any](it *Iterator[A, B, C], theta int) (*Recorder[A, B, C], error) {
	gen, err := NewGenerator(it, theta)
	if err != nil {
		return nil, err
	}
	return &Recorder[A, B, C]{gen: gen}, nil
}

// Record возвращает цепочку [seed, x1, ..., xn], где xn - отличительная точка.
// Срез принадлежит Recorder и перезаписывается следующим вызовом.
func (r *Recorder[A, B, C]) Record(seed C, embedding uint64) ([]C, bool) {
	var zero C
	r.chain = append(r.chain[:0], zero)
	r.gen.dom.Copy(&r.chain[0], seed)
	if r.gen.IsDistinguished(seed) {
		return r.chain, true
	}
	for i := 1; i <= r.gen.budget; i++ {
		r.chain = append(r.chain, zero)
		r.gen.it.Step(r.chain[i-1], embedding, &r.chain[i])
		if r.gen.IsDistinguished(r.chain[i]) {
			return r.chain, true
		}
	}
	return r.chain, false
}
