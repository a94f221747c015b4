package mysearch

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/sagilyp/lab4/mydomain"
)

// ErrNoCollision - две цепочки с общим адресом не дают настоящей коллизии.
var ErrNoCollision = errors.New("no true collision")

// Preimage - прообраз в A (если шаг шел через f) или в B (через g).
type Preimage[A, B any] struct {
	FromF bool
	A     A
	B     B
	Raw   []byte // сериализованный A или B
}

// Pair - восстановленная коллизия step(X) == step(Y) == Image, X != Y.
type Pair[A, B, C any] struct {
	X, Y     C
	Image    C
	PreX     Preimage[A, B]
	PreY     Preimage[A, B]
	Embedded uint64 // вложение, при котором найдена пара
}

// IsClaw - один прообраз пришел из f, другой из g.
func (p Pair[A, B, C]) IsClaw() bool {
	return p.PreX.FromF != p.PreY.FromF
}

// Claw возвращает пару (a, b) с f(a) = g(b), если это claw.
func (p Pair[A, B, C]) Claw() (a A, b B, ok bool) {
	switch {
	case p.PreX.FromF && !p.PreY.FromF:
		return p.PreX.A, p.PreY.B, true
	case !p.PreX.FromF && p.PreY.FromF:
		return p.PreY.A, p.PreX.B, true
	}
	return a, b, false
}

// Key не зависит от порядка прообразов, нужен для отсева повторов.
func (p Pair[A, B, C]) Key() string {
	x := append([]byte{tag(p.PreX.FromF)}, p.PreX.Raw...)
	y := append([]byte{tag(p.PreY.FromF)}, p.PreY.Raw...)
	if bytes.Compare(x, y) > 0 {
		x, y = y, x
	}
	return string(x) + "|" + string(y)
}

func tag(fromF bool) byte {
	if fromF {
		return 'f'
	}
	return 'g'
}

// Walker по двум началам цепочек с общим адресом в словаре находит
// точку, где цепочки слились.
type Walker[A, B, C any] struct {
	it   *Iterator[A, B, C]
	dom  mydomain.Domain[C]
	rec1 *Recorder[A, B, C]
	rec2 *Recorder[A, B, C]
}

func NewWalker[A, B, C any](it *Iterator[A, B, C], theta int) (*Walker[A, B, C], error) {
	rec1, err := NewRecorder(it, theta)
	if err != nil {
		return nil, err
	}
	rec2, err := NewRecorder(it, theta)
	if err != nil {
		return nil, err
	}
	return &Walker[A, B, C]{it: it, dom: it.dom, rec1: rec1, rec2: rec2}, nil
}

// Walk повторяет обе цепочки и идет от их концов назад, пока значения
// совпадают. Первое несовпадение - пара значений прямо перед слиянием.
func (w *Walker[A, B, C]) Walk(seed1, seed2 C, embedding uint64) (Pair[A, B, C], error) {
	var pair Pair[A, B, C]
	ch1, ok1 := w.rec1.Record(seed1, embedding)
	ch2, ok2 := w.rec2.Record(seed2, embedding)
	if !ok1 || !ok2 {
		return pair, fmt.Errorf("%w: chain did not reach a distinguished point", ErrNoCollision)
	}
	n1, n2 := len(ch1)-1, len(ch2)-1
	if !w.dom.IsEqual(ch1[n1], ch2[n2]) {
		return pair, fmt.Errorf("%w: address collision of different points", ErrNoCollision)
	}
	i := 1
	for ; i <= n1 && i <= n2; i++ {
		if !w.dom.IsEqual(ch1[n1-i], ch2[n2-i]) {
			break
		}
	}
	if i > n1 || i > n2 {
		// одно начало лежит на цепочке другого
		return pair, fmt.Errorf("%w: one seed lies on the other chain", ErrNoCollision)
	}
	x, y := ch1[n1-i], ch2[n2-i]

	var ox, oy C
	w.it.Step(x, embedding, &ox)
	w.it.Step(y, embedding, &oy)
	if !w.dom.IsEqual(ox, oy) {
		return pair, fmt.Errorf("%w: images differ after walk back", ErrNoCollision)
	}
	w.dom.Copy(&pair.X, x)
	w.dom.Copy(&pair.Y, y)
	w.dom.Copy(&pair.Image, ox)
	pair.PreX = w.it.Preimage(x, embedding)
	pair.PreY = w.it.Preimage(y, embedding)
	pair.Embedded = embedding
	if pair.PreX.FromF == pair.PreY.FromF && bytes.Equal(pair.PreX.Raw, pair.PreY.Raw) {
		// вложение не инъективно, f(a) = f(a) коллизией не считается
		return pair, fmt.Errorf("%w: preimages coincide", ErrNoCollision)
	}
	return pair, nil
}
