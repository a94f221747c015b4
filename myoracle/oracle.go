// Package myoracle - полный перебор f и g на малых доменах.
// Нужен, чтобы проверить результаты поиска по отличительным точкам.
package myoracle

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sagilyp/lab4/mydomain"
	"github.com/sagilyp/lab4/mysearch"
)

// MaxElements - наибольший перебираемый домен
const MaxElements = uint64(1) << 24

var ErrNotEnumerable = errors.New("domain cannot be enumerated")

type entry struct {
	in  string // сериализованный прообраз
	out string // сериализованный образ
}

// Claw - пара с f(A) = g(B).
type Claw[A, B any] struct {
	A A
	B B
}

// Oracle хранит все пары (x, f(x)) и (y, g(y)), отсортированные по образу.
type Oracle[A, B, C any] struct {
	pb mydomain.Problem[A, B, C]
	fa []entry
	gb []entry
}

func enumerable[T any](dom mydomain.Domain[T]) (mydomain.Enumerable[T], uint64, error) {
	en, ok := dom.(mydomain.Enumerable[T])
	n := dom.NElements()
	if !ok || n == 0 || n > MaxElements {
		return nil, 0, fmt.Errorf("%w: %d elements", ErrNotEnumerable, n)
	}
	return en, n, nil
}

// Build вычисляет f на всем A и g на всем B в workers горутин.
func Build[A, B, C any](ctx context.Context, pb mydomain.Problem[A, B, C], workers int) (*Oracle[A, B, C], error) {
	enA, nA, err := enumerable(pb.DomainA())
	if err != nil {
		return nil, fmt.Errorf("domain A: %w", err)
	}
	enB, nB, err := enumerable(pb.DomainB())
	if err != nil {
		return nil, fmt.Errorf("domain B: %w", err)
	}
	if workers < 1 {
		workers = 1
	}
	o := &Oracle[A, B, C]{pb: pb}
	o.fa, err = fill(ctx, nA, workers, func(i uint64, e *entry) {
		var a A
		var c C
		enA.IthElement(i, &a)
		pb.F(a, &c)
		*e = entry{in: serialize(pb.DomainA(), a), out: serialize(pb.DomainC(), c)}
	})
	if err != nil {
		return nil, err
	}
	o.gb, err = fill(ctx, nB, workers, func(i uint64, e *entry) {
		var b B
		var c C
		enB.IthElement(i, &b)
		pb.G(b, &c)
		*e = entry{in: serialize(pb.DomainB(), b), out: serialize(pb.DomainC(), c)}
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func serialize[T any](dom mydomain.Domain[T], x T) string {
	buf := make([]byte, dom.Length())
	dom.Serialize(x, buf)
	return string(buf)
}

// fill делит [0, n) на workers отрезков и сортирует результат по образу.
func fill(ctx context.Context, n uint64, workers int, eval func(i uint64, e *entry)) ([]entry, error) {
	out := make([]entry, n)
	chunk := (n + uint64(workers) - 1) / uint64(workers)
	g, gctx := errgroup.WithContext(ctx)
	for lo := uint64(0); lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if i%4096 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				eval(i, &out[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(x, y entry) int {
		if c := strings.Compare(x.out, y.out); c != 0 {
			return c
		}
		return strings.Compare(x.in, y.in)
	})
	return out, nil
}

// run - отрезок записей с одинаковым образом, начиная с i
func run(list []entry, i int) int {
	j := i + 1
	for j < len(list) && list[j].out == list[i].out {
		j++
	}
	return j
}

// Claws - все пары f(a) = g(b). Для каждого общего образа берется
// декартово произведение прообразов.
func (o *Oracle[A, B, C]) Claws() []Claw[A, B] {
	var claws []Claw[A, B]
	o.join(func(fs, gs []entry) {
		for _, x := range fs {
			var a A
			o.pb.DomainA().Unserialize([]byte(x.in), &a)
			for _, y := range gs {
				var b B
				o.pb.DomainB().Unserialize([]byte(y.in), &b)
				claws = append(claws, Claw[A, B]{A: a, B: b})
			}
		}
	})
	return claws
}

// NumClaws - число пар f(a) = g(b) без их построения.
func (o *Oracle[A, B, C]) NumClaws() uint64 {
	var n uint64
	o.join(func(fs, gs []entry) { n += uint64(len(fs)) * uint64(len(gs)) })
	return n
}

func (o *Oracle[A, B, C]) join(emit func(fs, gs []entry)) {
	i, j := 0, 0
	for i < len(o.fa) && j < len(o.gb) {
		switch c := strings.Compare(o.fa[i].out, o.gb[j].out); {
		case c < 0:
			i = run(o.fa, i)
		case c > 0:
			j = run(o.gb, j)
		default:
			ni, nj := run(o.fa, i), run(o.gb, j)
			emit(o.fa[i:ni], o.gb[j:nj])
			i, j = ni, nj
		}
	}
}

// Contains проверяет, что пара - настоящая коллизия: два разных прообраза
// с образом pair.Image.
func (o *Oracle[A, B, C]) Contains(pair mysearch.Pair[A, B, C]) bool {
	if pair.PreX.FromF == pair.PreY.FromF && string(pair.PreX.Raw) == string(pair.PreY.Raw) {
		return false
	}
	img := serialize(o.pb.DomainC(), pair.Image)
	return o.has(pair.PreX, img) && o.has(pair.PreY, img)
}

func (o *Oracle[A, B, C]) has(p mysearch.Preimage[A, B], img string) bool {
	list := o.gb
	if p.FromF {
		list = o.fa
	}
	in := string(p.Raw)
	i := sort.Search(len(list), func(k int) bool {
		if list[k].out != img {
			return list[k].out > img
		}
		return list[k].in >= in
	})
	return i < len(list) && list[i].out == img && list[i].in == in
}
