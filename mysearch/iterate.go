// Package mysearch - параллельный поиск коллизий методом отличительных точек
// (van Oorschot - Wiener). Цепочки F/G строятся до отличительной точки,
// в словаре хранится только начало цепочки, а совпадение адресов проверяется
// повторным проходом обеих цепочек.
package mysearch

import "github.com/sagilyp/lab4/mydomain"

// Iterator превращает f: A -> C и g: B -> C в отображения C -> C,
// поднимая значение из C через вложение задачи.
// Каждому потоку нужен свой Iterator: поля inpA и inpB - рабочая память.
type Iterator[A, B, C any] struct {
	pb   mydomain.Problem[A, B, C]
	dom  mydomain.Domain[C]
	inpA A
	inpB B
}

func NewIterator[A, B, C any](pb mydomain.Problem[A, B, C]) *Iterator[A, B, C] {
	return &Iterator[A, B, C]{pb: pb, dom: pb.DomainC()}
}

// F вычисляет out = f(send_C_to_A(in))
func (it *Iterator[A, B, C]) F(in C, embedding uint64, out *C) {
	it.pb.SendCToA(in, embedding, &it.inpA)
	it.pb.F(it.inpA, out)
}

// G вычисляет out = g(send_C_to_B(in))
func (it *Iterator[A, B, C]) G(in C, embedding uint64, out *C) {
	it.pb.SendCToB(in, embedding, &it.inpB)
	it.pb.G(it.inpB, out)
}

// Step делает один шаг цепочки: F, если выбранный бит равен 1, иначе G.
// Возвращает этот бит.
func (it *Iterator[A, B, C]) Step(in C, embedding uint64, out *C) int {
	bit := it.dom.Extract1Bit(in)
	if bit == 1 {
		it.F(in, embedding, out)
	} else {
		it.G(in, embedding, out)
	}
	return bit
}

// Preimage поднимает in в тот домен, через который Step пошел бы из in.
func (it *Iterator[A, B, C]) Preimage(in C, embedding uint64) Preimage[A, B] {
	var p Preimage[A, B]
	if it.dom.Extract1Bit(in) == 1 {
		p.FromF = true
		it.pb.SendCToA(in, embedding, &p.A)
		p.Raw = make([]byte, it.pb.DomainA().Length())
		it.pb.DomainA().Serialize(p.A, p.Raw)
	} else {
		it.pb.SendCToB(in, embedding, &p.B)
		p.Raw = make([]byte, it.pb.DomainB().Length())
		it.pb.DomainB().Serialize(p.B, p.Raw)
	}
	return p
}
