package mydomain

// Problem связывает домены A, B и общий домен образов C.
// Ищутся пары (a, b) такие, что F(a) = G(b).
//
// Параметр вложения передается явно: задача не хранит изменяемого
// состояния, его меняет только цикл поиска между найденными коллизиями.
type Problem[A, B, C any] interface {
	DomainA() Domain[A]
	DomainB() Domain[B]
	DomainC() Domain[C]

	F(x A, y *C) // y <- f(x)
	G(x B, y *C) // y <- g(x)

	// SendCToA поднимает значение из C обратно в A.
	// Отображение должно быть инъективным при фиксированном embedding.
	SendCToA(c C, embedding uint64, out *A)
	SendCToB(c C, embedding uint64, out *B)
}

// Verifier - необязательная проверка найденной пары.
// Например, для двойного шифрования пара ключей проверяется на второй паре
// открытый текст / шифртекст.
type Verifier[A, B any] interface {
	IsGoodPair(a A, b B) bool
}
