// Package mydomain описывает контракты, которые должен выполнить любой
// подключаемый примитив: домен значений (A, B или C) и задачу, связывающую
// два домена прообразов с общим доменом образов.
package mydomain

import (
	"errors"
	"math/rand/v2"
)

// ErrRoundTrip возвращается самопроверкой, если unserialize(serialize(x)) != x.
var ErrRoundTrip = errors.New("round-trip violation")

// Domain - набор операций над представлением T.
// Значения T должны быть фиксированного размера после сериализации.
type Domain[T any] interface {
	// Length - размер сериализованного значения в байтах.
	Length() int
	// NElements - мощность домена, 0 если она неизвестна или не помещается в uint64.
	NElements() uint64
	// Randomize записывает в x случайное значение домена.
	Randomize(x *T, prng *rand.Rand)
	IsEqual(x, y T) bool
	// Serialize пишет ровно Length() байт в out.
	Serialize(x T, out []byte)
	Unserialize(in []byte, x *T)
	Copy(dst *T, src T)
	// Extract1Bit выбирает f или g на каждом шаге цепочки.
	Extract1Bit(x T) int
	// ExtractKBits - младшие k бит, по ним проверяется отличительность точки.
	ExtractKBits(x T, k int) uint64
	// Hash - адрес в словаре. Не должен совпадать с битами ExtractKBits.
	Hash(x T) uint64
}

// Enumerable реализуют домены, которые можно перебрать полностью
// (нужно только проверочному оракулу).
type Enumerable[T any] interface {
	IthElement(i uint64, x *T)
}

// kMask возвращает маску из k младших бит
func kMask(k int) uint64 {
	if k >= 64 {
		return ^uint64(0)
	}
	if k <= 0 {
		return 0
	}
	return uint64(1)<<uint(k) - 1
}
