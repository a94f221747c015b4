package mydomain

import (
	"fmt"
	"math/rand/v2"
)

// MaxSelfTests ограничивает число проверок круговой сериализации.
const MaxSelfTests = 1024

// CheckRoundTrip проверяет, что unserialize(serialize(x)) == x
// для min(n, NElements) случайных x.
func CheckRoundTrip[T any](dom Domain[T], prng *rand.Rand, n int) error {
	if total := dom.NElements(); total != 0 && uint64(n) > total {
		n = int(total)
	}
	buf := make([]byte, dom.Length())
	var orig, back T
	for i := 0; i < n; i++ {
		dom.Randomize(&orig, prng)
		dom.Serialize(orig, buf)
		dom.Unserialize(buf, &back)
		if !dom.IsEqual(orig, back) {
			return fmt.Errorf("%w: %x decoded to a different value", ErrRoundTrip, buf)
		}
	}
	return nil
}

// CheckProblem прогоняет самопроверку для всех трех доменов задачи.
func CheckProblem[A, B, C any](pb Problem[A, B, C], prng *rand.Rand) error {
	if err := CheckRoundTrip(pb.DomainA(), prng, MaxSelfTests); err != nil {
		return fmt.Errorf("domain A: %w", err)
	}
	if err := CheckRoundTrip(pb.DomainB(), prng, MaxSelfTests); err != nil {
		return fmt.Errorf("domain B: %w", err)
	}
	if err := CheckRoundTrip(pb.DomainC(), prng, MaxSelfTests); err != nil {
		return fmt.Errorf("domain C: %w", err)
	}
	return nil
}
