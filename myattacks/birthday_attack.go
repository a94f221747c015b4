package myattacks

import (
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sagilyp/lab4/mydomain"
)

// Атака на основе парадокса о днях рождения: все образы f хранятся в словаре.
// Память возвращается в битах.
func BirthdayAttack[A, B, C any](pb mydomain.Problem[A, B, C], num int, prng *rand.Rand) ([]Collision, int, int, time.Duration, error) {
	domA, domC := pb.DomainA(), pb.DomainC()
	collisions := []Collision{}
	dict := make(map[string]string)
	iterations := 0
	start := time.Now()
	bufA := make([]byte, domA.Length())
	bufC := make([]byte, domC.Length())
	var a A
	var c C
	for len(collisions) < num {
		if iterations >= MaxBirthdayIterations {
			return collisions, iterations, 0, time.Since(start), fmt.Errorf("birthday attack: %w after %d iterations", ErrBudget, iterations)
		}
		domA.Randomize(&a, prng)
		pb.F(a, &c)
		domA.Serialize(a, bufA)
		domC.Serialize(c, bufC)
		x := hex.EncodeToString(bufA)
		h := string(bufC)
		if prev, ok := dict[h]; ok {
			coll := Collision{X: prev, Y: x, Image: hex.EncodeToString(bufC)}
			if prev != x && !containColl(collisions, coll) {
				collisions = append(collisions, coll)
			}
		} else {
			dict[h] = x
		}
		iterations++
	}
	passed := time.Since(start)
	mem := len(dict) * (domA.Length() + domC.Length()) * 8
	fmt.Printf("Birthday Attack(%d-bit): Found %d collisions after %d iterations (%s elapsed).\n",
		domainBits(domC), len(collisions), iterations, passed)
	return collisions, iterations, mem, passed, nil
}
