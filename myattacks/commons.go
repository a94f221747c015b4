package myattacks

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/bits"

	"github.com/sagilyp/lab4/mydomain"
	"github.com/sagilyp/lab4/myproblems"
	"github.com/sagilyp/lab4/mysearch"
)

const (
	MinOut             = 8
	MaxOut             = 24
	MsgLen             = 6
	DistBits           = 2
	NumWorkers         = 4
	NumCollisionNeeded = 150

	// MaxBirthdayIterations - предел наивного перебора
	MaxBirthdayIterations = 1 << 26
)

// ErrBudget - перебор закончился раньше, чем нашлось нужное число коллизий.
var ErrBudget = errors.New("iteration budget exhausted")

// Структура для хранения пары прообразов с одинаковым образом (в hex)
type Collision struct {
	X     string
	Y     string
	Image string
	Claw  bool // X из f, Y из g
}

// TruncatedSHA - задача эксперимента: SHA-256 сообщений из MsgLen байт,
// усеченный до outBits бит.
func TruncatedSHA(outBits int) (*myproblems.TruncatedHash, error) {
	if outBits < MinOut || outBits > 64 {
		return nil, fmt.Errorf("invalid out vector size %d", outBits)
	}
	return myproblems.NewTruncatedHash(myproblems.AlgoSHA256, MsgLen, outBits)
}

// проверяет, встречалась ли такая коллизия ранее
func containColl(arr []Collision, data Collision) bool {
	for _, val := range arr {
		if val.X == data.X && val.Y == data.Y || val.X == data.Y && val.Y == data.X {
			return true
		}
	}
	return false
}

// FromPair переводит найденную двигателем пару в hex-запись.
// Для claw первым идет прообраз из f.
func FromPair[A, B, C any](dom mydomain.Domain[C], pair mysearch.Pair[A, B, C]) Collision {
	x, y := pair.PreX, pair.PreY
	if !x.FromF && y.FromF {
		x, y = y, x
	}
	img := make([]byte, dom.Length())
	dom.Serialize(pair.Image, img)
	return Collision{
		X:     hex.EncodeToString(x.Raw),
		Y:     hex.EncodeToString(y.Raw),
		Image: hex.EncodeToString(img),
		Claw:  pair.IsClaw(),
	}
}

// domainBits - разрядность домена образов
func domainBits[C any](dom mydomain.Domain[C]) int {
	if n := dom.NElements(); n != 0 {
		return bits.Len64(n) - 1
	}
	return 8 * dom.Length()
}
