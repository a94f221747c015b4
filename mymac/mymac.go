package mymac

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
)

// --- Константы ---
const (
	AESBlockSize = 16
	AESKeySize   = 16
	SHABlockSize = 32
	OMACTagSize  = 16
	HMACTagSize  = 16

	Rn = 0x87
)

const (
	OMAC      = "OMAC"
	HMAC      = "HMAC"
	TRUNCATED = "TRUNCATED" // OMAC, усеченный до tagBits бит
)

// MyMAC - вычисление подписи OMAC1 (CMAC) или HMAC-SHA256
type MyMAC struct {
	key      []byte
	k1, k2   []byte
	mode     string
	tagBits  int
	aesBlock cipher.Block
	hmacHash hash.Hash
}

// SetMode задает алгоритм вычисления подписи
func (mm *MyMAC) SetMode(newmode string) error {
	switch newmode {
	case TRUNCATED, HMAC, OMAC:
		mm.mode = newmode
		return nil
	default:
		return fmt.Errorf("wrong mode [%s] detected", newmode)
	}
}

// SetTagBits задает длину усеченного тега в битах (только для TRUNCATED)
func (mm *MyMAC) SetTagBits(bits int) error {
	if bits < 1 || bits > 8*OMACTagSize {
		return fmt.Errorf("invalid tag size: %d bits", bits)
	}
	mm.tagBits = bits
	return nil
}

// TagBits - длина тега в битах для текущего режима
func (mm *MyMAC) TagBits() int {
	switch mm.mode {
	case TRUNCATED:
		return mm.tagBits
	case OMAC:
		return 8 * OMACTagSize
	default:
		return 8 * HMACTagSize
	}
}

// SetKey устанавливает ключ и вычисляет подключи k1, k2
func (mm *MyMAC) SetKey(newkey []byte) error {
	var err error
	switch mm.mode {
	case OMAC, TRUNCATED:
		if len(newkey) != AESKeySize {
			return fmt.Errorf("invalid key length: got %d, expected %d", len(newkey), AESKeySize)
		}
		mm.key = newkey
		mm.aesBlock, err = aes.NewCipher(newkey)
		if err != nil {
			return err
		}
	case HMAC:
		if len(newkey) != SHABlockSize {
			h := sha256.Sum256(newkey)
			newkey = h[:]
		}
		mm.key = newkey
		mm.hmacHash = sha256.New()
	default:
		return fmt.Errorf("undefined algorithm %s", mm.mode)
	}
	return mm.generateSubkeys()
}

// ComputeMac вычисляет тег сообщения за один вызов.
// Для TRUNCATED лишние биты последнего байта тега обнуляются.
func (mm *MyMAC) ComputeMac(message []byte) ([]byte, error) {
	switch mm.mode {
	case OMAC, TRUNCATED:
		if mm.aesBlock == nil {
			return nil, errors.New("key is not set")
		}
		tag := mm.omac(message)
		if mm.mode == OMAC {
			return tag, nil
		}
		if mm.tagBits == 0 {
			return nil, errors.New("tag size is not set")
		}
		n := (mm.tagBits + 7) / 8
		tag = tag[:n]
		if rem := mm.tagBits % 8; rem != 0 {
			tag[n-1] &= byte(1)<<uint(rem) - 1
		}
		return tag, nil
	case HMAC:
		if mm.hmacHash == nil {
			return nil, errors.New("key is not set")
		}
		mm.hmacHash.Reset()
		mm.hmacHash.Write(mm.k1)
		mm.hmacHash.Write(message)
		innerHash := mm.hmacHash.Sum(nil)                       // H(k1 || message)
		outerHash := sha256.Sum256(append(mm.k2, innerHash...)) // H(k2 || H(k1 || message))
		return outerHash[:HMACTagSize], nil
	default:
		return nil, fmt.Errorf("undefined algorithm %s", mm.mode)
	}
}

// VerifyMac вычисляет MAC для данных и сравнивает его с переданным тегом
func (mm *MyMAC) VerifyMac(message, tag []byte) (bool, error) {
	computed, err := mm.ComputeMac(message)
	if err != nil {
		return false, err
	}
	return MacEqual(computed, tag), nil
}

// omac - CBC-MAC с подключом k1 для полного последнего блока и k2 с паддингом иначе
func (mm *MyMAC) omac(message []byte) []byte {
	state := make([]byte, AESBlockSize)
	for len(message) > AESBlockSize {
		xorInto(state, message[:AESBlockSize])
		mm.aesBlock.Encrypt(state, state)
		message = message[AESBlockSize:]
	}
	if len(message) == AESBlockSize {
		xorInto(state, message)
		xorInto(state, mm.k1)
	} else {
		xorInto(state, pad(message, AESBlockSize))
		xorInto(state, mm.k2)
	}
	mm.aesBlock.Encrypt(state, state)
	return state
}

// generateSubkeys вычисляет ключи k1 и k2
func (mm *MyMAC) generateSubkeys() error {
	var K1, K2 []byte
	switch mm.mode {
	case OMAC, TRUNCATED:
		L := make([]byte, AESBlockSize)
		mm.aesBlock.Encrypt(L, L)
		K1 = leftShift(L)
		if L[0]&0x80 != 0 { // L & 10000000
			K1[AESBlockSize-1] ^= Rn
		}
		K2 = leftShift(K1)
		if K1[0]&0x80 != 0 {
			K2[AESBlockSize-1] ^= Rn
		}
	case HMAC:
		K1 = make([]byte, SHABlockSize)
		K2 = make([]byte, SHABlockSize)
		for i := range K1 {
			K1[i] = mm.key[i] ^ 0x36
			K2[i] = mm.key[i] ^ 0x5c
		}
	default:
		return fmt.Errorf("undefined algorithm %s", mm.mode)
	}
	mm.k1, mm.k2 = K1, K2
	return nil
}

// leftShift выполняет побитовый сдвиг влево для массива байтов
func leftShift(input []byte) []byte {
	out := make([]byte, len(input))
	carry := byte(0)
	for i := len(input) - 1; i >= 0; i-- {
		out[i] = (input[i] << 1) | carry
		carry = (input[i] & 0x80) >> 7
	}
	return out
}

// добавляет паддинг 100...0 до полного блока
func pad(data []byte, blockSize int) []byte {
	out := make([]byte, blockSize)
	copy(out, data)
	out[len(data)] = 0x80 // 10000000
	return out
}

func xorInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

// MacEqual сравнивает два тега в константное время
func MacEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	result := 0
	for i := range a {
		result |= int(a[i] ^ b[i])
	}
	return result == 0
}
