package mycrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
)

// --- Константы ---
// Общие параметры для AES
const (
	AESBlockSize = 16
	AESKeySize16 = 16
	AESKeySize24 = 24
	AESKeySize32 = 32
)

// MyCipher - одноблочное шифрование AES с заданным ключом.
type MyCipher struct {
	key       []byte
	aesBlock  cipher.Block
	blockSize int
}

// SetKey устанавливает ключ и инициализирует AES‑блочный шифр
func (mc *MyCipher) SetKey(newkey []byte) error {
	if len(newkey) != AESKeySize16 && len(newkey) != AESKeySize24 && len(newkey) != AESKeySize32 {
		return fmt.Errorf("invalid key length: got %d, expected %d, %d, or %d", len(newkey), AESKeySize16, AESKeySize24, AESKeySize32)
	}
	var err error
	mc.key = newkey
	mc.aesBlock, err = aes.NewCipher(newkey)
	if err != nil {
		return err
	}
	mc.blockSize = mc.aesBlock.BlockSize() // всегда 16 байт для AES
	return nil
}

// BlockCipherEncrypt выполняет одноблочное шифрование с помощью AES
func (mc *MyCipher) BlockCipherEncrypt(data []byte) ([]byte, error) {
	if mc.aesBlock == nil {
		return nil, fmt.Errorf("BlockCipherEncrypt: key is not set")
	}
	if len(data) != mc.blockSize {
		return nil, fmt.Errorf("BlockCipherEncrypt: data length must be %d", mc.blockSize)
	}
	out := make([]byte, mc.blockSize)
	mc.aesBlock.Encrypt(out, data)
	return out, nil
}

// BlockCipherDecrypt выполняет одноблочное дешифрование.
func (mc *MyCipher) BlockCipherDecrypt(data []byte) ([]byte, error) {
	if mc.aesBlock == nil {
		return nil, fmt.Errorf("BlockCipherDecrypt: key is not set")
	}
	if len(data) != mc.blockSize {
		return nil, fmt.Errorf("BlockCipherDecrypt: data length must be %d", mc.blockSize)
	}
	out := make([]byte, mc.blockSize)
	mc.aesBlock.Decrypt(out, data)
	return out, nil
}

// ExpandKey превращает короткий ключ из bits бит в ключ AES-128:
// младшие 8 байт - ключ в little-endian, остальные нули.
func ExpandKey(k uint64, bits int) []byte {
	if bits < 64 {
		k &= uint64(1)<<uint(bits) - 1
	}
	key := make([]byte, AESKeySize16)
	binary.LittleEndian.PutUint64(key, k)
	return key
}

// DoubleCipher - двойное шифрование E_k2(E_k1(p)), цель атаки "встреча посередине".
type DoubleCipher struct {
	inner MyCipher
	outer MyCipher
}

// NewDoubleCipher создает двойной шифр с ключами k1 (внутренний) и k2 (внешний).
func NewDoubleCipher(k1, k2 []byte) (*DoubleCipher, error) {
	dc := &DoubleCipher{}
	if err := dc.inner.SetKey(k1); err != nil {
		return nil, err
	}
	if err := dc.outer.SetKey(k2); err != nil {
		return nil, err
	}
	return dc, nil
}

// Encrypt шифрует один блок.
func (dc *DoubleCipher) Encrypt(block []byte) ([]byte, error) {
	mid, err := dc.inner.BlockCipherEncrypt(block)
	if err != nil {
		return nil, err
	}
	return dc.outer.BlockCipherEncrypt(mid)
}

// Decrypt расшифровывает один блок.
func (dc *DoubleCipher) Decrypt(block []byte) ([]byte, error) {
	mid, err := dc.outer.BlockCipherDecrypt(block)
	if err != nil {
		return nil, err
	}
	return dc.inner.BlockCipherDecrypt(mid)
}
