// Package codec maps a balance onto the card's budget block.
//
// The layout is compatibility-critical: issued cards carry the balance as a
// little-endian int32 in the first four bytes of a 16-byte block, with the
// remainder zero. That is the exact image the original controller memcpy'd,
// so it must not change while those cards are in circulation.
package codec

import (
	"encoding"
	"encoding/binary"
	"errors"
)

// BlockSize is the size of one MIFARE Classic data block.
const BlockSize = 16

type BalanceBlock struct {
	Balance int32
}

var (
	_ encoding.BinaryMarshaler   = BalanceBlock{}
	_ encoding.BinaryUnmarshaler = (*BalanceBlock)(nil)
)

func (b BalanceBlock) MarshalBinary() ([]byte, error) {
	buf := make([]byte, BlockSize)
	binary.LittleEndian.PutUint32(buf[:4], uint32(b.Balance))
	return buf, nil
}

func (b *BalanceBlock) UnmarshalBinary(data []byte) error {
	if len(data) != BlockSize {
		return errors.New("budget block must be 16 bytes")
	}

	b.Balance = int32(binary.LittleEndian.Uint32(data[:4]))
	return nil
}

// Encode serializes balance into a fresh budget block image.
func Encode(balance int32) []byte {
	buf, _ := BalanceBlock{Balance: balance}.MarshalBinary()
	return buf
}

// Decode reads the balance back out of a block image.
func Decode(data []byte) (int32, error) {
	var b BalanceBlock
	err := b.UnmarshalBinary(data)
	if err != nil {
		return 0, err
	}
	return b.Balance, nil
}
