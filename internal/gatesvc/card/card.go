package card

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
)

// Key is a MIFARE Classic sector key (key A here).
type Key [6]byte

// DefaultKey is the transport key every issued card is provisioned with.
var DefaultKey = Key{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// UID is the factory serial number of a card. It is only ever compared
// for equality against the configured authorized identity.
type UID []byte

func (u UID) String() string {
	return hex.EncodeToString(u)
}

func (u UID) Equal(other UID) bool {
	return bytes.Equal(u, other)
}

// ParseUID decodes a hex UID string as configured in the environment.
func ParseUID(s string) (UID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) < 4 || len(b) > 10 {
		return nil, errors.New("uid must be 4 to 10 bytes")
	}
	return UID(b), nil
}

// ParseKey decodes a 6-byte hex sector key.
func ParseKey(s string) (Key, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Key{}, err
	}
	if len(b) != 6 {
		return Key{}, errors.New("key must be 6 bytes")
	}
	var k Key
	copy(k[:], b)
	return k, nil
}

// ErrNoCard is returned by Poll when the field is empty.
var ErrNoCard = errors.New("no card in field")

// Session is one card presentation. Operations are strictly ordered and the
// session must be released with Halt before the next card is considered.
type Session interface {
	UID() UID
	Authenticate(block uint8, key Key) error
	WriteBlock(block uint8, data []byte) error
	ReadBlock(block uint8) ([]byte, error)
	Halt() error
}

// Reader produces at most one open Session at a time.
type Reader interface {
	Poll(ctx context.Context) (Session, error)
	Close() error
}
