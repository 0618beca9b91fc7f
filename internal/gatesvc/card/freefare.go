package card

import (
	"context"
	"errors"

	"github.com/clausecker/freefare"
	"github.com/clausecker/nfc/v2"
)

// NFCReader drives a PC/SC-class contactless reader through libnfc and
// exposes MIFARE Classic tags as gate sessions.
type NFCReader struct {
	dev nfc.Device
}

// OpenNFCReader opens the reader at conn (empty string picks the first
// device libnfc finds) and prepares it as an initiator.
func OpenNFCReader(conn string) (_ *NFCReader, err error) {
	defer deferWrap(&err)

	dev, err := nfc.Open(conn)
	if err != nil {
		return nil, err
	}

	err = dev.InitiatorInit()
	if err != nil {
		dev.Close()
		return nil, err
	}

	return &NFCReader{dev: dev}, nil
}

func (r *NFCReader) Poll(ctx context.Context) (_ Session, err error) {
	defer deferWrap(&err)

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	tags, err := freefare.GetTags(r.dev)
	if err != nil {
		return nil, err
	}

	for _, t := range tags {
		classic, ok := t.(freefare.ClassicTag)
		if !ok {
			continue
		}

		err = classic.Connect()
		if err != nil {
			return nil, err
		}

		uid, err := ParseUID(classic.UID())
		if err != nil {
			classic.Disconnect()
			return nil, err
		}

		return &classicSession{tag: classic, uid: uid}, nil
	}

	return nil, ErrNoCard
}

func (r *NFCReader) Close() error {
	return r.dev.Close()
}

type classicSession struct {
	tag freefare.ClassicTag
	uid UID
}

func (s *classicSession) UID() UID {
	return s.uid
}

func (s *classicSession) Authenticate(block uint8, key Key) error {
	err := s.tag.Authenticate(block, [6]byte(key), freefare.KeyA)
	if err != nil {
		return &AuthError{Status: statusCodeOf(err)}
	}
	return nil
}

func (s *classicSession) WriteBlock(block uint8, data []byte) error {
	if len(data) != 16 {
		return &WriteError{Status: StatusNoRoom}
	}

	var buf [16]byte
	copy(buf[:], data)

	err := s.tag.WriteBlock(block, buf)
	if err != nil {
		return &WriteError{Status: statusCodeOf(err)}
	}
	return nil
}

func (s *classicSession) ReadBlock(block uint8) ([]byte, error) {
	buf, err := s.tag.ReadBlock(block)
	if err != nil {
		return nil, &ReadError{Status: statusCodeOf(err)}
	}

	out := make([]byte, 16)
	copy(out, buf[:])
	return out, nil
}

func (s *classicSession) Halt() error {
	return s.tag.Disconnect()
}

// statusCodeOf folds libnfc error codes into the reader status set.
func statusCodeOf(err error) StatusCode {
	var ne nfc.Error
	if !errors.As(err, &ne) {
		return StatusError
	}

	switch ne {
	case nfc.ETIMEOUT:
		return StatusTimeout
	case nfc.ETGRELEASED:
		// card left the field mid-exchange
		return StatusTimeout
	case nfc.EMFCAUTHFAIL:
		return StatusMifareNack
	case nfc.EINVARG:
		return StatusInvalid
	case nfc.EOVFLOW:
		return StatusNoRoom
	case nfc.ECHIP:
		return StatusInternalError
	default:
		return StatusError
	}
}
