// Package mavlink implements the MAVLink 1.0 frame format and the message set
// exchanged with the ground control station, including the UAlberta dialect
// messages used by the helicopter autopilot.
//
// A frame on the wire is
//
//	STX LEN SEQ SYS COMP MSGID PAYLOAD[LEN] CKA CKB
//
// where the checksum is CRC-16/MCRF4XX over LEN..PAYLOAD followed by the
// message's CRC_EXTRA seed byte.
package mavlink

import (
	"errors"
	"fmt"
)

const (
	// STX marks the start of a MAVLink 1.0 frame.
	STX byte = 0xFE
	// HeaderLen is the number of bytes before the payload.
	HeaderLen = 6
	// ChecksumLen is the number of trailing checksum bytes.
	ChecksumLen = 2
	// MaxPayloadLen is the largest payload a frame may carry.
	MaxPayloadLen = 255
	// MaxPacketLen bounds the size of any encoded frame.
	MaxPacketLen = HeaderLen + MaxPayloadLen + ChecksumLen
)

// Byte offsets of the header fields.
const (
	offsetLen     = 1
	offsetSeq     = 2
	offsetSys     = 3
	offsetComp    = 4
	offsetMsgID   = 5
	offsetPayload = HeaderLen
)

var (
	ErrShortFrame     = errors.New("mavlink: frame too short")
	ErrBadMagic       = errors.New("mavlink: missing start byte")
	ErrBadCRC         = errors.New("mavlink: checksum mismatch")
	ErrUnknownMessage = errors.New("mavlink: unknown message id")
)

// Message is a MAVLink message body that can be framed.
type Message interface {
	// MsgID returns the MAVLink message id.
	MsgID() uint8
	// CRCExtra returns the seed byte appended to the checksum.
	CRCExtra() uint8
	// MarshalPayload returns the little-endian payload bytes.
	MarshalPayload() []byte
}

// Encoder frames messages and assigns the per-link sequence number.
// An Encoder is not safe for concurrent use; the downlink owns exactly one.
type Encoder struct {
	seq uint8
}

// Pack frames m as sent by the given system and component.
func (e *Encoder) Pack(sysID, compID uint8, m Message) []byte {
	payload := m.MarshalPayload()
	if len(payload) > MaxPayloadLen {
		payload = payload[:MaxPayloadLen]
	}
	buf := make([]byte, HeaderLen+len(payload)+ChecksumLen)
	buf[0] = STX
	buf[offsetLen] = byte(len(payload))
	buf[offsetSeq] = e.seq
	buf[offsetSys] = sysID
	buf[offsetComp] = compID
	buf[offsetMsgID] = m.MsgID()
	copy(buf[offsetPayload:], payload)

	crc := checksum(buf[offsetLen:offsetPayload+len(payload)], m.CRCExtra())
	buf[len(buf)-2] = byte(crc)
	buf[len(buf)-1] = byte(crc >> 8)

	e.seq++
	return buf
}

// Frame is a decoded MAVLink frame.
type Frame struct {
	Seq         uint8
	SystemID    uint8
	ComponentID uint8
	MessageID   uint8
	Payload     []byte
}

// Header reads the system, component and message ids of an encoded frame
// without validating it.
func Header(b []byte) (sysID, compID, msgID uint8, ok bool) {
	if len(b) < HeaderLen {
		return 0, 0, 0, false
	}
	return b[offsetSys], b[offsetComp], b[offsetMsgID], true
}

// Parse decodes and validates one complete frame.
func Parse(b []byte) (Frame, error) {
	if len(b) < HeaderLen+ChecksumLen {
		return Frame{}, ErrShortFrame
	}
	if b[0] != STX {
		return Frame{}, ErrBadMagic
	}
	n := int(b[offsetLen])
	if len(b) < HeaderLen+n+ChecksumLen {
		return Frame{}, fmt.Errorf("%w: payload length %d, have %d bytes", ErrShortFrame, n, len(b))
	}
	msgID := b[offsetMsgID]
	extra, ok := crcExtra[msgID]
	if !ok {
		return Frame{}, fmt.Errorf("%w: %d", ErrUnknownMessage, msgID)
	}
	want := checksum(b[offsetLen:offsetPayload+n], extra)
	got := uint16(b[offsetPayload+n]) | uint16(b[offsetPayload+n+1])<<8
	if got != want {
		return Frame{}, fmt.Errorf("%w: got %#04x want %#04x", ErrBadCRC, got, want)
	}
	payload := make([]byte, n)
	copy(payload, b[offsetPayload:offsetPayload+n])
	return Frame{
		Seq:         b[offsetSeq],
		SystemID:    b[offsetSys],
		ComponentID: b[offsetComp],
		MessageID:   msgID,
		Payload:     payload,
	}, nil
}
