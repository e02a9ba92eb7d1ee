package wal

import (
	"encoding/binary"
	"errors"
)

type RecordType uint8

const (
	RecordPlace RecordType = iota + 1
	RecordCancel
)

// Record is one durable intent. Data is a typed payload encoded by the
// helpers below; the WAL itself treats it as opaque bytes.
type Record struct {
	Type RecordType
	Seq  uint64
	Time int64
	Data []byte
}

var ErrBadPayload = errors.New("wal: malformed payload")

// PlacePayload carries everything needed to re-run a placement.
type PlacePayload struct {
	Trader uint64
	ID     uint64
	Side   uint8
	Price  int64
	Qty    int64
}

const placePayloadSize = 8 + 8 + 1 + 8 + 8

func EncodePlace(p PlacePayload) []byte {
	buf := make([]byte, placePayloadSize)
	binary.BigEndian.PutUint64(buf[0:8], p.Trader)
	binary.BigEndian.PutUint64(buf[8:16], p.ID)
	buf[16] = p.Side
	binary.BigEndian.PutUint64(buf[17:25], uint64(p.Price))
	binary.BigEndian.PutUint64(buf[25:33], uint64(p.Qty))
	return buf
}

func DecodePlace(b []byte) (PlacePayload, error) {
	if len(b) != placePayloadSize {
		return PlacePayload{}, ErrBadPayload
	}
	return PlacePayload{
		Trader: binary.BigEndian.Uint64(b[0:8]),
		ID:     binary.BigEndian.Uint64(b[8:16]),
		Side:   b[16],
		Price:  int64(binary.BigEndian.Uint64(b[17:25])),
		Qty:    int64(binary.BigEndian.Uint64(b[25:33])),
	}, nil
}

func EncodeCancel(id uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, id)
	return buf
}

func DecodeCancel(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, ErrBadPayload
	}
	return binary.BigEndian.Uint64(b), nil
}
