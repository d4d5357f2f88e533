// Package codec frames trade reports for the wire: a protobuf-encoded
// body behind an 8-byte header of little-endian length and CRC32.
package codec

import (
	"encoding/binary"
	"errors"
	"hash/crc32"

	"google.golang.org/protobuf/encoding/protowire"

	"vega/domain/market"
)

// ErrCorruptFrame is returned when the header, length or checksum does
// not match the body.
var ErrCorruptFrame = errors.New("codec: corrupt trade frame")

const headerSize = 8

// Field numbers of the trade message.
const (
	fieldMakerOrderID  = 1
	fieldTakerOrderID  = 2
	fieldMakerTraderID = 3
	fieldTakerTraderID = 4
	fieldPrice         = 5
	fieldQty           = 6
	fieldTakerSide     = 7
	fieldTimestamp     = 8
)

// EncodeTrade serialises t into a framed message.
func EncodeTrade(t market.Trade) []byte {
	var body []byte
	body = protowire.AppendTag(body, fieldMakerOrderID, protowire.VarintType)
	body = protowire.AppendVarint(body, uint64(t.MakerOrderID))
	body = protowire.AppendTag(body, fieldTakerOrderID, protowire.VarintType)
	body = protowire.AppendVarint(body, uint64(t.TakerOrderID))
	body = protowire.AppendTag(body, fieldMakerTraderID, protowire.VarintType)
	body = protowire.AppendVarint(body, uint64(t.MakerTraderID))
	body = protowire.AppendTag(body, fieldTakerTraderID, protowire.VarintType)
	body = protowire.AppendVarint(body, uint64(t.TakerTraderID))
	body = protowire.AppendTag(body, fieldPrice, protowire.VarintType)
	body = protowire.AppendVarint(body, protowire.EncodeZigZag(int64(t.Price)))
	body = protowire.AppendTag(body, fieldQty, protowire.VarintType)
	body = protowire.AppendVarint(body, protowire.EncodeZigZag(int64(t.Qty)))
	body = protowire.AppendTag(body, fieldTakerSide, protowire.VarintType)
	body = protowire.AppendVarint(body, uint64(t.TakerSide))
	body = protowire.AppendTag(body, fieldTimestamp, protowire.VarintType)
	body = protowire.AppendVarint(body, uint64(t.Timestamp))

	out := make([]byte, headerSize, headerSize+len(body))
	binary.LittleEndian.PutUint32(out[:4], uint32(len(body)))
	binary.LittleEndian.PutUint32(out[4:8], crc32.ChecksumIEEE(body))
	return append(out, body...)
}

// DecodeTrade parses a framed message produced by EncodeTrade.
func DecodeTrade(data []byte) (market.Trade, error) {
	var t market.Trade
	if len(data) < headerSize {
		return t, ErrCorruptFrame
	}
	n := binary.LittleEndian.Uint32(data[:4])
	body := data[headerSize:]
	if uint32(len(body)) != n {
		return t, ErrCorruptFrame
	}
	if crc32.ChecksumIEEE(body) != binary.LittleEndian.Uint32(data[4:8]) {
		return t, ErrCorruptFrame
	}

	for len(body) > 0 {
		num, typ, tagLen := protowire.ConsumeTag(body)
		if tagLen < 0 || typ != protowire.VarintType {
			return t, ErrCorruptFrame
		}
		body = body[tagLen:]
		v, vLen := protowire.ConsumeVarint(body)
		if vLen < 0 {
			return t, ErrCorruptFrame
		}
		body = body[vLen:]

		switch num {
		case fieldMakerOrderID:
			t.MakerOrderID = market.OrderID(v)
		case fieldTakerOrderID:
			t.TakerOrderID = market.OrderID(v)
		case fieldMakerTraderID:
			t.MakerTraderID = market.TraderID(v)
		case fieldTakerTraderID:
			t.TakerTraderID = market.TraderID(v)
		case fieldPrice:
			t.Price = market.Price(protowire.DecodeZigZag(v))
		case fieldQty:
			t.Qty = market.Qty(protowire.DecodeZigZag(v))
		case fieldTakerSide:
			t.TakerSide = market.Side(v)
		case fieldTimestamp:
			t.Timestamp = int64(v)
		}
	}
	return t, nil
}
