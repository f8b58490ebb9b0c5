package store

import (
	"encoding/binary"

	lz4 "github.com/DataDog/golz4-2"
	"github.com/pkg/errors"
)

// column encodings, stored in the first byte of a blob
const (
	methodByte = iota
	methodVarint
	methodDeltaVarint
)

func compress(buf []byte) ([]byte, error) {
	comp := make([]byte, lz4.CompressBoundHdr(buf)+1)
	n, err := lz4.CompressHCHdr(comp[1:], buf)
	if err != nil {
		return nil, err
	}
	return comp[:n+1], nil
}

func decompress(buf []byte) ([]byte, error) {
	return lz4.UncompressAllocHdr(nil, buf)
}

// encodeColumn tries a few encodings of run and returns the smallest.
func encodeColumn(run []uint32) ([]byte, error) {
	buf := make([]byte, len(run)*binary.MaxVarintLen64)

	off := 0
	for _, x := range run {
		off += binary.PutVarint(buf[off:], int64(x))
	}
	best, err := compress(buf[:off])
	if err != nil {
		return nil, err
	}
	best[0] = methodVarint

	off = 0
	last := int64(0)
	for _, x := range run {
		off += binary.PutVarint(buf[off:], int64(x)-last)
		last = int64(x)
	}
	enc, err := compress(buf[:off])
	if err != nil {
		return nil, err
	}
	enc[0] = methodDeltaVarint
	if len(enc) < len(best) {
		best = enc
	}

	// small palettes are trivially 8-bit
	for _, x := range run {
		if x > 255 {
			return best, nil
		}
	}
	for i, x := range run {
		buf[i] = byte(x)
	}
	enc, err = compress(buf[:len(run)])
	if err != nil {
		return nil, err
	}
	enc[0] = methodByte
	if len(enc) < len(best) {
		best = enc
	}
	return best, nil
}

func decodeColumn(comp []byte) ([]uint32, error) {
	if len(comp) < 2 {
		return nil, errors.New("column blob is truncated")
	}
	buf, err := decompress(comp[1:])
	if err != nil {
		return nil, errors.Wrap(err, "decompressing column")
	}
	var ret []uint32
	switch comp[0] {
	case methodByte:
		ret = make([]uint32, len(buf))
		for i, c := range buf {
			ret[i] = uint32(c)
		}
	case methodVarint, methodDeltaVarint:
		last := int64(0)
		for i := 0; i < len(buf); {
			val, n := binary.Varint(buf[i:])
			if n <= 0 {
				return nil, errors.Errorf("bad varint at offset %d", i)
			}
			i += n
			if comp[0] == methodDeltaVarint {
				val += last
				last = val
			}
			ret = append(ret, uint32(val))
		}
	default:
		return nil, errors.Errorf("unknown column encoding %d", comp[0])
	}
	return ret, nil
}
