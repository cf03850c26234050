package leveldb

import (
	"encoding/binary"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"github.com/tinylib/msgp/msgp"

	"github.com/bft-labs/seqbatch/internal/domain"
)

var (
	countKey     = []byte("meta:count")
	samplePrefix = []byte("s:")
)

// sampleKey returns "s:" followed by the big-endian index.
func sampleKey(index int) []byte {
	key := make([]byte, len(samplePrefix)+8)
	copy(key, samplePrefix)
	binary.BigEndian.PutUint64(key[len(samplePrefix):], uint64(index))
	return key
}

// EncodeSample serializes a sample as snappy-compressed msgpack:
//
//	{"id": str, "seq": {name: {"r": int, "c": int, "d": [f32]}}, "vec": {name: [f32]}}
func EncodeSample(s *domain.Sample) []byte {
	b := msgp.AppendMapHeader(nil, 3)
	b = msgp.AppendString(b, "id")
	b = msgp.AppendString(b, s.ID)

	b = msgp.AppendString(b, "seq")
	b = msgp.AppendMapHeader(b, uint32(len(s.Sequences)))
	for name, m := range s.Sequences {
		b = msgp.AppendString(b, name)
		b = msgp.AppendMapHeader(b, 3)
		b = msgp.AppendString(b, "r")
		b = msgp.AppendInt(b, m.Rows)
		b = msgp.AppendString(b, "c")
		b = msgp.AppendInt(b, m.Cols)
		b = msgp.AppendString(b, "d")
		b = appendFloats(b, m.Data)
	}

	b = msgp.AppendString(b, "vec")
	b = msgp.AppendMapHeader(b, uint32(len(s.Vectors)))
	for name, v := range s.Vectors {
		b = msgp.AppendString(b, name)
		b = appendFloats(b, v)
	}
	return snappy.Encode(nil, b)
}

// DecodeSample is the inverse of EncodeSample. Unknown keys are skipped.
func DecodeSample(data []byte) (*domain.Sample, error) {
	b, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, errors.Wrap(err, "snappy decode")
	}
	s := &domain.Sample{
		Sequences: map[string]domain.Matrix{},
		Vectors:   map[string][]float32{},
	}

	sz, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return nil, errors.Wrap(err, "record header")
	}
	for ; sz > 0; sz-- {
		var key string
		key, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return nil, errors.Wrap(err, "record key")
		}
		switch key {
		case "id":
			s.ID, b, err = msgp.ReadStringBytes(b)
		case "seq":
			b, err = readSequences(b, s.Sequences)
		case "vec":
			b, err = readVectors(b, s.Vectors)
		default:
			b, err = msgp.Skip(b)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "record field %q", key)
		}
	}
	return s, nil
}

func readSequences(b []byte, out map[string]domain.Matrix) ([]byte, error) {
	n, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return b, err
	}
	for ; n > 0; n-- {
		var name string
		if name, b, err = msgp.ReadStringBytes(b); err != nil {
			return b, err
		}
		var m domain.Matrix
		var fields uint32
		if fields, b, err = msgp.ReadMapHeaderBytes(b); err != nil {
			return b, err
		}
		for ; fields > 0; fields-- {
			var key string
			if key, b, err = msgp.ReadStringBytes(b); err != nil {
				return b, err
			}
			switch key {
			case "r":
				m.Rows, b, err = msgp.ReadIntBytes(b)
			case "c":
				m.Cols, b, err = msgp.ReadIntBytes(b)
			case "d":
				m.Data, b, err = readFloats(b)
			default:
				b, err = msgp.Skip(b)
			}
			if err != nil {
				return b, errors.Wrapf(err, "sequence %q", name)
			}
		}
		if err := m.Check(); err != nil {
			return b, errors.Wrapf(err, "sequence %q", name)
		}
		out[name] = m
	}
	return b, nil
}

func readVectors(b []byte, out map[string][]float32) ([]byte, error) {
	n, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return b, err
	}
	for ; n > 0; n-- {
		var name string
		if name, b, err = msgp.ReadStringBytes(b); err != nil {
			return b, err
		}
		var v []float32
		if v, b, err = readFloats(b); err != nil {
			return b, errors.Wrapf(err, "vector %q", name)
		}
		out[name] = v
	}
	return b, nil
}

func appendFloats(b []byte, v []float32) []byte {
	b = msgp.AppendArrayHeader(b, uint32(len(v)))
	for _, f := range v {
		b = msgp.AppendFloat32(b, f)
	}
	return b
}

// float32Size is the encoded size of one msgpack float32.
const float32Size = 5

func readFloats(b []byte) ([]float32, []byte, error) {
	n, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return nil, b, err
	}
	if uint64(n)*float32Size > uint64(len(b)) {
		return nil, b, msgp.ErrShortBytes
	}
	v := make([]float32, n)
	for i := range v {
		if v[i], b, err = msgp.ReadFloat32Bytes(b); err != nil {
			return nil, b, err
		}
	}
	return v, b, nil
}
