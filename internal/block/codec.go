package block

import "encoding/binary"

// Numeric fields on the wire are host-endian per the external-interface
// contract, so the hash field uses binary.NativeEndian rather than a
// fixed byte order.

// Codec - Converts a Slot to and from its fixed-width on-disk
// representation. Field order on the wire is (free_marker, hash, key,
// value), matching the backing-file layout: a single free byte, eight
// bytes of host-endian hash, then the key and value bytes in whatever
// fixed width the codec was built for.
type Codec[K comparable, V any] interface {
	// Size - Total byte width of one encoded slot, including the free
	// marker and hash.
	Size() int
	Encode(s Slot[K, V], dst []byte)
	Decode(src []byte) Slot[K, V]
}

// FixedCodec - A Codec over keys and values with a known, fixed byte
// width, following gostonefire-filehashmap's CRTConf.KeyLength/ValueLength
// convention: the caller supplies the width and the marshal/unmarshal
// functions, the codec only owns the envelope (free marker + hash).
type FixedCodec[K comparable, V any] struct {
	KeySize   int
	ValueSize int
	EncodeKey func(K, []byte)
	DecodeKey func([]byte) K
	EncodeVal func(V, []byte)
	DecodeVal func([]byte) V
}

const envelopeSize = 1 + 8 // free marker + hash

func (c FixedCodec[K, V]) Size() int {
	return envelopeSize + c.KeySize + c.ValueSize
}

func (c FixedCodec[K, V]) Encode(s Slot[K, V], dst []byte) {
	if s.Free {
		dst[0] = 1
	} else {
		dst[0] = 0
	}
	binary.NativeEndian.PutUint64(dst[1:9], s.Hash)
	if s.Free {
		return
	}
	c.EncodeKey(s.Key, dst[9:9+c.KeySize])
	c.EncodeVal(s.Value, dst[9+c.KeySize:9+c.KeySize+c.ValueSize])
}

func (c FixedCodec[K, V]) Decode(src []byte) Slot[K, V] {
	var s Slot[K, V]
	s.Free = src[0] != 0
	s.Hash = binary.NativeEndian.Uint64(src[1:9])
	if s.Free {
		return s
	}
	s.Key = c.DecodeKey(src[9 : 9+c.KeySize])
	s.Value = c.DecodeVal(src[9+c.KeySize : 9+c.KeySize+c.ValueSize])
	return s
}

// BytesCodec - A FixedCodec specialization for string keys and values of a
// fixed, caller-declared width; short inputs are zero-padded, matching the
// teacher's ExtendByteSlice convention for growing fixed-width fields.
func BytesCodec(keySize, valueSize int) FixedCodec[string, string] {
	return FixedCodec[string, string]{
		KeySize:   keySize,
		ValueSize: valueSize,
		EncodeKey: func(k string, dst []byte) { clear(dst[copy(dst, k):]) },
		DecodeKey: func(src []byte) string { return string(trimZero(src)) },
		EncodeVal: func(v string, dst []byte) { clear(dst[copy(dst, v):]) },
		DecodeVal: func(src []byte) string { return string(trimZero(src)) },
	}
}

func trimZero(b []byte) []byte {
	i := len(b)
	for i > 0 && b[i-1] == 0 {
		i--
	}
	return b[:i]
}
