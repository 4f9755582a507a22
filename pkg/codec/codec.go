// Package codec defines the serialization seam between specdex and the
// ecosystem's native descriptor format.
//
// The on-wire descriptor and index format is specific to the package
// ecosystem and treated as opaque here: everything above this package moves
// byte blobs through an injected Codec. The default Gob codec is used by the
// CLI and by tests; callers integrating a real ecosystem inject their own.
//
// Descriptors travel compressed (a raw zlib/deflate stream, the ".rz"
// suffix); Inflate and Deflate convert between the transfer and storage
// forms.
package codec

import (
	"bytes"
	"encoding/gob"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/specdex/specdex/pkg/errors"
)

// Codec encodes and decodes the ecosystem's native serialization format.
type Codec interface {
	// Encode serializes v into a byte blob.
	Encode(v any) ([]byte, error)

	// Decode deserializes data into v, which must be a pointer.
	// A decode error means the bytes are not a valid blob for v's type;
	// callers treat that as a corrupt or stale cache file.
	Decode(data []byte, v any) error
}

// Gob implements Codec with encoding/gob. It is the default codec.
type Gob struct{}

// Encode implements Codec.
func (Gob) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "encode %T", v)
	}
	return buf.Bytes(), nil
}

// Decode implements Codec.
func (Gob) Decode(data []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %T", v)
	}
	return nil
}

// Inflate decompresses a deflate (zlib) stream, the descriptor transfer
// format.
func Inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "inflate")
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "inflate")
	}
	return out, nil
}

// Deflate compresses data into a zlib stream. The engine itself never
// uploads, but index servers and tests need the inverse of Inflate.
func Deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "deflate")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "deflate")
	}
	return buf.Bytes(), nil
}
