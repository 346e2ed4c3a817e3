package store

import (
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zstd"
)

// Codec compresses archived games. The extension is appended to the record
// file name so Load can pick the matching codec.
type Codec interface {
	Name() string
	Ext() string
	NewWriter(w io.Writer) (io.WriteCloser, error)
	NewReader(r io.Reader) (io.ReadCloser, error)
}

type zstdCodec struct{}

func (zstdCodec) Name() string { return "zstd" }
func (zstdCodec) Ext() string  { return ".json.zst" }

func (zstdCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w)
}

func (zstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}

type bzip2Codec struct{}

func (bzip2Codec) Name() string { return "bzip2" }
func (bzip2Codec) Ext() string  { return ".json.bz2" }

func (bzip2Codec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.BestSpeed})
}

func (bzip2Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return bzip2.NewReader(r, nil)
}

var codecs = []Codec{zstdCodec{}, bzip2Codec{}}

// CodecByName returns the codec called name ("zstd" or "bzip2").
func CodecByName(name string) (Codec, error) {
	for _, c := range codecs {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("unknown archive codec %q", name)
}
