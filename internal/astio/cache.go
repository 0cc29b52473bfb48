package astio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// CacheExt is the extension of msgpack forest caches.
const CacheExt = ".kfo"

// cacheSchema is bumped whenever ast or Document change shape.
const cacheSchema uint16 = 1

// ErrStaleCache is returned for caches written by another schema.
var ErrStaleCache = errors.New("forest cache has an outdated schema")

type cachePayload struct {
	Schema uint16      `msgpack:"schema"`
	Docs   []*Document `msgpack:"docs"`
}

// WriteCache stores docs at path. The file is replaced atomically.
func WriteCache(path string, docs []*Document) (err error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".kfo-*")
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name()) //nolint:errcheck
		}
	}()
	if err = EncodeCache(f, docs); err != nil {
		_ = f.Close() //nolint:errcheck
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// EncodeCache writes the msgpack form of docs to w.
func EncodeCache(w io.Writer, docs []*Document) error {
	return encodePayload(w, &cachePayload{Schema: cacheSchema, Docs: docs})
}

func encodePayload(w io.Writer, p *cachePayload) error {
	enc := msgpack.NewEncoder(w)
	enc.UseCompactInts(true)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	return nil
}

// DecodeCache reads what EncodeCache wrote.
func DecodeCache(r io.Reader) ([]*Document, error) {
	var p cachePayload
	if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode cache: %w", err)
	}
	if p.Schema != cacheSchema {
		return nil, fmt.Errorf("%w: %d, want %d", ErrStaleCache, p.Schema, cacheSchema)
	}
	return p.Docs, nil
}
