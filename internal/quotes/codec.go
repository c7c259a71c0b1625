package quotes

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// DefaultEncoding decodes every byte value, so reads never fail on content.
const DefaultEncoding = "latin1"

// Codec reads and writes whole files under one fixed text encoding.
type Codec struct {
	enc  encoding.Encoding
	name string
}

// NewCodec resolves an IANA encoding name such as "latin1", "windows-1252"
// or "utf-8". An empty name selects DefaultEncoding.
func NewCodec(name string) (*Codec, error) {
	if name == "" {
		name = DefaultEncoding
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("encoding %q is not supported", name)
	}

	return &Codec{enc: enc, name: name}, nil
}

// Name returns the configured encoding name.
func (c *Codec) Name() string {
	return c.name
}

// ReadFile reads path and decodes it.
func (c *Codec) ReadFile(path string) (string, error) {
	// #nosec G304 - path comes from the dataset configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	text, err := c.enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s as %s: %w", filepath.Base(path), c.name, err)
	}
	return string(text), nil
}

// WriteFile encodes content and replaces path with it. The new content is
// written to a sibling temp file first and renamed over the original.
func (c *Codec) WriteFile(path, content string) error {
	data, err := c.enc.NewEncoder().Bytes([]byte(content))
	if err != nil {
		return fmt.Errorf("failed to encode %s as %s: %w", filepath.Base(path), c.name, err)
	}

	perm := os.FileMode(0600)
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
