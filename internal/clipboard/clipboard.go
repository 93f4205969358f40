// Package clipboard encodes transfer packages for the clipboard file.
// Packages are written as tagged CBOR by default; canonical JSON is
// accepted and produced on request.
package clipboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// Format names an encoding of a transfer package.
type Format string

// Supported formats.
const (
	FormatCBOR Format = "cbor"
	FormatJSON Format = "json"
)

// selfDescribeTag is the CBOR self-describe tag (RFC 8949 §3.4.6); it makes
// encoded payloads start with 0xd9d9f7.
const selfDescribeTag = 55799

var cborPrefix = []byte{0xd9, 0xd9, 0xf7}

// Clipboard errors.
var (
	ErrUnknownFormat = errors.New("unknown clipboard format")
	ErrEmptyPayload  = errors.New("empty clipboard payload")
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = (cbor.DecOptions{MaxArrayElements: 1 << 20}).DecMode(); err != nil {
		panic(err)
	}
}

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCBOR, FormatJSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Encode serializes pkg in format.
func Encode(pkg *types.TransferPackage, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.Marshal(pkg)
		if err != nil {
			return nil, fmt.Errorf("encoding transfer package: %w", err)
		}
		return data, nil
	case FormatCBOR:
		data, err := encMode.Marshal(cbor.Tag{Number: selfDescribeTag, Content: pkg})
		if err != nil {
			return nil, fmt.Errorf("encoding transfer package: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Detect reports the format of data by its leading bytes.
func Detect(data []byte) (Format, error) {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return "", ErrEmptyPayload
	case bytes.HasPrefix(data, cborPrefix):
		return FormatCBOR, nil
	case trimmed[0] == '{':
		return FormatJSON, nil
	}
	return "", ErrUnknownFormat
}

// Decode parses a transfer package in either format.
func Decode(data []byte) (*types.TransferPackage, error) {
	format, err := Detect(data)
	if err != nil {
		return nil, err
	}
	var pkg types.TransferPackage
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &pkg); err != nil {
			return nil, fmt.Errorf("decoding transfer package: %w", err)
		}
	case FormatCBOR:
		var tag cbor.RawTag
		if err := decMode.Unmarshal(data, &tag); err != nil {
			return nil, fmt.Errorf("decoding transfer package: %w", err)
		}
		if tag.Number != selfDescribeTag {
			return nil, fmt.Errorf("%w: unexpected cbor tag %d", ErrUnknownFormat, tag.Number)
		}
		if err := decMode.Unmarshal(tag.Content, &pkg); err != nil {
			return nil, fmt.Errorf("decoding transfer package: %w", err)
		}
	}
	return &pkg, nil
}

// WriteFile atomically writes pkg to path.
func WriteFile(path string, pkg *types.TransferPackage, format Format) error {
	data, err := Encode(pkg, format)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".clipboard-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing clipboard: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ReadFile reads and decodes the package at path.
func ReadFile(path string) (*types.TransferPackage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Decode(data)
}
