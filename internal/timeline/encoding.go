package timeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format is a timeline serialization.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ErrUnknownFormat is returned for a format name that is not supported.
var ErrUnknownFormat = errors.New("unknown timeline format")

// ParseFormat accepts a format name in any case.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatMsgpack:
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// FileExtension is used to name stored timelines.
func (f Format) FileExtension() string {
	return string(f)
}

// ContentType is recorded in object metadata.
func (f Format) ContentType() string {
	if f == FormatMsgpack {
		return "application/vnd.msgpack"
	}

	return "application/json"
}

// Encode serializes tl in the given format.
func Encode(tl *Timeline, format Format) ([]byte, error) {
	var (
		data []byte
		err  error
	)

	switch format {
	case FormatJSON:
		data, err = json.Marshal(tl)
	case FormatMsgpack:
		data, err = msgpack.Marshal(tl)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to encode %s timeline: %w", format, err)
	}

	return data, nil
}

// Decode parses data produced by Encode.
func Decode(data []byte, format Format) (*Timeline, error) {
	var (
		tl  Timeline
		err error
	)

	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &tl)
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &tl)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to decode %s timeline: %w", format, err)
	}

	return &tl, nil
}
