// Package json wraps JSON serialization behind package-level function
// variables. On amd64 and arm64 they point at sonic; elsewhere at the
// standard library, since sonic does not support other architectures.
package json

import (
	stdjson "encoding/json"
	"io"
	"runtime"

	"github.com/bytedance/sonic"
)

var (
	// Marshal encodes v into JSON bytes.
	Marshal func(v interface{}) ([]byte, error)

	// Unmarshal decodes JSON bytes into v.
	Unmarshal func(data []byte, v interface{}) error

	// NewEncoder creates a streaming encoder for w.
	NewEncoder func(w io.Writer) Encoder

	// NewDecoder creates a streaming decoder for r.
	NewDecoder func(r io.Reader) Decoder

	usingSonic bool
)

// Encoder is the subset of encoder behavior both backends share.
type Encoder interface {
	Encode(v interface{}) error
}

// Decoder is the subset of decoder behavior both backends share.
type Decoder interface {
	Decode(v interface{}) error
}

func init() {
	if runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64" {
		useSonic(sonic.ConfigDefault)
		return
	}

	Marshal = stdjson.Marshal
	Unmarshal = stdjson.Unmarshal
	NewEncoder = func(w io.Writer) Encoder { return stdjson.NewEncoder(w) }
	NewDecoder = func(r io.Reader) Decoder { return stdjson.NewDecoder(r) }
	usingSonic = false
}

func useSonic(api sonic.API) {
	Marshal = api.Marshal
	Unmarshal = api.Unmarshal
	NewEncoder = func(w io.Writer) Encoder { return api.NewEncoder(w) }
	NewDecoder = func(r io.Reader) Decoder { return api.NewDecoder(r) }
	usingSonic = true
}

// ConfigFastestMode switches to sonic's fastest mode, which skips some
// safety checks. Only use it on trusted, well-formed input. No-op on the
// standard library fallback.
func ConfigFastestMode() {
	if usingSonic {
		useSonic(sonic.ConfigFastest)
	}
}

// ConfigStandardMode restores sonic's default mode. No-op on the
// standard library fallback.
func ConfigStandardMode() {
	if usingSonic {
		useSonic(sonic.ConfigDefault)
	}
}

// IsUsingSonic reports whether sonic backs the package functions.
func IsUsingSonic() bool {
	return usingSonic
}
