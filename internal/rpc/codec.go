// Package rpc exposes the CMS services over gRPC. Messages travel as JSON
// through a custom codec and the service descriptors are declared by hand,
// which keeps real full-method names (used by the gate's exemption lists)
// without a protobuf toolchain step.
package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the content subtype clients request to speak this codec.
const CodecName = "json"

// Codec marshals request and response messages as JSON.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func (Codec) Name() string { return CodecName }

func init() {
	encoding.RegisterCodec(Codec{})
}
