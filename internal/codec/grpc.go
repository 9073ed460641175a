package codec

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// Name is the gRPC content subtype of the CBOR codec
// (content-type "application/grpc+cbor").
const Name = "cbor"

// GRPCCodec adapts the package's CBOR encoding to grpc/encoding.Codec.
type GRPCCodec struct{}

func init() {
	encoding.RegisterCodec(GRPCCodec{})
}

func (GRPCCodec) Marshal(v any) ([]byte, error) {
	b, err := Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal %T: %w", v, err)
	}
	return b, nil
}

func (GRPCCodec) Unmarshal(data []byte, v any) error {
	if err := Unmarshal(data, v); err != nil {
		return fmt.Errorf("codec: unmarshal %T: %w", v, err)
	}
	return nil
}

func (GRPCCodec) Name() string {
	return Name
}
