package chestv1

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// Codec is the content subtype the service speaks ("application/grpc+json").
const Codec = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec marshals messages with encoding/json. Clients select it with
// grpc.CallContentSubtype(Codec); NewChestServiceClient does so by default.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json codec: marshal %T: %w", v, err)
	}
	return b, nil
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json codec: unmarshal %T: %w", v, err)
	}
	return nil
}

func (jsonCodec) Name() string { return Codec }
