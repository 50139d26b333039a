package cache

import "github.com/vmihailenco/msgpack/v5"

// Cache payloads are opaque msgpack blobs. Pinning the codec here keeps the
// wire format out of the components that read and write entries.

// Encode serializes v into a cache payload.
func Encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Decode deserializes a cache payload into v.
func Decode(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
