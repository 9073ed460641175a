// Package codec is the single place that knows how messages are serialized.
//
// Account RPC messages and ledger records are CBOR (RFC 8949), encoded with
// Core Deterministic options so equal values always produce equal bytes.
// The package also registers a gRPC codec named "cbor"; clients select it
// with grpc.CallContentSubtype(codec.Name) and the server picks it up from
// the request content type without extra configuration.
package codec
