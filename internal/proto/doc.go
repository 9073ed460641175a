// Package proto defines the account.v1.AccountService wire contract:
// request/response messages, the gRPC service descriptor and a typed client.
//
// Messages are plain structs encoded with the "cbor" codec from
// internal/codec. Every response carries an HTTP-style Code and a Message;
// the gRPC status is reserved for transport failures.
package proto
