// Package protocol defines the wire envelope for sigstream updates.
//
// The protocol is one-directional: the server pushes one message per
// observed state change, and clients never send anything back. Each
// message payload is the JSON serialization of an Update:
//
//	{
//	  "name": "counter",
//	  "patch": [
//	    {"op": "replace", "path": "/value", "value": 1}
//	  ]
//	}
//
// # Fields
//
//   - name: the signal the patch belongs to. Names are exact-match
//     identifiers, unique per client process.
//   - patch: an RFC 6902 JSON Patch. Order is significant; one envelope
//     is one atomic state transition for one signal.
//
// # Transport
//
// The envelope is transport-agnostic. Over SSE it travels as the data
// field of an event; over WebSocket as one text message. Keep-alive,
// reconnection, and fan-out ordering across server replicas are the
// transport's concern, not the envelope's.
//
// # Decoding
//
// DecodeUpdate rejects payloads that are not valid JSON or that lack a
// signal name. Unknown fields are ignored for forward compatibility.
// Decode failures are per-message: a malformed envelope is dropped and
// the stream keeps going.
package protocol
