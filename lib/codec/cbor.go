// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. Same logical document always
// produces identical bytes, so two processes that cache the same
// commit write interchangeable entries.
var encMode cbor.EncMode

// decMode is the CBOR decoder used for cached values.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Documents decoded from YAML only ever have string keys.
		// The CBOR default for any-typed targets is
		// map[interface{}]interface{}, which the document package
		// cannot walk.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		// Every integer decodes as int64 regardless of sign, so
		// callers normalize a single integer type instead of
		// juggling uint64 and int64.
		IntDec: cbor.IntDecConvertSignedOrFail,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for the
// entire contents of data. Useful when inspecting a cache backend by
// hand.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
