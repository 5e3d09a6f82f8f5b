// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

type sampleMessage struct {
	Command string   `cbor:"command"`
	Args    []string `cbor:"args,omitempty"`
	Count   int      `cbor:"count"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleMessage{Command: "/bin/ls", Count: 42}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded sampleMessage
	if err := UnmarshalStrict(data, &decoded); err != nil {
		t.Fatalf("UnmarshalStrict: %v", err)
	}
	if decoded.Command != original.Command || decoded.Count != original.Count {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	message := sampleMessage{Command: "echo", Args: []string{"a", "b"}, Count: 7}

	first, err := Marshal(message)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(message)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var message sampleMessage
	if err := UnmarshalStrict([]byte{0xFF, 0xFE, 0xFD}, &message); err == nil {
		t.Error("UnmarshalStrict should reject invalid CBOR")
	}
}

func TestUnmarshalStrictRejectsUnknownField(t *testing.T) {
	data, err := Marshal(map[string]any{"command": "ls", "count": 1, "surprise": true})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var strict sampleMessage
	if err := UnmarshalStrict(data, &strict); err == nil {
		t.Error("UnmarshalStrict should reject unknown field")
	}
}

func TestUnmarshalStrictRejectsTrailingBytes(t *testing.T) {
	data, err := Marshal(sampleMessage{Command: "ls"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	data = append(data, 0x00)

	var message sampleMessage
	if err := UnmarshalStrict(data, &message); err == nil {
		t.Error("UnmarshalStrict should reject trailing bytes")
	}
}

func TestUnmarshalStrictRejectsDuplicateKeys(t *testing.T) {
	// {"command": "a", "command": "b"} written by hand: map(2), then
	// two identical text-string keys.
	data := []byte{
		0xa2,
		0x67, 'c', 'o', 'm', 'm', 'a', 'n', 'd', 0x61, 'a',
		0x67, 'c', 'o', 'm', 'm', 'a', 'n', 'd', 0x61, 'b',
	}

	var message sampleMessage
	if err := UnmarshalStrict(data, &message); err == nil {
		t.Error("UnmarshalStrict should reject duplicate map keys")
	}
}

func TestMarshalNilSliceAsEmpty(t *testing.T) {
	data, err := Marshal(struct {
		Args []string `cbor:"args"`
	}{})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	// map(1) {"args": array(0)}
	want := []byte{0xa1, 0x64, 'a', 'r', 'g', 's', 0x80}
	if !bytes.Equal(data, want) {
		t.Errorf("nil slice encoded as %x, want %x", data, want)
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(map[string]any{"command": "status"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"command"`) {
		t.Errorf("notation %q does not contain \"command\"", notation)
	}
	if !strings.Contains(notation, `"status"`) {
		t.Errorf("notation %q does not contain \"status\"", notation)
	}
}

func BenchmarkMarshal(b *testing.B) {
	message := sampleMessage{Command: "/usr/bin/make", Args: []string{"-j8", "all"}, Count: 2}

	b.ReportAllocs()
	for b.Loop() {
		Marshal(message)
	}
}
