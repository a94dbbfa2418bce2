package player

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/obeeron/pherowar/internal/abi"
	"github.com/obeeron/pherowar/internal/ids"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{1, 2, 3, 4}
	if err := writeFrame(&buf, msgUpdate, payload); err != nil {
		t.Fatalf("writeFrame: %v", err)
	}

	gotType, gotPayload, err := readFrame(&buf)
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if gotType != msgUpdate {
		t.Fatalf("type = %v, want msgUpdate", gotType)
	}
	if !bytes.Equal(gotPayload, payload) {
		t.Fatalf("payload = %v, want %v", gotPayload, payload)
	}
}

func TestFrameEmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := writeFrame(&buf, msgSetup, nil); err != nil {
		t.Fatalf("writeFrame: %v", err)
	}
	gotType, gotPayload, err := readFrame(&buf)
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if gotType != msgSetup || len(gotPayload) != 0 {
		t.Fatalf("got type=%v payload=%v", gotType, gotPayload)
	}
}

func TestUpdateRequestRoundTrip(t *testing.T) {
	in := abi.AntInput{Longevity: 200, IsOnFood: true}
	var memory [32]byte
	memory[0] = 0xAB

	encoded := encodeUpdateRequest(ids.AntID(7), in, memory)
	if len(encoded) != updateRequestSize {
		t.Fatalf("encoded size = %d, want %d", len(encoded), updateRequestSize)
	}
	if got := binary.LittleEndian.Uint32(encoded[0:4]); got != 7 {
		t.Fatalf("ant id = %d, want 7", got)
	}
	if got := abi.DecodeAntInput(encoded[4 : 4+abi.AntInputSize]); got != in {
		t.Fatalf("AntInput = %+v, want %+v", got, in)
	}
	if !bytes.Equal(encoded[4+abi.AntInputSize:], memory[:]) {
		t.Fatalf("memory = %v, want %v", encoded[4+abi.AntInputSize:], memory)
	}
}

func TestUpdateResponseRejectsWrongSize(t *testing.T) {
	_, _, err := decodeUpdateResponse([]byte{1, 2, 3})
	if err == nil {
		t.Fatalf("expected error for malformed UPDATE response")
	}
}
