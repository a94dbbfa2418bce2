package player

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/obeeron/pherowar/internal/abi"
	"github.com/obeeron/pherowar/internal/ids"
)

// msgType identifies a framed message's payload shape. The same value is
// echoed back in the response so the host can catch a desynced worker
// (spec.md §7 ProtocolMismatch) instead of misinterpreting bytes.
type msgType uint8

const (
	msgSetup  msgType = 1
	msgUpdate msgType = 2
)

// maxFrameSize bounds a single frame so a corrupt length prefix can't
// make the host allocate an unbounded buffer.
const maxFrameSize = 1 << 20

// writeFrame writes a [4-byte LE length][1-byte type][payload] frame.
func writeFrame(w io.Writer, t msgType, payload []byte) error {
	header := make([]byte, 5)
	binary.LittleEndian.PutUint32(header[0:4], uint32(len(payload)+1))
	header[4] = byte(t)
	if _, err := w.Write(header); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// readFrame reads one frame, returning its type and payload.
func readFrame(r io.Reader) (msgType, []byte, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, err
	}
	length := binary.LittleEndian.Uint32(header)
	if length == 0 || length > maxFrameSize {
		return 0, nil, fmt.Errorf("player: invalid frame length %d", length)
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, err
	}
	return msgType(body[0]), body[1:], nil
}

// updateRequestSize is the wire size of an UPDATE request payload: a
// uint32 ant id, an AntInput, and a 32-byte memory block.
const updateRequestSize = 4 + abi.AntInputSize + 32

// updateResponseSize is the wire size of an UPDATE response payload: an
// AntOutput plus the (possibly rewritten) 32-byte memory block.
const updateResponseSize = abi.AntOutputSize + 32

func encodeUpdateRequest(ant ids.AntID, in abi.AntInput, memory [32]byte) []byte {
	b := make([]byte, updateRequestSize)
	binary.LittleEndian.PutUint32(b[0:4], uint32(ant))
	copy(b[4:4+abi.AntInputSize], abi.EncodeAntInput(in))
	copy(b[4+abi.AntInputSize:], memory[:])
	return b
}

func decodeUpdateResponse(b []byte) (abi.AntOutput, [32]byte, error) {
	var memory [32]byte
	if len(b) != updateResponseSize {
		return abi.AntOutput{}, memory, fmt.Errorf("player: bad UPDATE response size %d, want %d", len(b), updateResponseSize)
	}
	out := abi.DecodeAntOutput(b[:abi.AntOutputSize])
	copy(memory[:], b[abi.AntOutputSize:])
	return out, memory, nil
}
