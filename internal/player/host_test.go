package player

import (
	"net"
	"testing"
	"time"

	"github.com/obeeron/pherowar/internal/abi"
	"github.com/obeeron/pherowar/internal/ids"
)

// newConnectedTestHost wires a Host directly to one end of an in-memory
// pipe, bypassing exec/Launch, and returns the other end for a
// test-authored fake worker loop. This exercises the framing/deadline
// logic in Update without spawning a real process.
func newConnectedTestHost(t *testing.T) (*Host, net.Conn) {
	t.Helper()
	client, server := net.Pipe()

	h := &Host{
		colonyID:       0,
		conn:           client,
		updateDeadline: 50 * time.Millisecond,
		setupDeadline:  50 * time.Millisecond,
		health:         Healthy,
	}
	t.Cleanup(func() { client.Close(); server.Close() })
	return h, server
}

func fakeWorkerEchoUpdate(t *testing.T, server net.Conn, out abi.AntOutput, memory [32]byte) {
	t.Helper()
	go func() {
		typ, _, err := readFrame(server)
		if err != nil || typ != msgUpdate {
			return
		}
		writeFrame(server, msgUpdate, append(abi.EncodeAntOutput(out), memory[:]...))
	}()
}

func TestHostUpdateRoundTrip(t *testing.T) {
	h, server := newConnectedTestHost(t)

	wantOut := abi.AntOutput{TurnAngle: 0.3, TryAttack: true}
	var wantMemory [32]byte
	wantMemory[1] = 42
	fakeWorkerEchoUpdate(t, server, wantOut, wantMemory)

	gotOut, gotMemory, err := h.Update(ids.AntID(1), abi.AntInput{}, [32]byte{})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if gotOut != wantOut {
		t.Fatalf("out = %+v, want %+v", gotOut, wantOut)
	}
	if gotMemory != wantMemory {
		t.Fatalf("memory = %v, want %v", gotMemory, wantMemory)
	}
}

func TestHostUpdateTimeoutLeavesMemoryUnchanged(t *testing.T) {
	h, _ := newConnectedTestHost(t)
	h.updateDeadline = 10 * time.Millisecond
	// No fake worker reads the request, so it will time out.

	var memory [32]byte
	memory[5] = 9
	gotOut, gotMemory, err := h.Update(ids.AntID(2), abi.AntInput{}, memory)

	if err != ErrTimeout {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if gotOut != (abi.AntOutput{}) {
		t.Fatalf("expected zero output on timeout, got %+v", gotOut)
	}
	if gotMemory != memory {
		t.Fatalf("memory changed on timeout: got %v, want %v", gotMemory, memory)
	}
}

func TestHealthString(t *testing.T) {
	cases := map[Health]string{Healthy: "healthy", Reloading: "reloading", NullAI: "null-ai"}
	for h, want := range cases {
		if got := h.String(); got != want {
			t.Fatalf("Health(%d).String() = %q, want %q", h, got, want)
		}
	}
}
