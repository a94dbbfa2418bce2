// Package player implements the out-of-process AI worker host (spec.md
// component I: Player Host). Each colony's untrusted AI runs in its own
// process, reached over a local Unix-domain socket framed to the
// documented C-ABI-compatible binary protocol (see internal/abi and
// protocol.go). Grounded on the teacher pack's wingthing egg-server
// reference (wraps a sandboxed child process behind a local socket,
// tees its stdio to a log file) since the teacher repo itself never
// isolates untrusted code in a subprocess.
package player

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/obeeron/pherowar/internal/abi"
	"github.com/obeeron/pherowar/internal/enginelog"
	"github.com/obeeron/pherowar/internal/ids"
)

// Health summarizes a colony's AI worker lifecycle state.
type Health int

const (
	Healthy Health = iota
	Reloading
	NullAI
)

func (h Health) String() string {
	switch h {
	case Healthy:
		return "healthy"
	case Reloading:
		return "reloading"
	case NullAI:
		return "null-ai"
	default:
		return "unknown"
	}
}

// ErrTimeout is returned by Update when the worker did not respond
// within the configured deadline. The caller must drop this tick's
// action and leave the ant's memory unchanged (spec.md §7 WorkerTimeout).
var ErrTimeout = errors.New("player: update deadline exceeded")

// Host manages one colony's AI worker process and socket connection.
// Calls within a colony are serialized by mu, matching spec.md §5's
// "within a colony, calls are serialized" requirement; different
// colonies' hosts may be driven concurrently by the scheduler.
type Host struct {
	colonyID ids.ColonyID
	soPath   string
	limits   Limits

	updateDeadline time.Duration
	setupDeadline  time.Duration
	logDir         string

	mu         sync.Mutex
	cmd        *exec.Cmd
	conn       net.Conn
	listener   net.Listener
	socketPath string
	logFile    *os.File
	health     Health
}

// Options configures a Host.
type Options struct {
	UpdateDeadline time.Duration
	SetupDeadline  time.Duration
	LogDir         string
	Limits         Limits
}

// NewHost creates a Host for colony, bound to the AI executable at
// soPath (a per-colony path, per spec.md §4.I). The worker is not
// started until Launch is called.
func NewHost(colonyID ids.ColonyID, soPath string, opts Options) *Host {
	return &Host{
		colonyID:       colonyID,
		soPath:         soPath,
		limits:         opts.Limits,
		updateDeadline: opts.UpdateDeadline,
		setupDeadline:  opts.SetupDeadline,
		logDir:         opts.LogDir,
		health:         NullAI,
	}
}

// Health reports the worker's current lifecycle state.
func (h *Host) Health() Health {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.health
}

// Launch starts the worker process, accepts its connection, and runs
// the SETUP handshake. On any failure the colony is left AI-less
// (Health() == NullAI) and a WorkerLaunchFailed-class error is
// returned for logging; the caller must not treat this as fatal
// (spec.md §7).
func (h *Host) Launch() (abi.PlayerSetup, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.launchLocked()
}

func (h *Host) launchLocked() (abi.PlayerSetup, error) {
	socketPath := filepath.Join(os.TempDir(), fmt.Sprintf("pherowar-colony-%d-%d.sock", h.colonyID, time.Now().UnixNano()))
	_ = os.Remove(socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		h.health = NullAI
		return abi.PlayerSetup{}, fmt.Errorf("player: listen: %w", err)
	}

	logFile, err := h.openLog()
	if err != nil {
		listener.Close()
		h.health = NullAI
		return abi.PlayerSetup{}, fmt.Errorf("player: open log: %w", err)
	}

	cmd := exec.Command(h.soPath, "--socket", socketPath)
	applyLimits(cmd, h.limits)
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		listener.Close()
		logFile.Close()
		h.health = NullAI
		return abi.PlayerSetup{}, fmt.Errorf("player: start worker: %w", err)
	}

	if err := listener.(*net.UnixListener).SetDeadline(time.Now().Add(h.setupDeadline)); err != nil {
		// best-effort; some listener implementations (e.g. tests) may not support this
		_ = err
	}
	conn, err := listener.Accept()
	if err != nil {
		killProcessGroup(cmd)
		listener.Close()
		logFile.Close()
		h.health = NullAI
		return abi.PlayerSetup{}, fmt.Errorf("player: accept: %w", err)
	}

	h.cmd = cmd
	h.conn = conn
	h.listener = listener
	h.socketPath = socketPath
	h.logFile = logFile

	setup, err := h.doSetupLocked()
	if err != nil {
		h.teardownLocked()
		h.health = NullAI
		return abi.PlayerSetup{}, err
	}

	h.health = Healthy
	enginelog.LogWorkerEvent(int(h.colonyID), "launched", h.soPath)
	return setup, nil
}

func (h *Host) openLog() (*os.File, error) {
	if h.logDir == "" {
		return os.CreateTemp("", fmt.Sprintf("%s_%d_.log", filepath.Base(h.soPath), h.colonyID))
	}
	if err := os.MkdirAll(h.logDir, 0o755); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s_%d_.log", filepath.Base(h.soPath), h.colonyID)
	return os.OpenFile(filepath.Join(h.logDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func (h *Host) doSetupLocked() (abi.PlayerSetup, error) {
	h.conn.SetDeadline(time.Now().Add(h.setupDeadline))
	if err := writeFrame(h.conn, msgSetup, nil); err != nil {
		return abi.PlayerSetup{}, fmt.Errorf("player: write SETUP: %w", err)
	}
	t, payload, err := readFrame(h.conn)
	if err != nil {
		return abi.PlayerSetup{}, fmt.Errorf("player: read SETUP response: %w", err)
	}
	if t != msgSetup || len(payload) != abi.SetupSize {
		return abi.PlayerSetup{}, fmt.Errorf("player: protocol mismatch in SETUP response")
	}
	return abi.DecodeSetup(payload), nil
}

// Update round-trips one ant's think tick. On timeout it returns
// ErrTimeout with the zero AntOutput and the caller's own memory
// unchanged — the caller must apply neither (spec.md §7 WorkerTimeout).
// On a worker crash/disconnect it attempts exactly one reload; if that
// also fails the host is marked NullAI. While NullAI, Update returns the
// zero (neutral) AntOutput, the caller's memory unchanged, and a nil
// error, until an explicit Replace succeeds.
func (h *Host) Update(ant ids.AntID, in abi.AntInput, memory [32]byte) (abi.AntOutput, [32]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.health == NullAI {
		return abi.AntOutput{}, memory, nil
	}

	out, newMemory, err := h.roundTripLocked(ant, in, memory)
	if err == nil {
		return out, newMemory, nil
	}

	if errors.Is(err, ErrTimeout) {
		enginelog.LogWorkerEvent(int(h.colonyID), "timeout", fmt.Sprintf("ant=%d", ant))
		return abi.AntOutput{}, memory, ErrTimeout
	}

	// Anything else is treated as a crash/disconnect: one reload attempt.
	enginelog.LogWorkerEvent(int(h.colonyID), "crash", err.Error())
	h.teardownLocked()
	if _, reErr := h.launchLocked(); reErr != nil {
		enginelog.LogWorkerEvent(int(h.colonyID), "reload-failed", reErr.Error())
		h.health = NullAI
		return abi.AntOutput{}, memory, nil
	}

	out, newMemory, err = h.roundTripLocked(ant, in, memory)
	if err != nil {
		enginelog.LogWorkerEvent(int(h.colonyID), "post-reload-failure", err.Error())
		h.health = NullAI
		return abi.AntOutput{}, memory, nil
	}
	return out, newMemory, nil
}

func (h *Host) roundTripLocked(ant ids.AntID, in abi.AntInput, memory [32]byte) (abi.AntOutput, [32]byte, error) {
	h.conn.SetDeadline(time.Now().Add(h.updateDeadline))

	req := encodeUpdateRequest(ant, in, memory)
	if err := writeFrame(h.conn, msgUpdate, req); err != nil {
		if isTimeout(err) {
			return abi.AntOutput{}, memory, ErrTimeout
		}
		return abi.AntOutput{}, memory, err
	}

	t, payload, err := readFrame(h.conn)
	if err != nil {
		if isTimeout(err) {
			return abi.AntOutput{}, memory, ErrTimeout
		}
		return abi.AntOutput{}, memory, err
	}
	if t != msgUpdate {
		return abi.AntOutput{}, memory, fmt.Errorf("player: protocol mismatch: expected UPDATE, got %d", t)
	}
	return decodeUpdateResponse(payload)
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// teardownLocked kills the worker process and releases the socket.
// Caller must hold h.mu.
func (h *Host) teardownLocked() {
	if h.conn != nil {
		h.conn.Close()
		h.conn = nil
	}
	if h.cmd != nil {
		killProcessGroup(h.cmd)
		h.cmd.Wait()
		h.cmd = nil
	}
	if h.listener != nil {
		h.listener.Close()
		h.listener = nil
	}
	if h.socketPath != "" {
		os.Remove(h.socketPath)
		h.socketPath = ""
	}
	if h.logFile != nil {
		h.logFile.Close()
		h.logFile = nil
	}
}

// Close stops the worker and releases all resources.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.teardownLocked()
	h.health = NullAI
	return nil
}

// Replace swaps in a new AI executable for this colony (an explicit
// player replacement, spec.md §4.I): tears down the current worker (if
// any) and launches newSoPath, re-running SETUP.
func (h *Host) Replace(newSoPath string) (abi.PlayerSetup, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.teardownLocked()
	h.soPath = newSoPath
	return h.launchLocked()
}

var _ io.Closer = (*Host)(nil)
