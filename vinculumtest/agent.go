// Package vinculumtest provides an in-memory Vinculum command monitor for
// tests and demos.
//
// An [Agent] implements [bus.Bus] from the host's point of view: bytes the
// host writes are parsed as monitor commands, and the replies are queued for
// the host to read. The agent keeps a small directory tree in memory and can
// inject the faults seen on real hardware: stray output after a reset, no
// disk, a garbled echo, a stalled transmit line, a silent monitor and short
// reads.
package vinculumtest

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/arloliu/go-vinculum/bus"
	"github.com/arloliu/go-vinculum/internal/queue"
	"github.com/puzpuzpuz/xsync/v3"
)

// Monitor responses.
const (
	Prompt        = `D:\>`
	CommandFailed = "Command Failed"
	NoDisk        = "No Disk"
	BadCommand    = "Bad Command"
	DiskFull      = "Disk Full"
	FileOpen      = "File Open"

	maxCommandLine = 255
	rootDir        = "/"
)

type entry struct {
	data    []byte
	modDate uint16
	modTime uint16
}

type openFile struct {
	path  string
	write bool
	pos   int
}

// Agent is a simulated command monitor.
type Agent struct {
	out queue.Queue[byte]

	files *xsync.MapOf[string, *entry]
	dirs  *xsync.MapOf[string, struct{}]

	mu       sync.Mutex
	line     []byte
	rawLeft  int
	rawBuf   []byte
	cwd      string
	open     *openFile
	ipa      bool
	commands []string

	media       bool
	echo        string
	badEchoes   int
	silent      bool
	stallTx     bool
	shortRead   int
	capacity    int
	defaultDate uint16
	defaultTime uint16
}

var _ bus.Bus = (*Agent)(nil)

// NewAgent creates an agent with media inserted and an empty root directory.
func NewAgent() *Agent {
	a := &Agent{
		out:      queue.NewLockFreeQueue[byte](),
		files:    xsync.NewMapOf[string, *entry](),
		dirs:     xsync.NewMapOf[string, struct{}](),
		cwd:      rootDir,
		media:    true,
		capacity: -1,
	}
	a.dirs.Store(rootDir, struct{}{})
	a.defaultDate, a.defaultTime = packFAT(time.Date(2019, time.October, 1, 12, 0, 0, 0, time.UTC))

	return a
}

// Status implements bus.Bus.
func (a *Agent) Status() (bus.Status, error) {
	a.mu.Lock()
	stalled := a.stallTx
	a.mu.Unlock()

	var st bus.Status
	if !stalled {
		st |= bus.TXE
	}
	if !a.out.IsEmpty() {
		st |= bus.RXF
	}

	return st, nil
}

// ReadData implements bus.Bus.
func (a *Agent) ReadData() (byte, error) {
	b, ok := a.out.Dequeue()
	if !ok {
		return 0, bus.ErrNoData
	}

	return b, nil
}

// WriteData implements bus.Bus.
func (a *Agent) WriteData(b byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.rawLeft > 0 {
		a.rawBuf = append(a.rawBuf, b)
		a.rawLeft--
		if a.rawLeft == 0 {
			a.finishWrite()
		}
		return nil
	}

	if b != '\r' {
		if len(a.line) < maxCommandLine {
			a.line = append(a.line, b)
		}
		return nil
	}

	cmd := string(a.line)
	a.line = a.line[:0]
	a.commands = append(a.commands, cmd)
	if !a.silent {
		a.execute(cmd)
	}

	return nil
}

// --- fault injection ---

// SetMedia inserts or removes the flash drive.
func (a *Agent) SetMedia(present bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.media = present
}

// SetEcho overrides the reply to the handshake probe. Empty restores the
// echo.
func (a *Agent) SetEcho(reply string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.echo = reply
}

// GarbleEchoes makes the next n handshake replies wrong.
func (a *Agent) GarbleEchoes(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.badEchoes = n
}

// SetSilent makes the monitor swallow commands without replying.
func (a *Agent) SetSilent(silent bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.silent = silent
}

// SetStallTransmit holds the transmit-ready signal low.
func (a *Agent) SetStallTransmit(stall bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stallTx = stall
}

// SetShortRead makes the next rdf deliver only n bytes and no prompt.
func (a *Agent) SetShortRead(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.shortRead = n
}

// SetCapacity limits the total stored bytes. Negative means unlimited.
func (a *Agent) SetCapacity(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.capacity = n
}

// InjectOutput queues raw bytes for the host, as a monitor does when it was
// interrupted mid-response.
func (a *Agent) InjectOutput(b []byte) {
	for _, c := range b {
		a.out.Enqueue(c)
	}
}

// --- medium ---

// AddDir creates the directory path (and its parents).
func (a *Agent) AddDir(path string) {
	p := rootDir
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part == "" {
			continue
		}
		p = joinPath(p, part)
		a.dirs.Store(p, struct{}{})
	}
}

// AddFile stores a file at path, creating parent directories.
func (a *Agent) AddFile(path string, data []byte, mod time.Time) {
	path = normalize(path)
	if i := strings.LastIndexByte(path, '/'); i > 0 {
		a.AddDir(path[:i])
	}

	date, tm := packFAT(mod)
	a.files.Store(path, &entry{data: slices.Clone(data), modDate: date, modTime: tm})
}

// File returns a copy of the file at path.
func (a *Agent) File(path string) ([]byte, bool) {
	e, ok := a.files.Load(normalize(path))
	if !ok {
		return nil, false
	}

	return slices.Clone(e.data), true
}

// FileTimestamp returns the raw modification words of the file at path.
func (a *Agent) FileTimestamp(path string) (date, tm uint16, ok bool) {
	e, ok := a.files.Load(normalize(path))
	if !ok {
		return 0, 0, false
	}

	return e.modDate, e.modTime, true
}

// Cwd returns the current remote directory.
func (a *Agent) Cwd() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cwd
}

// OpenFile returns the path of the open file, if any.
func (a *Agent) OpenFile() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.open == nil {
		return "", false
	}

	return a.open.path, true
}

// Commands returns the command lines received so far.
func (a *Agent) Commands() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.commands)
}

// ASCIIMode reports whether "ipa" was received.
func (a *Agent) ASCIIMode() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ipa
}

// Pending returns the number of bytes queued for the host.
func (a *Agent) Pending() int {
	return a.out.Length()
}

func normalize(path string) string {
	return joinPath(rootDir, strings.Trim(path, "/"))
}

func joinPath(dir, name string) string {
	name = strings.ToUpper(name)
	if dir == rootDir {
		return rootDir + name
	}

	return dir + "/" + name
}

func packFAT(t time.Time) (date, tm uint16) {
	date = uint16(t.Year()-1980)<<9 | uint16(t.Month())<<5 | uint16(t.Day())
	tm = uint16(t.Hour())<<11 | uint16(t.Minute())<<5 | uint16(t.Second()/2)
	return date, tm
}
