package vinculum

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPayload(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 7)
	}

	return b
}

func TestWriteFileReadFile(t *testing.T) {
	s, agent := newReadySession(t, WithChunkSize(16))
	ctx := context.Background()
	payload := testPayload(100)
	mod := time.Date(2022, time.July, 14, 10, 20, 30, 0, time.UTC)

	n, err := s.WriteFile(ctx, "copy.bin", bytes.NewReader(payload), mod)
	require.NoError(t, err)
	assert.Equal(t, int64(100), n)
	assert.Equal(t, StateSynced, s.State())

	stored, ok := agent.File("copy.bin")
	require.True(t, ok)
	assert.Equal(t, payload, stored)

	var out bytes.Buffer
	n, err = s.ReadFile(ctx, "copy.bin", &out)
	require.NoError(t, err)
	assert.Equal(t, int64(100), n)
	assert.Equal(t, payload, out.Bytes())
	assert.Equal(t, StateSynced, s.State())

	ts, err := s.FileDate(ctx, "copy.bin")
	require.NoError(t, err)
	assert.Equal(t, mod, ts.In(time.UTC))
}

func TestWriteFile_Empty(t *testing.T) {
	s, agent := newReadySession(t)

	n, err := s.WriteFile(context.Background(), "empty.txt", bytes.NewReader(nil), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	stored, ok := agent.File("empty.txt")
	require.True(t, ok)
	assert.Empty(t, stored)
}

func TestReadFile_NotFound(t *testing.T) {
	s, _ := newReadySession(t)

	var out bytes.Buffer
	_, err := s.ReadFile(context.Background(), "nofile.txt", &out)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, out.Len())
}

type failingWriter struct{}

var errSink = errors.New("sink full")

func (failingWriter) Write([]byte) (int, error) { return 0, errSink }

func TestReadFile_WriterErrorClosesFile(t *testing.T) {
	s, agent := newReadySession(t)
	agent.AddFile("a.bin", testPayload(10), time.Now())

	_, err := s.ReadFile(context.Background(), "a.bin", failingWriter{})
	require.ErrorIs(t, err, errSink)
	assert.Equal(t, StateSynced, s.State())

	_, open := agent.OpenFile()
	assert.False(t, open)
}

func TestWriteFile_DiskFullDegrades(t *testing.T) {
	s, agent := newReadySession(t, WithChunkSize(8))
	agent.SetCapacity(10)
	ctx := context.Background()

	n, err := s.WriteFile(ctx, "big.bin", bytes.NewReader(testPayload(32)), time.Now())
	require.ErrorIs(t, err, ErrOutOfSync)
	assert.Equal(t, int64(8), n)
	assert.Equal(t, StateUninitialized, s.State())

	stored, _ := agent.File("big.bin")
	assert.Len(t, stored, 8)

	// re-initializing closes the file left open on the monitor
	require.NoError(t, s.Initialize(ctx))
	_, open := agent.OpenFile()
	assert.False(t, open)
}
