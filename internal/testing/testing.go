// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/squash/internal/codec"
	"github.com/desertthunder/squash/internal/models"
	"github.com/desertthunder/squash/internal/shared"
)

// FakeCodec is a test double for [codec.Codec] keyed by input payload.
//
// Encoding returns the payload halved unless an explicit output is registered.
type FakeCodec struct {
	mu         sync.Mutex
	delays     map[string]time.Duration
	outputs    map[string][]byte
	failDecode map[string]bool
	failEncode map[string]bool
	keys       map[*codec.Surface]string
	finished   []string

	// Gate, when set, blocks every Encode until it is closed.
	Gate chan struct{}

	live        atomic.Int64
	inFlight    atomic.Int64
	maxInFlight atomic.Int64
}

func NewFakeCodec() *FakeCodec {
	return &FakeCodec{
		delays:     make(map[string]time.Duration),
		outputs:    make(map[string][]byte),
		failDecode: make(map[string]bool),
		failEncode: make(map[string]bool),
		keys:       make(map[*codec.Surface]string),
	}
}

// Delay makes Encode of payload sleep for d.
func (f *FakeCodec) Delay(payload string, d time.Duration) *FakeCodec {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays[payload] = d
	return f
}

// Output fixes the encoded bytes for payload.
func (f *FakeCodec) Output(payload string, out []byte) *FakeCodec {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[payload] = out
	return f
}

func (f *FakeCodec) FailDecode(payload string) *FakeCodec {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failDecode[payload] = true
	return f
}

func (f *FakeCodec) FailEncode(payload string) *FakeCodec {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failEncode[payload] = true
	return f
}

func (f *FakeCodec) Decode(ctx context.Context, data []byte) (*codec.Surface, error) {
	key := string(data)

	f.mu.Lock()
	fail := f.failDecode[key]
	f.mu.Unlock()
	if fail {
		return nil, fmt.Errorf("%w: corrupt payload", shared.ErrDecode)
	}

	s := codec.NewSurface(image.NewGray(image.Rect(0, 0, 1, 1)), "fake")
	f.live.Add(1)
	s.OnRelease(func() { f.live.Add(-1) })

	f.mu.Lock()
	f.keys[s] = key
	f.mu.Unlock()
	return s, nil
}

func (f *FakeCodec) Encode(ctx context.Context, s *codec.Surface) ([]byte, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	key := f.keys[s]
	delay := f.delays[key]
	out, fixed := f.outputs[key]
	fail := f.failEncode[key]
	f.mu.Unlock()

	if f.Gate != nil {
		<-f.Gate
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", shared.ErrEncode, ctx.Err())
		}
	}

	f.mu.Lock()
	f.finished = append(f.finished, key)
	f.mu.Unlock()

	if fail {
		return nil, fmt.Errorf("%w: encoder rejected surface", shared.ErrEncode)
	}
	if !fixed {
		out = bytes.Repeat([]byte{'x'}, len(key)/2)
	}
	return out, nil
}

// Finished lists payloads in the order Encode completed.
func (f *FakeCodec) Finished() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.finished...)
}

// Live counts decoded surfaces that have not been released.
func (f *FakeCodec) Live() int64 { return f.live.Load() }

// MaxInFlight is the highest number of concurrent Encode calls observed.
func (f *FakeCodec) MaxInFlight() int64 { return f.maxInFlight.Load() }

// PNGInput builds an [models.InputFile] declared as image/png whose bytes are payload.
func PNGInput(name, payload string) models.InputFile {
	return models.NewInputFile(name, "image/png", []byte(payload))
}

// Result builds a converted result with the given sizes and zero-filled data.
func Result(name string, originalSize, convertedSize int) *models.ConversionResult {
	return models.NewConversionResult(name, codec.OutputExtension, make([]byte, convertedSize), uint64(originalSize))
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Path still exists: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
