package checkin

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Camera is an exclusive frame source. Open fails with ErrCameraInUse while a
// previous stream is still open.
type Camera interface {
	Open(ctx context.Context) (FrameStream, error)
}

// FrameStream yields frames until closed. Closing releases the camera.
type FrameStream interface {
	Next(ctx context.Context) (image.Image, error)
	Close() error
}

// Decoder extracts a QR payload from a frame.
type Decoder interface {
	Decode(img image.Image) (string, bool)
}

// PushCamera is fed frames by a remote client, one HTTP upload at a time.
type PushCamera struct {
	mu     sync.Mutex
	frames chan image.Image
	inUse  bool
}

// NewPushCamera creates a camera that buffers up to buffer frames.
func NewPushCamera(buffer int) *PushCamera {
	if buffer <= 0 {
		buffer = 1
	}
	return &PushCamera{frames: make(chan image.Image, buffer)}
}

// Open claims the camera.
func (c *PushCamera) Open(context.Context) (FrameStream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inUse {
		return nil, ErrCameraInUse
	}
	c.inUse = true
	c.drainLocked()
	return &pushStream{cam: c, closed: make(chan struct{})}, nil
}

// Push offers a frame to the open stream. It reports false when no stream is
// open or the buffer is full; dropped frames are expected.
func (c *PushCamera) Push(img image.Image) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.inUse {
		return false
	}
	select {
	case c.frames <- img:
		return true
	default:
		return false
	}
}

// InUse reports whether a stream currently holds the camera.
func (c *PushCamera) InUse() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inUse
}

func (c *PushCamera) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inUse = false
	c.drainLocked()
}

func (c *PushCamera) drainLocked() {
	for {
		select {
		case <-c.frames:
		default:
			return
		}
	}
}

type pushStream struct {
	cam    *PushCamera
	once   sync.Once
	closed chan struct{}
}

func (s *pushStream) Next(ctx context.Context) (image.Image, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.closed:
		return nil, ErrStreamClosed
	case img := <-s.cam.frames:
		return img, nil
	}
}

func (s *pushStream) Close() error {
	s.once.Do(func() {
		close(s.closed)
		s.cam.release()
	})
	return nil
}

// DirCamera replays image files from a directory in name order, then returns io.EOF.
type DirCamera struct {
	dir   string
	mu    sync.Mutex
	inUse bool
}

// NewDirCamera creates a camera over dir.
func NewDirCamera(dir string) *DirCamera {
	return &DirCamera{dir: dir}
}

// Open lists the frames in the directory.
func (c *DirCamera) Open(context.Context) (FrameStream, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCameraUnavailable, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg":
			files = append(files, filepath.Join(c.dir, entry.Name()))
		}
	}
	sort.Strings(files)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inUse {
		return nil, ErrCameraInUse
	}
	c.inUse = true
	return &dirStream{cam: c, files: files}, nil
}

type dirStream struct {
	cam    *DirCamera
	files  []string
	next   int
	once   sync.Once
	closed bool
}

func (s *dirStream) Next(ctx context.Context) (image.Image, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.closed {
			return nil, ErrStreamClosed
		}
		if s.next >= len(s.files) {
			return nil, io.EOF
		}
		path := s.files[s.next]
		s.next++
		img, err := decodeFile(path)
		if err != nil {
			// unreadable frames are skipped like blurry ones
			continue
		}
		return img, nil
	}
}

func (s *dirStream) Close() error {
	s.once.Do(func() {
		s.closed = true
		s.cam.mu.Lock()
		s.cam.inUse = false
		s.cam.mu.Unlock()
	})
	return nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}
