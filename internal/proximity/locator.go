package proximity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/saadjs/pantry-cli/internal/model"
)

// ErrPermissionDenied is returned by a Locator that may not read the
// position.
var ErrPermissionDenied = errors.New("location permission denied")

// Locator supplies the device position. LastKnown returns a cached fix when
// one is available; Current always takes a fresh one.
type Locator interface {
	LastKnown(ctx context.Context) (Point, bool, error)
	Current(ctx context.Context) (Point, error)
}

// Locate prefers the cached fix and falls back to a fresh one.
func Locate(ctx context.Context, l Locator) (Point, error) {
	p, ok, err := l.LastKnown(ctx)
	if err != nil {
		return Point{}, err
	}
	if ok {
		return p, nil
	}
	return l.Current(ctx)
}

// StaticLocator always reports the same configured position.
type StaticLocator struct {
	At Point
}

func (s StaticLocator) LastKnown(context.Context) (Point, bool, error) {
	return s.At, true, nil
}

func (s StaticLocator) Current(context.Context) (Point, error) {
	return s.At, nil
}

// DeniedLocator models a device where location access was refused.
type DeniedLocator struct{}

func (DeniedLocator) LastKnown(context.Context) (Point, bool, error) {
	return Point{}, false, ErrPermissionDenied
}

func (DeniedLocator) Current(context.Context) (Point, error) {
	return Point{}, ErrPermissionDenied
}

// FileLocator reads the position from a YAML or JSON file holding latitude
// and longitude keys, so another process (a GPS daemon, a phone sync) can
// feed the watcher. A fix younger than MaxAge is served from memory.
type FileLocator struct {
	Path   string
	MaxAge time.Duration

	mu   sync.Mutex
	last Point
	at   time.Time
	now  func() time.Time
}

func NewFileLocator(path string, maxAge time.Duration) *FileLocator {
	return &FileLocator{Path: path, MaxAge: maxAge, now: time.Now}
}

func (f *FileLocator) LastKnown(context.Context) (Point, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.at.IsZero() || f.now().Sub(f.at) > f.MaxAge {
		return Point{}, false, nil
	}
	return f.last, true, nil
}

func (f *FileLocator) Current(ctx context.Context) (Point, error) {
	if err := ctx.Err(); err != nil {
		return Point{}, err
	}
	raw, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrPermission) {
		return Point{}, fmt.Errorf("%w: %s", ErrPermissionDenied, f.Path)
	}
	if err != nil {
		return Point{}, fmt.Errorf("read location file: %w", err)
	}
	var p Point
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Point{}, fmt.Errorf("parse location file: %w", err)
	}
	if err := model.ValidateCoordinates(p.Latitude, p.Longitude); err != nil {
		return Point{}, err
	}
	f.mu.Lock()
	f.last, f.at = p, f.now()
	f.mu.Unlock()
	return p, nil
}
