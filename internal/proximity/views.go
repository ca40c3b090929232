package proximity

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// ViewTracker is a Navigator for a terminal session. OnNavigate renders the
// target view.
type ViewTracker struct {
	mu         sync.Mutex
	view       string
	OnNavigate func(ctx context.Context, view string) error
}

func NewViewTracker(initial string, onNavigate func(ctx context.Context, view string) error) *ViewTracker {
	return &ViewTracker{view: initial, OnNavigate: onNavigate}
}

func (v *ViewTracker) CurrentView() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.view
}

func (v *ViewTracker) Navigate(ctx context.Context, view string) error {
	v.mu.Lock()
	v.view = view
	v.mu.Unlock()
	if v.OnNavigate == nil {
		return nil
	}
	return v.OnNavigate(ctx, view)
}

// Leave switches the tracked view without rendering anything.
func (v *ViewTracker) Leave(view string) {
	v.mu.Lock()
	v.view = view
	v.mu.Unlock()
}

// WriterNotifier prints alerts to W.
type WriterNotifier struct {
	W io.Writer
}

func (n WriterNotifier) Notify(_ context.Context, title, message string) error {
	_, err := fmt.Fprintf(n.W, "%s: %s\n", title, message)
	return err
}
