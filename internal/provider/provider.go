// Package provider holds what the barcode lookup clients share: the product
// record they return and the outbound request throttle.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	UserAgent      = "pantry-cli/1.0 (+https://github.com/saadjs/pantry-cli)"
	DefaultTimeout = 12 * time.Second
)

// Product is the partial record a barcode lookup can pre-fill a new
// ingredient with.
type Product struct {
	Barcode    string   `json:"barcode"`
	Name       string   `json:"name"`
	Brand      string   `json:"brand"`
	Quantity   string   `json:"quantity,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// NewLimiter allows perMinute requests with a small burst.
func NewLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 2)
}

// Wait blocks until limiter admits one request. A nil limiter never blocks.
func Wait(ctx context.Context, limiter *rate.Limiter, name string) error {
	if limiter == nil {
		return nil
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limit: %w", name, err)
	}
	return nil
}

func HTTPClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: DefaultTimeout}
}

func BaseURL(configured, fallback string) string {
	base := strings.TrimRight(strings.TrimSpace(configured), "/")
	if base == "" {
		return fallback
	}
	return base
}

// SplitTags splits a delimited category path into trimmed, non-empty tags.
func SplitTags(value, sep string) []string {
	var out []string
	for _, part := range strings.Split(value, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
