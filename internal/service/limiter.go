package service

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/saadjs/pantry-cli/internal/provider"
)

type limiterEntry struct {
	perMinute int
	once      sync.Once
	limiter   *rate.Limiter
}

func (e *limiterEntry) get() *rate.Limiter {
	if e == nil {
		return nil
	}
	e.once.Do(func() { e.limiter = provider.NewLimiter(e.perMinute) })
	return e.limiter
}
