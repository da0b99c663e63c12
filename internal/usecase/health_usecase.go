package usecase

import (
	"context"
	"time"
)

// Pinger is anything the health check can probe, such as a pgx pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	deps map[string]Pinger
}

func NewHealthUsecase(deps map[string]Pinger) HealthUsecase {
	return &healthUsecase{deps: deps}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	out := map[string]string{"status": "ok"}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	for name, dep := range u.deps {
		if dep == nil {
			continue
		}
		if err := dep.Ping(ctx); err != nil {
			out[name] = "down"
			out["status"] = "degraded"
			continue
		}
		out[name] = "up"
	}
	return out
}
