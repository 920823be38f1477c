package usecase

import "context"

// RelayStatus is the part of the relay the health check looks at.
type RelayStatus interface {
	IsConfigured() bool
}

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	relay            RelayStatus
	rateLimitBackend string
}

func NewHealthUsecase(relay RelayStatus, rateLimitBackend string) HealthUsecase {
	return &healthUsecase{
		relay:            relay,
		rateLimitBackend: rateLimitBackend,
	}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	relay := "not_configured"
	if u.relay != nil && u.relay.IsConfigured() {
		relay = "configured"
	}
	return map[string]string{
		"status":     "ok",
		"relay":      relay,
		"rate_limit": u.rateLimitBackend,
	}
}
