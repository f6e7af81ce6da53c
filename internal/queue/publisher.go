package queue

import "context"

type Publisher interface {
	Publish(ctx context.Context, exchange, key string, event any, reqID string) error
	Close() error
}

// NoopPub is used when no broker is configured (local runs, tests).
type NoopPub struct{}

func NewNoop() Publisher { return NoopPub{} }

func (NoopPub) Publish(ctx context.Context, exchange, key string, event any, reqID string) error {
	return nil
}
func (NoopPub) Close() error { return nil }

type UserRegistered struct {
	ExternalID  string `json:"external_id"`
	Email       string `json:"email"`
	TrustSource string `json:"trust_source"`
}

type UserLoggedIn struct {
	ExternalID string `json:"external_id"`
	Email      string `json:"email"`
}
