// Package store resolves and talks to the backend holding the shared game
// document. Documents are opaque JSON; nothing here looks inside them.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"
)

const (
	BackendDynamoDB = "dynamodb"
	BackendS3       = "s3"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Client reads and writes whole JSON documents by key.
type Client interface {
	// GetJSON returns the document and true, or false when the key has never
	// been written.
	GetJSON(ctx context.Context, key string) (json.RawMessage, bool, error)
	// PutJSON replaces the document at key wholesale.
	PutJSON(ctx context.Context, key string, doc json.RawMessage) error
}

var (
	ErrNotConfigured   = errors.New("store not configured")
	ErrInvalidDocument = errors.New("document is not valid JSON")
)

// ConfigError reports a store that cannot be used as configured. It matches
// ErrNotConfigured under errors.Is.
type ConfigError struct {
	Backend string
	Reason  string
	Err     error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("store not configured (%s): %s", e.Backend, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrNotConfigured }

type Mode int

const (
	ModeAutomatic Mode = iota // ambient platform credentials
	ModeManual                // explicit site id + token
)

func (m Mode) String() string {
	if m == ModeManual {
		return "manual"
	}
	return "automatic"
}

// Config locates the store. SiteID and Token are the explicit credentials:
// for the AWS backends the access key id and secret key, for redis the
// username and password.
type Config struct {
	Backend  string
	Name     string // table, bucket or key prefix
	SiteID   string
	Token    string
	Region   string
	Endpoint string
}

// Mode is manual only when both credentials are present.
func (c Config) Mode() Mode {
	if c.SiteID != "" && c.Token != "" {
		return ModeManual
	}
	return ModeAutomatic
}

func (c Config) backend() string {
	b := strings.ToLower(strings.TrimSpace(c.Backend))
	if b == "" {
		return BackendDynamoDB
	}
	return b
}

// Resolve builds a client for cfg. It is the only place that turns
// configuration into a live store.
func Resolve(ctx context.Context, cfg Config) (Client, error) {
	backend := cfg.backend()
	if cfg.Name == "" && backend != BackendMemory {
		return nil, &ConfigError{Backend: backend, Reason: "store name is empty"}
	}
	if cfg.Mode() == ModeManual {
		if err := validateCredentials(backend, cfg.SiteID, cfg.Token); err != nil {
			return nil, err
		}
	}

	var (
		c   Client
		err error
	)
	switch backend {
	case BackendDynamoDB:
		c, err = newDynamoFromConfig(ctx, cfg)
	case BackendS3:
		c, err = newS3FromConfig(ctx, cfg)
	case BackendRedis:
		c, err = newRedisFromConfig(cfg)
	case BackendMemory:
		c = NewMemory()
	default:
		err = &ConfigError{Backend: backend, Reason: "unknown backend"}
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

var reAccessKeyID = regexp.MustCompile(`^[A-Z0-9]{16,128}$`)

func validateCredentials(backend, siteID, token string) error {
	if hasSpace(siteID) || hasSpace(token) {
		return &ConfigError{Backend: backend, Reason: "credentials contain whitespace"}
	}
	switch backend {
	case BackendDynamoDB, BackendS3:
		if !reAccessKeyID.MatchString(siteID) {
			return &ConfigError{Backend: backend, Reason: "site id is not an access key id"}
		}
		if len(token) < 16 {
			return &ConfigError{Backend: backend, Reason: "token too short"}
		}
	}
	return nil
}

func hasSpace(s string) bool {
	return strings.IndexFunc(s, unicode.IsSpace) >= 0
}

func checkJSON(doc json.RawMessage) error {
	if len(doc) == 0 || !json.Valid(doc) {
		return ErrInvalidDocument
	}
	return nil
}

// Resolver resolves a client on first use and keeps it for the life of the
// process. Failed resolutions are retried on the next call.
type Resolver struct {
	cfg     Config
	resolve func(context.Context, Config) (Client, error)

	mu     sync.Mutex
	client Client
}

func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg, resolve: Resolve}
}

func (r *Resolver) Config() Config { return r.cfg }

func (r *Resolver) Client(ctx context.Context) (Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		return r.client, nil
	}
	c, err := r.resolve(ctx, r.cfg)
	if err != nil {
		return nil, err
	}
	r.client = c
	return c, nil
}
