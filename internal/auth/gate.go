// Package auth guards writes to the shared game document with a single
// administrator key.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
)

// ActionAuth is the POST action that only probes whether a key is valid.
const ActionAuth = "auth"

// HeaderAdminKey carries the supplied key on write requests.
const HeaderAdminKey = "x-admin-key"

var ErrUnauthorized = errors.New("unauthorised")

// Gate compares a supplied key against the configured one. The zero value
// rejects everything.
type Gate struct {
	expected []byte
}

func NewGate(expected string) *Gate {
	return &Gate{expected: []byte(expected)}
}

// Configured reports whether an administrator key is set at all.
func (g *Gate) Configured() bool {
	return g != nil && len(g.expected) > 0
}

// Check authorizes action for the supplied key. The same rule applies to the
// probe action and to real writes, and an unconfigured gate fails closed.
func (g *Gate) Check(supplied, action string) error {
	switch {
	case !g.Configured():
		return fmt.Errorf("%w: no admin key configured", ErrUnauthorized)
	case supplied == "":
		return fmt.Errorf("%w: %s without key", ErrUnauthorized, describe(action))
	case subtle.ConstantTimeCompare([]byte(supplied), g.expected) != 1:
		return fmt.Errorf("%w: %s with wrong key", ErrUnauthorized, describe(action))
	}
	return nil
}

func describe(action string) string {
	if action == "" {
		return "write"
	}
	return action
}
