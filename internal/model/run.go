package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunContext identifies one audit invocation. Every worker of a run shares
// the same token, and all coordination logic keys on it to distinguish the
// active run from leftovers of earlier runs in the same output tree.
//
// Design decision: The context is constructed once and passed explicitly
// into every constructor that needs it. Nothing in this codebase reads the
// run token from the process environment; when an external scheduler runs
// one process per project it passes the token via the --run-token flag.
type RunContext struct {
	// Token is the opaque run identifier.
	Token string

	// StartedAt is when the run context was created in this process.
	StartedAt time.Time
}

// NewRunContext generates a fresh run context. The token is
// timestamp-derived for human readability with a short random suffix so
// that two invocations within the same second never collide.
func NewRunContext() RunContext {
	now := time.Now().UTC()
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return RunContext{
		Token:     fmt.Sprintf("%s-%s", now.Format("20060102T150405Z"), suffix),
		StartedAt: now,
	}
}

// RunContextFromToken wraps an externally supplied token, as used when a
// scheduler spawns one worker process per project and propagates the token
// it generated for the whole invocation.
func RunContextFromToken(token string) RunContext {
	return RunContext{
		Token:     token,
		StartedAt: time.Now().UTC(),
	}
}
