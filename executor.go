package client

import (
	"context"

	"github.com/spacedrop/spacedrop/client/internal/shardqueue"
)

// executor abstracts the internal async job runner used by async APIs.
type executor interface {
	Submit(context.Context, string, shardqueue.Job) error
	Stop()
}

// Executor is the public name for the injectable job runner.
type Executor = executor

// Note: all clients include an executor by default; async methods require it.
