package client

import (
	"errors"

	"github.com/spacedrop/spacedrop/client/internal/shardqueue"
	"github.com/spacedrop/spacedrop/client/internal/types"
)

// ErrBackPressure is returned when the client's internal shard queue is full.
var ErrBackPressure = errors.New("back-pressure (queue full)")

// IsBackPressure reports whether err is a back-pressure error, either the
// public sentinel or the executor's own queue-full error.
func IsBackPressure(err error) bool {
	return errors.Is(err, ErrBackPressure) || errors.Is(err, shardqueue.ErrQueueFull)
}

// Re-export shared SDK error so callers compare against a single symbol.
var ErrNotFound = types.ErrNotFound
