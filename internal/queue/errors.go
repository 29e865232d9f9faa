// Package queue implements the inbound and outbound command queues
// described in spec.md sections 4.2 and 4.3.
package queue

import "github.com/pkg/errors"

// ErrQueueFull is returned by Outbound.PushTail when the caller asked
// for the max_size limit to be enforced and the push would exceed it
// (spec.md section 4.3's Fails clause). The command is not retained.
var ErrQueueFull = errors.New("queue: outbound queue full")

// ErrUnknownOpcode is returned when a command with no registered
// descriptor is pushed; this should never happen for commands built
// through the api package, which only ever constructs known opcodes.
var ErrUnknownOpcode = errors.New("queue: unknown opcode")
