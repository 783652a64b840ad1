package arena

import "sync"

// Subscriber receives room snapshots. Send must be non-blocking;
// implementations are expected to buffer and drop under pressure rather
// than stall command handling.
type Subscriber interface {
	Send(snap Snapshot)
}

// ChannelSubscriber is a Subscriber backed by a buffered channel. The
// transport layer drains Snapshots from the channel and writes them to its
// connection. When the buffer fills, the oldest snapshot is dropped: a
// client that falls behind only ever misses intermediate states, never the
// most recent one.
type ChannelSubscriber struct {
	snaps     chan Snapshot
	done      chan struct{}
	closeOnce sync.Once
}

// NewChannelSubscriber creates a subscriber with the given buffer size.
func NewChannelSubscriber(buffer int) *ChannelSubscriber {
	if buffer < 1 {
		buffer = 16
	}
	return &ChannelSubscriber{
		snaps: make(chan Snapshot, buffer),
		done:  make(chan struct{}),
	}
}

// Send delivers a snapshot, dropping the oldest buffered one if needed.
func (s *ChannelSubscriber) Send(snap Snapshot) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.snaps <- snap:
	default:
		select {
		case <-s.snaps:
		default:
		}
		select {
		case s.snaps <- snap:
		default:
		}
	}
}

// Snapshots returns the channel the consumer drains.
func (s *ChannelSubscriber) Snapshots() <-chan Snapshot {
	return s.snaps
}

// Done closes when the subscriber is shut down.
func (s *ChannelSubscriber) Done() <-chan struct{} {
	return s.done
}

// Close stops delivery. Safe to call multiple times.
func (s *ChannelSubscriber) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}
