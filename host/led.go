package host

import "sync/atomic"

// LED is the heartbeat indicator drawn in the corner of the window.
type LED struct {
	on atomic.Bool
}

func (l *LED) Set(on bool) {
	l.on.Store(on)
}

func (l *LED) On() bool {
	return l.on.Load()
}
