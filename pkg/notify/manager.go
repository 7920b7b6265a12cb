package notify

import (
	"errors"
	"sync"
)

// Process-wide channel manager. Views never construct their own channel:
// one transport per process means registrations survive navigation, and
// handlers are attached exactly once no matter how many views ask for it.

var (
	managerMu      sync.Mutex
	defaultChannel *Channel
)

// ErrNotInitialized is returned by SharedChannel before Init has run.
var ErrNotInitialized = errors.New("notify: Init has not been called")

// Init creates the shared channel. Call it once at application start;
// later calls return the existing channel untouched.
func Init(url, token string) *Channel {
	managerMu.Lock()
	defer managerMu.Unlock()
	if defaultChannel == nil {
		defaultChannel = NewChannel(url, token)
	}
	return defaultChannel
}

// SharedChannel returns the channel created by Init.
func SharedChannel() (*Channel, error) {
	managerMu.Lock()
	defer managerMu.Unlock()
	if defaultChannel == nil {
		return nil, ErrNotInitialized
	}
	return defaultChannel, nil
}

// Reset drops the shared channel. Intended for tests.
func Reset() {
	managerMu.Lock()
	defer managerMu.Unlock()
	if defaultChannel != nil {
		defaultChannel.Close()
		defaultChannel = nil
	}
}
