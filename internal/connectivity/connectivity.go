// Package connectivity observes network reachability and exposes a single
// current online/offline flag. Override modes exist purely so tests and the
// sync engine can be made deterministic; under FollowSystem the device is
// online only when an active interface carries a global unicast address.
// Any probe failure means offline: the sync engine must not attempt remote
// calls that are unlikely to complete.
package connectivity

import (
	"net"
	"sync"

	"github.com/hylee/pawtrail/internal/logging"
)

// Mode controls how the online flag is derived.
type Mode int

const (
	// FollowSystem derives the flag from the OS network state.
	FollowSystem Mode = iota
	// ForceOnline pins the flag to online regardless of the OS.
	ForceOnline
	// ForceOffline pins the flag to offline regardless of the OS.
	ForceOffline
)

// Probe reports whether the system network is usable. Injectable for tests.
type Probe func() (bool, error)

// Monitor publishes the current connectivity state.
type Monitor struct {
	mu     sync.RWMutex
	mode   Mode
	online bool
	probe  Probe
}

// NewMonitor creates a monitor in FollowSystem mode and evaluates the
// initial state.
func NewMonitor() *Monitor {
	m := &Monitor{probe: systemProbe}
	m.Refresh()
	return m
}

// NewMonitorWithProbe creates a monitor with a custom probe, for tests.
func NewMonitorWithProbe(probe Probe) *Monitor {
	m := &Monitor{probe: probe}
	m.Refresh()
	return m
}

// Online returns the last published connectivity flag.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// Mode returns the current override mode.
func (m *Monitor) Mode() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

// SetMode changes the override mode and re-evaluates the flag.
func (m *Monitor) SetMode(mode Mode) {
	m.mu.Lock()
	m.mode = mode
	m.mu.Unlock()
	m.Refresh()
}

// Refresh re-evaluates the flag from the override or the OS and returns the
// new value.
func (m *Monitor) Refresh() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	was := m.online

	switch m.mode {
	case ForceOnline:
		m.online = true
	case ForceOffline:
		m.online = false
	default:
		ok, err := m.probe()
		if err != nil {
			// Fail closed.
			m.online = false
		} else {
			m.online = ok
		}
	}

	if was != m.online {
		logging.Info("Connectivity changed", logging.Fields{"online": m.online})
	}
	return m.online
}

// systemProbe reports online when any active non-loopback interface carries
// a global unicast address. Absence of an active network is offline.
func systemProbe() (bool, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip != nil && ip.IsGlobalUnicast() {
				return true, nil
			}
		}
	}
	return false, nil
}
