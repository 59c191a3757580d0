package linkpub

import "sync"

// HostRotation hands out dispenser hosts round-robin.
type HostRotation struct {
	mu    sync.Mutex
	hosts []string
}

// NewHostRotation returns a rotation over hosts in the given order.
// Returns EINVALID if hosts is empty or contains an empty host.
func NewHostRotation(hosts []string) (*HostRotation, error) {
	if len(hosts) == 0 {
		return nil, Errorf(EINVALID, "at least one dispenser host required")
	}
	for _, h := range hosts {
		if h == "" {
			return nil, Errorf(EINVALID, "dispenser host must not be empty")
		}
	}
	return &HostRotation{hosts: append([]string(nil), hosts...)}, nil
}

// Next pops the head of the list, appends it to the tail and returns it.
func (r *HostRotation) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.hosts[0]
	copy(r.hosts, r.hosts[1:])
	r.hosts[len(r.hosts)-1] = h
	return h
}

// Hosts returns the hosts in their current rotation order.
func (r *HostRotation) Hosts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.hosts...)
}
