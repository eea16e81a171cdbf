package identity

// Registry is the store of every user created during a run. It is
// owned by the generation engine and handed to collaborators
// explicitly; iteration follows insertion order so runs with the same
// seed replay identically.
type Registry struct {
	byDevice map[string]*UserState
	order    []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byDevice: make(map[string]*UserState)}
}

// Add inserts a user. Returns false if the device is already known.
func (r *Registry) Add(u *UserState) bool {
	if _, ok := r.byDevice[u.DeviceID]; ok {
		return false
	}
	r.byDevice[u.DeviceID] = u
	r.order = append(r.order, u.DeviceID)
	return true
}

// Get returns the user for a device id.
func (r *Registry) Get(deviceID string) (*UserState, bool) {
	u, ok := r.byDevice[deviceID]
	return u, ok
}

// Len returns the number of tracked users.
func (r *Registry) Len() int {
	return len(r.byDevice)
}

// All returns users in insertion order.
func (r *Registry) All() []*UserState {
	users := make([]*UserState, 0, len(r.order))
	for _, id := range r.order {
		users = append(users, r.byDevice[id])
	}
	return users
}

// Each visits users in insertion order, stopping on the first error.
func (r *Registry) Each(fn func(*UserState) error) error {
	for _, id := range r.order {
		if err := fn(r.byDevice[id]); err != nil {
			return err
		}
	}
	return nil
}
