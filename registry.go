package rtspd

import "sort"

// Registry is the process-wide mapping from stream name to MediaSession
// (spec.md §3, §6.2). Per the concurrency model (SPEC_FULL.md §13) it is
// owned by a single goroutine that serializes every mutation and lookup
// through one command channel; there are no mutexes anywhere in this file.
type Registry struct {
	cmds chan func(map[string]*MediaSession)
	stop chan struct{}
}

// NewRegistry starts the Registry's owning goroutine and returns a ready
// handle. Call Close when the server shuts down.
func NewRegistry() *Registry {
	r := &Registry{
		cmds: make(chan func(map[string]*MediaSession)),
		stop: make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *Registry) run() {
	sessions := make(map[string]*MediaSession)
	for {
		select {
		case cmd := <-r.cmds:
			cmd(sessions)
		case <-r.stop:
			return
		}
	}
}

// Close stops the owning goroutine. It does not touch registered sessions;
// any call on the Registry after Close returns without effect (Lookup and
// Bind find nothing, Release does nothing).
func (r *Registry) Close() {
	close(r.stop)
}

func (r *Registry) do(fn func(map[string]*MediaSession)) {
	done := make(chan struct{})
	select {
	case r.cmds <- func(sessions map[string]*MediaSession) {
		fn(sessions)
		close(done)
	}:
	case <-r.stop:
		return
	}
	<-done
}

// Add registers m under m.Name. If a session already exists under that
// name, it is displaced exactly as if Remove had been called on it first.
func (r *Registry) Add(m *MediaSession) {
	r.do(func(sessions map[string]*MediaSession) {
		if old, ok := sessions[m.Name]; ok && old != m {
			removeLocked(sessions, old.Name, old)
		}
		sessions[m.Name] = m
	})
}

// Remove unregisters the session currently registered under name, so the
// name stops resolving at once. If its reference count is nonzero, its
// delete-when-unreferenced latch is also set; connections already bound
// keep using it until they Release it.
func (r *Registry) Remove(name string) {
	r.do(func(sessions map[string]*MediaSession) {
		if m, ok := sessions[name]; ok {
			removeLocked(sessions, name, m)
		}
	})
}

// RemoveSession is Remove, addressed by identity rather than name.
func (r *Registry) RemoveSession(m *MediaSession) {
	r.do(func(sessions map[string]*MediaSession) {
		if cur, ok := sessions[m.Name]; ok && cur == m {
			removeLocked(sessions, m.Name, m)
		}
	})
}

func removeLocked(sessions map[string]*MediaSession, name string, m *MediaSession) {
	delete(sessions, name)
	if m.refCount == 0 {
		return
	}
	m.pendingDel = true
}

// Lookup returns the MediaSession registered under name, or nil.
func (r *Registry) Lookup(name string) *MediaSession {
	var out *MediaSession
	r.do(func(sessions map[string]*MediaSession) {
		out = sessions[name]
	})
	return out
}

// Iterate returns a snapshot of all registered sessions, sorted by name for
// deterministic test assertions (spec.md §6.2 leaves iteration order
// undefined; see DESIGN.md for why imposing one is harmless).
func (r *Registry) Iterate() []*MediaSession {
	var out []*MediaSession
	r.do(func(sessions map[string]*MediaSession) {
		out = make([]*MediaSession, 0, len(sessions))
		for _, m := range sessions {
			out = append(out, m)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Bind looks up name and, if found, increments its reference count as
// part of the same atomic step (SETUP-bind, spec.md §5's shared-resource
// policy).
func (r *Registry) Bind(name string) *MediaSession {
	var out *MediaSession
	r.do(func(sessions map[string]*MediaSession) {
		if m, ok := sessions[name]; ok {
			m.refCount++
			out = m
		}
	})
	return out
}

// Release decrements m's reference count on Connection destruction or
// rebind, and finalizes removal if the delete-when-unreferenced latch was
// already set (spec.md §3 lifecycle, §8 invariant on latch-on implying
// still-referenced-until-zero).
func (r *Registry) Release(m *MediaSession) {
	r.do(func(sessions map[string]*MediaSession) {
		m.refCount--
		if m.refCount < 0 {
			m.refCount = 0
		}
		if m.refCount == 0 && m.pendingDel {
			if cur, ok := sessions[m.Name]; ok && cur == m {
				delete(sessions, m.Name)
			}
		}
	})
}
