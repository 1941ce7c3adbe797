// Package capture provides the backends that feed the monitor event logs:
// native per-platform streams (currently stubs reporting what native work
// is outstanding) and a synthetic scripted backend for bring-up and demos.
package capture

// streamHandle is the lifecycle token returned by adapter starts. Streams
// run until the process exits; the handle only names the backend for logs.
type streamHandle struct {
	backend string
}

func (h streamHandle) Backend() string { return h.backend }
