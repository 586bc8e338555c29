package process

// PortedProcess pairs a child with the local TCP port it is expected to bind.
// While Process is alive, Port is stable.
type PortedProcess struct {
	Process *Handle
	Port    int
}

// Alive reports whether the record holds a live process.
func (r *PortedProcess) Alive() bool {
	return r != nil && r.Process.Alive()
}

// Clear drops both fields.
func (r *PortedProcess) Clear() {
	r.Process = nil
	r.Port = 0
}
