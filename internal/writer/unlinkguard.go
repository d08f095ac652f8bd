package writer

import "os"

// unlinkGuard replaces the original source's process-wide "unlink on
// fatal" marker (spec.md §9) with a scoped value: armed for the
// duration of one container write, it removes the partial output file
// if the write fails, and is disarmed on success.
type unlinkGuard struct {
	path  string
	armed bool
}

// armUnlinkGuard arms a guard over path. Call Disarm once the container
// write has fully succeeded; otherwise defer Release to clean up.
func armUnlinkGuard(path string) *unlinkGuard {
	return &unlinkGuard{path: path, armed: true}
}

// Disarm marks the write as successful; Release becomes a no-op.
func (g *unlinkGuard) Disarm() {
	g.armed = false
}

// Release removes the partial output file if the guard is still armed.
// Safe to call unconditionally via defer.
func (g *unlinkGuard) Release() {
	if !g.armed {
		return
	}
	os.Remove(g.path)
}
