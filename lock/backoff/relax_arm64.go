//go:build arm64 && !noasm

package backoff

// cpuRelax executes the ARM64 YIELD instruction. Implementation lives in
// relax_arm64.s.
//
//go:noescape
func cpuRelax()
