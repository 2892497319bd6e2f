//go:build amd64 && !noasm

package backoff

// cpuRelax executes the x86-64 PAUSE instruction. Implementation lives
// in relax_amd64.s; PAUSE hints the pipeline that this core is spinning,
// improving throughput on SMT siblings without leaving userspace.
//
//go:noescape
func cpuRelax()
