//go:build (!amd64 && !arm64) || noasm

package backoff

// cpuRelax is a no-op on architectures without a dedicated spin hint, or
// when assembly is disabled with the noasm build tag.
func cpuRelax() {}
