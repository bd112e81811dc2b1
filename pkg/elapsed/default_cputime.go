//go:build elapsed_cputime

package elapsed

// DefaultSource is the source selected for this build
const DefaultSource = CPUTime
