//go:build elapsed_wall && !elapsed_cputime

package elapsed

// DefaultSource is the source selected for this build
const DefaultSource = Wall
