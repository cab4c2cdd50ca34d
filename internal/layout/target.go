package layout

// Target describes the execution hierarchy of the GPU being compiled for.
// Only the properties the analyses consume are modeled.
type Target struct {
	Name string
	// WarpSize is the number of lanes in one warp-equivalent group.
	WarpSize int
	// NumWarps is the number of warps launched per block.
	NumWarps int
	// SharedMemoryBytes is the scratch budget per block.
	SharedMemoryBytes int
}

// DefaultTarget is a generic 32-lane target with 4 warps per block.
func DefaultTarget() Target {
	return Target{
		Name:              "generic-32",
		WarpSize:          32,
		NumWarps:          4,
		SharedMemoryBytes: 96 * 1024,
	}
}
