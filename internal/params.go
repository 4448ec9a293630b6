package internal

const (
	// DefaultChunkSize is the number of words processed between two cooperative yield points.
	DefaultChunkSize = 10_000
	// DefaultMaxCodepoints is the longest candidate, in codepoints, that fits a tag.
	DefaultMaxCodepoints = 4
	DefaultWorkers       = 1
)

// BatchParams configures a batch. Non-positive fields take their defaults.
type BatchParams struct {
	ChunkSize     int
	MaxCodepoints int
	Workers       int
}

// ResolveBatchParams fills in the defaults of p.
func ResolveBatchParams(p BatchParams) BatchParams {
	if p.ChunkSize <= 0 {
		p.ChunkSize = DefaultChunkSize
	}
	if p.MaxCodepoints <= 0 {
		p.MaxCodepoints = DefaultMaxCodepoints
	}
	if p.Workers <= 0 {
		p.Workers = DefaultWorkers
	}
	return p
}
