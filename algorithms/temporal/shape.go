package temporal

// Shape is a coarse label for where a partial's energy sits in time
type Shape string

const (
	ShapeSilent     Shape = "silent"     // nothing above the silence floor
	ShapeSparse     Shape = "sparse"     // present, but never active long enough to form a segment
	ShapePercussive Shape = "percussive" // first segment louder than the overall mean
	ShapeSustained  Shape = "sustained"
)

// ClassifyShape labels an envelope from its statistics and activity segments
func ClassifyShape(stats AmplitudeStats, segments []Segment) Shape {
	switch {
	case stats.Count == 0:
		return ShapeSilent
	case len(segments) == 0:
		return ShapeSparse
	case segments[0].MeanDB > stats.Mean:
		return ShapePercussive
	default:
		return ShapeSustained
	}
}
