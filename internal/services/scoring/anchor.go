package scoring

// AnchorScale converts a full net-rating differential into point-spread units.
const AnchorScale = 0.5

// BaselinePredictor computes the fundamental anchor of a matchup.
type BaselinePredictor struct{}

// Anchor returns (homeNet - awayNet) * AnchorScale.
func (BaselinePredictor) Anchor(homeNet, awayNet float64) float64 {
	return (homeNet - awayNet) * AnchorScale
}
