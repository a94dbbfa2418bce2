// Package pheromone implements PheroWar's per-colony 8-channel scalar
// field (spec.md component B: Pheromone Field).
package pheromone

import (
	"github.com/obeeron/pherowar/internal/grid"
	"github.com/obeeron/pherowar/internal/ids"
)

// ChannelCount is the number of independent pheromone channels per cell.
const ChannelCount = 8

// MaxAmount is the saturation ceiling for any single channel.
const MaxAmount = 255.0

// Field stores one dense [cells][channels] layer per colony, flattened
// into one []float32 per colony with the channel index innermost — the "dense 3D array"
// layout from spec.md's design notes, sized so reclaiming a colony is a
// single map-delete rather than a per-cell sweep.
type Field struct {
	width, height int
	layers        map[ids.ColonyID][]float32
}

// NewField creates an empty pheromone field over a width x height grid.
// No colony has a layer until AddColony is called for it.
func NewField(width, height int) *Field {
	return &Field{
		width:  width,
		height: height,
		layers: make(map[ids.ColonyID][]float32),
	}
}

// AddColony allocates a zeroed layer for colony. Safe to call again for
// an existing colony (re-zeroes it), matching "colony layer created with
// colony" lifecycle semantics.
func (f *Field) AddColony(colony ids.ColonyID) {
	f.layers[colony] = make([]float32, f.width*f.height*ChannelCount)
}

// RemoveColony deletes colony's entire layer. This is the atomic
// reclamation spec.md §4.G and §3 require: once this returns, no cell
// holds a nonzero value under this id, because the backing array is
// unreachable and a later AddColony reusing the id always re-allocates.
func (f *Field) RemoveColony(colony ids.ColonyID) {
	delete(f.layers, colony)
}

func (f *Field) cellIndex(x, y int) int { return (y*f.width + x) * ChannelCount }

// clampAmount clamps an amount to the legal [0, MaxAmount] deposit range,
// replacing NaN/Inf per spec.md §7 InvalidOutput handling.
func clampAmount(amount float32) float32 {
	switch {
	case amount != amount: // NaN
		return 0
	case amount < 0:
		return 0
	case amount > MaxAmount:
		return MaxAmount
	default:
		return amount
	}
}

// Deposit adds amount (clamped to [0,255]) to channel ch of cell (x,y) in
// colony's layer, saturating at MaxAmount. Out-of-bounds or unknown-colony
// deposits are silently ignored (the action resolver never constructs
// these, but sensing/tests may probe edges).
func (f *Field) Deposit(colony ids.ColonyID, x, y, ch int, amount float32) {
	layer, ok := f.layers[colony]
	if !ok || x < 0 || y < 0 || x >= f.width || y >= f.height || ch < 0 || ch >= ChannelCount {
		return
	}
	idx := f.cellIndex(x, y) + ch
	v := layer[idx] + clampAmount(amount)
	if v > MaxAmount {
		v = MaxAmount
	}
	layer[idx] = v
}

// SampleCell returns the raw per-channel values at (x,y) in colony's
// layer. Returns the zero value for an unknown colony or out-of-bounds
// cell.
func (f *Field) SampleCell(colony ids.ColonyID, x, y int) [ChannelCount]float32 {
	var out [ChannelCount]float32
	layer, ok := f.layers[colony]
	if !ok || x < 0 || y < 0 || x >= f.width || y >= f.height {
		return out
	}
	idx := f.cellIndex(x, y)
	copy(out[:], layer[idx:idx+ChannelCount])
	return out
}

// ArcSense is the (bearing, strength) result of a forward-arc sample.
type ArcSense struct {
	Angle    float64 // bearing relative to orientation, radians
	Strength float64 // raw channel value at the strongest sampled cell
}

// SampleArc scans rayCount rays evenly spaced across
// [orientation-maxAngle, orientation+maxAngle], stepping one cell at a
// time up to maxDist cells (rays stop at wall occlusion), and returns
// the bearing/strength of the single strongest sample found for channel
// ch. There is no distance falloff in the reported strength — see
// spec.md §4.B. Returns the zero ArcSense when nothing is found.
func (f *Field) SampleArc(colony ids.ColonyID, g *grid.Grid, ox, oy, orientation float64, ch int, maxDist, maxAngle float64, rayCount int) ArcSense {
	layer, ok := f.layers[colony]
	if !ok || rayCount < 2 {
		return ArcSense{}
	}

	var best ArcSense
	found := false

	for i := 0; i < rayCount; i++ {
		offset := -maxAngle + float64(i)*(2*maxAngle)/float64(rayCount-1)
		rayAngle := orientation + offset

		g.RayMarch(ox, oy, rayAngle, maxDist, func(x, y int, dist float64) bool {
			idx := f.cellIndex(x, y) + ch
			if x < 0 || y < 0 || x >= f.width || y >= f.height {
				return false
			}
			v := float64(layer[idx])
			if v > 0 && (!found || v > best.Strength) {
				best = ArcSense{Angle: offset, Strength: v}
				found = true
			}
			return false
		})
	}

	if !found {
		return ArcSense{}
	}
	return best
}

// DecayAll applies one decay interval to colony's layer: each channel's
// values are multiplied by the corresponding rate in rates. Values below
// a small epsilon are zeroed to avoid denormal creep. Call once per
// elapsed PHEROMONE_DECAY_INTERVAL, per spec.md §4.B.
func (f *Field) DecayAll(colony ids.ColonyID, rates [ChannelCount]float32) {
	layer, ok := f.layers[colony]
	if !ok {
		return
	}
	const epsilon = 1e-4
	cells := f.width * f.height
	for c := 0; c < cells; c++ {
		base := c * ChannelCount
		for ch := 0; ch < ChannelCount; ch++ {
			v := layer[base+ch] * rates[ch]
			if v < epsilon {
				v = 0
			}
			layer[base+ch] = v
		}
	}
}
