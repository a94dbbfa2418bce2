// Package abi defines the wire-compatible structs exchanged with a
// colony's player-AI worker and their fixed binary layout (spec.md §6:
// "C ABI compatible binary protocol"). Encoding is done by hand with
// encoding/binary rather than unsafe struct casts, so the layout is
// guaranteed by this code instead of by the Go compiler's (unspecified)
// struct layout — the worker side, written in another language against
// the documented offsets below, is the one place that layout actually
// has to match bit-for-bit.
package abi

import (
	"encoding/binary"
	"math"
)

// PheromoneSense is one (bearing, strength) arc-sense result.
type PheromoneSense struct {
	Angle    float32
	Strength float32
}

// DirectionalSense is a (relative angle, distance) result; distance is
// -1.0 when the target is absent or occluded.
type DirectionalSense struct {
	Angle    float32
	Distance float32
}

// AntInput mirrors the C ABI AntInput struct (spec.md §6).
type AntInput struct {
	IsCarryingFood  bool
	IsOnColony      bool
	IsOnFood        bool
	PheromoneSenses [8]PheromoneSense
	CellSense       [8]float32
	WallSense       DirectionalSense
	FoodSense       DirectionalSense
	ColonySense     DirectionalSense
	EnemySense      DirectionalSense
	Longevity       float32
	IsFighting      bool
}

// AntOutput mirrors the C ABI AntOutput struct (spec.md §6).
type AntOutput struct {
	TurnAngle        float32
	PheromoneAmounts [8]float32
	TryAttack        bool
}

// PlayerSetup mirrors the C ABI PlayerSetup struct (spec.md §6).
type PlayerSetup struct {
	DecayRates [8]float32
}

// Fixed wire sizes, in bytes. Each struct is laid out field-by-field in
// declaration order, little-endian, with bools taking one byte and the
// struct padded to a 4-byte boundary (natural f32 alignment) — see the
// offset comments on each Encode function.
const (
	AntInputSize  = 140
	AntOutputSize = 40
	SetupSize     = 32
)

func putF32(b []byte, off int, v float32) {
	if math.IsNaN(float64(v)) {
		v = 0
	}
	binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v))
}

func getF32(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func putBool(b []byte, off int, v bool) {
	if v {
		b[off] = 1
	} else {
		b[off] = 0
	}
}

func getBool(b []byte, off int) bool {
	return b[off] != 0
}

// EncodeAntInput writes in's wire representation into a freshly
// allocated AntInputSize-byte buffer.
//
// Layout: byte 0 IsCarryingFood, byte 1 IsOnColony, byte 2 IsOnFood,
// byte 3 padding; bytes 4..68 PheromoneSenses[8]{angle,strength};
// bytes 68..100 CellSense[8]; bytes 100..108 WallSense; 108..116
// FoodSense; 116..124 ColonySense; 124..132 EnemySense; 132..136
// Longevity; byte 136 IsFighting; bytes 137..140 padding.
func EncodeAntInput(in AntInput) []byte {
	b := make([]byte, AntInputSize)
	putBool(b, 0, in.IsCarryingFood)
	putBool(b, 1, in.IsOnColony)
	putBool(b, 2, in.IsOnFood)

	off := 4
	for _, s := range in.PheromoneSenses {
		putF32(b, off, s.Angle)
		putF32(b, off+4, s.Strength)
		off += 8
	}
	for _, v := range in.CellSense {
		putF32(b, off, v)
		off += 4
	}
	for _, d := range []DirectionalSense{in.WallSense, in.FoodSense, in.ColonySense, in.EnemySense} {
		putF32(b, off, d.Angle)
		putF32(b, off+4, d.Distance)
		off += 8
	}
	putF32(b, off, in.Longevity)
	putBool(b, off+4, in.IsFighting)

	return b
}

// DecodeAntInput reverses EncodeAntInput. b must be at least AntInputSize
// bytes.
func DecodeAntInput(b []byte) AntInput {
	var in AntInput
	in.IsCarryingFood = getBool(b, 0)
	in.IsOnColony = getBool(b, 1)
	in.IsOnFood = getBool(b, 2)

	off := 4
	for i := range in.PheromoneSenses {
		in.PheromoneSenses[i] = PheromoneSense{Angle: getF32(b, off), Strength: getF32(b, off+4)}
		off += 8
	}
	for i := range in.CellSense {
		in.CellSense[i] = getF32(b, off)
		off += 4
	}
	dests := []*DirectionalSense{&in.WallSense, &in.FoodSense, &in.ColonySense, &in.EnemySense}
	for _, d := range dests {
		*d = DirectionalSense{Angle: getF32(b, off), Distance: getF32(b, off+4)}
		off += 8
	}
	in.Longevity = getF32(b, off)
	in.IsFighting = getBool(b, off+4)

	return in
}

// EncodeAntOutput writes out's wire representation.
//
// Layout: bytes 0..4 TurnAngle; bytes 4..36 PheromoneAmounts[8]; byte 36
// TryAttack; bytes 37..40 padding.
func EncodeAntOutput(out AntOutput) []byte {
	b := make([]byte, AntOutputSize)
	putF32(b, 0, out.TurnAngle)
	off := 4
	for _, v := range out.PheromoneAmounts {
		putF32(b, off, v)
		off += 4
	}
	putBool(b, off, out.TryAttack)
	return b
}

// DecodeAntOutput reverses EncodeAntOutput, clamping NaN/Inf turn angle
// and pheromone amounts per spec.md §7 InvalidOutput policy (NaN -> 0,
// +-Inf -> +-MAX, pheromone amounts clamped to [0,255] by the caller).
func DecodeAntOutput(b []byte) AntOutput {
	var out AntOutput
	out.TurnAngle = sanitizeFloat(getF32(b, 0))
	off := 4
	for i := range out.PheromoneAmounts {
		out.PheromoneAmounts[i] = sanitizeFloat(getF32(b, off))
		off += 4
	}
	out.TryAttack = getBool(b, off)
	return out
}

// sanitizeFloat replaces NaN with 0 and +-Inf with +-math.MaxFloat32, per
// spec.md §7 InvalidOutput.
func sanitizeFloat(v float32) float32 {
	switch {
	case math.IsNaN(float64(v)):
		return 0
	case math.IsInf(float64(v), 1):
		return math.MaxFloat32
	case math.IsInf(float64(v), -1):
		return -math.MaxFloat32
	default:
		return v
	}
}

// EncodeSetup writes s's wire representation.
func EncodeSetup(s PlayerSetup) []byte {
	b := make([]byte, SetupSize)
	off := 0
	for _, v := range s.DecayRates {
		putF32(b, off, v)
		off += 4
	}
	return b
}

// DecodeSetup reverses EncodeSetup.
func DecodeSetup(b []byte) PlayerSetup {
	var s PlayerSetup
	off := 0
	for i := range s.DecayRates {
		s.DecayRates[i] = getF32(b, off)
		off += 4
	}
	return s
}
