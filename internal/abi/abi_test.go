package abi

import (
	"math"
	"testing"
)

func TestAntInputRoundTrip(t *testing.T) {
	in := AntInput{
		IsCarryingFood: true,
		IsOnFood:       true,
		WallSense:      DirectionalSense{Angle: 0.5, Distance: -1.0},
		Longevity:      123.5,
		IsFighting:     true,
	}
	in.PheromoneSenses[3] = PheromoneSense{Angle: 0.1, Strength: 42}
	in.CellSense[7] = 9.5

	got := DecodeAntInput(EncodeAntInput(in))
	if got != in {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, in)
	}
}

func TestAntOutputRoundTrip(t *testing.T) {
	out := AntOutput{TurnAngle: -0.2, TryAttack: true}
	out.PheromoneAmounts[2] = 88.0

	got := DecodeAntOutput(EncodeAntOutput(out))
	if got != out {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, out)
	}
}

func TestAntOutputSanitizesNaNAndInf(t *testing.T) {
	out := AntOutput{TurnAngle: float32(math.NaN())}
	out.PheromoneAmounts[0] = float32(math.Inf(1))
	out.PheromoneAmounts[1] = float32(math.Inf(-1))

	got := DecodeAntOutput(EncodeAntOutput(out))
	if got.TurnAngle != 0 {
		t.Fatalf("NaN turn angle not sanitized to 0: %v", got.TurnAngle)
	}
	if got.PheromoneAmounts[0] != math.MaxFloat32 {
		t.Fatalf("+Inf not sanitized to +MAX: %v", got.PheromoneAmounts[0])
	}
	if got.PheromoneAmounts[1] != -math.MaxFloat32 {
		t.Fatalf("-Inf not sanitized to -MAX: %v", got.PheromoneAmounts[1])
	}
}

func TestSetupRoundTrip(t *testing.T) {
	s := PlayerSetup{DecayRates: [8]float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}}
	got := DecodeSetup(EncodeSetup(s))
	if got != s {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, s)
	}
}

func TestWireSizesMatchConstants(t *testing.T) {
	if n := len(EncodeAntInput(AntInput{})); n != AntInputSize {
		t.Fatalf("AntInput encoded size = %d, want %d", n, AntInputSize)
	}
	if n := len(EncodeAntOutput(AntOutput{})); n != AntOutputSize {
		t.Fatalf("AntOutput encoded size = %d, want %d", n, AntOutputSize)
	}
	if n := len(EncodeSetup(PlayerSetup{})); n != SetupSize {
		t.Fatalf("PlayerSetup encoded size = %d, want %d", n, SetupSize)
	}
}
