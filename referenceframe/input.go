package referenceframe

import (
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
)

// Input is one joint value of a chain: an euler component in degrees for a rotational axis, or a
// translation for a prismatic one.
type Input struct {
	Value float64
}

// FloatsToInputs wraps raw joint values.
func FloatsToInputs(values []float64) []Input {
	return lo.Map(values, func(v float64, _ int) Input { return Input{Value: v} })
}

// InputsToFloats unwraps joint values.
func InputsToFloats(inputs []Input) []float64 {
	return lo.Map(inputs, func(in Input, _ int) float64 { return in.Value })
}

// InterpolateInputs blends linearly from `from` (by = 0) to `to` (by = 1).
func InterpolateInputs(from, to []Input, by float64) []Input {
	blended := InputsToFloats(from)
	floats.AddScaled(blended, by, floats.SubTo(make([]float64, len(to)), InputsToFloats(to), blended))
	return FloatsToInputs(blended)
}

// InputsL2Distance is the euclidean distance between two configurations, +Inf when their lengths
// differ.
func InputsL2Distance(from, to []Input) float64 {
	if len(from) != len(to) {
		return math.Inf(1)
	}
	return floats.Distance(InputsToFloats(from), InputsToFloats(to), 2)
}
