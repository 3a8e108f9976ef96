package sim

import (
	"iter"

	"github.com/san-kum/inertia/internal/dynamo"
)

// Sequence lazily yields (t, value) on the same grid Pregenerate uses.
// Each range over the result starts again from t=0.
func Sequence(model dynamo.Model, cfg Config) iter.Seq2[float64, float64] {
	return func(yield func(float64, float64) bool) {
		if validateConfig(cfg) != nil {
			return
		}
		for i := 0; ; i++ {
			t := float64(i) * cfg.Step
			s := model.Next(t)
			if !yield(t, s.Value) {
				return
			}
			if (i > 0 && s.Done) || t >= cfg.MaxDuration {
				return
			}
		}
	}
}
