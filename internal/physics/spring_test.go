package physics

import (
	"math"
	"testing"
)

func TestSpringRegimes(t *testing.T) {
	tests := []struct {
		name    string
		damping float64
		zeta    float64
	}{
		{"underdamped", 10, 10 / (2 * math.Sqrt(500))},
		{"critical", 2 * math.Sqrt(500), 1},
		{"overdamped", 100, 100 / (2 * math.Sqrt(500))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSpring(500, tt.damping, 1, 0, 100, 0, 0.5, 1)
			if math.Abs(s.DampingRatio()-tt.zeta) > 1e-12 {
				t.Errorf("damping ratio %v, want %v", s.DampingRatio(), tt.zeta)
			}

			rest := s.Duration()
			if rest <= 0 || math.IsInf(rest, 0) {
				t.Fatalf("expected finite positive rest time, got %v", rest)
			}

			// The envelope guarantees tolerance from the rest time onward.
			for ts := rest; ts < rest+2000; ts += 7 {
				pos, vel := s.state(ts)
				if math.Abs(pos-100) > 0.5+1e-9 || math.Abs(vel) > 1+1e-9 {
					t.Fatalf("t=%v: pos %v vel %v outside tolerance", ts, pos, vel)
				}
			}

			if s.AtRest(math.Nextafter(rest, 0)) {
				t.Error("should not be at rest before Duration")
			}
			if got := s.Next(rest); !got.Done || got.Value != 100 {
				t.Errorf("expected done at target, got %+v", got)
			}
		})
	}
}

func TestSpringMatchesAnalyticSolution(t *testing.T) {
	s := NewBounceSpring(0, 0, -200, 0.5, 1)
	w := math.Sqrt(BounceStiffness)
	z := s.DampingRatio()
	wd := w * math.Sqrt(1-z*z)

	for _, ms := range []float64{5, 50, 123.4, 600} {
		sec := ms / 1000
		want := -200 / wd * math.Exp(-z*w*sec) * math.Sin(wd*sec)
		pos, _ := s.state(ms)
		if math.Abs(pos-want) > 1e-9 {
			t.Errorf("t=%v: got %v, want %v", ms, pos, want)
		}
	}
}

func TestSpringBounceRestTime(t *testing.T) {
	s := NewBounceSpring(0, 0, -200, 0.5, 1)

	w := math.Sqrt(BounceStiffness)
	z := s.DampingRatio()
	wd := w * math.Sqrt(1-z*z)
	speedAmp := 200 * math.Sqrt(1+(z*w/wd)*(z*w/wd))
	expected := math.Log(speedAmp/1) / (z * w) * 1000

	if math.Abs(s.Duration()-expected) > 1e-6 {
		t.Errorf("expected rest time %v, got %v", expected, s.Duration())
	}
}

func TestSpringAtRestFromStart(t *testing.T) {
	s := NewSpring(500, 10, 1, 3, 3, 0, 0.5, 1)
	if s.Duration() != 0 {
		t.Errorf("spring at equilibrium should rest at 0, got %v", s.Duration())
	}
	if got := s.Next(0); got.Value != 3 || !got.Done {
		t.Errorf("unexpected sample %+v", got)
	}
}

func TestSpringSamplingIsOrderIndependent(t *testing.T) {
	s := NewBounceSpring(200, 200, 180, 0.5, 1)
	times := []float64{300, 10, 700, 10, 0, 300}

	first := make(map[float64]float64)
	for _, ts := range times {
		v := s.Next(ts).Value
		if prev, ok := first[ts]; ok && prev != v {
			t.Errorf("t=%v sampled %v then %v", ts, prev, v)
		}
		first[ts] = v
	}
}
