package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/inertia/internal/dynamo"
	"github.com/san-kum/inertia/internal/sim"
)

// Keyframes is the playback form of a timeline: durations in seconds,
// values at full precision.
type Keyframes struct {
	Name     string             `json:"name"`
	Duration float64            `json:"duration"`
	Step     float64            `json:"step"`
	Done     bool               `json:"done"`
	Values   []float64          `json:"keyframes"`
	Times    []float64          `json:"times"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

func NewKeyframes(name string, tl *sim.Timeline) Keyframes {
	kf := Keyframes{
		Name:     name,
		Duration: tl.Seconds(),
		Done:     tl.Done,
		Values:   tl.Values,
		Times:    make([]float64, len(tl.Times)),
		Metrics:  tl.Metrics,
	}
	for i, t := range tl.Times {
		kf.Times[i] = dynamo.MsToSeconds(t)
	}
	if len(tl.Times) > 1 {
		kf.Step = dynamo.MsToSeconds(tl.Times[1] - tl.Times[0])
	}
	return kf
}

func WriteJSON(w io.Writer, name string, tl *sim.Timeline) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewKeyframes(name, tl))
}
