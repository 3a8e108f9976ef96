package metrics

import (
	"math"

	"github.com/san-kum/inertia/internal/dynamo"
)

// Travel is the total path length covered between samples.
type Travel struct {
	name    string
	sum     float64
	last    float64
	samples int
}

func NewTravel() *Travel {
	return &Travel{
		name: "travel",
	}
}

func (c *Travel) Name() string {
	return c.name
}

func (c *Travel) Observe(s dynamo.Sample, t float64) {
	if c.samples > 0 {
		c.sum += math.Abs(s.Value - c.last)
	}
	c.last = s.Value
	c.samples++
}

func (c *Travel) Value() float64 {
	return c.sum
}

func (c *Travel) Reset() {
	c.sum = 0
	c.last = 0
	c.samples = 0
}
