package metrics

import (
	"math"

	"github.com/merement/Dice/internal/dynamo"
)

// Activity is the mean rate norm per step. It falls towards zero as the
// state settles on a fixed point.
type Activity struct {
	name    string
	sum     float64
	last    float64
	samples int
}

func NewActivity() *Activity {
	return &Activity{
		name: "activity",
	}
}

func (a *Activity) Name() string {
	return a.name
}

func (a *Activity) OnStep(_ int, _ dynamo.State, gradSq float64) {
	a.last = math.Sqrt(gradSq)
	a.sum += a.last
	a.samples++
}

func (a *Activity) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.sum / float64(a.samples)
}

// Last is the rate norm of the most recent step.
func (a *Activity) Last() float64 { return a.last }

func (a *Activity) Reset() {
	a.sum = 0
	a.last = 0
	a.samples = 0
}
