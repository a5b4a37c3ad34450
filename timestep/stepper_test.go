package timestep_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rayge/engine/timestep"
)

func collect(s *timestep.Stepper) []timestep.Step {
	var steps []timestep.Step
	for st := range s.Steps() {
		steps = append(steps, st)
	}
	return steps
}

func TestStepper_FixedPeriod(t *testing.T) {
	assert := assert.New(t)
	ms := time.Millisecond

	s := timestep.New(10 * ms)
	s.Add(35 * ms)

	assert.Equal([]timestep.Step{
		{Now: 0, Delta: 10 * ms},
		{Now: 10 * ms, Delta: 10 * ms},
		{Now: 20 * ms, Delta: 10 * ms},
	}, collect(s))
	assert.Equal(5*ms, s.Pending())

	s.Add(6 * ms)
	assert.Equal([]timestep.Step{{Now: 30 * ms, Delta: 10 * ms}}, collect(s))
	assert.Equal(1*ms, s.Pending())
	assert.Equal(40*ms, s.Processed())
}

func TestStepper_NothingBelowPeriod(t *testing.T) {
	assert := assert.New(t)

	s := timestep.New(16 * time.Millisecond)
	s.Add(15 * time.Millisecond)
	s.Add(-time.Second)

	_, ok := s.Next()
	assert.False(ok)
	assert.Empty(collect(s))
	assert.Equal(15*time.Millisecond, s.Pending())
}

func TestStepper_VariableStep(t *testing.T) {
	assert := assert.New(t)
	ms := time.Millisecond

	s := timestep.New(5*ms, timestep.WithStep(100*ms))
	s.Add(37 * ms)

	assert.Equal([]timestep.Step{{Now: 0, Delta: 37 * ms}}, collect(s))
	assert.Zero(s.Pending())
}

func TestStepper_MaxStepsKeepsBacklog(t *testing.T) {
	assert := assert.New(t)
	ms := time.Millisecond

	s := timestep.New(10*ms, timestep.WithMaxSteps(2))
	s.Add(50 * ms)

	assert.Len(collect(s), 2)
	assert.Equal(30*ms, s.Pending())
	assert.Len(collect(s), 2)
	assert.Len(collect(s), 1)
	assert.Empty(collect(s))
	assert.Equal(50*ms, s.Processed())
}

func TestStepper_BreakKeepsRemainder(t *testing.T) {
	assert := assert.New(t)

	s := timestep.New(time.Millisecond)
	s.Add(10 * time.Millisecond)
	for range s.Steps() {
		break
	}
	assert.Equal(9*time.Millisecond, s.Pending())
}

func TestFromFrequency(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(10*time.Millisecond, timestep.FromFrequency(100))
	assert.Equal(time.Second, timestep.FromFrequency(1))
	assert.Zero(timestep.FromFrequency(0))
}

func TestNew_PanicsOnZeroPeriod(t *testing.T) {
	assert.Panics(t, func() { timestep.New(0) })
}
