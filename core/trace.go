package core

import "sync"

// Step is one learning transition recorded by a controller.
type Step struct {
	Tick      int
	Agent     string
	State     State
	Action    Action
	Reward    float64
	NextState State

	Misc map[string]interface{}
}

type Trace struct {
	mtx   *sync.Mutex
	steps []*Step
	err   error
}

func NewTrace() *Trace {
	return &Trace{
		steps: make([]*Step, 0),
		mtx:   &sync.Mutex{},
	}
}

func (t *Trace) AddStep(s *Step) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.steps = append(t.steps, s)
}

func (t *Trace) Step(i int) *Step {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.steps[i]
}

func (t *Trace) Len() int {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return len(t.steps)
}

func (t *Trace) Last() *Step {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if len(t.steps) == 0 {
		return nil
	}
	return t.steps[len(t.steps)-1]
}

// AgentSteps returns the steps recorded by one agent, in order.
func (t *Trace) AgentSteps(agent string) []*Step {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	out := make([]*Step, 0)
	for _, s := range t.steps {
		if s.Agent == agent {
			out = append(out, s)
		}
	}
	return out
}

func (t *Trace) SetError(err error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.err = err
}

func (t *Trace) Error() error {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.err
}
