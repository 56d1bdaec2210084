package vkframe

// Teardown destroys resources in the reverse order they were pushed. The idle
// barrier runs before the first destructor so nothing is freed while the GPU
// may still reference it.
type Teardown struct {
	steps []teardownStep
}

type teardownStep struct {
	name string
	fn   func()
}

// Push registers fn to destroy the resource called name.
func (t *Teardown) Push(name string, fn func()) {
	t.steps = append(t.steps, teardownStep{name: name, fn: fn})
}

func (t *Teardown) Len() int { return len(t.steps) }

// Run calls idle (if non-nil) and then every destructor, last pushed first.
// Destructors still run when idle fails; the idle error is returned.
func (t *Teardown) Run(idle func() error) error {
	if len(t.steps) == 0 {
		return nil
	}
	var err error
	if idle != nil {
		err = idle()
	}
	for i := len(t.steps) - 1; i >= 0; i-- {
		t.steps[i].fn()
	}
	t.steps = t.steps[:0]
	return err
}

// Names lists the registered steps in destruction order.
func (t *Teardown) Names() []string {
	names := make([]string, 0, len(t.steps))
	for i := len(t.steps) - 1; i >= 0; i-- {
		names = append(names, t.steps[i].name)
	}
	return names
}
