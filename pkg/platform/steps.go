package platform

// Step is one sub-step of a multi-step publish.
type Step struct {
	Name string
	Do   func() error
}

// RunSteps executes steps in order, stopping at the first failure. The
// failure is returned as a *PublishStepError naming the step; earlier steps
// are not rolled back.
func RunSteps(p Platform, steps []Step) error {
	for _, s := range steps {
		if err := s.Do(); err != nil {
			return &PublishStepError{Platform: p, Step: s.Name, Err: err}
		}
	}
	return nil
}
