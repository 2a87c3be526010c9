package sim

// future is the result of one background step.
type future struct {
	done chan struct{}
	err  error
}

// BeginStep starts the next step in the background and returns immediately.
// If a step is already running it returns ErrStepInProgress and does nothing.
func (s *Simulation) BeginStep() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fut != nil {
		return ErrStepInProgress
	}
	f := &future{done: make(chan struct{})}
	s.fut = f

	go func() {
		defer close(f.done)
		f.err = s.step()
	}()
	return nil
}

// Poll reports whether the simulation is idle without blocking. When a
// running step has finished, Poll consumes its result and returns its error;
// from then on the step's results are visible. With no step started Poll
// returns true.
func (s *Simulation) Poll() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fut == nil {
		return true, nil
	}
	select {
	case <-s.fut.done:
		err := s.fut.err
		s.fut = nil
		return true, err
	default:
		return false, nil
	}
}

// Wait blocks until the running step, if any, has finished and returns its
// error.
func (s *Simulation) Wait() error {
	s.mu.Lock()
	f := s.fut
	s.mu.Unlock()

	if f == nil {
		return nil
	}
	<-f.done

	s.mu.Lock()
	if s.fut == f {
		s.fut = nil
	}
	s.mu.Unlock()
	return f.err
}

// IsStepping reports whether a step has been started and not yet consumed by
// Poll or Wait.
func (s *Simulation) IsStepping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fut != nil
}

// Step runs one step and blocks until it is done.
func (s *Simulation) Step() error {
	if err := s.BeginStep(); err != nil {
		return err
	}
	return s.Wait()
}
