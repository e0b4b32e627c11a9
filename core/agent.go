package core

// Controller is a learning agent driven by the host: Initialize once when
// the agent enters a world, then Step once per simulation tick.
type Controller interface {
	Initialize(*InitContext) error
	Step(*StepContext) (Action, error)
}

// Saver flushes learned state on an explicit request.
type Saver interface {
	Save() error
}

type ControllerConstructor interface {
	// NewController creates the controller for the given spawn id.
	NewController(string) Controller
}
