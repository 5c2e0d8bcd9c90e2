package manager

import "errors"

// Sentinel errors for callers that branch on failure cause. Always test
// with errors.Is; returned errors carry wrapped context.
var (
	// ErrNoProject means an operation needing a loaded project ran
	// before LoadProject or CreateProject.
	ErrNoProject = errors.New("manager: no project loaded")

	// ErrValidation means an entity failed its schema checks and
	// nothing was written.
	ErrValidation = errors.New("manager: validation failed")

	// ErrExists means a create collided with an entity that is
	// already there.
	ErrExists = errors.New("manager: already exists")

	// ErrAuth means a credential check failed.
	ErrAuth = errors.New("manager: authentication failed")
)
