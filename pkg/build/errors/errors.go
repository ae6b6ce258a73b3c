package errors

import "fmt"

// ErrorIsDirectory is a builder directory input type string error.
type ErrorIsDirectory struct {
	Input string
}

func (e *ErrorIsDirectory) Error() string {
	return fmt.Sprintf("directory: %s", e.Input)
}

// CommandOutOfScopeError is a build context error.
type CommandOutOfScopeError struct {
	Command interface{}
}

func (e *CommandOutOfScopeError) Error() string {
	return fmt.Sprintf("command out of scope: %v", e.Command)
}

// UnsupportedStageLayoutError is returned when the recipe stage layout
// does not match what the linear build pipeline supports.
type UnsupportedStageLayoutError struct {
	Unnamed int
	Named   int
}

func (e *UnsupportedStageLayoutError) Error() string {
	return fmt.Sprintf("recipe must contain exactly one unnamed stage, found %d unnamed and %d named", e.Unnamed, e.Named)
}
