package text

import "fmt"

// UnresolvedVariableError is returned in Apply mode for a token without a value
type UnresolvedVariableError struct {
	Name string
}

func (e *UnresolvedVariableError) Error() string {
	return fmt.Sprintf("variable %s not found in config", e.Name)
}

// UnknownCaseError is returned in Apply mode for a token naming an unregistered case
type UnknownCaseError struct {
	Case      string
	Token     string
	Supported string
}

func (e *UnknownCaseError) Error() string {
	return fmt.Sprintf("case type %s not supported. Supported cases: %s", e.Case, e.Supported)
}
