package pricing

import "fmt"

// Kind identifies the category of a pricing error.
type Kind string

const (
	// KindConfig marks a missing, non-finite or inconsistent configuration value.
	KindConfig Kind = "config"
	// KindScenario marks scenario inputs the engine cannot price.
	KindScenario Kind = "scenario"
	// KindMargin marks a margin that cannot be computed.
	KindMargin Kind = "margin"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrConfig           = &Error{Kind: KindConfig}
	ErrScenario         = &Error{Kind: KindScenario}
	ErrNonPositivePrice = &Error{Kind: KindMargin}
)

// Error is returned by the engine for every rejected input.
type Error struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("pricing %s error: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("pricing %s error: %s %s", e.Kind, e.Field, e.Message)
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Field == "" && t.Message == "" && t.Kind == e.Kind
}

func configError(field, format string, args ...any) error {
	return &Error{Kind: KindConfig, Field: field, Message: fmt.Sprintf(format, args...)}
}

func scenarioError(field, format string, args ...any) error {
	return &Error{Kind: KindScenario, Field: field, Message: fmt.Sprintf(format, args...)}
}
