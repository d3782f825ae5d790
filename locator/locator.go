// Package locator identifies elements in the live document.
//
// A Locator is a strategy plus an expression. The strategy is fixed when the
// Locator is built and is never guessed from the shape of the expression.
package locator

import "fmt"

type Strategy int

const (
	// ByPath resolves a structural XPath expression.
	ByPath Strategy = iota + 1
	// ByProperty resolves a CSS selector matching on element properties.
	ByProperty
)

func (s Strategy) String() string {
	switch s {
	case ByPath:
		return "xpath"
	case ByProperty:
		return "css"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Locator is comparable, so it can key lookup tables such as a page's
// input -> error mapping.
type Locator struct {
	strategy Strategy
	expr     string
}

// Path returns a Locator resolving an XPath expression.
func Path(expr string) Locator {
	return Locator{strategy: ByPath, expr: expr}
}

// CSS returns a Locator resolving a CSS selector.
func CSS(selector string) Locator {
	return Locator{strategy: ByProperty, expr: selector}
}

// ID is shorthand for the CSS selector matching an element id.
func ID(id string) Locator {
	return CSS("#" + id)
}

func (l Locator) Strategy() Strategy { return l.strategy }

func (l Locator) Expression() string { return l.expr }

// IsZero reports whether l was never built.
func (l Locator) IsZero() bool { return l.strategy == 0 && l.expr == "" }

func (l Locator) String() string {
	return l.strategy.String() + "=" + l.expr
}
