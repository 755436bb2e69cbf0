package mdast

import "errors"

// ErrSkipChildren can be returned from a WalkFunc to skip a token's children.
var ErrSkipChildren = errors.New("skip children")

// WalkFunc is the function signature for Walk callbacks.
// depth is 0 for top-level tokens and grows by one per Children level.
// Return a non-nil error to stop the walk.
type WalkFunc func(t *Token, depth int) error

type walkFrame struct {
	tokens []*Token
	next   int
	depth  int
}

// Walk performs a pre-order traversal over a token sequence and all inline
// children. It keeps an explicit stack, so arbitrarily deep Children nesting
// cannot overflow the goroutine stack.
func Walk(tokens []*Token, walkFunc WalkFunc) error {
	stack := []walkFrame{{tokens: tokens}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.tokens) {
			stack = stack[:len(stack)-1]
			continue
		}

		tok := top.tokens[top.next]
		top.next++
		depth := top.depth
		if tok == nil {
			continue
		}

		if err := walkFunc(tok, depth); err != nil {
			if errors.Is(err, ErrSkipChildren) {
				continue
			}
			return err
		}

		if len(tok.Children) > 0 {
			stack = append(stack, walkFrame{tokens: tok.Children, depth: depth + 1})
		}
	}

	return nil
}

// FindAll returns all tokens of the given type in pre-order.
func FindAll(tokens []*Token, typ string) []*Token {
	var out []*Token
	_ = Walk(tokens, func(t *Token, _ int) error {
		if t.Type == typ {
			out = append(out, t)
		}
		return nil
	})
	return out
}

// Count returns the total number of tokens, children included.
func Count(tokens []*Token) int {
	n := 0
	_ = Walk(tokens, func(*Token, int) error {
		n++
		return nil
	})
	return n
}

// MaxDepth returns the deepest Children nesting level (0 when no token has
// children).
func MaxDepth(tokens []*Token) int {
	deepest := 0
	_ = Walk(tokens, func(_ *Token, depth int) error {
		if depth > deepest {
			deepest = depth
		}
		return nil
	})
	return deepest
}
