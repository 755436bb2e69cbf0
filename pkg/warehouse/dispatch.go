package warehouse

import (
	"context"
	"fmt"
	"reflect"
)

// cancelCheckInterval is how many tokens are dispatched between context checks.
const cancelCheckInterval = 1024

// Result is one collector's outcome.
type Result struct {
	Name      string
	Value     any
	Truncated bool

	// Err is a *CollectorError when the collector failed. A failed collector
	// has no Value.
	Err error

	Warnings []string
}

// Failed reports whether the collector failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Context is the dispatch state visible to collectors. It is only mutated by
// the dispatch loop.
type Context struct {
	wh      *Warehouse
	active  ContainerMask
	section SectionID
	token   TokenID
}

// Warehouse returns the warehouse being dispatched, for queries.
func (c *Context) Warehouse() *Warehouse { return c.wh }

// ActiveMask returns the containers enclosing the current token.
func (c *Context) ActiveMask() ContainerMask { return c.active }

// Inside reports whether the current token is inside container k.
func (c *Context) Inside(k Container) bool { return c.active.Has(k) }

// CurrentSection returns the section of the current token.
func (c *Context) CurrentSection() SectionID { return c.section }

// TokenID returns the id of the token being dispatched, or NoToken during
// finalize.
func (c *Context) TokenID() TokenID { return c.token }

// CollectAll runs every collector in reg over the warehouse in one traversal
// and finalizes them. A collector that panics or returns an error gets no
// further tokens and is not finalized; its failure is recorded on its Result
// and the other collectors are unaffected.
//
// The returned error is non-nil only when reg was already dispatched or ctx
// was cancelled.
func (w *Warehouse) CollectAll(ctx context.Context, reg *Registry) (map[string]Result, error) {
	entries, routes, err := reg.claim()
	if err != nil {
		return nil, err
	}

	dc := &Context{wh: w, section: 0, token: NoToken}
	var tracker MaskTracker
	nextSection := SectionID(1)

	for i := range w.tokens {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("dispatch cancelled: %w", err)
			}
		}

		id := TokenID(i)
		tok := &w.tokens[i]

		if int(nextSection) < len(w.sections) && w.sections[nextSection].HeadingID == id {
			dc.section = nextSection
			nextSection++
		}

		tracker.before(tok.kind)
		dc.active = tracker.Active()
		dc.token = id

		for _, e := range routes[tok.kind] {
			if e.failed || e.desc.IgnoreInside&dc.active != 0 {
				continue
			}
			if err := e.deliver(dc, tok); err != nil {
				e.fail(err)
			}
		}

		tracker.after(tok.kind)
	}

	dc.token = NoToken
	dc.active = tracker.Active()

	results := make(map[string]Result, len(entries))
	for _, e := range entries {
		if !e.failed {
			if err := e.finalize(dc); err != nil {
				e.fail(err)
			}
		}
		e.result.Name = e.desc.Name
		results[e.desc.Name] = e.result
	}

	return results, nil
}

func (e *entry) fail(err error) {
	e.failed = true
	e.result = Result{Err: err}
}

// deliver runs ShouldProcess and OnToken, converting panics into errors.
func (e *entry) deliver(dc *Context, tok *Token) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CollectorError{
				Collector: e.desc.Name,
				Phase:     PhaseToken,
				Token:     dc.token,
				Err:       fmt.Errorf("%w: %v", ErrCollectorPanic, r),
			}
		}
	}()

	if e.filter != nil && !e.filter.ShouldProcess(dc, tok) {
		return nil
	}
	if err := e.collector.OnToken(dc, tok); err != nil {
		return &CollectorError{Collector: e.desc.Name, Phase: PhaseToken, Token: dc.token, Err: err}
	}
	return nil
}

func (e *entry) finalize(dc *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CollectorError{
				Collector: e.desc.Name,
				Phase:     PhaseFinalize,
				Token:     NoToken,
				Err:       fmt.Errorf("%w: %v", ErrCollectorPanic, r),
			}
		}
	}()

	out, err := e.collector.Finalize(dc)
	if err != nil {
		return &CollectorError{Collector: e.desc.Name, Phase: PhaseFinalize, Token: NoToken, Err: err}
	}
	e.result = Result{Value: out.Value, Truncated: out.Truncated, Warnings: out.Warnings}
	if capped, ok := capItems(out.Value, e.desc.MaxItems); ok {
		e.result.Value = capped
		e.result.Truncated = true
	}
	return nil
}

// capItems cuts a slice value to limit items. It reports false when value is
// not a slice, is within the limit, or limit is 0.
func capItems(value any, limit int) (any, bool) {
	if limit <= 0 || value == nil {
		return value, false
	}
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Slice || v.Len() <= limit {
		return value, false
	}
	return v.Slice(0, limit).Interface(), true
}
