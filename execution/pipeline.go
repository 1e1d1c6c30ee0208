package execution

import (
	"context"
	"fmt"
)

// Pipeline is the fixed chain of phases one operation runs through. The
// subject starts as the caller's typed input, becomes a request builder by
// the end of Serialize, a response by the end of Transmit, and the modeled
// output by the end of Deserialize. Finalize releases resources on both the
// success and failure paths.
//
// Middleware registration happens at client construction; Freeze locks the
// pipeline before the first operation.
type Pipeline struct {
	phases [PhaseFinalize + 1]Phase
	frozen bool
}

func NewPipeline() *Pipeline {
	p := &Pipeline{}
	for i := range p.phases {
		p.phases[i].id = PhaseID(i)
	}
	return p
}

// Intercept registers mw into the named phase. Panics once frozen: plugins
// install at construction, not at request time.
func (p *Pipeline) Intercept(id PhaseID, pos Position, mw Middleware) {
	if p.frozen {
		panic(fmt.Sprintf("pipeline is frozen; cannot intercept %s", id))
	}
	p.phases[id].Intercept(pos, mw)
}

// Freeze locks the pipeline against further registration.
func (p *Pipeline) Freeze() { p.frozen = true }

func (p *Pipeline) Frozen() bool { return p.frozen }

// Run threads subject through the phases [from, to] in order. Each phase's
// middleware chain runs to completion before the next phase starts; an
// error aborts immediately.
func (p *Pipeline) Run(ctx context.Context, ec *Context, subject interface{}, from, to PhaseID) (interface{}, error) {
	for id := from; id <= to; id++ {
		var err error
		subject, err = p.phases[id].run(ctx, ec, subject, identityTerminal)
		if err != nil {
			return subject, err
		}
		if err := ctx.Err(); err != nil {
			return subject, err
		}
	}
	return subject, nil
}

// RunPhase threads subject through one phase with a caller-supplied
// terminal. Serialize and Deserialize use this to place the generated
// codec at the bottom of the phase's chain.
func (p *Pipeline) RunPhase(ctx context.Context, ec *Context, subject interface{}, id PhaseID, terminal Handler) (interface{}, error) {
	if terminal == nil {
		terminal = identityTerminal
	}
	return p.phases[id].run(ctx, ec, subject, terminal)
}

// RunFinalize runs the Finalize phase on both paths. It never masks a
// propagating error: a finalizer failure is only surfaced when the
// operation was otherwise succeeding.
func (p *Pipeline) RunFinalize(ctx context.Context, ec *Context, subject interface{}, propagating error) error {
	_, err := p.phases[PhaseFinalize].run(ctx, ec, subject, identityTerminal)
	if propagating != nil {
		return propagating
	}
	return err
}
