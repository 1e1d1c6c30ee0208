package execution

import (
	"context"
	"fmt"
)

// PhaseID names the fixed pipeline positions, in execution order.
type PhaseID int

const (
	PhaseInitialize PhaseID = iota
	PhaseSerialize
	PhaseMutate
	PhaseSign
	PhaseTransmit
	PhaseDeserialize
	PhaseFinalize
)

func (p PhaseID) String() string {
	switch p {
	case PhaseInitialize:
		return "Initialize"
	case PhaseSerialize:
		return "Serialize"
	case PhaseMutate:
		return "Mutate"
	case PhaseSign:
		return "Sign"
	case PhaseTransmit:
		return "Transmit"
	case PhaseDeserialize:
		return "Deserialize"
	case PhaseFinalize:
		return "Finalize"
	}
	return fmt.Sprintf("PhaseID(%d)", int(p))
}

// Phase holds an ordered middleware list. The order across phases is fixed;
// within a phase, Intercept(Before) prepends and Intercept(After) appends.
type Phase struct {
	id  PhaseID
	mws []Middleware
}

func (p *Phase) ID() PhaseID { return p.id }

func (p *Phase) Intercept(pos Position, mw Middleware) {
	if pos == Before {
		p.mws = append([]Middleware{mw}, p.mws...)
		return
	}
	p.mws = append(p.mws, mw)
}

// run composes the phase's middleware over terminal and invokes the chain
// on subject.
func (p *Phase) run(ctx context.Context, ec *Context, subject interface{}, terminal Handler) (interface{}, error) {
	h := terminal
	for i := len(p.mws) - 1; i >= 0; i-- {
		mw := p.mws[i]
		downstream := h
		h = func(ctx context.Context, subject interface{}) (interface{}, error) {
			return mw.Handle(ctx, ec, subject, downstream)
		}
	}
	return h(ctx, subject)
}

// identityTerminal passes the subject through unchanged; it ends phases
// that only transform the subject on the way in.
func identityTerminal(_ context.Context, subject interface{}) (interface{}, error) {
	return subject, nil
}
