package condition

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/campaign/internal/game/state"
)

// ScriptCaller is the interface the evaluator uses to resolve script
// conditions. Satisfied by scripting.Manager.
type ScriptCaller interface {
	// CallHook invokes the named Lua global and returns its first return
	// value, or LNil when the hook is undefined or errors.
	CallHook(hook string, args ...lua.LValue) (lua.LValue, error)
}

// Evaluator resolves conditions against a state.View. Evaluation never
// returns an error: unknown or malformed variants fail closed to false and
// are reported through the logger.
type Evaluator struct {
	logger  *zap.Logger
	scripts ScriptCaller
}

// NewEvaluator creates an Evaluator. scripts may be nil, in which case every
// script condition fails closed.
//
// Precondition: logger must not be nil.
func NewEvaluator(logger *zap.Logger, scripts ScriptCaller) *Evaluator {
	return &Evaluator{logger: logger, scripts: scripts}
}

// Eval resolves a single condition against the view.
//
// Postcondition: Returns false for unknown or malformed variants, with a
// diagnostic logged; never panics or errors.
func (e *Evaluator) Eval(c Condition, view state.View) bool {
	if err := c.Validate(); err != nil {
		e.logger.Warn("condition failed closed",
			zap.String("condition", c.String()),
			zap.Error(err),
		)
		return false
	}

	switch c.Type {
	case TypeFlagSet:
		return view.Flag(c.Flag)
	case TypeFlagNot:
		return !view.Flag(c.Flag)
	case TypeHasItem:
		return view.ItemCount(c.Item) >= c.effectiveCount()
	case TypeQuestComplete:
		p, ok := view.Quest(c.Quest)
		return ok && p.Completed
	case TypeQuestAtStage:
		p, ok := view.Quest(c.Quest)
		return ok && !p.Completed && p.Stage == c.Stage
	case TypeMinLevel:
		return view.Level() >= c.Level
	case TypeMaxLevel:
		return view.Level() <= c.Level
	case TypeScript:
		return e.evalScript(c, view)
	default:
		// Unreachable: Validate rejects unknown types.
		return false
	}
}

// EvalAll reports whether every condition holds. An empty list is vacuously
// true, so ungated content is visible by default.
func (e *Evaluator) EvalAll(conds []Condition, view state.View) bool {
	for _, c := range conds {
		if !e.Eval(c, view) {
			return false
		}
	}
	return true
}

// evalScript calls the condition's Lua hook with the character level as its
// argument. Only an explicit true return passes; missing hooks, Lua errors,
// and non-boolean returns all fail closed.
func (e *Evaluator) evalScript(c Condition, view state.View) bool {
	if e.scripts == nil {
		e.logger.Warn("script condition failed closed: no script manager",
			zap.String("hook", c.Hook),
		)
		return false
	}
	val, err := e.scripts.CallHook(c.Hook, lua.LNumber(view.Level()))
	if err != nil {
		e.logger.Warn("script condition failed closed",
			zap.String("hook", c.Hook),
			zap.Error(err),
		)
		return false
	}
	return val == lua.LTrue
}
