package action

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/campaign/internal/game/quest"
	"github.com/cory-johannsen/campaign/internal/game/state"
)

// ErrInvalidTarget is returned when an action references a quest, item, or
// shop ID that does not resolve.
var ErrInvalidTarget = errors.New("invalid action target")

// ItemCatalog answers whether an item definition exists. Satisfied by
// item.Registry.
type ItemCatalog interface {
	Has(itemID string) bool
}

// Failure records one action that could not be applied within a list.
type Failure struct {
	// Index is the action's position in the applied list.
	Index  int
	Action Action
	Err    error
}

// Result aggregates the outcome of applying an action list. Failures are
// recorded individually; actions after a failed one still run.
type Result struct {
	Applied  int
	Failures []Failure
}

// Failed reports whether any action in the list failed.
func (r Result) Failed() bool { return len(r.Failures) > 0 }

// Dispatcher applies actions to a game-state handle. Actions that double as
// objective triggers (flag sets, item grants) are forwarded to the quest
// tracker so progress advances without a separate notification path.
type Dispatcher struct {
	tracker *quest.Tracker
	items   ItemCatalog
	logger  *zap.Logger
}

// NewDispatcher creates a Dispatcher. items may be nil, in which case item
// references are not checked against a catalog and every item ID resolves.
//
// Precondition: tracker and logger must not be nil.
func NewDispatcher(tracker *quest.Tracker, items ItemCatalog, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{tracker: tracker, items: items, logger: logger}
}

// Apply applies a single action to the handle. Application is idempotent
// where the variant's semantics allow: starting an already-active quest is a
// no-op, and setting an already-set flag changes nothing.
//
// Postcondition: Returns nil on success, or an error wrapping
// ErrInvalidTarget when the action references a nonexistent quest, item, or
// shop. The handle is unchanged on error.
func (d *Dispatcher) Apply(a Action, h state.Handle) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}

	switch a.Type {
	case TypeStartQuest:
		if err := d.tracker.Start(h, a.Quest); err != nil {
			return fmt.Errorf("%w: quest %d", ErrInvalidTarget, a.Quest)
		}
		return nil

	case TypeSetFlag:
		h.SetFlag(a.Flag, true)
		d.tracker.Record(h, quest.Event{Kind: quest.EventFlag, Flag: a.Flag})
		return nil

	case TypeClearFlag:
		h.SetFlag(a.Flag, false)
		return nil

	case TypeGiveItem:
		if d.items != nil && !d.items.Has(a.Item) {
			return fmt.Errorf("%w: item %q", ErrInvalidTarget, a.Item)
		}
		n := a.effectiveCount()
		h.AddItem(a.Item, n)
		d.tracker.Record(h, quest.Event{Kind: quest.EventCollect, Item: a.Item, Count: n})
		return nil

	case TypeTakeItem:
		if d.items != nil && !d.items.Has(a.Item) {
			return fmt.Errorf("%w: item %q", ErrInvalidTarget, a.Item)
		}
		h.AddItem(a.Item, -a.effectiveCount())
		return nil

	case TypeOpenShop:
		if err := h.OpenShop(a.Shop); err != nil {
			return fmt.Errorf("%w: shop %q: %v", ErrInvalidTarget, a.Shop, err)
		}
		return nil

	case TypeGiveCurrency:
		h.AddCurrency(a.Amount)
		return nil

	default:
		// Unreachable: Validate rejects unknown types.
		return fmt.Errorf("%w: %q", ErrInvalidTarget, a.Type)
	}
}

// ApplyAll applies actions in declaration order, best-effort: a failure is
// recorded and logged, and the remaining actions still run. Dialogue flow is
// never blocked by a broken action reference.
//
// Postcondition: Result.Applied counts successes; Result.Failures holds one
// entry per failed action, in order.
func (d *Dispatcher) ApplyAll(actions []Action, h state.Handle) Result {
	var res Result
	for i, a := range actions {
		if err := d.Apply(a, h); err != nil {
			d.logger.Warn("action failed",
				zap.Int("index", i),
				zap.String("action", a.String()),
				zap.Error(err),
			)
			res.Failures = append(res.Failures, Failure{Index: i, Action: a, Err: err})
			continue
		}
		res.Applied++
	}
	return res
}
