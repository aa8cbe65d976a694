package rules

import (
	"context"
	"fmt"
	"sync"

	"github.com/striemhq/striem/pkg/errs"
	"github.com/striemhq/striem/pkg/event"
	"github.com/striemhq/striem/pkg/metrics"
)

// Collection is the detection worker's view of the loaded rule set: match
// events against enabled rules, and let the management API inspect and
// mutate rules while the worker keeps running. Implementations must take
// only a shared lock for Match/Get/List and an exclusive lock for
// Add/Enable/Disable, and must never hold that lock across a channel or
// bus operation.
type Collection interface {
	Match(ctx context.Context, e *event.Event) ([]string, error)
	Get(id string) (Descriptor, bool)
	Add(r Rule) error
	Enable(id string) error
	Disable(id string) error
	List() []Summary
}

type entry struct {
	rule    Rule
	enabled bool
}

// memCollection is an in-memory Collection guarded by a single RWMutex —
// matching this project's upstream RwLock<SigmaCollection>, minus the
// on-disk persistence the management API layers on top via Rule.Raw.
type memCollection struct {
	mu    sync.RWMutex
	rules map[string]*entry
}

// NewMemCollection returns an empty, ready-to-use Collection.
func NewMemCollection() Collection {
	return &memCollection{rules: make(map[string]*entry)}
}

func (c *memCollection) Match(ctx context.Context, e *event.Event) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, ok := e.Data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: event data is not a JSON object", errs.ErrMatchFailed)
	}
	filter := FilterFromLogsource(e.Metadata["logsource"])

	c.mu.RLock()
	defer c.mu.RUnlock()

	var matched []string
	for id, en := range c.rules {
		if !en.enabled {
			continue
		}
		if !en.rule.LogSource.Matches(filter) {
			continue
		}
		ok, err := evaluate(en.rule.Detection, data)
		if err != nil {
			continue
		}
		if ok {
			matched = append(matched, id)
		}
	}
	return matched, nil
}

func (c *memCollection) Get(id string) (Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	en, ok := c.rules[id]
	if !ok {
		return Descriptor{}, false
	}
	return Descriptor{Rule: en.rule, Enabled: en.enabled}, true
}

func (c *memCollection) Add(r Rule) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.rules[r.ID]; exists {
		return fmt.Errorf("rules: rule with id %q already exists", r.ID)
	}
	c.rules[r.ID] = &entry{rule: r, enabled: true}
	c.reportLoaded()
	return nil
}

func (c *memCollection) Enable(id string) error  { return c.setEnabled(id, true) }
func (c *memCollection) Disable(id string) error { return c.setEnabled(id, false) }

func (c *memCollection) setEnabled(id string, enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	en, ok := c.rules[id]
	if !ok {
		return fmt.Errorf("rules: rule with id %q not found", id)
	}
	en.enabled = enabled
	c.reportLoaded()
	return nil
}

// reportLoaded updates the loaded-rules gauge. Callers must already hold
// c.mu, and the metrics write itself never blocks on a bus operation.
func (c *memCollection) reportLoaded() {
	count := 0
	for _, en := range c.rules {
		if en.enabled {
			count++
		}
	}
	metrics.RulesLoaded.Set(float64(count))
}

func (c *memCollection) List() []Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Summary, 0, len(c.rules))
	for _, en := range c.rules {
		out = append(out, Summary{
			ID:          en.rule.ID,
			Title:       en.rule.Title,
			Description: en.rule.Description,
			Enabled:     en.enabled,
			Level:       en.rule.Level,
			LogSource:   en.rule.LogSource,
		})
	}
	return out
}
