package runtime

import (
	"math"

	"github.com/veladahq/velada/pkg/domain"
)

// Controller computes navigation over an ordered section list from the
// point of view of one current section. It is a pure value: transitions
// return target sections, and the engine decides what to persist.
//
// An unknown current section puts the controller in an inert state: every
// transition is a no-op and progress is zeroed. Navigation UI degrades
// gracefully instead of crashing the flow.
type Controller struct {
	sections []domain.Section
	index    int
}

// NewController builds a controller positioned at currentSectionID.
func NewController(sections []domain.Section, currentSectionID string) *Controller {
	index := -1
	for i, s := range sections {
		if s.ID == currentSectionID {
			index = i
			break
		}
	}
	return &Controller{sections: sections, index: index}
}

// Found reports whether the current section exists in the list.
func (c *Controller) Found() bool { return c.index >= 0 }

// Current returns the active section.
func (c *Controller) Current() (domain.Section, bool) {
	if !c.Found() {
		return domain.Section{}, false
	}
	return c.sections[c.index], true
}

// IsFirst reports whether the active section is the first one.
func (c *Controller) IsFirst() bool { return c.index == 0 }

// IsLast reports whether the active section is the last one.
func (c *Controller) IsLast() bool {
	return c.Found() && c.index == len(c.sections)-1
}

// Next returns the following section. The second return is false at the
// last section and in the inert state: advancing is then a no-op.
func (c *Controller) Next() (domain.Section, bool) {
	if !c.Found() || c.IsLast() {
		return domain.Section{}, false
	}
	return c.sections[c.index+1], true
}

// Previous returns the preceding section, a no-op on the first section.
func (c *Controller) Previous() (domain.Section, bool) {
	if !c.Found() || c.IsFirst() {
		return domain.Section{}, false
	}
	return c.sections[c.index-1], true
}

// Progress reports position as both indices and a rounded percentage.
func (c *Controller) Progress() domain.Progress {
	if !c.Found() {
		return domain.Progress{}
	}
	current := c.index + 1
	total := len(c.sections)
	return domain.Progress{
		Current:    current,
		Total:      total,
		Percentage: int(math.Round(float64(current) / float64(total) * 100)),
	}
}

// CanJump reports whether a non-sequential jump to targetID is allowed:
// the target must be the current section, an earlier one, or already
// marked complete.
func (c *Controller) CanJump(targetID string, completed domain.CompletionMap) bool {
	if !c.Found() {
		return false
	}
	for i, s := range c.sections {
		if s.ID == targetID {
			return i <= c.index || completed[targetID]
		}
	}
	return false
}
