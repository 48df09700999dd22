package printers

// Child is one (name, value) pair produced by a printer. Value is a
// host.Value, int64, bool, host.Address or string.
type Child struct {
	Name  string
	Value any
}

// Children is a lazy, finite, non-restartable sequence of children. Each
// step runs at most once, on demand; a step reporting false is skipped.
// Once drained, Next keeps returning false.
type Children struct {
	steps []func() (Child, bool)
	next  int
}

func newChildren(steps ...func() (Child, bool)) *Children {
	return &Children{steps: steps}
}

// NoChildren returns an already drained sequence.
func NoChildren() *Children {
	return &Children{}
}

// Next produces the next child.
func (c *Children) Next() (Child, bool) {
	if c == nil {
		return Child{}, false
	}
	for c.next < len(c.steps) {
		step := c.steps[c.next]
		c.steps[c.next] = nil
		c.next++
		if child, ok := step(); ok {
			return child, true
		}
	}
	c.steps = nil
	c.next = 0
	return Child{}, false
}

// Drain consumes the rest of the sequence.
func (c *Children) Drain() []Child {
	var out []Child
	for {
		child, ok := c.Next()
		if !ok {
			return out
		}
		out = append(out, child)
	}
}
