package undo

// Checkpoint remembers the undo depth at the last save so a document can
// report whether it has unsaved edits.
type Checkpoint struct {
	depth int
}

// Mark records the current depth of s as clean.
func (c *Checkpoint) Mark(s *Stack) {
	c.depth = s.UndoDepth()
}

// Dirty reports whether s has moved away from the clean depth.
func (c *Checkpoint) Dirty(s *Stack) bool {
	return c.depth < 0 || s.UndoDepth() != c.depth
}

// Push runs s.PushAndExecute. When the push discards redo history that the
// clean state depends on, the clean depth can no longer be reached and the
// checkpoint stays dirty until the next Mark.
func (c *Checkpoint) Push(s *Stack, cmd Command) error {
	below := s.UndoDepth() < c.depth
	if err := s.PushAndExecute(cmd); err != nil {
		return err
	}
	if below {
		c.depth = -1
	}
	return nil
}
