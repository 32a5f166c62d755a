// Package undo keeps the undo/redo history of reversible edits.
//
// Commands are executed through a Stack. A command that fails to execute,
// undo or redo leaves the stack exactly as it was and the error is returned
// to the caller; the stack never drops or duplicates a command.
package undo

// Command is a reversible mutation. Execute is also used for redo.
type Command interface {
	Execute() error
	Undo() error
	Describe() string
}

// Stack holds the undo and redo histories.
type Stack struct {
	undo      []Command
	redo      []Command
	observers []func()
}

// NewStack returns an empty stack.
func NewStack() *Stack {
	return &Stack{}
}

// OnChange registers fn to run after every successful push, undo, redo or
// clear.
func (s *Stack) OnChange(fn func()) {
	s.observers = append(s.observers, fn)
}

func (s *Stack) changed() {
	for _, fn := range s.observers {
		fn()
	}
}

// PushAndExecute executes cmd and records it. New edits invalidate the redo
// history.
func (s *Stack) PushAndExecute(cmd Command) error {
	if err := cmd.Execute(); err != nil {
		return err
	}
	s.undo = append(s.undo, cmd)
	clear(s.redo)
	s.redo = s.redo[:0]
	s.changed()
	return nil
}

// Undo reverts the most recent command. It is a no-op on an empty history.
func (s *Stack) Undo() error {
	cmd, ok := pop(&s.undo)
	if !ok {
		return nil
	}
	if err := cmd.Undo(); err != nil {
		s.undo = append(s.undo, cmd)
		return err
	}
	s.redo = append(s.redo, cmd)
	s.changed()
	return nil
}

// Redo re-executes the most recently undone command.
func (s *Stack) Redo() error {
	cmd, ok := pop(&s.redo)
	if !ok {
		return nil
	}
	if err := cmd.Execute(); err != nil {
		s.redo = append(s.redo, cmd)
		return err
	}
	s.undo = append(s.undo, cmd)
	s.changed()
	return nil
}

// Clear drops both histories.
func (s *Stack) Clear() {
	s.undo = nil
	s.redo = nil
	s.changed()
}

func pop(stack *[]Command) (Command, bool) {
	n := len(*stack)
	if n == 0 {
		return nil, false
	}
	cmd := (*stack)[n-1]
	(*stack)[n-1] = nil
	*stack = (*stack)[:n-1]
	return cmd, true
}

// UndoDepth is the number of commands that can be undone.
func (s *Stack) UndoDepth() int { return len(s.undo) }

// RedoDepth is the number of commands that can be redone.
func (s *Stack) RedoDepth() int { return len(s.redo) }

func (s *Stack) CanUndo() bool { return len(s.undo) > 0 }
func (s *Stack) CanRedo() bool { return len(s.redo) > 0 }

// History returns the descriptions of the undoable commands, oldest first.
func (s *Stack) History() []string {
	out := make([]string, len(s.undo))
	for i, cmd := range s.undo {
		out[i] = cmd.Describe()
	}
	return out
}

// NextUndo describes the command Undo would revert, or "".
func (s *Stack) NextUndo() string {
	if len(s.undo) == 0 {
		return ""
	}
	return s.undo[len(s.undo)-1].Describe()
}

// NextRedo describes the command Redo would apply, or "".
func (s *Stack) NextRedo() string {
	if len(s.redo) == 0 {
		return ""
	}
	return s.redo[len(s.redo)-1].Describe()
}
