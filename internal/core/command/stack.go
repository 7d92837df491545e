package command

import (
	"github.com/gammazero/deque"
	"go.uber.org/zap"
)

// Stack is the undo/redo history: an ordered list of commands with a single
// cursor separating done from undone. Commands at indices [0, top] have been
// executed and not reverted; everything past top is disposable and gets
// finalized away the next time a command is pushed.
//
// Storage is a deque because the capacity limit trims oldest entries from
// the front while pushes and truncation work at the back.
type Stack[Ctx any] struct {
	commands deque.Deque[Command[Ctx]]
	// top is the index of the last executed command, -1 when nothing is
	// executed.
	top         int
	maxCapacity int
	log         *zap.Logger
}

// NewStack creates an empty stack. maxCapacity limits retained history
// (oldest entries are finalized and dropped past it); 0 means unlimited.
// Pass zap.NewNop() to silence per-command debug logging.
func NewStack[Ctx any](maxCapacity int, log *zap.Logger) *Stack[Ctx] {
	return &Stack[Ctx]{top: -1, maxCapacity: maxCapacity, log: log}
}

// Do finalizes and drops every command past the cursor, enforces the
// capacity limit, executes cmd and appends it as the new top.
func (s *Stack[Ctx]) Do(cmd Command[Ctx], ctx Ctx) {
	s.truncate(ctx)

	if s.maxCapacity > 0 {
		for s.commands.Len() >= s.maxCapacity {
			dropped := s.commands.PopFront()
			s.log.Debug("finalizing command over capacity", zap.String("command", dropped.Name(ctx)))
			dropped.Finalize(ctx)
			s.top--
		}
	}

	s.log.Debug("executing command", zap.String("command", cmd.Name(ctx)))
	cmd.Execute(ctx)
	s.commands.PushBack(cmd)
	s.top = s.commands.Len() - 1
}

// truncate finalizes commands past the cursor front-to-back, then drops them.
func (s *Stack[Ctx]) truncate(ctx Ctx) {
	for i := s.top + 1; i < s.commands.Len(); i++ {
		cmd := s.commands.At(i)
		s.log.Debug("finalizing command", zap.String("command", cmd.Name(ctx)))
		cmd.Finalize(ctx)
	}
	for s.commands.Len() > s.top+1 {
		s.commands.PopBack()
	}
}

// Undo reverts the command at the cursor and moves the cursor back.
// A no-op when there is nothing to undo.
func (s *Stack[Ctx]) Undo(ctx Ctx) {
	if s.top < 0 {
		return
	}
	cmd := s.commands.At(s.top)
	s.log.Debug("undo command", zap.String("command", cmd.Name(ctx)))
	cmd.Revert(ctx)
	s.top--
}

// Redo re-executes the command just past the cursor and advances it.
// A no-op when there is nothing to redo.
func (s *Stack[Ctx]) Redo(ctx Ctx) {
	if s.top >= s.commands.Len()-1 {
		return
	}
	s.top++
	cmd := s.commands.At(s.top)
	s.log.Debug("redo command", zap.String("command", cmd.Name(ctx)))
	cmd.Execute(ctx)
}

// Clear finalizes every command front-to-back and empties the stack.
func (s *Stack[Ctx]) Clear(ctx Ctx) {
	for i := 0; i < s.commands.Len(); i++ {
		cmd := s.commands.At(i)
		s.log.Debug("finalizing command", zap.String("command", cmd.Name(ctx)))
		cmd.Finalize(ctx)
	}
	s.commands.Clear()
	s.top = -1
}

// Top returns the cursor index, -1 when nothing is executed.
func (s *Stack[Ctx]) Top() int { return s.top }

func (s *Stack[Ctx]) Len() int { return s.commands.Len() }

func (s *Stack[Ctx]) CanUndo() bool { return s.top >= 0 }

func (s *Stack[Ctx]) CanRedo() bool { return s.top < s.commands.Len()-1 }

// TopCommandName returns the name of the command at the cursor, or "" when
// there is none. Used for "Undo <name>" menu labels.
func (s *Stack[Ctx]) TopCommandName(ctx Ctx) string {
	if s.top < 0 {
		return ""
	}
	return s.commands.At(s.top).Name(ctx)
}

// CommandNames lists every retained command's name in push order.
func (s *Stack[Ctx]) CommandNames(ctx Ctx) []string {
	names := make([]string, 0, s.commands.Len())
	for i := 0; i < s.commands.Len(); i++ {
		names = append(names, s.commands.At(i).Name(ctx))
	}
	return names
}
