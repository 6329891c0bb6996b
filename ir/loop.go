package ir

import (
	"strings"

	"github.com/bnikolic/swift-t/backend"
	"github.com/bnikolic/swift-t/config"
	"github.com/bnikolic/swift-t/diag"
	"github.com/bnikolic/swift-t/types"
)

// LoopContinue restarts a foreach/while body with new loop variable values.
// Each new value is paired with a flag marking whether the next iteration
// must block on it before proceeding.
type LoopContinue struct {
	base
	NewLoopVars  []*types.Var
	LoopUsedVars []*types.Var
	BlockingVars []bool
}

// NewLoopContinue builds a LoopContinue instruction.
func NewLoopContinue(newLoopVars, loopUsedVars []*types.Var, blockingVars []bool) *LoopContinue {
	return &LoopContinue{base: base{op: OpLoopContinue}, NewLoopVars: newLoopVars, LoopUsedVars: loopUsedVars, BlockingVars: blockingVars}
}

func (l *LoopContinue) Inputs() []types.Arg {
	args := make([]types.Arg, len(l.NewLoopVars))
	for i, v := range l.NewLoopVars {
		args[i] = types.VarRef(v)
	}
	return args
}
func (l *LoopContinue) Outputs() []*types.Var { return nil }
func (l *LoopContinue) HasSideEffects() bool  { return true }
func (l *LoopContinue) CanChangeTiming() bool { return canChangeTiming(true) }
func (l *LoopContinue) IsIdempotent() bool    { return false }
func (l *LoopContinue) WritesAliasVar() bool  { return false }
func (l *LoopContinue) WritesMappedVar() bool { return false }
func (l *LoopContinue) Mode() backend.TaskMode { return backend.ControlMode }

// BlockingInputs returns the loop variables flagged blocking in
// BlockingVars, with repeated variables removed. Variables already known to
// be closed are not pruned (CanMakeImmediate returns nil).
func (l *LoopContinue) BlockingInputs() []*types.Var {
	seen := make(map[string]bool)
	var blocking []*types.Var
	for i, v := range l.NewLoopVars {
		if i < len(l.BlockingVars) && l.BlockingVars[i] && !seen[v.Name] {
			seen[v.Name] = true
			blocking = append(blocking, v)
		}
	}
	return blocking
}

func (l *LoopContinue) ConstantFold(string, map[string]types.Arg, *diag.Reporter) map[string]types.Arg { return nil }
func (l *LoopContinue) ConstantReplace(map[string]types.Arg) Instruction       { return nil }
func (l *LoopContinue) CanMakeImmediate(map[string]bool) *MakeImmRequest       { return nil }
func (l *LoopContinue) MakeImmediate([]*types.Var, []types.Arg) *MakeImmChange { return nil }
func (l *LoopContinue) GetResults(*Tracker, *config.Options) []ResultVal      { return nil }

func (l *LoopContinue) GetIncrVars() (reads, writes []*types.Var) {
	return append([]*types.Var(nil), l.NewLoopVars...), nil
}

func (l *LoopContinue) TryPiggyback([]*types.Var, RefcountKind) []*types.Var { return nil }

func (l *LoopContinue) GetComponentAlias() (whole, part *types.Var, ok bool) { return nil, nil, false }

func (l *LoopContinue) Clone() Instruction {
	clone := *l
	clone.NewLoopVars = cloneVars(l.NewLoopVars)
	clone.LoopUsedVars = cloneVars(l.LoopUsedVars)
	clone.BlockingVars = append([]bool(nil), l.BlockingVars...)
	return &clone
}

func (l *LoopContinue) RenameVars(renames map[string]*types.Var, _ RenameMode) {
	renameVarSlice(l.NewLoopVars, renames)
	renameVarSlice(l.LoopUsedVars, renames)
}

func (l *LoopContinue) String() string {
	var sb strings.Builder
	sb.WriteString("loop_continue [")
	for i, v := range l.NewLoopVars {
		if i > 0 {
			sb.WriteRune(' ')
		}
		sb.WriteString(v.Name)
	}
	sb.WriteString("]")
	return sb.String()
}

// LoopBreak terminates a loop: loopUsedVars lists variables whose refcount
// should be decremented on exit, keepOpenVars lists variables that must
// remain open past the loop.
type LoopBreak struct {
	base
	LoopUsedVars []*types.Var
	KeepOpenVars []*types.Var
}

// NewLoopBreak builds a LoopBreak instruction.
func NewLoopBreak(loopUsedVars, keepOpenVars []*types.Var) *LoopBreak {
	return &LoopBreak{base: base{op: OpLoopBreak}, LoopUsedVars: loopUsedVars, KeepOpenVars: keepOpenVars}
}

func (l *LoopBreak) Inputs() []types.Arg      { return nil }
func (l *LoopBreak) Outputs() []*types.Var    { return nil }
func (l *LoopBreak) HasSideEffects() bool     { return true }
func (l *LoopBreak) CanChangeTiming() bool    { return canChangeTiming(true) }
func (l *LoopBreak) IsIdempotent() bool       { return false }
func (l *LoopBreak) WritesAliasVar() bool     { return false }
func (l *LoopBreak) WritesMappedVar() bool    { return false }
func (l *LoopBreak) Mode() backend.TaskMode   { return backend.Sync }
func (l *LoopBreak) BlockingInputs() []*types.Var { return nil }

func (l *LoopBreak) ConstantFold(string, map[string]types.Arg, *diag.Reporter) map[string]types.Arg { return nil }
func (l *LoopBreak) ConstantReplace(map[string]types.Arg) Instruction       { return nil }
func (l *LoopBreak) CanMakeImmediate(map[string]bool) *MakeImmRequest       { return nil }
func (l *LoopBreak) MakeImmediate([]*types.Var, []types.Arg) *MakeImmChange { return nil }
func (l *LoopBreak) GetResults(*Tracker, *config.Options) []ResultVal      { return nil }

// GetIncrVars claims nothing: LoopBreak has no inputs or outputs, and its
// LoopUsedVars are variables it decrements on exit, not ones it takes a
// further increment on.
func (l *LoopBreak) GetIncrVars() (reads, writes []*types.Var) {
	return nil, nil
}

func (l *LoopBreak) TryPiggyback([]*types.Var, RefcountKind) []*types.Var { return nil }

func (l *LoopBreak) GetComponentAlias() (whole, part *types.Var, ok bool) { return nil, nil, false }

func (l *LoopBreak) Clone() Instruction {
	clone := *l
	clone.LoopUsedVars = cloneVars(l.LoopUsedVars)
	clone.KeepOpenVars = cloneVars(l.KeepOpenVars)
	return &clone
}

func (l *LoopBreak) RenameVars(renames map[string]*types.Var, _ RenameMode) {
	renameVarSlice(l.LoopUsedVars, renames)
	renameVarSlice(l.KeepOpenVars, renames)
}

func (l *LoopBreak) String() string {
	return "loop_break #passin[" + varsReprIR(l.LoopUsedVars) + "] #keepopen[" + varsReprIR(l.KeepOpenVars) + "]"
}

func varsReprIR(vars []*types.Var) string {
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name
	}
	return strings.Join(names, " ")
}

// Comment is a no-op instruction carrying only diagnostic text, emitted by
// the walker to annotate generated IR at points it expects a human reader
// (or a future re-reading student) to want orientation.
type Comment struct {
	base
	Text string
}

// NewComment builds a Comment instruction.
func NewComment(text string) *Comment {
	return &Comment{base: base{op: COMMENT}, Text: text}
}

func (c *Comment) Inputs() []types.Arg                                    { return nil }
func (c *Comment) Outputs() []*types.Var                                  { return nil }
func (c *Comment) HasSideEffects() bool                                   { return false }
func (c *Comment) CanChangeTiming() bool                                  { return canChangeTiming(false) }
func (c *Comment) IsIdempotent() bool                                     { return true }
func (c *Comment) WritesAliasVar() bool                                   { return false }
func (c *Comment) WritesMappedVar() bool                                  { return false }
func (c *Comment) BlockingInputs() []*types.Var                           { return nil }
func (c *Comment) ConstantFold(string, map[string]types.Arg, *diag.Reporter) map[string]types.Arg { return nil }
func (c *Comment) ConstantReplace(map[string]types.Arg) Instruction       { return nil }
func (c *Comment) CanMakeImmediate(map[string]bool) *MakeImmRequest       { return nil }
func (c *Comment) MakeImmediate([]*types.Var, []types.Arg) *MakeImmChange { return nil }
func (c *Comment) GetResults(*Tracker, *config.Options) []ResultVal      { return nil }
func (c *Comment) GetIncrVars() (reads, writes []*types.Var)             { return nil, nil }
func (c *Comment) TryPiggyback([]*types.Var, RefcountKind) []*types.Var  { return nil }
func (c *Comment) GetComponentAlias() (whole, part *types.Var, ok bool)  { return nil, nil, false }
func (c *Comment) Clone() Instruction                                    { clone := *c; return &clone }
func (c *Comment) RenameVars(map[string]*types.Var, RenameMode)          {}
func (c *Comment) String() string                                        { return "# " + c.Text }

var (
	_ Instruction = (*LoopContinue)(nil)
	_ Instruction = (*LoopBreak)(nil)
	_ Instruction = (*Comment)(nil)
)
