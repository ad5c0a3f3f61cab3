package weight

// Flag 启用标记，线上格式为整数 0/1
type Flag int

const (
	FlagDisabled Flag = 0
	FlagEnabled  Flag = 1
)

// ParseFlag 只接受 0 和 1
func ParseFlag(v int) (Flag, error) {
	switch Flag(v) {
	case FlagDisabled, FlagEnabled:
		return Flag(v), nil
	default:
		return 0, NewInvalidEnableError(v)
	}
}

func (f Flag) Int() int      { return int(f) }
func (f Flag) Enabled() bool { return f == FlagEnabled }

func (f Flag) String() string {
	if f.Enabled() {
		return "enabled"
	}
	return "disabled"
}

func (f Flag) Equals(other Flag) bool { return f == other }
