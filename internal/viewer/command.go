package viewer

// Command is a discrete user action, usually bound to a key.
type Command int

const (
	CommandNone Command = iota
	CommandReset
	CommandPause
	CommandDecimate
	CommandScale
	CommandColor
	CommandScreenshot
	CommandExport
	CommandMode
	CommandPainter
	CommandQuit
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CommandReset:
		return "reset"
	case CommandPause:
		return "pause"
	case CommandDecimate:
		return "decimate"
	case CommandScale:
		return "scale"
	case CommandColor:
		return "color"
	case CommandScreenshot:
		return "screenshot"
	case CommandExport:
		return "export"
	case CommandMode:
		return "mode"
	case CommandPainter:
		return "painter"
	case CommandQuit:
		return "quit"
	default:
		return "none"
	}
}

// KeyEscape is the key value of the escape key.
const KeyEscape rune = 0x1b

// CommandForKey maps a key character to its command.
func CommandForKey(key rune) Command {
	switch key {
	case 'r':
		return CommandReset
	case 'p':
		return CommandPause
	case 'd':
		return CommandDecimate
	case 'z':
		return CommandScale
	case 'c':
		return CommandColor
	case 's':
		return CommandScreenshot
	case 'e':
		return CommandExport
	case 'm':
		return CommandMode
	case 'o':
		return CommandPainter
	case 'q', KeyEscape:
		return CommandQuit
	default:
		return CommandNone
	}
}

// Mode selects what a step draws.
type Mode int

const (
	// ModeCloud renders the point cloud.
	ModeCloud Mode = iota
	// ModeFlat shows the color and depth images side by side.
	ModeFlat
)

func (m Mode) String() string {
	if m == ModeFlat {
		return "flat"
	}
	return "cloud"
}
