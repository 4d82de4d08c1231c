package flow

// Action identifies a button. It doubles as the callback unique.
type Action string

const (
	ActMenu        Action = "menu"
	ActNew         Action = "new"
	ActSearch      Action = "search"
	ActExport      Action = "export"
	ActAbout       Action = "about"
	ActRegion      Action = "region"
	ActIndustry    Action = "industry"
	ActBackRegions Action = "back_regions"
	ActAttach      Action = "attach"
	ActSkip        Action = "skip"
	ActPrev        Action = "prev"
	ActNext        Action = "next"
	ActFile        Action = "file"
	ActFilters     Action = "filters"
)

// Actions lists every button action for callback registration.
var Actions = []Action{
	ActMenu, ActNew, ActSearch, ActExport, ActAbout,
	ActRegion, ActIndustry, ActBackRegions, ActAttach, ActSkip,
	ActPrev, ActNext, ActFile, ActFilters,
}

// Command names.
const (
	CmdStart  = "start"
	CmdHelp   = "help"
	CmdCancel = "cancel"
	CmdStats  = "stats"
)

// Event is an inbound user action.
type Event interface{ event() }

// Command is a slash command.
type Command struct {
	Name      string
	FirstName string
}

// Text is a free-text message.
type Text struct{ Body string }

// Document is a file message.
type Document struct {
	Ref  string
	Name string
}

// Photo is a photo message; Ref points to the largest size.
type Photo struct{ Ref string }

// Button is an inline button press. Arg carries the button payload.
type Button struct {
	Action Action
	Arg    string
}

func (Command) event()  {}
func (Text) event()     {}
func (Document) event() {}
func (Photo) event()    {}
func (Button) event()   {}

// Effect is an outbound instruction for the transport.
type Effect interface{ effect() }

// Reply sends text with an optional keyboard. Edit asks to replace the
// message behind the pressed button instead of sending a new one.
type Reply struct {
	Text     string
	Keyboard *Keyboard
	Edit     bool
}

// SendAttachment delivers a stored file or photo by its transport reference.
// FailAlert is shown when delivery fails.
type SendAttachment struct {
	Ref       string
	Filename  string
	Photo     bool
	Caption   string
	FailAlert string
}

// SendFile uploads a local file and removes it afterwards.
type SendFile struct {
	Path      string
	Caption   string
	FailAlert string
}

// Alert answers a button press with a pop-up.
type Alert struct{ Text string }

func (Reply) effect()          {}
func (SendAttachment) effect() {}
func (SendFile) effect()       {}
func (Alert) effect()          {}

// Keyboard is an inline keyboard laid out Columns buttons per row.
type Keyboard struct {
	Columns int
	Buttons []KeyButton
}

// KeyButton is one inline button.
type KeyButton struct {
	Label  string
	Action Action
	Arg    string
}

// Has reports whether the keyboard contains a button for action.
func (k *Keyboard) Has(action Action) bool {
	if k == nil {
		return false
	}
	for _, b := range k.Buttons {
		if b.Action == action {
			return true
		}
	}
	return false
}
