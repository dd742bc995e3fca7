package core

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key code definitions. Only the keys the tracker reacts to are listed.
type KeyCode uint16

const (
	KEY_BACKSPACE    KeyCode = 0x08
	KEY_TAB          KeyCode = 0x09
	KEY_ENTER        KeyCode = 0x0D
	KEY_ESCAPE       KeyCode = 0x1B
	KEY_SPACE        KeyCode = 0x20
	KEY_DELETE       KeyCode = 0x2E
	KEY_A            KeyCode = 0x41
	KEY_Z            KeyCode = 0x5A
	KEY_NUMPAD_ENTER KeyCode = 0x6C
)

// MouseEvent carries a pointer position in region pixels.
type MouseEvent struct {
	X      float32
	Y      float32
	Button Button
}

type KeyEvent struct {
	KeyCode KeyCode
}
