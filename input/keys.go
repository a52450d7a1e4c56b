package input

// Key codes, Linux input event numbering.
const (
	KeyEsc        Code = 1
	Key1          Code = 2
	Key2          Code = 3
	Key3          Code = 4
	Key4          Code = 5
	Key5          Code = 6
	Key6          Code = 7
	Key7          Code = 8
	Key8          Code = 9
	Key9          Code = 10
	Key0          Code = 11
	KeyMinus      Code = 12
	KeyEqual      Code = 13
	KeyBackspace  Code = 14
	KeyTab        Code = 15
	KeyQ          Code = 16
	KeyW          Code = 17
	KeyE          Code = 18
	KeyR          Code = 19
	KeyT          Code = 20
	KeyY          Code = 21
	KeyU          Code = 22
	KeyI          Code = 23
	KeyO          Code = 24
	KeyP          Code = 25
	KeyLeftBrace  Code = 26
	KeyRightBrace Code = 27
	KeyEnter      Code = 28
	KeyLeftCtrl   Code = 29
	KeyA          Code = 30
	KeyS          Code = 31
	KeyD          Code = 32
	KeyF          Code = 33
	KeyG          Code = 34
	KeyH          Code = 35
	KeyJ          Code = 36
	KeyK          Code = 37
	KeyL          Code = 38
	KeySemicolon  Code = 39
	KeyApostrophe Code = 40
	KeyGrave      Code = 41
	KeyLeftShift  Code = 42
	KeyBackslash  Code = 43
	KeyZ          Code = 44
	KeyX          Code = 45
	KeyC          Code = 46
	KeyV          Code = 47
	KeyB          Code = 48
	KeyN          Code = 49
	KeyM          Code = 50
	KeyComma      Code = 51
	KeyDot        Code = 52
	KeySlash      Code = 53
	KeyRightShift Code = 54
	KeySpace      Code = 57
	KeyHome       Code = 102
	KeyUp         Code = 103
	KeyPageUp     Code = 104
	KeyLeft       Code = 105
	KeyRight      Code = 106
	KeyEnd        Code = 107
	KeyDown       Code = 108
	KeyPageDown   Code = 109
	KeyDelete     Code = 111
)

var runeCodes = map[rune]Code{
	'1': Key1, '2': Key2, '3': Key3, '4': Key4, '5': Key5,
	'6': Key6, '7': Key7, '8': Key8, '9': Key9, '0': Key0,
	'-': KeyMinus, '=': KeyEqual,
	'q': KeyQ, 'w': KeyW, 'e': KeyE, 'r': KeyR, 't': KeyT,
	'y': KeyY, 'u': KeyU, 'i': KeyI, 'o': KeyO, 'p': KeyP,
	'[': KeyLeftBrace, ']': KeyRightBrace,
	'a': KeyA, 's': KeyS, 'd': KeyD, 'f': KeyF, 'g': KeyG,
	'h': KeyH, 'j': KeyJ, 'k': KeyK, 'l': KeyL,
	';': KeySemicolon, '\'': KeyApostrophe, '`': KeyGrave, '\\': KeyBackslash,
	'z': KeyZ, 'x': KeyX, 'c': KeyC, 'v': KeyV, 'b': KeyB,
	'n': KeyN, 'm': KeyM, ',': KeyComma, '.': KeyDot, '/': KeySlash,
	' ': KeySpace,
}

var shifted = map[rune]rune{
	'!': '1', '@': '2', '#': '3', '$': '4', '%': '5',
	'^': '6', '&': '7', '*': '8', '(': '9', ')': '0',
	'_': '-', '+': '=', '{': '[', '}': ']', ':': ';',
	'"': '\'', '~': '`', '|': '\\', '<': ',', '>': '.', '?': '/',
}

// RuneCode maps a typed character to its key code. shift reports whether
// producing r needs the shift key.
func RuneCode(r rune) (code Code, shift bool, ok bool) {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
		shift = true
	} else if base, isShifted := shifted[r]; isShifted {
		r = base
		shift = true
	}
	code, ok = runeCodes[r]
	return code, shift, ok
}
