// Package session holds the per-visit state and the screen navigator.
package session

import "fmt"

// Screen identifies one step of the guided flow.
type Screen int

const (
	Splash Screen = iota
	Register
	Language
	Chat
	Doctors
	Map
	Caretaker
	Family
	Emergency
)

type screenInfo struct {
	id    string
	gated bool
}

// screens is the fixed screen order.
var screens = [...]screenInfo{
	Splash:    {id: "splash"},
	Register:  {id: "register", gated: true},
	Language:  {id: "language", gated: true},
	Chat:      {id: "chat"},
	Doctors:   {id: "doctors"},
	Map:       {id: "map"},
	Caretaker: {id: "caretaker"},
	Family:    {id: "family"},
	Emergency: {id: "emergency"},
}

// ScreenCount is the number of screens.
const ScreenCount = len(screens)

// Valid reports whether s is a declared screen.
func (s Screen) Valid() bool {
	return s >= 0 && int(s) < ScreenCount
}

// String returns the stable identifier used on the wire.
func (s Screen) String() string {
	if !s.Valid() {
		return fmt.Sprintf("screen(%d)", int(s))
	}
	return screens[s].id
}

// Gated reports whether forward navigation from s requires a passed gate.
func (s Screen) Gated() bool {
	return s.Valid() && screens[s].gated
}

// MarshalText encodes the screen identifier.
func (s Screen) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid screen %d", int(s))
	}
	return []byte(screens[s].id), nil
}

// ParseScreen resolves a wire identifier.
func ParseScreen(id string) (Screen, bool) {
	for i, info := range screens {
		if info.id == id {
			return Screen(i), true
		}
	}
	return 0, false
}

// Screens returns every screen in order.
func Screens() []Screen {
	out := make([]Screen, ScreenCount)
	for i := range out {
		out[i] = Screen(i)
	}
	return out
}
