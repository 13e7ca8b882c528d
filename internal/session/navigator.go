package session

import (
	"errors"
	"fmt"
)

// ErrGateClosed is returned by Advance when the current screen's gate has
// not passed.
var ErrGateClosed = errors.New("validation gate closed")

// NavState is the enablement of the navigation bar.
type NavState struct {
	Visible bool `json:"visible"`
	Back    bool `json:"back"`
	Next    bool `json:"next"`
}

// View receives navigation changes.
type View interface {
	ShowScreen(s Screen)
	SetNav(n NavState)
}

// Navigator sequences screens over a Context.
type Navigator struct {
	ctx   *Context
	view  View
	hooks map[Screen]func()
}

// NewNavigator creates a navigator. It does not render until Show is called.
func NewNavigator(ctx *Context, view View) *Navigator {
	return &Navigator{ctx: ctx, view: view, hooks: make(map[Screen]func())}
}

// OnEnter registers the entry hook for s, replacing any previous one.
func (n *Navigator) OnEnter(s Screen, fn func()) {
	n.hooks[s] = fn
}

// Current returns the active screen.
func (n *Navigator) Current() Screen {
	return n.ctx.Screen
}

// Show activates target and runs its entry hook. An undeclared target is a
// programming error.
func (n *Navigator) Show(target Screen) {
	if !target.Valid() {
		panic(fmt.Sprintf("session: show of undeclared screen %d", int(target)))
	}
	n.ctx.Screen = target
	n.view.ShowScreen(target)
	n.Refresh()
	if hook := n.hooks[target]; hook != nil {
		hook()
	}
}

// Refresh recomputes the navigation bar for the current screen.
func (n *Navigator) Refresh() {
	n.view.SetNav(n.State())
}

// State computes the navigation bar for the current screen.
func (n *Navigator) State() NavState {
	cur := n.ctx.Screen
	return NavState{
		Visible: cur != Splash,
		Back:    cur > 0,
		Next:    int(cur) < ScreenCount-1 && n.ctx.GateOpen(cur),
	}
}

// Advance moves forward one screen. It returns ErrGateClosed, leaving the
// state unchanged, when the current gate has not passed. On the last screen
// it does nothing.
func (n *Navigator) Advance() error {
	cur := n.ctx.Screen
	if int(cur) >= ScreenCount-1 {
		return nil
	}
	if !n.ctx.GateOpen(cur) {
		return fmt.Errorf("%w: %s", ErrGateClosed, cur)
	}
	n.Show(cur + 1)
	return nil
}

// Retreat moves back one screen. It reports false on the first screen.
func (n *Navigator) Retreat() bool {
	if n.ctx.Screen <= 0 {
		return false
	}
	n.Show(n.ctx.Screen - 1)
	return true
}

// JumpTo shows target without consulting any gate.
func (n *Navigator) JumpTo(target Screen) {
	n.Show(target)
}
