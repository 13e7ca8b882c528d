package session

import (
	"errors"
	"fmt"
	"testing"
)

type fakeView struct {
	shown []Screen
	nav   NavState
}

func (f *fakeView) ShowScreen(s Screen) { f.shown = append(f.shown, s) }
func (f *fakeView) SetNav(n NavState)   { f.nav = n }

func newNav() (*Context, *fakeView, *Navigator) {
	ctx := NewContext("s1", "anon_1")
	view := &fakeView{}
	return ctx, view, NewNavigator(ctx, view)
}

func TestScreens_Order(t *testing.T) {
	t.Parallel()

	want := []string{"splash", "register", "language", "chat", "doctors", "map", "caretaker", "family", "emergency"}
	got := Screens()
	if len(got) != len(want) {
		t.Fatalf("expected %d screens, got %d", len(want), len(got))
	}
	for i, s := range got {
		if s.String() != want[i] {
			t.Errorf("screen %d = %q, want %q", i, s, want[i])
		}
		if parsed, ok := ParseScreen(want[i]); !ok || parsed != s {
			t.Errorf("ParseScreen(%q) = %v, %v", want[i], parsed, ok)
		}
	}
	if !Register.Gated() || !Language.Gated() || Chat.Gated() {
		t.Error("only register and language are gated")
	}
}

func TestNavigator_AdvanceBlockedByGate(t *testing.T) {
	t.Parallel()

	for _, gated := range []Screen{Register, Language} {
		t.Run(gated.String(), func(t *testing.T) {
			t.Parallel()
			ctx, view, nav := newNav()
			nav.Show(gated)

			for i := 0; i < 3; i++ {
				err := nav.Advance()
				if !errors.Is(err, ErrGateClosed) {
					t.Fatalf("expected ErrGateClosed, got %v", err)
				}
				if ctx.Screen != gated {
					t.Fatalf("screen changed to %s while gate unset", ctx.Screen)
				}
			}
			if view.nav.Next {
				t.Fatal("next must be disabled while the gate is unset")
			}

			ctx.SetFlag(gated, true)
			nav.Refresh()
			if !view.nav.Next {
				t.Fatal("next must be enabled once the gate passes")
			}
			if err := nav.Advance(); err != nil {
				t.Fatalf("Advance failed: %v", err)
			}
			if ctx.Screen != gated+1 {
				t.Fatalf("expected %s, got %s", gated+1, ctx.Screen)
			}
		})
	}
}

func TestNavigator_NavState(t *testing.T) {
	t.Parallel()

	ctx, view, nav := newNav()
	nav.Show(Splash)
	if view.nav.Visible || view.nav.Back {
		t.Errorf("splash nav should be hidden without back: %+v", view.nav)
	}

	nav.Show(Emergency)
	if view.nav.Next || !view.nav.Back || !view.nav.Visible {
		t.Errorf("last screen must disable next: %+v", view.nav)
	}
	if err := nav.Advance(); err != nil || ctx.Screen != Emergency {
		t.Errorf("advance on last screen must be a no-op, got %v at %s", err, ctx.Screen)
	}
}

func TestNavigator_RetreatAndJump(t *testing.T) {
	t.Parallel()

	ctx, _, nav := newNav()
	if nav.Retreat() {
		t.Fatal("retreat from splash must fail")
	}

	nav.JumpTo(Emergency)
	if ctx.Screen != Emergency {
		t.Fatalf("JumpTo must bypass gates, at %s", ctx.Screen)
	}
	if !nav.Retreat() || ctx.Screen != Family {
		t.Fatalf("expected retreat to family, at %s", ctx.Screen)
	}
}

func TestNavigator_EntryHooks(t *testing.T) {
	t.Parallel()

	_, view, nav := newNav()
	entered := 0
	nav.OnEnter(Family, func() { entered++ })

	nav.JumpTo(Family)
	nav.Show(Chat)
	nav.JumpTo(Family)

	if entered != 2 {
		t.Fatalf("expected hook to run on every entry, ran %d times", entered)
	}
	if len(view.shown) != 3 {
		t.Fatalf("expected 3 renders, got %d", len(view.shown))
	}
}

func TestNavigator_InvalidTargetPanics(t *testing.T) {
	t.Parallel()

	_, _, nav := newNav()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for an undeclared screen")
		}
	}()
	nav.Show(Screen(ScreenCount))
}

func TestContext_Translations(t *testing.T) {
	t.Parallel()

	ctx := NewContext("s1", "anon_1")
	ctx.SetTranslations(map[string]string{"next": "Next", "back": "Back"})
	ctx.SetTranslations(map[string]string{"next": "अगला"})

	if got := ctx.T("back", "fallback"); got != "fallback" {
		t.Errorf("translations must be replaced wholesale, back = %q", got)
	}
	if got := ctx.T("next", "Next"); got != "अगला" {
		t.Errorf("next = %q", got)
	}

	src := map[string]string{"k": "v"}
	ctx.SetTranslations(src)
	src["k"] = "changed"
	if ctx.T("k", "") != "v" {
		t.Error("context must not alias the caller's map")
	}
}

func TestContext_FlagsOnlyForGatedScreens(t *testing.T) {
	t.Parallel()

	ctx := NewContext("s1", "anon_1")
	ctx.SetFlag(Chat, false)
	if !ctx.GateOpen(Chat) {
		t.Fatal("ungated screens are always open")
	}
	if len(ctx.Flags()) != 2 {
		t.Fatalf("expected 2 flags, got %v", ctx.Flags())
	}
}

func TestSequencer(t *testing.T) {
	t.Parallel()

	s := NewSequencer()
	first := s.Next(OpTranslations)
	second := s.Next(OpTranslations)
	chat := s.Next(OpChat)

	if s.Latest(OpTranslations, first) {
		t.Error("first translation request must be stale")
	}
	if !s.Latest(OpTranslations, second) || !s.Latest(OpChat, chat) {
		t.Error("latest numbers must be current per op")
	}
	s.Invalidate(OpChat)
	if s.Latest(OpChat, chat) {
		t.Error("Invalidate must make outstanding numbers stale")
	}
}

func TestTranscript_Wraps(t *testing.T) {
	t.Parallel()

	tr := NewTranscript(3)
	for i := 0; i < 5; i++ {
		tr.Append(Message{Role: RoleUser, Text: fmt.Sprint(i)})
	}
	got := tr.Messages()
	if len(got) != 3 || tr.Len() != 3 {
		t.Fatalf("expected 3 retained messages, got %d", len(got))
	}
	for i, want := range []string{"2", "3", "4"} {
		if got[i].Text != want {
			t.Errorf("message %d = %q, want %q", i, got[i].Text, want)
		}
	}

	tr.Reset()
	if tr.Len() != 0 || len(tr.Messages()) != 0 {
		t.Error("Reset must empty the ring")
	}
}

func TestTranscript_Partial(t *testing.T) {
	t.Parallel()

	tr := NewTranscript(0)
	tr.Append(Message{Role: RoleAI, Text: "hello"})
	if tr.Capacity() != 200 {
		t.Errorf("default capacity = %d", tr.Capacity())
	}
	if got := tr.Messages(); len(got) != 1 || got[0].Text != "hello" {
		t.Errorf("unexpected messages: %+v", got)
	}
}
