package battle

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

// WaitKind distinguishes what a suspension waits for.
type WaitKind int

const (
	// WaitKindAnimation waits until the Presenter reports Char is no longer occupied.
	WaitKindAnimation WaitKind = iota
	// WaitKindFrames waits a fixed number of driver steps.
	WaitKindFrames
)

// Wait is one suspension point yielded by a handler.
type Wait struct {
	Kind   WaitKind
	Char   *world.Character
	Frames int
}

// AnimationWait suspends until ch finishes its current animation.
func AnimationWait(ch *world.Character) Wait {
	return Wait{Kind: WaitKindAnimation, Char: ch}
}

// FrameWait suspends for n driver steps.
func FrameWait(n int) Wait {
	return Wait{Kind: WaitKindFrames, Frames: n}
}

// Presenter is the presentation sink. Calls are fire-and-forget; Occupied is
// polled by the Driver to end animation waits.
type Presenter interface {
	PlayVFX(fx string, loc world.Loc, dir world.Direction)
	PlaySound(sound string)
	LogMessage(msg string)
	StartAnimation(ch *world.Character, anim string)
	Occupied(ch *world.Character) bool
}

// Localizer maps a message key and arguments to display text.
type Localizer interface {
	Text(key string, args ...any) string
}

// DataSource resolves content identifiers to their templates.
type DataSource interface {
	Move(id string) (*Skill, bool)
	Item(id string) (*ItemData, bool)
	Intrinsic(id string) (*IntrinsicData, bool)
}

// Formula computes the unmultiplied damage of a hit.
type Formula interface {
	Damage(user, target *world.Character, data *MoveData) int
}

// ScriptCaller invokes Lua hooks. It is satisfied by *scripting.Manager.
type ScriptCaller interface {
	CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error)
}

// AnimSpin is the animation a redirecting character plays.
const AnimSpin = "spin"

// Env bundles the collaborators handlers consume.
type Env struct {
	World   world.View
	Data    DataSource
	Show    Presenter
	Text    Localizer
	Formula Formula
	// Scripts may be nil when scripting is disabled.
	Scripts  ScriptCaller
	Resolver *Resolver
	Logger   *zap.Logger
	// HitPause is the number of frames to pause after a damaging hit.
	HitPause int
}

func (env *Env) logger() *zap.Logger {
	if env.Logger == nil {
		return zap.NewNop()
	}
	return env.Logger
}

// log emits the localized message key to the battle log.
func (env *Env) log(key string, args ...any) {
	if key == "" {
		return
	}
	msg := key
	if env.Text != nil {
		msg = env.Text.Text(key, args...)
	}
	env.Show.LogMessage(msg)
}

// spin starts the redirect animation on ch and returns the wait for it.
func (env *Env) spin(ch *world.Character) Wait {
	env.Show.StartAnimation(ch, AnimSpin)
	return AnimationWait(ch)
}

func name(ch *world.Character) string {
	if ch == nil {
		return ""
	}
	return ch.Name
}

func idOf(ch *world.Character) string {
	if ch == nil {
		return ""
	}
	return ch.ID
}
