package battle_test

import (
	"fmt"
	"iter"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/dungeonfx/internal/game/battle"
	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

// fakeShow records presentation requests. Each started animation keeps its
// character occupied for animFrames polls.
type fakeShow struct {
	logs       []string
	anims      []string
	sounds     []string
	vfx        []string
	busy       map[*world.Character]int
	animFrames int
}

func newFakeShow() *fakeShow {
	return &fakeShow{busy: make(map[*world.Character]int), animFrames: 2}
}

func (s *fakeShow) PlayVFX(fx string, loc world.Loc, _ world.Direction) {
	s.vfx = append(s.vfx, fmt.Sprintf("%s@%s", fx, loc))
}
func (s *fakeShow) PlaySound(sound string) { s.sounds = append(s.sounds, sound) }
func (s *fakeShow) LogMessage(msg string) { s.logs = append(s.logs, msg) }
func (s *fakeShow) StartAnimation(ch *world.Character, anim string) {
	s.anims = append(s.anims, ch.ID+":"+anim)
	s.busy[ch] = s.animFrames
}
func (s *fakeShow) Occupied(ch *world.Character) bool {
	if s.busy[ch] > 0 {
		s.busy[ch]--
		return true
	}
	return false
}

// keyText renders a message as its key followed by its arguments.
type keyText struct{}

func (keyText) Text(key string, args ...any) string {
	if len(args) == 0 {
		return key
	}
	return key + fmt.Sprint(args...)
}

type fakeData struct {
	moves      map[string]*battle.Skill
	items      map[string]*battle.ItemData
	intrinsics map[string]*battle.IntrinsicData
}

func newFakeData() *fakeData {
	return &fakeData{
		moves:      map[string]*battle.Skill{},
		items:      map[string]*battle.ItemData{},
		intrinsics: map[string]*battle.IntrinsicData{},
	}
}

func (d *fakeData) Move(id string) (*battle.Skill, bool) { s, ok := d.moves[id]; return s, ok }
func (d *fakeData) Item(id string) (*battle.ItemData, bool) {
	i, ok := d.items[id]
	return i, ok
}
func (d *fakeData) Intrinsic(id string) (*battle.IntrinsicData, bool) {
	i, ok := d.intrinsics[id]
	return i, ok
}

// flatFormula deals its fixed amount regardless of the move.
type flatFormula int

func (f flatFormula) Damage(_, _ *world.Character, _ *battle.MoveData) int { return int(f) }

func char(id string, f world.Faction, x, y int) *world.Character {
	return &world.Character{
		ID: id, Name: id, Faction: f,
		Loc: world.Loc{X: x, Y: y}, Dir: world.East,
		HP: 10, MaxHP: 10,
	}
}

func newFloor(t testing.TB, chars ...*world.Character) *world.Floor {
	t.Helper()
	f, err := world.NewFloor("test", 16, 16, chars)
	require.NoError(t, err)
	return f
}

type fixture struct {
	env   *battle.Env
	show  *fakeShow
	data  *fakeData
	floor *world.Floor
}

func newFixture(t testing.TB, chars ...*world.Character) *fixture {
	t.Helper()
	fl := newFloor(t, chars...)
	show := newFakeShow()
	data := newFakeData()
	logger := zaptest.NewLogger(t)
	return &fixture{
		floor: fl,
		show:  show,
		data:  data,
		env: &battle.Env{
			World:    fl,
			Data:     data,
			Show:     show,
			Text:     keyText{},
			Formula:  flatFormula(4),
			Resolver: battle.NewResolver(logger, 1),
			Logger:   logger,
		},
	}
}

// skillAt builds a skill context for user with its explosion centered on the
// tile in front of user.
func skillAt(user *world.Character, cat battle.Category, el battle.Element) *battle.Context {
	bc := battle.NewContext(battle.ActionSkill, user)
	bc.Data = &battle.MoveData{ID: "test_move", Category: cat, Element: el, BasePower: 10}
	bc.Explosion = battle.Explosion{Range: 1, Emitters: []string{"burst"}, TargetAlignments: world.AlignFoe}
	bc.Hitbox = battle.Hitbox{Shape: battle.ShapeAdjacent, TargetAlignments: world.AlignFoe}
	bc.SetExplosionTile(user.Loc.Add(user.Dir.Vector()))
	return bc
}

type snapshot struct {
	target   *world.Character
	tile     world.Loc
	rng      int
	emitters int
	states   []string
	mult     string
	power    int
	onHits   int
	hitTiles int
	userHP   int
	targetHP int
}

func snap(bc *battle.Context) snapshot {
	s := snapshot{
		target:   bc.Target,
		tile:     bc.ExplosionTile,
		rng:      bc.Explosion.Range,
		emitters: len(bc.Explosion.Emitters),
		states:   bc.States.Keys(),
		mult:     bc.Mult.String(),
		power:    bc.Data.BasePower,
		onHits:   len(bc.Data.OnHits),
		hitTiles: len(bc.Explosion.HitTiles),
		userHP:   bc.User.HP,
	}
	if bc.Target != nil {
		s.targetHP = bc.Target.HP
	}
	return s
}

// recorder logs its start and end around waits frame suspensions.
type recorder struct {
	id    string
	waits int
	log   *[]string
}

func (r *recorder) Apply(_ *battle.Env, _ battle.Owner, _ *world.Character, _ *battle.Context) iter.Seq[battle.Wait] {
	return func(yield func(battle.Wait) bool) {
		*r.log = append(*r.log, "start:"+r.id)
		for range r.waits {
			if !yield(battle.FrameWait(1)) {
				return
			}
		}
		*r.log = append(*r.log, "end:"+r.id)
	}
}

func (r *recorder) Clone() battle.Handler { c := *r; return &c }

// rangeSpy records the explosion range it observes.
type rangeSpy struct{ seen *[]int }

func (p *rangeSpy) Apply(_ *battle.Env, _ battle.Owner, _ *world.Character, bc *battle.Context) iter.Seq[battle.Wait] {
	return func(func(battle.Wait) bool) {
		*p.seen = append(*p.seen, bc.Explosion.Range)
	}
}

func (p *rangeSpy) Clone() battle.Handler { c := *p; return &c }

// run drives seq to completion on show.
func run(t testing.TB, show battle.Presenter, seq iter.Seq[battle.Wait]) int {
	t.Helper()
	d := battle.NewDriver(show, seq)
	require.NoError(t, d.Run(10_000, nil))
	return d.Steps()
}
