// Package main provides the battle simulator binary. It loads a floor and the
// content library, then either resolves one action for a chosen character or
// lets every character act on its tactic for a number of turns.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonfx/internal/config"
	"github.com/cory-johannsen/dungeonfx/internal/game/ai"
	"github.com/cory-johannsen/dungeonfx/internal/game/battle"
	"github.com/cory-johannsen/dungeonfx/internal/game/content"
	"github.com/cory-johannsen/dungeonfx/internal/game/damage"
	"github.com/cory-johannsen/dungeonfx/internal/game/dice"
	"github.com/cory-johannsen/dungeonfx/internal/game/world"
	"github.com/cory-johannsen/dungeonfx/internal/i18n"
	"github.com/cory-johannsen/dungeonfx/internal/observability"
	"github.com/cory-johannsen/dungeonfx/internal/scripting"
)

// aiScope is the Lua scope HTN preconditions are called in.
const aiScope = "ai"

// options are the command-line choices of one run.
type options struct {
	floorPath   string
	actor       string
	skill       string
	item        string
	throw       bool
	turns       int
	seed        uint64
	basicAttack string
	animFrames  int
}

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/battlesim.yaml", "path to configuration file")
	var opts options
	flag.StringVar(&opts.floorPath, "floor", "content/floors/demo.yaml", "path to the floor YAML file")
	flag.StringVar(&opts.actor, "actor", "", "character ID that performs -skill or -item; empty runs AI turns")
	flag.StringVar(&opts.skill, "skill", "", "skill ID the actor uses")
	flag.StringVar(&opts.item, "item", "", "item ID the actor uses")
	flag.BoolVar(&opts.throw, "throw", false, "throw -item instead of using it")
	flag.IntVar(&opts.turns, "turns", 5, "AI turns to run when no -actor is given")
	flag.Uint64Var(&opts.seed, "seed", 0, "seed for deterministic dice; 0 uses crypto randomness")
	flag.StringVar(&opts.basicAttack, "basic-attack", "tackle", "skill ID used for plain attacks")
	flag.IntVar(&opts.animFrames, "anim-frames", 3, "frames each animation lasts")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "battlesim")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	s, closeFn, err := newSim(cfg, opts, os.Stdout, logger)
	if err != nil {
		logger.Fatal("building simulation", zap.Error(err))
	}
	defer closeFn()
	logger.Info("simulation ready", zap.Duration("elapsed", time.Since(start)))

	if err := s.run(opts); err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}
}

// newSim wires the content library, scripting, localization, and AI for the
// floor named in opts.
//
// Postcondition: On success the returned close func releases the Lua VMs.
func newSim(cfg config.Config, opts options, out io.Writer, logger *zap.Logger) (*sim, func(), error) {
	var src dice.Source
	if opts.seed != 0 {
		src = dice.NewSeededSource(opts.seed)
	} else {
		src = dice.NewCryptoSource()
	}
	roller := dice.NewLoggedRoller(src, logger)

	floor, err := world.LoadFloorFromFile(opts.floorPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading floor: %w", err)
	}
	logger.Info("floor loaded",
		zap.String("floor", floor.ID),
		zap.Int("characters", len(floor.Characters())),
	)

	lib, err := content.Load(content.Dirs{
		Skills:     cfg.Content.SkillsDir,
		Items:      cfg.Content.ItemsDir,
		Intrinsics: cfg.Content.IntrinsicsDir,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("loading content: %w", err)
	}
	logger.Info("content loaded",
		zap.Int("skills", len(lib.SkillIDs())),
		zap.Int("items", len(lib.ItemIDs())),
		zap.Int("intrinsics", len(lib.IntrinsicIDs())),
	)
	if _, ok := lib.Move(opts.basicAttack); !ok {
		return nil, nil, fmt.Errorf("basic attack %q is not a known skill", opts.basicAttack)
	}

	bundle, err := i18n.LoadDir(cfg.Content.LocalesDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading locales: %w", err)
	}
	text, err := bundle.Localizer(cfg.Battle.Locale)
	if err != nil {
		return nil, nil, err
	}

	formula, err := damage.NewDiceFormula(roller, cfg.Battle.VarianceDice)
	if err != nil {
		return nil, nil, err
	}

	show := newConsoleShow(out, logger, opts.animFrames)
	env := &battle.Env{
		World:    floor,
		Data:     lib,
		Show:     show,
		Text:     text,
		Formula:  formula,
		Resolver: battle.NewResolver(logger, cfg.Battle.MaxFollowUpDepth),
		Logger:   logger,
		HitPause: cfg.Battle.HitPauseFrames,
	}

	closeFn := func() {}
	var planners ai.Planners
	if cfg.Content.ScriptsDir != "" {
		mgr := scripting.NewManager(roller, logger)
		mgr.GetCharacter = characterInfo(floor)
		if err := mgr.LoadGlobal(cfg.Content.ScriptsDir, cfg.Scripting.InstructionLimit); err != nil {
			mgr.Close()
			return nil, nil, fmt.Errorf("loading scripts: %w", err)
		}
		env.Scripts = mgr
		closeFn = mgr.Close

		domains, err := ai.LoadDomains(cfg.Content.DomainsDir)
		if err != nil {
			mgr.Close()
			return nil, nil, err
		}
		for _, d := range domains {
			if err := d.CheckSkills(lib); err != nil {
				mgr.Close()
				return nil, nil, err
			}
		}
		planners = ai.NewPlanners(domains, mgr, aiScope)
		logger.Info("loaded ai domains", zap.Int("count", len(domains)))
	} else {
		logger.Warn("scripting disabled; script handlers and domain plans are inert")
	}

	tactics, err := ai.LoadTactics(cfg.Content.TacticsDir)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	logger.Info("loaded tactics", zap.Int("count", len(tactics)))

	return &sim{
		floor: floor,
		env:   env,
		planEnv: &ai.Env{
			World:    floor,
			Data:     lib,
			Planners: planners,
			Logger:   logger,
		},
		show:        show,
		tactics:     tactics,
		rnd:         src,
		logger:      logger,
		basicAttack: opts.basicAttack,
	}, closeFn, nil
}

func characterInfo(floor *world.Floor) func(id string) *scripting.CharacterInfo {
	return func(id string) *scripting.CharacterInfo {
		c, ok := floor.Character(id)
		if !ok {
			return nil
		}
		return &scripting.CharacterInfo{
			ID:      c.ID,
			Name:    c.Name,
			Faction: string(c.Faction),
			HP:      c.HP,
			MaxHP:   c.MaxHP,
			X:       c.Loc.X,
			Y:       c.Loc.Y,
		}
	}
}

// run performs the single action opts names, or AI turns when no actor is set.
func (s *sim) run(opts options) error {
	if opts.actor == "" {
		for i := 0; i < opts.turns && livingFactions(s.floor) > 1; i++ {
			if err := s.turn(); err != nil {
				return err
			}
		}
		s.summary()
		return nil
	}

	user, ok := s.floor.Character(opts.actor)
	if !ok {
		return fmt.Errorf("unknown actor %q", opts.actor)
	}
	var err error
	switch {
	case opts.skill != "" && opts.item != "":
		return fmt.Errorf("-skill and -item are mutually exclusive")
	case opts.skill != "":
		err = s.useSkill(user, opts.skill)
	case opts.item != "":
		at := battle.ActionItem
		if opts.throw {
			at = battle.ActionThrow
		}
		err = s.useItem(user, opts.item, at)
	default:
		return fmt.Errorf("-actor needs -skill or -item")
	}
	if err != nil {
		return err
	}
	s.summary()
	return nil
}

func (s *sim) summary() {
	for _, c := range s.floor.Characters() {
		s.logger.Info("character",
			zap.String("id", c.ID),
			zap.Int("hp", c.HP),
			zap.Int("max_hp", c.MaxHP),
			zap.Stringer("loc", c.Loc),
		)
	}
	s.logger.Info("simulation finished", zap.Int("turns", s.floor.TurnCount()))
}
