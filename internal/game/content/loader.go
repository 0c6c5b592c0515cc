package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dungeonfx/internal/game/battle"
	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

// Dirs names the directories each template kind is loaded from.
type Dirs struct {
	Skills     string
	Items      string
	Intrinsics string
}

type yamlSkillFile struct {
	Skills []*battle.Skill `yaml:"skills"`
}

type yamlItemFile struct {
	Items []*battle.ItemData `yaml:"items"`
}

type yamlIntrinsicFile struct {
	Intrinsics []*battle.IntrinsicData `yaml:"intrinsics"`
}

// Load reads every template kind from dirs into a new Library.
//
// Postcondition: Returns a populated Library, or an error naming the first
// file that failed to read, parse, or validate.
func Load(dirs Dirs) (*Library, error) {
	lib := NewLibrary()
	if err := LoadSkills(lib, dirs.Skills); err != nil {
		return nil, err
	}
	if err := LoadItems(lib, dirs.Items); err != nil {
		return nil, err
	}
	if err := LoadIntrinsics(lib, dirs.Intrinsics); err != nil {
		return nil, err
	}
	return lib, nil
}

// LoadSkills registers the skills of every *.yaml file in dir.
//
// Skills with no explosion targets hit foes; an unset hitbox aims at whatever
// the explosion hits.
func LoadSkills(lib *Library, dir string) error {
	return eachFile(dir, func(dec *yaml.Decoder) error {
		var f yamlSkillFile
		if err := dec.Decode(&f); err != nil {
			return err
		}
		for _, s := range f.Skills {
			if s.Explosion.TargetAlignments == world.AlignNone {
				s.Explosion.TargetAlignments = world.AlignFoe
			}
			if s.Hitbox.TargetAlignments == world.AlignNone {
				s.Hitbox.TargetAlignments = s.Explosion.TargetAlignments
			}
			if err := validateSkill(s); err != nil {
				return err
			}
			if err := lib.RegisterSkill(s); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadItems registers the items of every *.yaml file in dir.
//
// Items with no explosion targets hit everyone but the user, and a custom
// throw with no targets is aimed at everyone but the thrower.
func LoadItems(lib *Library, dir string) error {
	return eachFile(dir, func(dec *yaml.Decoder) error {
		var f yamlItemFile
		if err := dec.Decode(&f); err != nil {
			return err
		}
		for _, it := range f.Items {
			if it.Explosion.TargetAlignments == world.AlignNone {
				it.Explosion.TargetAlignments = world.AlignFriend | world.AlignFoe
			}
			if it.Throw.Shape != "" && it.Throw.TargetAlignments == world.AlignNone {
				it.Throw.TargetAlignments = world.AlignFriend | world.AlignFoe
			}
			if it.Use.ID == "" {
				it.Use.ID = it.ID
			}
			if err := validateItem(it); err != nil {
				return err
			}
			if err := lib.RegisterItem(it); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadIntrinsics registers the intrinsics of every *.yaml file in dir.
func LoadIntrinsics(lib *Library, dir string) error {
	return eachFile(dir, func(dec *yaml.Decoder) error {
		var f yamlIntrinsicFile
		if err := dec.Decode(&f); err != nil {
			return err
		}
		for _, in := range f.Intrinsics {
			if in.ID == "" {
				return errors.New("intrinsic ID must not be empty")
			}
			if err := lib.RegisterIntrinsic(in); err != nil {
				return err
			}
		}
		return nil
	})
}

// eachFile calls fn with a strict decoder for every *.yaml file in dir, in
// name order. Empty files are skipped.
func eachFile(dir string, fn func(dec *yaml.Decoder) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading content dir %q: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := fn(dec); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return nil
}

func validateSkill(s *battle.Skill) error {
	var errs []error
	if s.ID() == "" {
		errs = append(errs, errors.New("skill ID must not be empty"))
	}
	if s.Data.BasePower < 0 {
		errs = append(errs, fmt.Errorf("skill %q: base_power must be >= 0, got %d", s.ID(), s.Data.BasePower))
	}
	if s.Strikes < 0 {
		errs = append(errs, fmt.Errorf("skill %q: strikes must be >= 0, got %d", s.ID(), s.Strikes))
	}
	if s.Explosion.Range < 0 {
		errs = append(errs, fmt.Errorf("skill %q: explosion range must be >= 0, got %d", s.ID(), s.Explosion.Range))
	}
	if s.Hitbox.Range < 0 {
		errs = append(errs, fmt.Errorf("skill %q: hitbox range must be >= 0, got %d", s.ID(), s.Hitbox.Range))
	}
	return errors.Join(errs...)
}

func validateItem(it *battle.ItemData) error {
	var errs []error
	if it.ID == "" {
		errs = append(errs, errors.New("item ID must not be empty"))
	}
	if it.Use.BasePower < 0 {
		errs = append(errs, fmt.Errorf("item %q: use base_power must be >= 0, got %d", it.ID, it.Use.BasePower))
	}
	if it.Explosion.Range < 0 {
		errs = append(errs, fmt.Errorf("item %q: explosion range must be >= 0, got %d", it.ID, it.Explosion.Range))
	}
	return errors.Join(errs...)
}
