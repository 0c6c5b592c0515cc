package world

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlFloorFile is the top-level YAML structure for floor scenario files.
type yamlFloorFile struct {
	Floor yamlFloor `yaml:"floor"`
}

type yamlFloor struct {
	ID         string          `yaml:"id"`
	Width      int             `yaml:"width"`
	Height     int             `yaml:"height"`
	Turn       int             `yaml:"turn"`
	Characters []yamlCharacter `yaml:"characters"`
}

type yamlCharacter struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	Faction    string   `yaml:"faction"`
	Wild       bool     `yaml:"wild"`
	X          int      `yaml:"x"`
	Y          int      `yaml:"y"`
	Dir        string   `yaml:"dir"`
	HP         int      `yaml:"hp"`
	MaxHP      int      `yaml:"max_hp"`
	Intrinsics []string `yaml:"intrinsics"`
	Equipped   string   `yaml:"equipped"`
	Skills     []string `yaml:"skills"`
	Tactic     string   `yaml:"tactic"`
}

// LoadFloorFromFile reads and validates a floor scenario YAML file.
//
// Precondition: path must point to a valid YAML floor file.
// Postcondition: Returns a validated Floor or a non-nil error.
func LoadFloorFromFile(path string) (*Floor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading floor file %s: %w", path, err)
	}
	return LoadFloorFromBytes(data)
}

// LoadFloorFromBytes parses and validates a floor from YAML bytes.
//
// Postcondition: Returns a validated Floor or a non-nil error.
func LoadFloorFromBytes(data []byte) (*Floor, error) {
	var file yamlFloorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing floor YAML: %w", err)
	}
	chars := make([]*Character, 0, len(file.Floor.Characters))
	for _, yc := range file.Floor.Characters {
		c, err := convertYAMLCharacter(yc)
		if err != nil {
			return nil, fmt.Errorf("floor %q: %w", file.Floor.ID, err)
		}
		chars = append(chars, c)
	}
	f, err := NewFloor(file.Floor.ID, file.Floor.Width, file.Floor.Height, chars)
	if err != nil {
		return nil, fmt.Errorf("validating floor: %w", err)
	}
	f.turn = file.Floor.Turn
	return f, nil
}

func convertYAMLCharacter(yc yamlCharacter) (*Character, error) {
	faction := Faction(yc.Faction)
	switch faction {
	case FactionPlayer, FactionAlly, FactionFoe:
	default:
		return nil, fmt.Errorf("character %q: unknown faction %q", yc.ID, yc.Faction)
	}
	dir := Direction(yc.Dir)
	if dir == DirNone {
		dir = South
	}
	if !dir.IsStandard() {
		return nil, fmt.Errorf("character %q: unknown direction %q", yc.ID, yc.Dir)
	}
	if yc.MaxHP <= 0 {
		return nil, fmt.Errorf("character %q: max_hp must be > 0", yc.ID)
	}
	hp := yc.HP
	if hp == 0 {
		hp = yc.MaxHP
	}
	name := yc.Name
	if name == "" {
		name = yc.ID
	}
	return &Character{
		ID:           yc.ID,
		Name:         name,
		Faction:      faction,
		Wild:         yc.Wild,
		Loc:          Loc{X: yc.X, Y: yc.Y},
		Dir:          dir,
		HP:           hp,
		MaxHP:        yc.MaxHP,
		Intrinsics:   yc.Intrinsics,
		EquippedItem: yc.Equipped,
		Skills:       yc.Skills,
		Tactic:       yc.Tactic,
	}, nil
}
