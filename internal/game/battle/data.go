package battle

import (
	"cmp"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Owner identifies the data object a handler belongs to: a move, an item, or
// an intrinsic ability.
type Owner interface {
	OwnerID() string
	// OwnerName is the display name used in battle log lines.
	OwnerName() string
}

// Entry is one handler in a priority list.
type Entry struct {
	Priority int
	Handler  Handler
}

// UnmarshalYAML decodes an entry of the form
//
//	{priority: 0, type: area_dampen, div: 2}
//
// The remaining keys configure the handler registered under type.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	var head struct {
		Priority int    `yaml:"priority"`
		Type     string `yaml:"type"`
	}
	if err := node.Decode(&head); err != nil {
		return err
	}
	h, err := NewHandler(head.Type)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	if err := node.Decode(h); err != nil {
		return fmt.Errorf("line %d: configuring %q: %w", node.Line, head.Type, err)
	}
	if v, ok := h.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("line %d: %q: %w", node.Line, head.Type, err)
		}
	}
	e.Priority = head.Priority
	e.Handler = h
	return nil
}

// PriorityList is an ordered handler list. Order within equal priorities is
// the declaration order.
type PriorityList []Entry

// Add appends h at priority.
func (l *PriorityList) Add(priority int, h Handler) {
	*l = append(*l, Entry{Priority: priority, Handler: h})
}

// Clone deep-copies the list and every handler in it.
func (l PriorityList) Clone() PriorityList {
	if l == nil {
		return nil
	}
	out := make(PriorityList, len(l))
	for i, e := range l {
		out[i] = Entry{Priority: e.Priority, Handler: e.Handler.Clone()}
	}
	return out
}

// Events groups the phase lists a move, item, or intrinsic contributes.
type Events struct {
	BeforeExplosions PriorityList `yaml:"before_explosions"`
	// BeforeHits run while the holder is the user of the action.
	BeforeHits PriorityList `yaml:"before_hits"`
	// BeforeBeingHits run while the holder is the one being hit.
	BeforeBeingHits PriorityList `yaml:"before_being_hits"`
	OnHits          PriorityList `yaml:"on_hits"`
	AfterActions    PriorityList `yaml:"after_actions"`
}

// Clone deep-copies every list.
func (e Events) Clone() Events {
	return Events{
		BeforeExplosions: e.BeforeExplosions.Clone(),
		BeforeHits:       e.BeforeHits.Clone(),
		BeforeBeingHits:  e.BeforeBeingHits.Clone(),
		OnHits:           e.OnHits.Clone(),
		AfterActions:     e.AfterActions.Clone(),
	}
}

// lists returns the lists that apply in phase for a holder acting as the
// user and/or the one being hit.
func (e *Events) lists(phase Phase, asUser, asTarget bool) []PriorityList {
	switch phase {
	case PhaseBeforeExplosion:
		return []PriorityList{e.BeforeExplosions}
	case PhaseBeforeHit:
		var out []PriorityList
		if asUser {
			out = append(out, e.BeforeHits)
		}
		if asTarget {
			out = append(out, e.BeforeBeingHits)
		}
		return out
	case PhaseOnHit:
		if asUser {
			return []PriorityList{e.OnHits}
		}
	case PhaseAfterAction:
		return []PriorityList{e.AfterActions}
	}
	return nil
}

// MoveData is the per-use battle data of an action.
type MoveData struct {
	ID       string   `yaml:"id"`
	Category Category `yaml:"category"`
	Element  Element  `yaml:"element"`
	// BasePower marks the move as damaging; 0 means no base power.
	BasePower int    `yaml:"base_power"`
	Events    `yaml:",inline"`
}

// OwnerID implements Owner.
func (d *MoveData) OwnerID() string { return d.ID }

// OwnerName implements Owner. Move data carries no display name.
func (d *MoveData) OwnerName() string { return d.ID }

// Clone deep-copies d including its handler lists.
func (d *MoveData) Clone() *MoveData {
	c := *d
	c.Events = d.Events.Clone()
	return &c
}

// Skill is a move template as loaded from content.
type Skill struct {
	Name      string    `yaml:"name"`
	Data      MoveData  `yaml:",inline"`
	Hitbox    Hitbox    `yaml:"hitbox"`
	Explosion Explosion `yaml:"explosion"`
	// Strikes is how many times the hit phases repeat; 0 is treated as 1.
	Strikes int `yaml:"strikes"`
}

// ID returns the skill identifier.
func (s *Skill) ID() string { return s.Data.ID }

// ItemData is an item template.
type ItemData struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// Edible items are eaten by wild characters rather than caught.
	Edible bool `yaml:"edible"`
	// Ammo items are thrown as projectiles.
	Ammo bool `yaml:"ammo"`
	// Recruit items invite the character they hit to join the team.
	Recruit bool `yaml:"recruit"`
	// Use is the battle data of using or throwing the item.
	Use       MoveData  `yaml:"use"`
	Explosion Explosion `yaml:"explosion"`
	// Throw is the throwing hitbox; a zero value means a 10-tile linear throw.
	Throw  Hitbox `yaml:"throw"`
	Events `yaml:",inline"`
}

// OwnerID implements Owner.
func (d *ItemData) OwnerID() string { return d.ID }

// OwnerName implements Owner.
func (d *ItemData) OwnerName() string { return cmp.Or(d.Name, d.ID) }

// Clone deep-copies d including its handler lists.
func (d *ItemData) Clone() *ItemData {
	c := *d
	c.Use = *d.Use.Clone()
	c.Explosion = d.Explosion.Clone()
	c.Events = d.Events.Clone()
	return &c
}

// IntrinsicData is a passive ability whose handlers react to any action on
// the floor.
type IntrinsicData struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Events      `yaml:",inline"`
}

// OwnerID implements Owner.
func (d *IntrinsicData) OwnerID() string { return d.ID }

// OwnerName implements Owner.
func (d *IntrinsicData) OwnerName() string { return cmp.Or(d.Name, d.ID) }

// Clone deep-copies d including its handler lists.
func (d *IntrinsicData) Clone() *IntrinsicData {
	c := *d
	c.Events = d.Events.Clone()
	return &c
}
