package battle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/dungeonfx/internal/game/battle"
	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

func TestDriver_AnimationWaitHoldsWhileOccupied(t *testing.T) {
	show := newFakeShow()
	show.animFrames = 3
	ch := char("c", world.FactionPlayer, 0, 0)
	resumed := false
	seq := func(yield func(battle.Wait) bool) {
		show.StartAnimation(ch, battle.AnimSpin)
		if !yield(battle.AnimationWait(ch)) {
			return
		}
		resumed = true
	}

	d := battle.NewDriver(show, seq)
	assert.False(t, d.Step(), "first step reaches the suspension")
	for range 3 {
		assert.False(t, d.Step())
		assert.False(t, resumed)
	}
	assert.True(t, d.Step())
	assert.True(t, resumed)
	assert.True(t, d.Step(), "finished drivers stay finished")
}

func TestDriver_FrameWaitCountsSteps(t *testing.T) {
	show := newFakeShow()
	seq := func(yield func(battle.Wait) bool) {
		yield(battle.FrameWait(3))
	}
	d := battle.NewDriver(show, seq)
	done := 0
	for !d.Step() {
		done++
	}
	// One step to reach the wait, two more while it counts down.
	assert.Equal(t, 3, done)
	assert.Equal(t, 4, d.Steps())
}

func TestDriver_RunLimit(t *testing.T) {
	show := newFakeShow()
	stopped := false
	seq := func(yield func(battle.Wait) bool) {
		for {
			if !yield(battle.FrameWait(1)) {
				return
			}
		}
	}
	d := battle.NewDriver(show, func(yield func(battle.Wait) bool) {
		seq(yield)
		stopped = true
	})
	ticks := 0
	err := d.Run(10, func() { ticks++ })
	assert.Error(t, err)
	assert.Equal(t, 10, ticks)
	assert.True(t, stopped)
	assert.True(t, d.Step())
}

func TestDriver_CloseStopsSequence(t *testing.T) {
	show := newFakeShow()
	after := false
	d := battle.NewDriver(show, func(yield func(battle.Wait) bool) {
		if !yield(battle.FrameWait(5)) {
			return
		}
		after = true
	})
	assert.False(t, d.Step())
	d.Close()
	d.Close()
	assert.True(t, d.Step())
	assert.False(t, after)
}
