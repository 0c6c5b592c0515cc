package main

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

// consoleShow is a text Presenter: log lines go to out, effects go to the
// debug log, and every animation lasts a fixed number of frames.
type consoleShow struct {
	out        io.Writer
	logger     *zap.Logger
	animFrames int
	busy       map[*world.Character]int
	lines      []string
}

func newConsoleShow(out io.Writer, logger *zap.Logger, animFrames int) *consoleShow {
	return &consoleShow{
		out:        out,
		logger:     logger,
		animFrames: animFrames,
		busy:       make(map[*world.Character]int),
	}
}

func (s *consoleShow) PlayVFX(fx string, loc world.Loc, dir world.Direction) {
	s.logger.Debug("vfx", zap.String("fx", fx), zap.Stringer("loc", loc), zap.String("dir", string(dir)))
}

func (s *consoleShow) PlaySound(sound string) {
	s.logger.Debug("sound", zap.String("sound", sound))
}

func (s *consoleShow) LogMessage(msg string) {
	s.lines = append(s.lines, msg)
	fmt.Fprintln(s.out, msg)
}

func (s *consoleShow) StartAnimation(ch *world.Character, anim string) {
	s.logger.Debug("animation", zap.String("character", ch.ID), zap.String("anim", anim))
	s.busy[ch] = s.animFrames
}

func (s *consoleShow) Occupied(ch *world.Character) bool {
	return s.busy[ch] > 0
}

// Tick advances every running animation by one frame.
func (s *consoleShow) Tick() {
	for ch, n := range s.busy {
		if n <= 1 {
			delete(s.busy, ch)
			continue
		}
		s.busy[ch] = n - 1
	}
}
