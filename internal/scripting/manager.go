package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonfx/internal/game/dice"
)

// GlobalScope is the reserved scope for shared scripts loaded via LoadGlobal.
// CallHook falls back to it when the requested scope has no VM.
const GlobalScope = "__global__"

// CharacterInfo is a snapshot of a character passed to Lua callbacks.
type CharacterInfo struct {
	ID      string
	Name    string
	Faction string
	HP      int
	MaxHP   int
	X, Y    int
}

type vm struct {
	mu     sync.Mutex
	L      *lua.LState
	cancel func()
	limit  int
}

// Manager owns one sandboxed VM per script scope (for example "moves" or
// "ai") and dispatches hook calls into them.
//
// Manager is safe for concurrent CallHook once loading is done; calls into
// the same scope are serialized.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	roller *dice.Roller
	logger *zap.Logger

	// Injected after construction. nil = engine.character returns nil.
	GetCharacter func(id string) *CharacterInfo
	// Log receives engine.log messages in addition to the debug log.
	Log func(scope, msg string)
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		roller: roller,
		logger: logger,
	}
}

// LoadScope creates a VM for scope, registers the engine module, and runs
// every *.lua file in dir in lexicographic order. Loading a scope twice
// replaces the previous VM.
//
// Precondition: scope must be non-empty; dir must be a readable directory.
func (m *Manager) LoadScope(scope, dir string, instLimit int) error {
	if scope == "" {
		return fmt.Errorf("scripting: scope must not be empty")
	}
	L, cancel := NewSandboxedState(instLimit)
	m.registerModules(L, scope)

	entries, err := os.ReadDir(dir)
	if err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", dir, scope, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	for _, path := range files {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, scope, err)
		}
	}

	m.mu.Lock()
	old := m.vms[scope]
	m.vms[scope] = &vm{L: L, cancel: cancel, limit: instLimit}
	m.mu.Unlock()
	if old != nil {
		old.close()
	}
	m.logger.Info("scripts loaded", zap.String("scope", scope), zap.Int("files", len(files)))
	return nil
}

// LoadGlobal loads dir into GlobalScope.
func (m *Manager) LoadGlobal(dir string, instLimit int) error {
	return m.LoadScope(GlobalScope, dir, instLimit)
}

// Scopes returns the loaded scopes in sorted order.
func (m *Manager) Scopes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.vms))
	for k := range m.vms {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// CallHook calls the Lua global function hook in scope, falling back to
// GlobalScope. A missing VM or hook returns (LNil, nil). Lua runtime errors
// are logged at Warn and never propagated.
//
// Postcondition: returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	v, ok := m.vms[scope]
	if !ok {
		v = m.vms[GlobalScope]
	}
	m.mu.RUnlock()

	if v == nil {
		m.logger.Info("scripting: no VM for scope",
			zap.String("scope", scope),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.L == nil {
		return lua.LNil, nil
	}
	fn := v.L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, nil
	}
	// Each call gets a fresh instruction budget.
	ctx, cancel := newCountingContext(budget(v.limit))
	defer cancel()
	v.L.SetContext(ctx)
	if err := v.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", scope),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}
	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret, nil
}

// Close releases every VM. CallHook afterwards behaves as if nothing was loaded.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()
	for _, v := range vms {
		v.close()
	}
}

func (v *vm) close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.L == nil {
		return
	}
	v.cancel()
	v.L.Close()
	v.L = nil
}
