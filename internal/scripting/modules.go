package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// registerModules installs the engine table into L:
//
//	engine.log(msg)          debug log line, forwarded to Manager.Log
//	engine.roll(expr)        total of a dice expression, or nil on a bad expression
//	engine.character(id)     {id, name, faction, hp, max_hp, x, y} or nil
func (m *Manager) registerModules(L *lua.LState, scope string) {
	engine := L.NewTable()
	L.SetFuncs(engine, map[string]lua.LGFunction{
		"log": func(L *lua.LState) int {
			msg := L.CheckString(1)
			m.logger.Debug("lua", zap.String("scope", scope), zap.String("msg", msg))
			if m.Log != nil {
				m.Log(scope, msg)
			}
			return 0
		},
		"roll": func(L *lua.LState) int {
			res, err := m.roller.RollExpr(L.CheckString(1))
			if err != nil {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(lua.LNumber(res.Total()))
			return 1
		},
		"character": func(L *lua.LState) int {
			id := L.CheckString(1)
			if m.GetCharacter == nil {
				L.Push(lua.LNil)
				return 1
			}
			info := m.GetCharacter(id)
			if info == nil {
				L.Push(lua.LNil)
				return 1
			}
			t := L.NewTable()
			t.RawSetString("id", lua.LString(info.ID))
			t.RawSetString("name", lua.LString(info.Name))
			t.RawSetString("faction", lua.LString(info.Faction))
			t.RawSetString("hp", lua.LNumber(info.HP))
			t.RawSetString("max_hp", lua.LNumber(info.MaxHP))
			t.RawSetString("x", lua.LNumber(info.X))
			t.RawSetString("y", lua.LNumber(info.Y))
			L.Push(t)
			return 1
		},
	})
	L.SetGlobal("engine", engine)
}
