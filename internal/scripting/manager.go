package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Manager owns the sandboxed LState holding campaign condition hooks and
// exposes hook dispatch. The LState is single-threaded; a mutex serializes
// concurrent CallHook calls, which is sufficient for the single-interacting-
// actor usage pattern.
type Manager struct {
	mu     sync.Mutex
	state  *lua.LState
	cancel func()
	logger *zap.Logger

	// Injected after construction. nil = the campaign.* accessor returns a
	// zero value in Lua.
	GetFlag       func(name string) bool
	GetItemCount  func(itemID string) int
	GetLevel      func() int
	GetQuestStage func(questID int) int
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger must be non-nil.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// Load creates a sandboxed VM, registers the campaign.* module, then
// executes every *.lua file in scriptDir in lexicographic order. Calling
// Load again replaces the previous VM.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Hooks defined by the scripts are callable via CallHook;
// returns an error on Lua load failure, leaving any previous VM in place.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.registerModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	if m.state != nil {
		if m.cancel != nil {
			m.cancel()
		}
		m.state.Close()
	}
	m.state = L
	m.cancel = cancel
	m.mu.Unlock()
	return nil
}

// LoadString executes a Lua chunk in a fresh VM. Test helper mirroring Load.
func (m *Manager) LoadString(chunk string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.registerModules(L)
	if err := L.DoString(chunk); err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: loading chunk: %w", err)
	}

	m.mu.Lock()
	if m.state != nil {
		if m.cancel != nil {
			m.cancel()
		}
		m.state.Close()
	}
	m.state = L
	m.cancel = cancel
	m.mu.Unlock()
	return nil
}

// Close releases the VM. The Manager is unusable afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		if m.cancel != nil {
			m.cancel()
		}
		m.state.Close()
		m.state = nil
	}
}

// CallHook calls the named Lua global function. Returns (LNil, nil) if the
// hook is not defined or no VM is loaded. Lua runtime errors are logged at
// Warn level and surfaced to the caller, which fails the condition closed.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == nil {
		m.logger.Info("scripting: no VM loaded", zap.String("hook", hook))
		return lua.LNil, nil
	}

	fn := m.state.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	if err := m.state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, err
	}

	ret := m.state.Get(-1)
	m.state.Pop(1)
	return ret, nil
}

// registerModules registers the read-only campaign.* table into L. Hooks
// query game state exclusively through it; there is no mutation surface.
func (m *Manager) registerModules(L *lua.LState) {
	campaign := L.NewTable()

	L.SetField(campaign, "flag", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		val := false
		if m.GetFlag != nil {
			val = m.GetFlag(name)
		}
		L.Push(lua.LBool(val))
		return 1
	}))

	L.SetField(campaign, "item_count", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		n := 0
		if m.GetItemCount != nil {
			n = m.GetItemCount(id)
		}
		L.Push(lua.LNumber(n))
		return 1
	}))

	L.SetField(campaign, "level", L.NewFunction(func(L *lua.LState) int {
		lvl := 0
		if m.GetLevel != nil {
			lvl = m.GetLevel()
		}
		L.Push(lua.LNumber(lvl))
		return 1
	}))

	L.SetField(campaign, "quest_stage", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckInt(1)
		stage := 0
		if m.GetQuestStage != nil {
			stage = m.GetQuestStage(id)
		}
		L.Push(lua.LNumber(stage))
		return 1
	}))

	L.SetGlobal("campaign", campaign)
}
