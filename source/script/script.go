// Package script compiles Lua event scripts into replayable sessions.
//
// A script runs once, in a sandbox with only the base, table, string
// and math libraries, and lays key transitions onto a virtual timeline
// through four registered functions:
//
//	wait(ms)            advance the timeline cursor
//	press(key [, ms])   press at the cursor, or at an explicit offset
//	release(key [, ms]) release at the cursor, or at an explicit offset
//	hold(key, ms)       press at the cursor, release ms later, advance
//
// Keys are named as in the key package ("SPACE", "a", "F1"). The
// result is a replay.Session, so scripted input is played, recorded
// and inspected with exactly the tools used for captured sessions.
package script

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/typematic/key"
	"github.com/dshills/typematic/source"
	"github.com/dshills/typematic/source/replay"
)

// timeline accumulates events while the script runs.
type timeline struct {
	cursor time.Duration
	events []replay.TimedEvent
}

func (tl *timeline) add(at time.Duration, name string, pressed bool) {
	tl.events = append(tl.events, replay.TimedEvent{
		At:      replay.Offset(at),
		Key:     name,
		Pressed: pressed,
	})
}

// register installs the script API into L.
func (tl *timeline) register(L *lua.LState) {
	// checkKey resolves argument 1 to a canonical key name or raises.
	checkKey := func(L *lua.LState) string {
		name := L.CheckString(1)
		code, ok := key.FromName(name)
		if !ok {
			L.RaiseError("unknown key %q", name)
		}
		return code.String()
	}

	// checkOffset resolves the optional millisecond argument at n,
	// defaulting to the cursor.
	checkOffset := func(L *lua.LState, n int) time.Duration {
		ms := L.OptNumber(n, lua.LNumber(float64(tl.cursor)/float64(time.Millisecond)))
		if ms < 0 {
			L.RaiseError("negative offset %v", float64(ms))
		}
		return time.Duration(float64(ms) * float64(time.Millisecond))
	}

	L.SetGlobal("wait", L.NewFunction(func(L *lua.LState) int {
		ms := L.CheckNumber(1)
		if ms < 0 {
			L.RaiseError("negative wait %v", float64(ms))
		}
		tl.cursor += time.Duration(float64(ms) * float64(time.Millisecond))
		return 0
	}))

	L.SetGlobal("press", L.NewFunction(func(L *lua.LState) int {
		name := checkKey(L)
		tl.add(checkOffset(L, 2), name, true)
		return 0
	}))

	L.SetGlobal("release", L.NewFunction(func(L *lua.LState) int {
		name := checkKey(L)
		tl.add(checkOffset(L, 2), name, false)
		return 0
	}))

	L.SetGlobal("hold", L.NewFunction(func(L *lua.LState) int {
		name := checkKey(L)
		ms := L.CheckNumber(2)
		if ms < 0 {
			L.RaiseError("negative hold %v", float64(ms))
		}
		d := time.Duration(float64(ms) * float64(time.Millisecond))
		tl.add(tl.cursor, name, true)
		tl.add(tl.cursor+d, name, false)
		tl.cursor += d
		return 0
	}))
}

// newState returns a sandboxed Lua state with only the safe libraries.
func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	return L
}

// compile runs the prepared state against one chunk loader.
func compile(name string, run func(L *lua.LState) error) (replay.Session, error) {
	tl := &timeline{}
	L := newState()
	defer L.Close()
	tl.register(L)

	if err := run(L); err != nil {
		return replay.Session{}, fmt.Errorf("script %s: %w", name, err)
	}

	// Scripts may interleave keys at explicit offsets; the timeline
	// orders by offset, keeping same-instant events in script order.
	sort.SliceStable(tl.events, func(i, j int) bool {
		return tl.events[i].At < tl.events[j].At
	})

	s := replay.Session{
		ID:     "script-" + uuid.NewString(),
		Events: tl.events,
	}
	if err := s.Validate(); err != nil {
		return replay.Session{}, fmt.Errorf("script %s: %w", name, err)
	}
	return s, nil
}

// Compile runs the script file at path and returns its session.
func Compile(path string) (replay.Session, error) {
	return compile(path, func(L *lua.LState) error {
		return L.DoFile(path)
	})
}

// CompileString runs an in-memory script and returns its session.
func CompileString(src string) (replay.Session, error) {
	return compile("(inline)", func(L *lua.LState) error {
		return L.DoString(src)
	})
}

// New compiles the script at path and returns a source playing its
// session. opts are passed through to the replay player.
func New(path string, opts ...replay.PlayerOption) (source.Source[key.Code], error) {
	s, err := Compile(path)
	if err != nil {
		return nil, err
	}
	return replay.NewPlayer(s, opts...)
}
