// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pagetype

import (
	"context"
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"
	"sync"

	lua "github.com/Shopify/go-lua"

	"github.com/bureau-foundation/courseware/lib/document"
)

// classGlobal holds the bound class table inside a sandbox.
const classGlobal = "__page_class"

// hookInterval is how many VM instructions run between context checks.
const hookInterval = 1000

// LuaBinder binds page types written in Lua.
//
// A module is a Lua chunk that either returns a table of classes or
// defines them as globals. A class is a table with a "body" field and
// an optional "title" field, each either a string or a function
// called as f(page, location) where page is the descriptor converted
// to Lua tables. Body returns markup and title returns plain text.
//
//	local Note = {}
//	function Note.title(page) return page.heading end
//	function Note.body(page) return "**" .. page.text .. "**" end
//	return { Note = Note }
type LuaBinder struct{}

// Bind runs code in a fresh sandbox and checks that className is a
// usable class.
func (LuaBinder) Bind(ctx context.Context, moduleName string, code []byte, className string) (Factory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	state := newSandbox()

	if err := lua.LoadBuffer(state, string(code), "@"+moduleName, "t"); err != nil {
		return nil, fmt.Errorf("compiling %s: %w", moduleName, err)
	}
	release := watchContext(ctx, state)
	err := state.ProtectedCall(0, 1, 0)
	release()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("running %s: %w", moduleName, ctxErr)
		}
		return nil, fmt.Errorf("running %s: %w", moduleName, err)
	}
	if state.IsTable(-1) {
		state.Field(-1, className)
	} else {
		state.Global(className)
	}
	if !state.IsTable(-1) {
		return nil, fmt.Errorf("%w: %s defines no class %s", ErrNotFound, moduleName, className)
	}
	state.Field(-1, "body")
	if !state.IsString(-1) && !state.IsFunction(-1) {
		return nil, fmt.Errorf("class %s in %s has no body", className, moduleName)
	}
	state.Pop(1)
	state.SetGlobal(classGlobal)
	state.SetTop(0)

	class := &luaClass{
		name:   className,
		module: moduleName,
		state:  state,
	}
	return func(location string, desc document.Value) (Handler, error) {
		return &luaPage{class: class, location: location, desc: desc}, nil
	}, nil
}

// luaClass owns the sandbox its class was bound in. A lua.State is not
// safe for concurrent use, so calls are serialized.
type luaClass struct {
	name   string
	module string

	mu    sync.Mutex
	state *lua.State
}

// call returns the class's field method: the string itself, or the
// string returned by calling it with the page.
func (c *luaClass) call(ctx context.Context, method string, page *luaPage) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	l := c.state
	defer l.SetTop(0)

	l.Global(classGlobal)
	l.Field(-1, method)
	switch {
	case l.IsNil(-1):
		return "", false, nil
	case l.IsFunction(-1):
		pushValue(l, page.desc.Raw())
		l.PushString(page.location)
		release := watchContext(ctx, l)
		err := l.ProtectedCall(2, 1, 0)
		release()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			return "", false, fmt.Errorf("%s: %s.%s: %w", page.location, c.name, method, err)
		}
	}
	result, ok := l.ToString(-1)
	if !ok {
		return "", false, fmt.Errorf("%s: %s.%s is %s, want a string", page.location, c.name, method, lua.TypeNameOf(l, -1))
	}
	return result, true, nil
}

type luaPage struct {
	class    *luaClass
	location string
	desc     document.Value
}

func (p *luaPage) TypeName() string {
	module := strings.TrimSuffix(path.Base(p.class.module), ".lua")
	return repoPrefix + module + "." + p.class.name
}

func (p *luaPage) Title(ctx context.Context) (string, error) {
	title, ok, err := p.class.call(ctx, "title", p)
	if err != nil {
		return "", err
	}
	if !ok {
		if title, ok = p.desc.Field("title").AsString(); !ok {
			return "", fmt.Errorf("%s: no title found", p.location)
		}
	}
	return title, nil
}

func (p *luaPage) Body(ctx context.Context) (string, error) {
	body, _, err := p.class.call(ctx, "body", p)
	return body, err
}

// watchContext raises a Lua error inside the running chunk once ctx
// is done. The returned function removes the hook.
func watchContext(ctx context.Context, l *lua.State) (release func()) {
	lua.SetDebugHook(l, func(state *lua.State, _ lua.Debug) {
		if err := ctx.Err(); err != nil {
			lua.Errorf(state, "%s", err.Error())
		}
	}, lua.MaskCount, hookInterval)
	return func() { lua.SetDebugHook(l, nil, 0, 0) }
}

// newSandbox opens the pure-computation standard libraries and removes
// every way of loading further code.
func newSandbox() *lua.State {
	state := lua.NewState()
	libraries := []lua.RegistryFunction{
		{Name: "_G", Function: lua.BaseOpen},
		{Name: "string", Function: lua.StringOpen},
		{Name: "table", Function: lua.TableOpen},
		{Name: "math", Function: lua.MathOpen},
	}
	for _, library := range libraries {
		lua.Require(state, library.Name, library.Function, true)
		state.Pop(1)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "collectgarbage"} {
		state.PushNil()
		state.SetGlobal(name)
	}
	return state
}

// pushValue pushes a document tree as Lua values. Lists become
// sequences starting at 1.
func pushValue(l *lua.State, raw any) {
	switch value := raw.(type) {
	case nil:
		l.PushNil()
	case string:
		l.PushString(value)
	case bool:
		l.PushBoolean(value)
	case int:
		l.PushInteger(value)
	case float64:
		l.PushNumber(value)
	case []any:
		l.CreateTable(len(value), 0)
		for i, item := range value {
			pushValue(l, item)
			l.RawSetInt(-2, i+1)
		}
	case map[string]any:
		l.CreateTable(0, len(value))
		for _, key := range slices.Sorted(maps.Keys(value)) {
			pushValue(l, value[key])
			l.SetField(-2, key)
		}
	default:
		l.PushNil()
	}
}
