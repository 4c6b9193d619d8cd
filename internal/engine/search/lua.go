package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultLuaTimeout bounds one call of a Lua scoring function.
const DefaultLuaTimeout = 100 * time.Millisecond

// ErrLuaScorer indicates a scoring script that could not be loaded or run.
var ErrLuaScorer = errors.New("lua scorer")

// LuaScorer ranks words with a Lua function:
//
//	function score(query, word, matches) ... end
//
// query and word are strings and matches is an array of zero-based
// character indices. A call that fails or does not return a number falls
// back to the Fallback scorer and records the error.
type LuaScorer struct {
	Fallback Scorer

	mu      sync.Mutex
	state   *lua.LState
	fn      lua.LValue
	timeout time.Duration
	lastErr error
}

// NewLuaScorer loads script into a fresh state with only the base, table,
// string and math libraries open.
func NewLuaScorer(script string, timeout time.Duration) (*LuaScorer, error) {
	if timeout <= 0 {
		timeout = DefaultLuaTimeout
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	if err := L.DoString(script); err != nil {
		L.Close()
		return nil, fmt.Errorf("%w: load: %v", ErrLuaScorer, err)
	}
	fn := L.GetGlobal("score")
	if fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("%w: score is not a function (got %s)", ErrLuaScorer, fn.Type())
	}
	return &LuaScorer{Fallback: DefaultWeights(), state: L, fn: fn, timeout: timeout}, nil
}

// Score implements Scorer.
func (s *LuaScorer) Score(queryRunes, originalRunes, textRunes []rune, matches []int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	score, err := s.call(queryRunes, originalRunes, matches)
	if err != nil {
		s.lastErr = err
		return s.Fallback.Score(queryRunes, originalRunes, textRunes, matches)
	}
	return score
}

func (s *LuaScorer) call(queryRunes, originalRunes []rune, matches []int) (score int, err error) {
	if s.state == nil {
		return 0, fmt.Errorf("%w: closed", ErrLuaScorer)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrLuaScorer, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.state.SetContext(ctx)
	defer s.state.RemoveContext()

	tbl := s.state.NewTable()
	for _, m := range matches {
		tbl.Append(lua.LNumber(m))
	}
	err = s.state.CallByParam(lua.P{Fn: s.fn, NRet: 1, Protect: true},
		lua.LString(string(queryRunes)), lua.LString(string(originalRunes)), tbl)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrLuaScorer, err)
	}
	ret := s.state.Get(-1)
	s.state.Pop(1)
	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("%w: score returned %s", ErrLuaScorer, ret.Type())
	}
	return int(n), nil
}

// Err returns the last error raised by the script, if any.
func (s *LuaScorer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Close releases the Lua state.
func (s *LuaScorer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != nil {
		s.state.Close()
		s.state = nil
	}
}
