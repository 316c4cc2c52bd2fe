package conditions

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/okusnadi/SabberStone/internal/game/enums"
	"github.com/okusnadi/SabberStone/internal/game/model"
)

var (
	envOnce sync.Once
	env     *cel.Env
	envErr  error
)

func exprEnv() (*cel.Env, error) {
	envOnce.Do(func() {
		env, envErr = cel.NewEnv(
			cel.Variable("entity", cel.MapType(cel.StringType, cel.DynType)),
		)
	})
	return env, envErr
}

// Expr compiles a CEL expression into a condition. The expression sees one
// variable, entity, with the keys id, card_id, kind, zone, position,
// controller and tags (every named game tag, by name). It must evaluate to a
// bool; a runtime error counts as a non-match.
//
//	entity.kind == "MINION" && entity.tags.TAUNT > 0
func Expr(source string) (*SelfCondition, error) {
	e, err := exprEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression environment: %w", err)
	}
	ast, iss := e.Compile(source)
	if iss.Err() != nil {
		return nil, fmt.Errorf("failed to compile condition %q: %w", source, iss.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("condition %q yields %s, want bool", source, ast.OutputType())
	}
	prg, err := e.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to plan condition %q: %w", source, err)
	}

	return New(source, func(p model.Playable) bool {
		out, _, err := prg.Eval(map[string]any{"entity": Bindings(p)})
		if err != nil {
			return false
		}
		b, ok := out.Value().(bool)
		return ok && b
	}), nil
}

// Bindings is the value bound to the entity variable for p.
func Bindings(p model.Playable) map[string]any {
	tags := make(map[string]any)
	for _, name := range enums.GameTagNames() {
		tag, _ := enums.ParseGameTag(name)
		tags[name] = int64(p.Tag(tag))
	}
	return map[string]any{
		"id":         int64(p.ID()),
		"card_id":    p.Card().ID,
		"kind":       string(p.Card().Type),
		"zone":       p.ZoneType().String(),
		"position":   int64(p.ZonePosition()),
		"controller": int64(p.ControllerID()),
		"tags":       tags,
	}
}
