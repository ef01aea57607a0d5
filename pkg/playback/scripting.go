package playback

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dop251/goja"
)

// exprPattern matches ${...} expressions in step values.
var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ScriptEngine evaluates ${...} expressions in step values. Bare variable
// references resolve from the configured vars; anything else is evaluated
// as a JavaScript expression with the vars in scope.
type ScriptEngine struct {
	vm   *goja.Runtime
	vars map[string]string
}

// NewScriptEngine creates a script engine with the given variables bound.
func NewScriptEngine(vars map[string]string) *ScriptEngine {
	se := &ScriptEngine{
		vm:   goja.New(),
		vars: make(map[string]string),
	}
	for k, v := range vars {
		se.SetVariable(k, v)
	}
	return se
}

// SetVariable binds a variable in both the lookup map and the JS scope.
func (se *ScriptEngine) SetVariable(name, value string) {
	se.vars[name] = value
	se.vm.Set(name, value)
}

// Expand replaces every ${...} in text. Unresolvable expressions fail
// rather than silently passing the literal through.
func (se *ScriptEngine) Expand(text string) (string, error) {
	if !strings.Contains(text, "${") {
		return text, nil
	}

	var evalErr error
	out := exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-1])
		if v, ok := se.vars[expr]; ok {
			return v
		}
		val, err := se.vm.RunString(expr)
		if err != nil {
			if evalErr == nil {
				evalErr = fmt.Errorf("expand %q: %w", expr, err)
			}
			return match
		}
		return val.String()
	})
	if evalErr != nil {
		return "", evalErr
	}
	return out, nil
}

// EvalBool evaluates a JavaScript expression and reports its truthiness.
func (se *ScriptEngine) EvalBool(expr string) (bool, error) {
	val, err := se.vm.RunString(expr)
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", expr, err)
	}
	return val.ToBoolean(), nil
}
