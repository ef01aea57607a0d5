package playback

import "testing"

func TestExpandBareVariable(t *testing.T) {
	se := NewScriptEngine(map[string]string{"user": "dana", "domain": "example.com"})

	got, err := se.Expand("${user}@${domain}")
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if got != "dana@example.com" {
		t.Errorf("expected dana@example.com, got %q", got)
	}
}

func TestExpandPassesPlainTextThrough(t *testing.T) {
	se := NewScriptEngine(nil)
	got, err := se.Expand("no placeholders here")
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if got != "no placeholders here" {
		t.Errorf("plain text mangled: %q", got)
	}
}

func TestExpandEvaluatesExpressions(t *testing.T) {
	se := NewScriptEngine(map[string]string{"base": "order"})

	got, err := se.Expand("${base + '-' + (40 + 2)}")
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if got != "order-42" {
		t.Errorf("expected order-42, got %q", got)
	}
}

func TestExpandFailsOnBadExpression(t *testing.T) {
	se := NewScriptEngine(nil)
	if _, err := se.Expand("${this is not javascript}"); err == nil {
		t.Fatal("expected error for invalid expression")
	}
}

func TestSetVariableOverrides(t *testing.T) {
	se := NewScriptEngine(map[string]string{"env": "staging"})
	se.SetVariable("env", "production")

	got, err := se.Expand("${env}")
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if got != "production" {
		t.Errorf("expected production, got %q", got)
	}
}

func TestEvalBool(t *testing.T) {
	se := NewScriptEngine(map[string]string{"role": "admin"})

	cases := []struct {
		expr string
		want bool
	}{
		{"role === 'admin'", true},
		{"role === 'viewer'", false},
		{"1 + 1 === 2", true},
		{"''", false},
	}
	for _, tc := range cases {
		got, err := se.EvalBool(tc.expr)
		if err != nil {
			t.Fatalf("EvalBool(%q) returned error: %v", tc.expr, err)
		}
		if got != tc.want {
			t.Errorf("EvalBool(%q) = %v, expected %v", tc.expr, got, tc.want)
		}
	}
}
