package lang

import "testing"

func TestDetectFile(t *testing.T) {
	tests := []struct {
		filename string
		want     string
		ok       bool
	}{
		{"Main.java", "java", true},
		{"solution.PY", "python", true},
		{"a.cpp", "cpp", true},
		{"a.cc", "cpp", true},
		{"util.h", "c", true},
		{"mod.rs", "rust", true},
		{"readme.txt", "", false},
		{"Makefile", "", false},
	}

	for _, tt := range tests {
		got, ok := DetectFile(tt.filename)
		if got != tt.want || ok != tt.ok {
			t.Errorf("DetectFile(%q) = (%q, %v), want (%q, %v)", tt.filename, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDetectDominant(t *testing.T) {
	got, ok := DetectDominant([]string{"a.py", "b.py", "c.java"})
	if !ok || got != "python" {
		t.Errorf("DetectDominant = (%q, %v), want (python, true)", got, ok)
	}

	// Tie broken by first appearance.
	got, ok = DetectDominant([]string{"x.java", "y.py"})
	if !ok || got != "java" {
		t.Errorf("DetectDominant tie = (%q, %v), want (java, true)", got, ok)
	}

	if _, ok := DetectDominant([]string{"notes.md", "data.json"}); ok {
		t.Error("DetectDominant should not recognize any language")
	}
}

func TestFromJudge(t *testing.T) {
	if l, ok := FromJudge("cc.cc14o2"); !ok || l != CPP {
		t.Errorf("FromJudge(cc.cc14o2) = (%v, %v), want (cpp, true)", l, ok)
	}
	if l, ok := FromJudge("py.pypy3"); !ok || l != Python3 {
		t.Errorf("FromJudge(py.pypy3) = (%v, %v), want (python3, true)", l, ok)
	}
	// Prefix fallback for unseen variants.
	if l, ok := FromJudge("cc.cc23"); !ok || l != CPP {
		t.Errorf("FromJudge(cc.cc23) = (%v, %v), want (cpp, true)", l, ok)
	}
	// Unknown stays unknown.
	if l, ok := FromJudge("brainfuck"); ok || l != Text {
		t.Errorf("FromJudge(brainfuck) = (%v, %v), want (text, false)", l, ok)
	}
}

func TestExtensionForJudge(t *testing.T) {
	if got := ExtensionForJudge("cc.cc17"); got != ".cpp" {
		t.Errorf("ExtensionForJudge(cc.cc17) = %q, want .cpp", got)
	}
	if got := ExtensionForJudge("py"); got != ".py" {
		t.Errorf("ExtensionForJudge(py) = %q, want .py", got)
	}
	if got := ExtensionForJudge("unknown"); got != ".txt" {
		t.Errorf("ExtensionForJudge(unknown) = %q, want .txt", got)
	}
}
