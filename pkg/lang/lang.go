// Package lang maps file extensions and judge language identifiers to
// analyzer language labels.
package lang

import (
	"path/filepath"
	"strings"
)

// Language is an analyzer language identifier as understood by JPlag.
type Language string

const (
	Java       Language = "java"
	Python3    Language = "python3"
	CPP        Language = "cpp"
	C          Language = "c"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	CSharp     Language = "csharp"
	Go         Language = "go"
	Kotlin     Language = "kotlin"
	Rust       Language = "rust"
	Scala      Language = "scala"
	Swift      Language = "swift"
	Text       Language = "text"
)

// String returns the string representation.
func (l Language) String() string {
	return string(l)
}

// extensionLabels maps source file extensions to display language labels
// used in submission records and statistics.
var extensionLabels = map[string]string{
	".py":    "python",
	".java":  "java",
	".cpp":   "cpp",
	".cc":    "cpp",
	".cxx":   "cpp",
	".hpp":   "cpp",
	".c":     "c",
	".h":     "c",
	".js":    "javascript",
	".ts":    "typescript",
	".cs":    "csharp",
	".go":    "go",
	".kt":    "kotlin",
	".rs":    "rust",
	".swift": "swift",
	".scala": "scala",
}

// DetectFile returns the language label for a filename based on its
// extension. The second return value is false when the extension is not
// recognized; callers must treat that as unknown, never substitute a
// placeholder.
func DetectFile(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	label, ok := extensionLabels[ext]
	return label, ok
}

// DetectDominant returns the most frequent recognized language among the
// given filenames. Ties are broken by first appearance. The second return
// value is false when no filename yields a recognized extension.
func DetectDominant(filenames []string) (string, bool) {
	counts := make(map[string]int)
	var order []string
	for _, name := range filenames {
		label, ok := DetectFile(name)
		if !ok {
			continue
		}
		if counts[label] == 0 {
			order = append(order, label)
		}
		counts[label]++
	}

	best := ""
	for _, label := range order {
		if best == "" || counts[label] > counts[best] {
			best = label
		}
	}
	return best, best != ""
}

// judgeLanguages maps judge-specific language identifiers (compiler
// variants included) to analyzer languages. Identifiers the analyzer has
// no frontend for fall back to Text.
var judgeLanguages = map[string]Language{
	"cc":        CPP,
	"cc.cc98":   CPP,
	"cc.cc98o2": CPP,
	"cc.cc11":   CPP,
	"cc.cc11o2": CPP,
	"cc.cc14":   CPP,
	"cc.cc14o2": CPP,
	"cc.cc17":   CPP,
	"cc.cc17o2": CPP,
	"cc.cc20":   CPP,
	"cc.cc20o2": CPP,
	"c":         C,
	"pas":       Text, // no Pascal frontend
	"java":      Java,
	"kt":        Kotlin,
	"kt.jvm":    Kotlin,
	"py":        Python3,
	"py.py2":    Python3,
	"py.py3":    Python3,
	"py.pypy3":  Python3,
	"rs":        Rust,
	"go":        Go,
	"js":        JavaScript,
	"ts":        TypeScript,
	"cs":        CSharp,
	"scala":     Scala,
	"swift":     Swift,
}

// judgePrefixes catches unknown variants of known language families.
var judgePrefixes = []struct {
	prefix string
	lang   Language
}{
	{"cc.", CPP},
	{"c++", CPP},
	{"c.", C},
	{"python", Python3},
	{"javascript", JavaScript},
	{"typescript", TypeScript},
}

// FromJudge resolves a judge language identifier to an analyzer language.
// The second return value is false when neither an exact nor a prefix
// match exists; callers decide whether to fall back to Text.
func FromJudge(id string) (Language, bool) {
	if l, ok := judgeLanguages[id]; ok {
		return l, true
	}
	for _, p := range judgePrefixes {
		if strings.HasPrefix(id, p.prefix) {
			return p.lang, true
		}
	}
	return Text, false
}

// judgeExtensions maps judge language identifiers to source file
// extensions used when materializing submissions on disk.
var judgeExtensions = map[string]string{
	"cc":   ".cpp",
	"c":    ".c",
	"pas":  ".pas",
	"java": ".java",
	"kt":   ".kt",
	"py":   ".py",
	"rs":   ".rs",
	"go":   ".go",
	"js":   ".js",
	"ts":   ".ts",
	"cs":   ".cs",
}

// ExtensionForJudge returns the file extension for a judge language
// identifier, defaulting to ".txt".
func ExtensionForJudge(id string) string {
	if ext, ok := judgeExtensions[id]; ok {
		return ext
	}
	base, _, found := strings.Cut(id, ".")
	if found {
		if ext, ok := judgeExtensions[base]; ok {
			return ext
		}
	}
	return ".txt"
}
