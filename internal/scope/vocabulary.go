package scope

import (
	"sort"
	"strings"
	"unicode"
)

// Vocabulary maps action words in any language to a canonical action name.
// The extractor builds its module-reference patterns from the vocabulary,
// so adding a language is additive: supply more entries, not more code.
type Vocabulary map[string]string

// Canonical actions understood by the extractor. Every vocabulary entry
// must map to one of these.
const (
	ActionMigrate   = "migrate"
	ActionUpdate    = "update"
	ActionAdd       = "add"
	ActionCreate    = "create"
	ActionFix       = "fix"
	ActionImplement = "implement"
	ActionDelete    = "delete"
	ActionRemove    = "remove"
	ActionTest      = "test"
	ActionAnalyze   = "analyze"
	ActionBuild     = "build"
	ActionRefactor  = "refactor"
	ActionOptimize  = "optimize"
	ActionImprove   = "improve"
	ActionEnable    = "enable"
	ActionDisable   = "disable"
)

// DefaultVocabulary returns the built-in English + Korean action vocabulary.
// English entries map to themselves; Korean entries route to the same
// canonical action as their English counterpart.
func DefaultVocabulary() Vocabulary {
	v := Vocabulary{
		// English canonical actions.
		"migrate": ActionMigrate, "update": ActionUpdate,
		"add": ActionAdd, "create": ActionCreate,
		"fix": ActionFix, "implement": ActionImplement,
		"delete": ActionDelete, "remove": ActionRemove,
		"test": ActionTest, "analyze": ActionAnalyze,
		"build": ActionBuild, "refactor": ActionRefactor,
		"optimize": ActionOptimize, "improve": ActionImprove,
		"enable": ActionEnable, "disable": ActionDisable,

		// Migration / update.
		"마이그레이션": ActionMigrate,
		"마이그레이트":  ActionMigrate,
		"이관":      ActionMigrate,
		"업데이트":    ActionUpdate,
		"수정":      ActionUpdate,
		"변경":      ActionUpdate,
		"갱신":      ActionUpdate,
		// Create / add.
		"추가":  ActionAdd,
		"생성":  ActionCreate,
		"만들기": ActionCreate,
		"신규":  ActionCreate,
		// Fix.
		"버그수정": ActionFix,
		"고치기":  ActionFix,
		"수리":   ActionFix,
		"패치":   ActionFix,
		// Implement.
		"구현": ActionImplement,
		"개발": ActionImplement,
		"작성": ActionImplement,
		// Delete / remove.
		"삭제": ActionDelete,
		"제거": ActionRemove,
		// Test.
		"테스트": ActionTest,
		"검증":  ActionTest,
		// Analyze.
		"분석": ActionAnalyze,
		"검토": ActionAnalyze,
		// Build.
		"빌드":  ActionBuild,
		"컴파일": ActionBuild,
		// Other.
		"리팩터링": ActionRefactor,
		"리팩토링": ActionRefactor,
		"최적화":  ActionOptimize,
		"개선":   ActionImprove,
		"강화":   ActionImprove,
		"활성화":  ActionEnable,
		"비활성화": ActionDisable,
	}
	return v
}

// Canonical returns the canonical action for a word, or "" if the word is
// not in the vocabulary.
func (v Vocabulary) Canonical(word string) string {
	return v[strings.ToLower(word)]
}

// latinWords returns the sorted vocabulary keys written in Latin script.
func (v Vocabulary) latinWords() []string {
	var words []string
	for w := range v {
		if isLatinWord(w) {
			words = append(words, w)
		}
	}
	sort.Strings(words)
	return words
}

// nonLatinWords returns the sorted vocabulary keys containing characters
// outside the Latin script. Case folding does not apply to these, so the
// extractor matches them against the original-case command.
func (v Vocabulary) nonLatinWords() []string {
	var words []string
	for w := range v {
		if !isLatinWord(w) {
			words = append(words, w)
		}
	}
	// Longer alternatives first so the regex prefers the longest match.
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})
	return words
}

func isLatinWord(w string) bool {
	for _, r := range w {
		if r > unicode.MaxASCII && !unicode.Is(unicode.Latin, r) {
			return false
		}
	}
	return true
}
