package scope

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// stopWords are common words that look like module names to the patterns
// but never are: articles, generic nouns, politeness words.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "in": {}, "at": {}, "on": {},
	"for": {}, "to": {}, "of": {},
	"tests": {}, "test": {}, "file": {}, "files": {}, "all": {},
	"this": {}, "that": {},
	"please": {}, "help": {}, "need": {}, "want": {}, "should": {}, "must": {},
	"middleware": {}, "integration": {}, "unit": {}, "e2e": {},
}

// broadKeywords mark a command as project-wide when no narrower signal exists.
var broadKeywords = []string{"all", "project", "everything"}

// Extractor turns free-text task commands into structured scopes.
//
// Extraction is a pure function of the command string and the vocabulary:
// the same input always yields the same Info, and unintelligible input
// degrades to an empty Info with EstimateUnknown rather than failing.
type Extractor struct {
	vocab Vocabulary

	// Applied against the lowercased command.
	filePatterns   []*regexp.Regexp
	modulePatterns []*regexp.Regexp
	dirPatterns    []*regexp.Regexp

	// Applied against the original-case command. Case folding does not
	// apply to non-Latin scripts, so these keep the command as written.
	moduleOrigPatterns []*regexp.Regexp

	hangulCompound *regexp.Regexp
}

// NewExtractor builds an extractor from the given vocabulary.
func NewExtractor(vocab Vocabulary) *Extractor {
	latin := strings.Join(vocab.latinWords(), "|")
	nonLatin := strings.Join(vocab.nonLatinWords(), "|")

	e := &Extractor{vocab: vocab}

	e.filePatterns = compileAll(
		`(?:edit|modify|update|fix|refactor)\s+(\S+\.[a-z]+)`,
		`(?:in|at|file)\s+(\S+\.[a-z]+)`,
		`@(\S+\.[a-z]+)`,
		`(?:the|a)\s+(\S+\.[a-z]+)\s+file`,
	)

	e.modulePatterns = compileAll(
		`(?:`+latin+`)\s+(\w+)`,
		`(?:module|component|service|feature)\s+(\w+)`,
		`(\w+)\s+(?:module|component|service|feature)`,
		`/sc:auto-dev\s+(?:`+latin+`)\s+(\w+)`,
		`/sc:(?:implement|test|build|analyze|improve|design|cleanup|troubleshoot)\s+(\w+)`,
		`/queue\s+["']?/sc:\w+\s+(?:\w+\s+)?(\w+)`,
		`(?:the|a)\s+(\w+)\s+(?:bug|issue|error|problem|module|component|feature)`,
		`\b(authentication|authorization|login|logout|signup|profile|user|admin|payment|cart|checkout|order|product|notification|email|api|database|cache|session)\b`,
	)

	e.moduleOrigPatterns = compileAll(
		`([\p{L}\p{N}_]+)\s+(?:모듈|컴포넌트|서비스|기능)`,
		`/sc:auto-dev\s+(?:`+nonLatin+`)\s+([\p{L}\p{N}_]+)`,
		`/sc:auto-dev\s+([\p{L}\p{N}_]+)\s+(?:모듈|컴포넌트|서비스|기능)?\s*(?:마이그레이션|수정|추가|삭제|구현|테스트)`,
		`([\p{L}\p{N}_]+)\s+(?:의|에서|에|를|을)\s+(?:버그|이슈|에러|문제|모듈)`,
	)

	e.dirPatterns = compileAll(
		`(?:in|under|directory)\s+([^\s/]+/\S*)`,
		`(?:in|under)\s+(src/\S*)`,
	)

	e.hangulCompound = regexp.MustCompile(`[\p{Hangul}]{2,}`)

	return e
}

// Default returns an extractor using the built-in bilingual vocabulary.
func Default() *Extractor {
	return NewExtractor(DefaultVocabulary())
}

// Vocabulary returns the vocabulary this extractor was built from.
func (e *Extractor) Vocabulary() Vocabulary {
	return e.vocab
}

// Extract derives a scope from a free-text command. It never fails: empty
// or unintelligible input yields an empty Info with EstimateUnknown.
func (e *Extractor) Extract(command string) Info {
	info := Empty()
	if strings.TrimSpace(command) == "" {
		return info
	}

	lower := strings.ToLower(command)

	files := make(map[string]struct{})
	for _, re := range e.filePatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			if m[1] != "" {
				files[m[1]] = struct{}{}
			}
		}
	}

	modules := make(map[string]struct{})
	collectModules(modules, e.modulePatterns, lower)
	collectModules(modules, e.moduleOrigPatterns, command)

	dirs := make(map[string]struct{})
	for _, re := range e.dirPatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			if m[1] != "" {
				dirs[m[1]] = struct{}{}
			}
		}
	}

	// Hangul compound fallback: a run of two or more Hangul characters is
	// a candidate compound module name, but only when nothing else matched.
	if len(modules) == 0 {
		if compound := e.hangulCompound.FindString(command); compound != "" {
			modules[compound] = struct{}{}
		}
	}

	info.Files = sortedKeys(files)
	info.Modules = sortedKeys(modules)
	info.Directories = sortedKeys(dirs)

	switch {
	case len(info.Files) > 0:
		info.EstimatedScope = EstimateFile
	case len(info.Directories) > 0:
		info.EstimatedScope = EstimateDirectory
	case len(info.Modules) > 0:
		info.EstimatedScope = EstimateModule
	case containsAny(lower, broadKeywords):
		info.EstimatedScope = EstimateProject
	default:
		info.EstimatedScope = EstimateUnknown
	}

	return info
}

func collectModules(dst map[string]struct{}, patterns []*regexp.Regexp, text string) {
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			word := m[1]
			if word == "" || utf8.RuneCountInString(word) < 2 {
				continue
			}
			if _, stop := stopWords[strings.ToLower(word)]; stop {
				continue
			}
			dst[word] = struct{}{}
		}
	}
}

func compileAll(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		res = append(res, regexp.MustCompile(expr))
	}
	return res
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
