package services

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/docmerge/internal/core/domain"
)

// Base confidence per extraction pattern.
var patternConfidence = map[domain.ExtractionPattern]float64{
	domain.PatternBoldDefinition: 0.9,
	domain.PatternTableRow:       0.85,
	domain.PatternColonList:      0.8,
	domain.PatternDefinedAs:      0.75,
	domain.PatternAcronym:        0.7,
	domain.PatternIsA:            0.6,
}

// agreementBonus is added when both passes find the same term.
const agreementBonus = 0.1

const maxTermWords = 4

var (
	boldDefinitionRe = regexp.MustCompile(`^(?:\*\*|__)([^*_]+?)(?:\*\*|__)\s*(?::\s*|\s+[-–—]\s+)(.+)$`)
	colonItemRe      = regexp.MustCompile(`^([^:]{1,60}?):\s+(.+)$`)
	definedAsRe      = regexp.MustCompile(`(?i)^(?:an?\s+|the\s+)?(.+?)\s+(?:is|are)\s+defined\s+as\s+(.+)$`)
	isARe            = regexp.MustCompile(`^(?:(?:An?|The)\s+)?([A-Za-z][\w-]*(?:\s+[\w-]+){0,2})\s+is\s+((?:an?|the)\s+.+)$`)
	acronymRe        = regexp.MustCompile(`\b((?:[A-Za-z][\w-]*\s+){1,7}[A-Za-z][\w-]*)\s+\(([A-Z]{2,8})\)`)
	sentenceEndRe    = regexp.MustCompile(`([.!?])\s+`)
	inlineLinkRe     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	emphasisRe       = regexp.MustCompile("(\\*\\*|__|\\*|_|`)")
)

var (
	termHeaderWords       = []string{"term", "name", "word", "acronym", "abbreviation", "concept"}
	definitionHeaderWords = []string{"definition", "meaning", "description", "explanation"}

	// Sentence subjects that never name a term.
	subjectStopwords = map[string]bool{
		"it": true, "this": true, "that": true, "there": true, "here": true, "which": true,
		"what": true, "he": true, "she": true, "they": true, "we": true, "you": true, "i": true,
	}
)

// ExtractTerms finds glossary candidates in units using a structural pass
// over block layout and a linguistic pass over sentences. Candidates are
// merged by case-insensitive term keeping the most confident; a term found by
// both passes gains a bonus. The result is sorted by confidence, then term.
func ExtractTerms(units []domain.ContentUnit) []domain.GlossaryTerm {
	structural := make(map[string]domain.GlossaryTerm)
	linguistic := make(map[string]domain.GlossaryTerm)
	var order []string

	add := func(into map[string]domain.GlossaryTerm, unit domain.ContentUnit, term, def string, p domain.ExtractionPattern) {
		term = cleanTerm(term)
		def = cleanDefinition(def)
		if term == "" || def == "" || len(strings.Fields(term)) > maxTermWords {
			return
		}
		key := strings.ToLower(term)
		candidate := domain.GlossaryTerm{
			ID:            TermID(unit.Metadata.SourceID, term),
			Term:          term,
			Definition:    def,
			Confidence:    patternConfidence[p],
			Pattern:       p,
			SourceID:      unit.Metadata.SourceID,
			ParentHeading: unit.Metadata.ParentHeading,
		}
		if _, seenS := structural[key]; !seenS {
			if _, seenL := linguistic[key]; !seenL {
				order = append(order, key)
			}
		}
		if prev, ok := into[key]; !ok || candidate.Confidence > prev.Confidence {
			into[key] = candidate
		}
	}

	for _, unit := range units {
		extractStructural(unit, func(term, def string, p domain.ExtractionPattern) {
			add(structural, unit, term, def, p)
		})
		extractLinguistic(unit, func(term, def string, p domain.ExtractionPattern) {
			add(linguistic, unit, term, def, p)
		})
	}

	out := make([]domain.GlossaryTerm, 0, len(order))
	for _, key := range order {
		s, inS := structural[key]
		l, inL := linguistic[key]
		var best domain.GlossaryTerm
		switch {
		case inS && inL:
			best = s
			if l.Confidence > s.Confidence {
				best = l
			}
			best.Confidence = min(1.0, best.Confidence+agreementBonus)
		case inS:
			best = s
		default:
			best = l
		}
		out = append(out, best)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return strings.ToLower(out[i].Term) < strings.ToLower(out[j].Term)
	})
	return out
}

type emitFunc func(term, definition string, pattern domain.ExtractionPattern)

func extractStructural(unit domain.ContentUnit, emit emitFunc) {
	n := unit.Node
	if n == nil {
		return
	}
	switch n.Type {
	case domain.NodeParagraph:
		for _, line := range strings.Split(n.Text(), "\n") {
			if m := boldDefinitionRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
				emit(m[1], m[2], domain.PatternBoldDefinition)
			}
		}
	case domain.NodeList:
		for _, item := range n.Children {
			text := strings.TrimSpace(firstLine(item.Text()))
			if m := boldDefinitionRe.FindStringSubmatch(text); m != nil {
				emit(m[1], m[2], domain.PatternBoldDefinition)
				continue
			}
			if m := colonItemRe.FindStringSubmatch(text); m != nil && !strings.Contains(m[1], "://") {
				emit(m[1], m[2], domain.PatternColonList)
			}
		}
	case domain.NodeTable:
		extractTable(n, emit)
	}
}

func extractTable(table *domain.Node, emit emitFunc) {
	if len(table.Children) < 2 {
		return
	}
	header := table.Children[0]
	termCol, defCol := -1, -1
	for i, cell := range header.Children {
		h := strings.ToLower(strings.TrimSpace(cell.Text()))
		if termCol < 0 && containsAny(h, termHeaderWords) {
			termCol = i
		} else if defCol < 0 && containsAny(h, definitionHeaderWords) {
			defCol = i
		}
	}
	if termCol < 0 || defCol < 0 {
		return
	}
	for _, row := range table.Children[1:] {
		if termCol >= len(row.Children) || defCol >= len(row.Children) {
			continue
		}
		emit(row.Children[termCol].Text(), row.Children[defCol].Text(), domain.PatternTableRow)
	}
}

func extractLinguistic(unit domain.ContentUnit, emit emitFunc) {
	if unit.Type != domain.BlockParagraph && unit.Type != domain.BlockBlockquote && unit.Type != domain.BlockList {
		return
	}
	text := stripInline(unit.Content)
	for _, m := range acronymRe.FindAllStringSubmatch(text, -1) {
		if expansion, ok := acronymExpansion(m[1], m[2]); ok {
			emit(m[2], expansion, domain.PatternAcronym)
		}
	}
	for _, sentence := range splitSentences(text) {
		if m := definedAsRe.FindStringSubmatch(sentence); m != nil {
			if !isStopSubject(m[1]) {
				emit(m[1], m[2], domain.PatternDefinedAs)
			}
			continue
		}
		if m := isARe.FindStringSubmatch(sentence); m != nil && !isStopSubject(m[1]) {
			emit(m[1], m[2], domain.PatternIsA)
		}
	}
}

// acronymExpansion returns the trailing words of phrase whose initials spell
// acronym.
func acronymExpansion(phrase, acronym string) (string, bool) {
	words := strings.Fields(phrase)
	if len(words) < len(acronym) {
		return "", false
	}
	words = words[len(words)-len(acronym):]
	for i, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		if unicode.ToUpper(r) != rune(acronym[i]) {
			return "", false
		}
	}
	return strings.Join(words, " "), true
}

func isStopSubject(term string) bool {
	words := strings.Fields(term)
	if len(words) == 0 {
		return true
	}
	return subjectStopwords[strings.ToLower(words[0])]
}

// splitSentences splits text at line breaks and sentence punctuation.
func splitSentences(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		marked := sentenceEndRe.ReplaceAllString(line, "$1\x00")
		for _, p := range strings.Split(marked, "\x00") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func stripInline(s string) string {
	s = inlineLinkRe.ReplaceAllString(s, "$1")
	return emphasisRe.ReplaceAllString(s, "")
}

func cleanTerm(s string) string {
	s = strings.TrimSpace(stripInline(s))
	return strings.Trim(s, " \t\"'“”")
}

func cleanDefinition(s string) string {
	s = strings.TrimSpace(stripInline(s))
	s = strings.TrimRight(s, ".;, ")
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
