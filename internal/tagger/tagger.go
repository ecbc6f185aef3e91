// Package tagger extracts a handful of distinctive keywords from a document.
package tagger

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

const (
	// MinContentLen is the floor below which a document has too little
	// signal to tag.
	MinContentLen = 50

	maxTags     = 3
	minTokenLen = 3
	minCount    = 2
)

var (
	codeFenceRe  = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`[^`]*`")
	linkRe       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	urlRe        = regexp.MustCompile(`https?://\S+`)
	commentRe    = regexp.MustCompile(`(?s)<!--.*?-->`)
	tokenRe      = regexp.MustCompile(`[a-z0-9][a-z0-9-]*`)
	numericRe    = regexp.MustCompile(`^[0-9]+$`)
)

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"has": true, "have": true, "was": true, "were": true, "will": true,
	"with": true, "this": true, "that": true, "these": true, "those": true,
	"from": true, "they": true, "them": true, "then": true, "than": true,
	"its": true, "it's": true, "into": true, "out": true, "our": true,
	"your": true, "when": true, "where": true, "which": true, "what": true,
	"how": true, "why": true, "who": true, "been": true, "being": true,
	"would": true, "could": true, "should": true, "may": true, "might": true,
	"must": true, "shall": true, "there": true, "here": true, "also": true,
	"just": true, "only": true, "some": true, "any": true, "each": true,
	"more": true, "most": true, "other": true, "such": true, "very": true,
	"use": true, "used": true, "using": true, "get": true, "set": true,
	"new": true, "one": true, "two": true, "via": true, "per": true,
	"etc": true, "about": true, "after": true, "before": true, "over": true,
	"under": true, "between": true, "does": true, "don't": true, "doesn't": true,
}

// Tags returns up to three distinctive keywords for content. It is a pure
// function: identical content always yields identical tags. Documents under
// MinContentLen characters return nil.
func Tags(content string) []string {
	if len(content) < MinContentLen {
		return nil
	}

	text := codeFenceRe.ReplaceAllString(content, " ")
	text = commentRe.ReplaceAllString(text, " ")
	text = inlineCodeRe.ReplaceAllString(text, " ")
	text = linkRe.ReplaceAllString(text, " $1 ")
	text = urlRe.ReplaceAllString(text, " ")
	text = strings.ToLower(text)

	counts := map[string]int{}
	for _, tok := range tokenRe.FindAllString(text, -1) {
		tok = strings.Trim(tok, "-")
		if len(tok) < minTokenLen {
			continue
		}
		if stopwords[tok] || numericRe.MatchString(tok) {
			continue
		}
		counts[tok]++
	}
	if len(counts) == 0 {
		return nil
	}

	terms := make([]scored, 0, len(counts))
	for term, c := range counts {
		terms = append(terms, scored{
			term:  term,
			count: c,
			score: float64(c) * math.Log(float64(c)+1),
		})
	}

	qualifying := terms[:0:0]
	for _, s := range terms {
		if s.count >= minCount {
			qualifying = append(qualifying, s)
		}
	}

	if len(qualifying) >= maxTags {
		sort.Slice(qualifying, func(i, j int) bool {
			if qualifying[i].score != qualifying[j].score {
				return qualifying[i].score > qualifying[j].score
			}
			return qualifying[i].term < qualifying[j].term
		})
		return pick(qualifying, maxTags)
	}

	// Too few repeated terms; fall back to raw frequency with no floor.
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].count != terms[j].count {
			return terms[i].count > terms[j].count
		}
		return terms[i].term < terms[j].term
	})
	return pick(terms, maxTags)
}

type scored struct {
	term  string
	count int
	score float64
}

func pick(terms []scored, n int) []string {
	if len(terms) > n {
		terms = terms[:n]
	}
	out := make([]string, len(terms))
	for i, s := range terms {
		out[i] = s.term
	}
	return out
}
