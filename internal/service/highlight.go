package service

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	highlightOpen  = "<em>"
	highlightClose = "</em>"

	// Tokens shorter than this never highlight; single characters produce
	// too much noise, especially in CJK text.
	minKeywordRunes = 2
)

var englishStopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "of": {}, "to": {}, "for": {}, "with": {}, "by": {},
	"in": {}, "on": {}, "at": {}, "from": {}, "as": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {},
	"been": {}, "it": {}, "this": {}, "that": {}, "these": {}, "those": {}, "we": {}, "our": {}, "you": {},
	"your": {}, "i": {}, "me": {}, "my": {}, "us": {}, "them": {}, "they": {}, "their": {}, "do": {},
	"does": {}, "did": {}, "what": {}, "how": {}, "why": {}, "when": {}, "where": {}, "which": {}, "can": {},
	"could": {}, "should": {}, "would": {}, "may": {}, "might": {}, "will": {}, "shall": {},
}

var chineseStopwords = map[string]struct{}{
	"的": {}, "了": {}, "和": {}, "是": {}, "在": {}, "我": {}, "有": {}, "他": {}, "这": {}, "个": {},
	"们": {}, "中": {}, "来": {}, "上": {}, "大": {}, "为": {}, "与": {}, "就": {}, "也": {}, "很": {},
	"到": {}, "说": {}, "要": {}, "去": {}, "会": {}, "着": {}, "没有": {}, "什么": {}, "怎么": {},
	"如何": {}, "哪里": {}, "为什么": {}, "可以": {}, "或者": {}, "以及": {}, "关于": {}, "请问": {},
}

func isStopword(token string) bool {
	lower := strings.ToLower(token)
	if _, ok := englishStopwords[lower]; ok {
		return true
	}
	_, ok := chineseStopwords[token]
	return ok
}

// extractKeywords splits a query into highlightable tokens: whitespace and
// punctuation separated, at least two runes long, stopwords removed, and
// deduplicated case-insensitively. Order follows first appearance.
func extractKeywords(query string) []string {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})

	seen := make(map[string]struct{}, len(fields))
	var keywords []string
	for _, token := range fields {
		if utf8.RuneCountInString(token) < minKeywordRunes {
			continue
		}
		if isStopword(token) {
			continue
		}
		key := strings.ToLower(token)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keywords = append(keywords, token)
	}
	return keywords
}

// highlightKeywords wraps case-insensitive occurrences of the keywords in the
// highlight marker. Keywords are regex-escaped, so literal special characters
// in the query match verbatim. With no usable keywords the content is
// returned untouched.
func highlightKeywords(content string, keywords []string) string {
	if content == "" || len(keywords) == 0 {
		return content
	}

	escaped := make([]string, len(keywords))
	for i, kw := range keywords {
		escaped[i] = regexp.QuoteMeta(kw)
	}

	re, err := regexp.Compile("(?i)(" + strings.Join(escaped, "|") + ")")
	if err != nil {
		return content
	}
	return re.ReplaceAllString(content, highlightOpen+"$1"+highlightClose)
}
