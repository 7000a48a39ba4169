package clustering

import (
	"strings"
	"unicode"
)

// stopWords is the English stop-word list removed before n-gram generation.
var stopWords = toSet([]string{
	"a", "about", "above", "after", "again", "against", "all", "almost", "also", "am", "among",
	"an", "and", "any", "are", "as", "at", "be", "became", "because", "been", "before", "being",
	"below", "between", "both", "but", "by", "can", "cannot", "could", "did", "do", "does",
	"doing", "done", "down", "during", "each", "either", "else", "etc", "even", "ever", "every",
	"few", "for", "from", "further", "get", "had", "has", "have", "having", "he", "her", "here",
	"hers", "herself", "him", "himself", "his", "how", "however", "i", "ie", "if", "in", "into",
	"is", "it", "its", "itself", "just", "least", "less", "many", "may", "me", "might", "more",
	"most", "much", "must", "my", "myself", "neither", "no", "nor", "not", "now", "of", "off",
	"often", "on", "once", "only", "or", "other", "others", "otherwise", "our", "ours",
	"ourselves", "out", "over", "own", "per", "perhaps", "rather", "same", "several", "she",
	"should", "since", "so", "some", "such", "than", "that", "the", "their", "theirs", "them",
	"themselves", "then", "there", "therefore", "these", "they", "this", "those", "though",
	"through", "thus", "to", "too", "toward", "under", "until", "up", "upon", "us", "very", "via",
	"was", "we", "well", "were", "what", "whatever", "when", "whence", "whenever", "where",
	"whereas", "whether", "which", "while", "who", "whoever", "whole", "whom", "whose", "why",
	"will", "with", "within", "without", "would", "yet", "you", "your", "yours", "yourself",
	"yourselves",
})

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// tokenize lowercases text and splits it into word tokens of at least two
// characters, dropping stop-words.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// terms returns the unigrams and bigrams of a text. Bigrams are built from
// adjacent tokens after stop-word removal.
func terms(text string) []string {
	tokens := tokenize(text)
	out := make([]string, 0, 2*len(tokens))
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

// normalizeText is the identity used to count distinct keyword texts.
func normalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
