package core

import (
	"math/rand"
	"strings"
	"time"
	"unicode"
)

// replyCategory pairs a set of trigger keywords with its canned replies.
// Categories are tested in order and the first match wins, so the order of
// the slice is part of the observable behavior.
type replyCategory struct {
	name     string
	keywords []string
	replies  []string
}

// KeywordResponder produces canned replies for plain chat messages.
// Matching is case-insensitive; single-word keywords must appear as a whole
// word ("ty" must not fire on "pretty"), multi-word keywords match as a
// phrase. The reply within a category is chosen uniformly at random.
type KeywordResponder struct {
	rng        *rand.Rand
	categories []replyCategory
}

// NewKeywordResponder creates a responder seeded from the current time
func NewKeywordResponder() *KeywordResponder {
	return newKeywordResponderWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

func newKeywordResponderWithRand(rng *rand.Rand) *KeywordResponder {
	return &KeywordResponder{
		rng: rng,
		categories: []replyCategory{
			{
				name:     "greeting",
				keywords: []string{"hello", "hi", "hey"},
				replies: []string{
					"Hello there! 👋",
					"Hey! How can I help?",
					"Hi! Nice to see you here.",
				},
			},
			{
				name:     "thanks",
				keywords: []string{"thanks", "thank you", "ty"},
				replies: []string{
					"You're welcome! 😊",
					"Anytime!",
					"Happy to help!",
				},
			},
			{
				name:     "good-morning",
				keywords: []string{"good morning"},
				replies: []string{
					"Good morning! ☀️ Have a great day!",
					"Morning! Hope your day goes well.",
				},
			},
			{
				name:     "good-night",
				keywords: []string{"good night"},
				replies: []string{
					"Good night! 🌙 Sleep well!",
					"Sweet dreams!",
				},
			},
			{
				name:     "praise",
				keywords: []string{"good bot", "smart bot"},
				replies: []string{
					"Aww, thank you! 🤖",
					"I do my best!",
				},
			},
			{
				name:     "love",
				keywords: []string{"love", "loving"},
				replies: []string{
					"Love is in the air! ❤️",
					"Spread the love! 💕",
				},
			},
			{
				name:     "namaste",
				keywords: []string{"namaste"},
				replies: []string{
					"Namaste! 🙏",
					"Namaste ji!",
				},
			},
			{
				name:     "shukriya",
				keywords: []string{"shukriya", "dhanyavad"},
				replies: []string{
					"Koi baat nahi! 😊",
					"Shukriya aapka!",
				},
			},
			{
				name:     "pyar",
				keywords: []string{"pyar"},
				replies: []string{
					"Pyar baantte chalo! ❤️",
					"Bahut pyar! 💕",
				},
			},
			{
				name:     "rose",
				keywords: []string{"rose", "flower"},
				replies: []string{
					"🌹 A rose for you!",
					"Flowers make everything better! 🌸",
				},
			},
			{
				name:     "compliment",
				keywords: []string{"beautiful", "pretty"},
				replies: []string{
					"Beauty is everywhere! ✨",
					"You have a good eye! 😍",
				},
			},
		},
	}
}

// Respond returns a canned reply for the message text, or the empty string
// when no keyword category matches. At most one category fires per message.
func (k *KeywordResponder) Respond(text string) string {
	lowered := strings.ToLower(text)
	words := splitWords(lowered)

	for _, cat := range k.categories {
		for _, kw := range cat.keywords {
			if matchesKeyword(lowered, words, kw) {
				return cat.replies[k.rng.Intn(len(cat.replies))]
			}
		}
	}

	return ""
}

func matchesKeyword(lowered string, words map[string]bool, keyword string) bool {
	if strings.Contains(keyword, " ") {
		return strings.Contains(lowered, keyword)
	}
	return words[keyword]
}

// splitWords tokenizes on anything that is not a letter or digit, so
// punctuation stuck to a word ("hello!") does not defeat matching.
func splitWords(lowered string) map[string]bool {
	fields := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	words := make(map[string]bool, len(fields))
	for _, f := range fields {
		words[f] = true
	}
	return words
}
