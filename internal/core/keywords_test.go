package core

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestResponder() *KeywordResponder {
	return newKeywordResponderWithRand(rand.New(rand.NewSource(1)))
}

func TestKeywordResponder_NoMatchReturnsEmpty(t *testing.T) {
	responder := newTestResponder()

	assert.Equal(t, "", responder.Respond("what is the weather today"))
	assert.Equal(t, "", responder.Respond(""))
}

func TestKeywordResponder_MatchesAreCaseInsensitive(t *testing.T) {
	responder := newTestResponder()

	assert.NotEmpty(t, responder.Respond("HELLO everyone"))
	assert.NotEmpty(t, responder.Respond("Good Morning all"))
}

func TestKeywordResponder_ReplyComesFromMatchedCategory(t *testing.T) {
	responder := newTestResponder()

	// Run repeatedly so every reply in the category gets sampled
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[responder.Respond("namaste dosto")] = true
	}

	for reply := range seen {
		assert.Contains(t, []string{"Namaste! 🙏", "Namaste ji!"}, reply)
	}
}

func TestKeywordResponder_FirstCategoryWins(t *testing.T) {
	responder := newTestResponder()

	// "hello" (greeting) precedes "thanks" in category order, so a message
	// containing both always resolves to a greeting reply.
	greetings := []string{
		"Hello there! 👋",
		"Hey! How can I help?",
		"Hi! Nice to see you here.",
	}
	for i := 0; i < 20; i++ {
		assert.Contains(t, greetings, responder.Respond("hello and thanks"))
	}
}

func TestKeywordResponder_SingleWordKeywordsRequireWholeWord(t *testing.T) {
	responder := newTestResponder()

	// "hi" inside "this"/"think" and "ty" inside "pretty" must not trigger
	assert.Equal(t, "", responder.Respond("think about this"))
	compliments := []string{"Beauty is everywhere! ✨", "You have a good eye! 😍"}
	for i := 0; i < 10; i++ {
		assert.Contains(t, compliments, responder.Respond("so pretty"))
	}
}

func TestKeywordResponder_PunctuationDoesNotDefeatMatching(t *testing.T) {
	responder := newTestResponder()

	assert.NotEmpty(t, responder.Respond("hello!"))
	assert.NotEmpty(t, responder.Respond("thanks."))
}

func TestKeywordResponder_OrderedCategories(t *testing.T) {
	tests := []struct {
		name    string
		message string
		replies []string
	}{
		{"thanks", "ok thanks a lot", []string{"You're welcome! 😊", "Anytime!", "Happy to help!"}},
		{"good night", "good night folks", []string{"Good night! 🌙 Sleep well!", "Sweet dreams!"}},
		{"good bot", "good bot!", []string{"Aww, thank you! 🤖", "I do my best!"}},
		{"rose", "look at this rose", []string{"🌹 A rose for you!", "Flowers make everything better! 🌸"}},
		{"pretty", "so pretty", []string{"Beauty is everywhere! ✨", "You have a good eye! 😍"}},
		{"shukriya", "shukriya bhai", []string{"Koi baat nahi! 😊", "Shukriya aapka!"}},
	}

	responder := newTestResponder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 10; i++ {
				assert.Contains(t, tt.replies, responder.Respond(tt.message))
			}
		})
	}
}
