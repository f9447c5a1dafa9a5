package mention_test

import (
	"testing"

	"github.com/aretw0/fundchat/pkg/mention"
	"github.com/stretchr/testify/assert"
)

var funds = []string{"BlueFund", "RedFund", "BlueChip", "Green Growth", "bluebell income"}

func TestTrailingToken(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantToken string
		wantOK    bool
	}{
		{"Empty", "", "", false},
		{"Plain Text", "hello there", "", false},
		{"Mention At End", "tell me about @Blue", "Blue", true},
		{"Bare At Sign", "hello @", "", true},
		{"Only Mention", "@Red", "Red", true},
		{"Trailing Space Closes Mention", "tell me about @Blue ", "", false},
		{"Mention Not Last", "@Blue is nice", "", false},
		{"At Inside Word", "mail me at a@b", "", false},
		{"Repeated At Uses Last", "@a@Blu", "Blu", true},
		{"Newline Separates Words", "first line\n@Gr", "Gr", true},
		{"Unicode Space Separates Words", "x\u00a0@Blu", "Blu", true},
		{"Unicode Token", "fundo @Itaú", "Itaú", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, ok := mention.TrailingToken(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestFilter(t *testing.T) {
	t.Run("Case Insensitive Keeps Order", func(t *testing.T) {
		assert.Equal(t, []string{"BlueFund", "BlueChip", "bluebell income"}, mention.Filter(funds, "BLU", 0))
	})

	t.Run("Empty Token Matches All", func(t *testing.T) {
		assert.Equal(t, funds, mention.Filter(funds, "", 0))
	})

	t.Run("No Match Is Empty Not Nil", func(t *testing.T) {
		got := mention.Filter(funds, "zzz", 0)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("Capped", func(t *testing.T) {
		many := make([]string, 25)
		for i := range many {
			many[i] = "Fund"
		}
		assert.Len(t, mention.Filter(many, "", 0), 10)
		assert.Len(t, mention.Filter(many, "f", 3), 3)
	})
}

func TestReplace(t *testing.T) {
	tests := []struct {
		name    string
		current string
		value   string
		want    string
	}{
		{"Partial Token", "x @Blu", "BlueFund", "x @BlueFund"},
		{"Bare At Sign", "hello @", "RedFund", "hello @RedFund"},
		{"Repeated At Cuts At Last", "see @a@Bl", "BlueChip", "see @a@BlueChip"},
		{"Repeated At Empty Token", "x @a@", "Fund", "x @a@Fund"},
		{"No Token Replaces All", "hello there", "BlueFund", "@BlueFund"},
		{"Empty Text", "", "BlueFund", "@BlueFund"},
		{"Keeps Earlier Mentions", "@RedFund vs @Bl", "BlueFund", "@RedFund vs @BlueFund"},
		{"Value With Spaces", "compare @gre", "Green Growth", "compare @Green Growth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mention.Replace(tt.current, tt.value))
		})
	}
}

func TestContainsMention(t *testing.T) {
	assert.True(t, mention.ContainsMention("what about @Blue Fund today"))
	assert.True(t, mention.ContainsMention("@x"))
	assert.False(t, mention.ContainsMention("hello there"))
	assert.False(t, mention.ContainsMention("hello @"))

	// The loose rule still sees a mention followed by more words,
	// where the trailing-token rule does not.
	_, trailing := mention.TrailingToken("@Blue is nice")
	assert.False(t, trailing)
	assert.True(t, mention.ContainsMention("@Blue is nice"))
}
