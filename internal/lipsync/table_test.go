package lipsync_test

import (
	"testing"

	"github.com/book-expert/lipsync-service/internal/lipsync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItalianRules_EveryLetterHasFallback(t *testing.T) {
	t.Parallel()

	table, err := lipsync.NewRuleTable(lipsync.ItalianRules)
	require.NoError(t, err)

	for letter := 'A'; letter <= 'Z'; letter++ {
		require.True(t, table.Has(letter), "letter %q has no rules", letter)

		rules := table.Rules(letter)
		fallback := rules[len(rules)-1]
		assert.False(t, fallback.HasContext(), "fallback of %q is %q", letter, fallback.Raw)
	}
}

func TestRuleTable_Letters(t *testing.T) {
	t.Parallel()

	table, err := lipsync.NewRuleTable(map[rune][]string{
		'B': {"[B]=PP"},
		'A': {"[A]=aa"},
		'È': {"[È]=E"},
	})
	require.NoError(t, err)

	assert.Equal(t, []rune{'A', 'B', 'È'}, table.Letters())
	assert.False(t, table.Has('C'))
	assert.Empty(t, table.Rules('C'))
}

func TestRuleTable_RulesReturnsCopy(t *testing.T) {
	t.Parallel()

	table, err := lipsync.NewRuleTable(map[rune][]string{'A': {"[A]E=E", "[A]=aa"}})
	require.NoError(t, err)

	rules := table.Rules('A')
	rules[0] = rules[1]

	assert.Equal(t, "[A]E=E", table.Rules('A')[0].Raw)
}

func TestRuleTable_Match(t *testing.T) {
	t.Parallel()

	table, err := lipsync.NewRuleTable(lipsync.ItalianRules)
	require.NoError(t, err)

	rule, ok := table.Match('C', probeAt("CIAO", 0), 0)
	require.True(t, ok)
	assert.Equal(t, "[CI]#=CH", rule.Raw)
	assert.Equal(t, 2, rule.Stride)

	_, ok = table.Match('C', probeAt("ÄO", 0), 0)
	assert.False(t, ok)
}
