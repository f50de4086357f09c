package actionstr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_QuotedArgumentAndTwoCommands(t *testing.T) {
	cmds := Parse("give 'Hello World' 3; notify done")

	require.Len(t, cmds, 2)
	assert.Equal(t, Command{ID: "give", Args: []string{"Hello World", "3"}}, cmds[0])
	assert.Equal(t, Command{ID: "notify", Args: []string{"done"}}, cmds[1])
}

func TestParse_EmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", ";", " ; ;; ", "\t\n"} {
		assert.Empty(t, Parse(in), "input %q", in)
	}
}

func TestParse_SkipsEmptyCommands(t *testing.T) {
	cmds := Parse(";; notify a ;  ; notify b;")

	require.Len(t, cmds, 2)
	assert.Equal(t, "a", cmds[0].Args[0])
	assert.Equal(t, "b", cmds[1].Args[0])
}

func TestParse_QuotedSemicolonStaysInArgument(t *testing.T) {
	cmds := Parse("runactions 'notify a; notify b'; notify c")

	require.Len(t, cmds, 2)
	assert.Equal(t, "runactions", cmds[0].ID)
	assert.Equal(t, []string{"notify a; notify b"}, cmds[0].Args)
	assert.Equal(t, "notify", cmds[1].ID)
}

func TestParse_ApostropheInsideBareToken(t *testing.T) {
	cmds := Parse("notify it's fine")

	require.Len(t, cmds, 1)
	assert.Equal(t, []string{"it's", "fine"}, cmds[0].Args)
}

func TestParse_UnterminatedQuoteIsLiteral(t *testing.T) {
	cmds := Parse("notify 'broken text")

	require.Len(t, cmds, 1)
	assert.Equal(t, []string{"'broken", "text"}, cmds[0].Args)
}

func TestParse_EmptyQuotedArgument(t *testing.T) {
	cmds := Parse("addplayerattribute key ''")

	require.Len(t, cmds, 1)
	assert.Equal(t, []string{"key", ""}, cmds[0].Args)
}

func TestParse_NoArguments(t *testing.T) {
	cmds := Parse("completequest")

	require.Len(t, cmds, 1)
	assert.Equal(t, "completequest", cmds[0].ID)
	assert.Empty(t, cmds[0].Args)
}

func TestCommand_StringReparses(t *testing.T) {
	in := []Command{
		{ID: "give", Args: []string{"Hello World", "3"}},
		{ID: "runactions", Args: []string{"notify a; notify b"}},
		{ID: "addplayerattribute", Args: []string{"k", ""}},
	}

	out := Parse(Join(in))

	assert.Equal(t, in, out)
}
