package protocol_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptudirm.com/x/gambit/pkg/ove/extract"
	"laptudirm.com/x/gambit/pkg/ove/prompt"
	"laptudirm.com/x/gambit/pkg/ove/protocol"
)

// fakeView is a stand-in session exposing only the prompt builders.
type fakeView struct{}

func (fakeView) MoveRequest(extra ...string) []prompt.Message {
	user := "your move?"
	if len(extra) > 0 {
		user += "\n" + strings.Join(extra, "\n")
	}
	return []prompt.Message{
		{Role: prompt.RoleSystem, Content: "play chess"},
		{Role: prompt.RoleUser, Content: user},
	}
}

func (fakeView) LegalityCheck(candidate string, attempt int) []prompt.Message {
	return []prompt.Message{
		{Role: prompt.RoleSystem, Content: "play chess"},
		{Role: prompt.RoleUser, Content: fmt.Sprintf("is %s legal? (attempt %d)", candidate, attempt)},
	}
}

func TestStandardProtocol(t *testing.T) {
	proto := protocol.NewStandard()
	proto.BeginTurn()

	assert.Equal(t, "standard", proto.Name())
	assert.False(t, proto.HasPendingFollowup())

	view := fakeView{}
	messages := proto.BuildMessages(view)
	require.Len(t, messages, 2)

	outcome := proto.ProcessResponse(view, "e2e4", messages)
	assert.True(t, outcome.Completed)
	assert.Equal(t, "e2e4", outcome.TextForMove)

	stages := proto.Stages()
	require.Len(t, stages, 1)
	assert.Equal(t, "proposal", stages[0].Name)
	assert.Equal(t, "e2e4", stages[0].Assistant)
}

func TestVerifyConfirmedProposal(t *testing.T) {
	proto := protocol.NewVerify(extract.Tokens{}, extract.Keywords{}, 3)()
	proto.BeginTurn()
	view := fakeView{}

	messages := proto.BuildMessages(view)
	outcome := proto.ProcessResponse(view, "I'll play e2e4.", messages)
	assert.False(t, outcome.Completed)
	assert.True(t, proto.HasPendingFollowup())
	assert.Equal(t, "e2e4", outcome.Metadata["candidate_move"])

	// The followup asks about the extracted candidate.
	messages = proto.BuildMessages(view)
	assert.Contains(t, messages[1].Content, "e2e4")

	outcome = proto.ProcessResponse(view, "Yes, that is legal.", messages)
	assert.True(t, outcome.Completed)
	assert.False(t, proto.HasPendingFollowup())

	// The original proposal text commits, not the check answer.
	assert.Equal(t, "I'll play e2e4.", outcome.TextForMove)
	assert.Equal(t, true, outcome.Metadata["confirmed_legal"])

	stages := proto.Stages()
	require.Len(t, stages, 2)
	assert.Equal(t, "proposal", stages[0].Name)
	assert.Equal(t, "check", stages[1].Name)
}

func TestVerifyRejectionSurfacesCandidates(t *testing.T) {
	proto := protocol.NewVerify(extract.Tokens{}, extract.Keywords{}, 3)()
	proto.BeginTurn()
	view := fakeView{}

	messages := proto.BuildMessages(view)
	outcome := proto.ProcessResponse(view, "e2e5", messages)
	require.False(t, outcome.Completed)

	messages = proto.BuildMessages(view)
	outcome = proto.ProcessResponse(view, "No, that is illegal.", messages)
	assert.False(t, outcome.Completed)
	assert.False(t, proto.HasPendingFollowup())

	// The next proposal prompt carries the rejected candidate.
	messages = proto.BuildMessages(view)
	assert.Contains(t, messages[1].Content, "Attempt 2 of 3.")
	assert.Contains(t, messages[1].Content, "Previous illegal attempts: e2e5.")
}

func TestVerifyForcedCommitAtAttemptLimit(t *testing.T) {
	proto := protocol.NewVerify(extract.Tokens{}, extract.Keywords{}, 2)()
	proto.BeginTurn()
	view := fakeView{}

	// Attempt 1: proposed and rejected.
	messages := proto.BuildMessages(view)
	outcome := proto.ProcessResponse(view, "e2e5", messages)
	require.False(t, outcome.Completed)
	messages = proto.BuildMessages(view)
	outcome = proto.ProcessResponse(view, "no", messages)
	require.False(t, outcome.Completed)

	// Attempt 2: rejected again, but the limit forces the commit.
	messages = proto.BuildMessages(view)
	outcome = proto.ProcessResponse(view, "d2d5", messages)
	require.False(t, outcome.Completed)
	messages = proto.BuildMessages(view)
	outcome = proto.ProcessResponse(view, "no", messages)

	assert.True(t, outcome.Completed)
	assert.Equal(t, "d2d5", outcome.TextForMove)
	assert.Equal(t, true, outcome.Metadata["forced_due_to_limit"])

	assert.Len(t, proto.Stages(), 4)
}

func TestVerifyUncertainCheckCountsAsRejection(t *testing.T) {
	proto := protocol.NewVerify(extract.Tokens{}, extract.Keywords{}, 3)()
	proto.BeginTurn()
	view := fakeView{}

	messages := proto.BuildMessages(view)
	outcome := proto.ProcessResponse(view, "e2e4", messages)
	require.False(t, outcome.Completed)

	messages = proto.BuildMessages(view)
	outcome = proto.ProcessResponse(view, "I cannot tell.", messages)
	assert.False(t, outcome.Completed)
	assert.Equal(t, true, outcome.Metadata["uncertain_check"])
}

func TestVerifyEmptyCandidateShortCircuits(t *testing.T) {
	proto := protocol.NewVerify(extract.Tokens{}, extract.Keywords{}, 3)()
	proto.BeginTurn()
	view := fakeView{}

	messages := proto.BuildMessages(view)
	outcome := proto.ProcessResponse(view, "", messages)

	// Nothing to verify: the raw reply goes straight to validation.
	assert.True(t, outcome.Completed)
	assert.Equal(t, "", outcome.TextForMove)
	assert.Equal(t, true, outcome.Metadata["candidate_empty"])
}
