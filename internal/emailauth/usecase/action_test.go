package usecase

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/emailcode/internal/emailauth/entity"
)

func liveNotes() entity.Notes {
	return entity.Notes{entity.NoteEmailCode: "4821", entity.NoteURLKey: "k0"}
}

func TestAction_CorrectCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "exact", input: "4821"},
		{name: "leading zeros", input: "0004821"},
		{name: "surrounding spaces", input: " 4821 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			h := newHarness(t)
			att := h.attempt(liveNotes(), false)

			// Act
			res, err := h.uc.action(context.Background(), att, url.Values{entity.FormEmailCode: {tt.input}})

			// Assert
			require.NoError(t, err)
			assert.Equal(t, entity.StepSuccess, res.Status)
			assert.Empty(t, att.Notes)

			evs := h.events(t)
			require.Len(t, evs, 1)
			assert.Equal(t, entity.EventLogin, evs[0].Type)
			assert.Equal(t, "code", evs[0].Details["method"])
		})
	}
}

func TestAction_WrongCode(t *testing.T) {
	tests := []struct {
		name  string
		notes entity.Notes
		form  url.Values
	}{
		{name: "mismatch", notes: liveNotes(), form: url.Values{entity.FormEmailCode: {"99"}}},
		{name: "not a number", notes: liveNotes(), form: url.Values{entity.FormEmailCode: {"48a1"}}},
		{name: "field missing", notes: liveNotes(), form: url.Values{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			h := newHarness(t)
			att := h.attempt(tt.notes, false)

			// Act
			res, err := h.uc.action(context.Background(), att, tt.form)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, entity.StepChallenge, res.Status)
			assert.Equal(t, liveNotes(), att.Notes)
			assert.Empty(t, h.mail.sent)

			form := h.render.last()
			require.NotNil(t, form.Error)
			assert.Equal(t, entity.MessageInvalidAccessCode, form.Error.Key)
			assert.Empty(t, form.Error.Field)

			evs := h.events(t)
			require.Len(t, evs, 1)
			assert.Equal(t, entity.EventLoginError, evs[0].Type)
			assert.Equal(t, entity.ErrorInvalidUserCredentials, evs[0].Error)
		})
	}
}

func TestAction_NoStoredCodeCountsAsWrong(t *testing.T) {
	h := newHarness(t, 5555)
	att := h.attempt(nil, false)

	res, err := h.uc.action(context.Background(), att, url.Values{entity.FormEmailCode: {"0"}})

	require.NoError(t, err)
	assert.Equal(t, entity.StepChallenge, res.Status)
	require.NotNil(t, h.render.last().Error)
	// the re-challenge issues the first code
	require.Len(t, h.mail.sent, 1)
	assert.Equal(t, "5555", h.mail.sent[0].Code)
}

func TestAction_Resend(t *testing.T) {
	// Arrange
	h := newHarness(t, 1234)
	att := h.attempt(liveNotes(), false)

	// Act
	res, err := h.uc.action(context.Background(), att, url.Values{entity.FormResend: {""}})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.StepChallenge, res.Status)
	require.Len(t, h.mail.sent, 1)
	assert.Equal(t, "1234", h.mail.sent[0].Code)
	assert.Equal(t, entity.Notes{entity.NoteEmailCode: "1234", entity.NoteURLKey: "k1"}, att.Notes)
	assert.Nil(t, h.render.last().Error)
}

func TestAction_ResendWinsOverCode(t *testing.T) {
	h := newHarness(t, 1234)
	att := h.attempt(liveNotes(), false)

	res, err := h.uc.action(context.Background(), att, url.Values{
		entity.FormResend:    {"1"},
		entity.FormEmailCode: {"4821"},
	})

	require.NoError(t, err)
	assert.Equal(t, entity.StepChallenge, res.Status)
	assert.Len(t, h.mail.sent, 1)
}

func TestAction_Cancel(t *testing.T) {
	h := newHarness(t)
	att := h.attempt(liveNotes(), false)

	res, err := h.uc.action(context.Background(), att, url.Values{entity.FormCancel: {"Cancel"}})

	require.NoError(t, err)
	assert.Equal(t, entity.StepAbort, res.Status)
	assert.Nil(t, res.Page)
	assert.Empty(t, att.Notes)
	assert.Empty(t, h.mail.sent)

	evs := h.events(t)
	require.Len(t, evs, 1)
	assert.Equal(t, entity.EventCodeCanceled, evs[0].Type)
}

func TestCodeMatches(t *testing.T) {
	notes := entity.Notes{entity.NoteEmailCode: "0"}
	assert.True(t, codeMatches(notes, "0"))
	assert.True(t, codeMatches(notes, "0000"))
	assert.False(t, codeMatches(notes, ""))
	assert.False(t, codeMatches(entity.Notes{}, "0"))
	assert.False(t, codeMatches(entity.Notes{entity.NoteEmailCode: "x"}, "0"))
}
