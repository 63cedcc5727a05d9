package usecase

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/emailcode/internal/emailauth/entity"
	"github.com/shandysiswandi/emailcode/internal/pkg/goerror"
)

func TestChallenge_IssuesCodeAndLink(t *testing.T) {
	// Arrange
	h := newHarness(t, 4821)
	att := h.attempt(nil, false)

	// Act
	res, err := h.uc.challenge(context.Background(), att, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.StepChallenge, res.Status)
	assert.Equal(t, []byte("form:ex-1"), res.Page)

	code, _ := att.Notes.Get(entity.NoteEmailCode)
	key, _ := att.Notes.Get(entity.NoteURLKey)
	assert.Equal(t, "4821", code)
	assert.Equal(t, "k1", key)

	require.Len(t, h.mail.sent, 1)
	sent := h.mail.sent[0]
	assert.Equal(t, "alice@example.com", sent.To)
	assert.Equal(t, "alice", sent.Username)
	assert.Equal(t, "4821", sent.Code)
	assert.Equal(t, "Acme Corp", sent.Realm.DisplayName)

	link, err := url.Parse(sent.KeyURL)
	require.NoError(t, err)
	assert.Equal(t, "/realms/acme/login-actions/email-code", link.Path)
	assert.Equal(t, "ex-1", link.Query().Get("execution"))
	assert.Equal(t, "k1", link.Query().Get("key"))

	form := h.render.last()
	assert.Nil(t, form.Error)
	assert.Equal(t, att.ResumeURL, form.ActionURL)

	evs := h.events(t)
	require.Len(t, evs, 1)
	assert.Equal(t, entity.EventCodeSent, evs[0].Type)
	assert.Equal(t, "s-1", evs[0].SessionID)
}

func TestChallenge_CodeIsNotZeroPadded(t *testing.T) {
	h := newHarness(t, 7)
	att := h.attempt(nil, false)

	_, err := h.uc.challenge(context.Background(), att, nil)

	require.NoError(t, err)
	code, _ := att.Notes.Get(entity.NoteEmailCode)
	assert.Equal(t, "7", code)
}

func TestChallenge_LiveCodeIsNotReissued(t *testing.T) {
	h := newHarness(t, 1111)
	att := h.attempt(entity.Notes{entity.NoteEmailCode: "4821", entity.NoteURLKey: "k0"}, false)

	_, err := h.uc.challenge(context.Background(), att, nil)

	require.NoError(t, err)
	assert.Empty(t, h.mail.sent)
	assert.Equal(t, entity.Notes{entity.NoteEmailCode: "4821", entity.NoteURLKey: "k0"}, att.Notes)
}

func TestChallenge_UserWithoutEmail(t *testing.T) {
	// Arrange
	h := newHarness(t, 4821)
	att := h.attempt(nil, true)

	// Act
	_, err := h.uc.challenge(context.Background(), att, nil)

	// Assert
	ge, ok := goerror.As(err)
	require.True(t, ok)
	assert.Equal(t, goerror.CodeForbidden, ge.Code())
	assert.Empty(t, h.mail.sent)
	assert.Empty(t, h.render.forms)
	assert.Empty(t, att.Notes)

	evs := h.events(t)
	require.Len(t, evs, 1)
	assert.Equal(t, entity.EventLoginError, evs[0].Type)
	assert.Equal(t, entity.ErrorInvalidUser, evs[0].Error)
}

func TestChallenge_SendFailureStillStoresNotes(t *testing.T) {
	h := newHarness(t, 4821)
	h.mail.err = errors.New("smtp: connection refused")
	att := h.attempt(nil, false)

	res, err := h.uc.challenge(context.Background(), att, nil)

	require.NoError(t, err)
	assert.Equal(t, entity.StepChallenge, res.Status)
	code, _ := att.Notes.Get(entity.NoteEmailCode)
	assert.Equal(t, "4821", code)

	evs := h.events(t)
	require.Len(t, evs, 1)
	assert.Equal(t, entity.ErrorEmailSendFailed, evs[0].Error)
}

func TestWithQuery_PreservesExistingQuery(t *testing.T) {
	got, err := withQuery("https://id.example.com/x?execution=e1&client_id=web", "key", "abc")

	require.NoError(t, err)
	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "e1", u.Query().Get("execution"))
	assert.Equal(t, "web", u.Query().Get("client_id"))
	assert.Equal(t, "abc", u.Query().Get("key"))
}

func TestRandomCode_Range(t *testing.T) {
	for range 500 {
		n, err := RandomCode{}.Generate()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, codeUpperBound)
	}
}
