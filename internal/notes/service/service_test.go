package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybook-app/daybook/internal/notes/domain"
	"github.com/daybook-app/daybook/internal/notes/repository"
	"github.com/daybook-app/daybook/pkg/db"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.Note{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return New(repository.New(dbConn), node)
}

func TestCreateAndUpdateNote(t *testing.T) {
	svc := newTestService(t)

	note, err := svc.Create(context.Background(), "u1", domain.CreateNoteRequest{
		Title: "meeting notes",
		Body:  "agenda",
	})
	require.NoError(t, err)
	assert.Equal(t, "meeting notes", note.Title)

	body := "agenda\n- item one"
	updated, err := svc.Update(context.Background(), "u1", note.ID, domain.UpdateNoteRequest{Body: &body})
	require.NoError(t, err)
	assert.Equal(t, body, updated.Body)
	assert.Equal(t, "meeting notes", updated.Title)
}

func TestUpdateRejectsEmptyTitle(t *testing.T) {
	svc := newTestService(t)

	note, err := svc.Create(context.Background(), "u1", domain.CreateNoteRequest{Title: "draft"})
	require.NoError(t, err)

	empty := "   "
	_, err = svc.Update(context.Background(), "u1", note.ID, domain.UpdateNoteRequest{Title: &empty})
	assert.ErrorIs(t, err, domain.ErrTitleRequired)
}

func TestUpdateOtherUsersNoteFails(t *testing.T) {
	svc := newTestService(t)

	note, err := svc.Create(context.Background(), "alice", domain.CreateNoteRequest{Title: "private"})
	require.NoError(t, err)

	title := "stolen"
	_, err = svc.Update(context.Background(), "bob", note.ID, domain.UpdateNoteRequest{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
}
