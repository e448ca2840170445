package service

import (
	"context"
	"strings"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComment(t *testing.T) {
	f := newFixture(t)
	alice := f.registerUser(t, "alice", "a@x.com")
	bob := f.registerUser(t, "bob", "b@x.com")
	post := f.createPost(t, alice.ID, "T")
	ctx := context.Background()

	// Any authenticated user may comment on any existing post.
	comment, err := f.comments.Add(ctx, AddCommentInput{
		UserID: bob.ID, PostID: post.ID, Text: "nice",
	})
	require.NoError(t, err)
	assert.Equal(t, "nice", comment.Text)
	assert.Equal(t, bob.ID, comment.UserID)
	assert.Equal(t, "bob", comment.User.Username)
}

func TestAddCommentUnknownPost(t *testing.T) {
	f := newFixture(t)
	alice := f.registerUser(t, "alice", "a@x.com")

	_, err := f.comments.Add(context.Background(), AddCommentInput{
		UserID: alice.ID, PostID: 9999, Text: "nice",
	})
	assert.Equal(t, models.CodeNotFound, errCode(t, err))
}

func TestAddCommentValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.registerUser(t, "alice", "a@x.com")
	post := f.createPost(t, alice.ID, "T")
	ctx := context.Background()

	_, err := f.comments.Add(ctx, AddCommentInput{
		UserID: alice.ID, PostID: post.ID, Text: "",
	})
	assert.Equal(t, models.CodeValidation, errCode(t, err))

	_, err = f.comments.Add(ctx, AddCommentInput{
		UserID: alice.ID, PostID: post.ID, Text: strings.Repeat("a", 256),
	})
	assert.Equal(t, models.CodeValidation, errCode(t, err))

	// Exactly at the bound is fine.
	_, err = f.comments.Add(ctx, AddCommentInput{
		UserID: alice.ID, PostID: post.ID, Text: strings.Repeat("a", 255),
	})
	assert.NoError(t, err)
}

func TestListByPost(t *testing.T) {
	f := newFixture(t)
	alice := f.registerUser(t, "alice", "a@x.com")
	post := f.createPost(t, alice.ID, "T")
	ctx := context.Background()

	_, err := f.comments.ListByPost(ctx, 9999)
	assert.Equal(t, models.CodeNotFound, errCode(t, err))

	for _, text := range []string{"one", "two"} {
		_, err := f.comments.Add(ctx, AddCommentInput{
			UserID: alice.ID, PostID: post.ID, Text: text,
		})
		require.NoError(t, err)
	}

	comments, err := f.comments.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 2)
}
