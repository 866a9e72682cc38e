package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/mnuddindev/winoreat/internal/db/dbtest"
	"github.com/mnuddindev/winoreat/internal/models"
	bug "github.com/mnuddindev/winoreat/internal/models/bug"
	restaurant "github.com/mnuddindev/winoreat/internal/models/restaurant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mailbox struct {
	sent int
	err  error
}

func (m *mailbox) SendBugAnswer(ctx context.Context, email, title, answer string) error {
	m.sent++
	return m.err
}

func TestDispatchAnswerAndDone(t *testing.T) {
	gdb := dbtest.New(t, models.RegisterModels()...)
	ctx := context.Background()
	email := "fan@example.com"
	b, err := bug.NewBug(ctx, gdb, bug.NewBugInput{BugType: bug.ServiceNotWorked, Title: "t", Description: "d", Email: &email})
	require.NoError(t, err)

	mail := &mailbox{err: errors.New("smtp down")}
	var out bytes.Buffer
	require.NoError(t, dispatch(ctx, gdb, mail, []string{"answer", "-bug", "1", "-text", "고쳤어요"}, &out))
	assert.Equal(t, 1, mail.sent)
	assert.Contains(t, out.String(), "stored for bug 1")
	assert.Contains(t, out.String(), "notification failed")

	out.Reset()
	require.NoError(t, dispatch(ctx, gdb, nil, []string{"done", "-bug", "1"}, &out))
	assert.Equal(t, "bug 1 is DONE\n", out.String())

	got, err := bug.GetBug(ctx, gdb, b.ID)
	require.NoError(t, err)
	assert.Equal(t, bug.Done, got.StatusType)
	assert.Len(t, got.Answers, 1)
}

func TestDispatchErrors(t *testing.T) {
	gdb := dbtest.New(t, models.RegisterModels()...)
	var out bytes.Buffer

	assert.Error(t, dispatch(context.Background(), gdb, nil, []string{"answer", "-text", "x"}, &out))
	assert.Error(t, dispatch(context.Background(), gdb, nil, []string{"done", "-bug", "7"}, &out))
	assert.Error(t, dispatch(context.Background(), gdb, nil, []string{"launch"}, &out))
}

func TestDispatchMergeDuplicates(t *testing.T) {
	gdb := dbtest.New(t, models.RegisterModels()...)
	ctx := context.Background()
	for _, addr := range []string{"대구광역시 A", "대구광역시 B"} {
		_, err := restaurant.NewRestaurant(ctx, gdb, "국밥집", addr, restaurant.WithCategory(restaurant.Korean))
		require.NoError(t, err)
	}

	var out bytes.Buffer
	require.NoError(t, dispatch(ctx, gdb, nil, []string{"merge-duplicates"}, &out))
	assert.Equal(t, "merged 1 groups, removed 1 restaurants\n", out.String())
}
