package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf := &bytes.Buffer{}
	require.NoError(t, f.Write(buf))
	return buf
}

func TestMemoTransferService_Import(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	alice := createTestUser(t, env.db, 1, "alice", model.RoleUser)
	transfer := NewMemoTransferService(env.repo, env.service)

	workbook := buildWorkbook(t, [][]interface{}{
		{"content", "visibility", "pinned"},
		{"buy milk #shopping #todo", "public", "true"},
		{"private thought", "", ""},
		{"", "PUBLIC", "false"},
		{"bad visibility", "FRIENDS", "false"},
		{"<script>x()</script>", "PUBLIC", "false"},
	})

	result, err := transfer.Import(ctx, alice, workbook)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 3, result.Skipped)
	assert.Len(t, result.Errors, 2)

	page, err := env.service.ListMemos(ctx, alice, model.MemoQuery{})
	require.NoError(t, err)
	require.Len(t, page.Memos, 2)

	byContent := make(map[string]model.Memo)
	for _, memo := range page.Memos {
		byContent[memo.Content] = memo
	}
	shopping := byContent["buy milk #shopping #todo"]
	assert.Equal(t, model.VisibilityPublic, shopping.Visibility)
	assert.True(t, shopping.Pinned)
	assert.Equal(t, []string{"shopping", "todo"}, tagNames(shopping.Tags))
	assert.Equal(t, model.VisibilityPrivate, byContent["private thought"].Visibility)
}

func TestMemoTransferService_ImportRejectsGarbage(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	alice := createTestUser(t, env.db, 1, "alice", model.RoleUser)
	transfer := NewMemoTransferService(env.repo, env.service)

	_, err := transfer.Import(context.Background(), alice, strings.NewReader("not a workbook"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMemoTransferService_Export(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	alice := createTestUser(t, env.db, 1, "alice", model.RoleUser)
	bob := createTestUser(t, env.db, 2, "bob", model.RoleUser)
	transfer := NewMemoTransferService(env.repo, env.service)

	_, err := env.service.CreateMemo(ctx, alice, model.CreateMemoRequest{Content: "first #a"})
	require.NoError(t, err)
	archived, err := env.service.CreateMemo(ctx, alice, model.CreateMemoRequest{Content: "second #b #a"})
	require.NoError(t, err)
	state := "ARCHIVED"
	_, err = env.service.UpdateMemo(ctx, alice, archived.ID, model.UpdateMemoRequest{State: &state})
	require.NoError(t, err)
	_, err = env.service.CreateMemo(ctx, bob, model.CreateMemoRequest{Content: "bob's", Visibility: "PUBLIC"})
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	count, err := transfer.Export(ctx, alice, buf)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(memoSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeaders, rows[0])

	contents := []string{rows[1][1], rows[2][1]}
	assert.ElementsMatch(t, []string{"first #a", "second #b #a"}, contents)
	for _, row := range rows[1:] {
		if row[1] == "second #b #a" {
			assert.Equal(t, "ARCHIVED", row[4])
			assert.Equal(t, "a,b", row[5])
		}
	}

	_, err = transfer.Export(ctx, model.AnonymousViewer(), &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrMemoAccessDenied)
}
