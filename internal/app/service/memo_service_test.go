package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/internal/app/repository"
	"github.com/ikkim/memolite-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memoTestEnv struct {
	db      *gorm.DB
	service MemoService
	repo    repository.MemoRepository
}

func setupMemoServiceTest(t *testing.T, strictTags bool, opts ...MemoServiceOption) *memoTestEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	memoRepo := repository.NewMemoRepository(testDB, strictTags)
	syncer := NewTagSynchronizer(repository.NewTagRepository(testDB))
	opts = append(opts, WithStrictTagMatch(strictTags))
	return &memoTestEnv{
		db:      testDB,
		service: NewMemoService(memoRepo, syncer, testDB, opts...),
		repo:    memoRepo,
	}
}

func createTestUser(t *testing.T, testDB *gorm.DB, id uint, username string, role model.UserRole) model.Viewer {
	user := &model.User{
		ID:           id,
		Username:     username,
		PasswordHash: "hashedpassword",
		Role:         role,
	}
	require.NoError(t, testDB.Create(user).Error)
	return model.AuthenticatedViewer(user.ID, user.Username, user.Role)
}

// seedMemo inserts a memo row directly, bypassing tag sync, with a fixed creation time.
func seedMemo(t *testing.T, testDB *gorm.DB, ownerID uint, visibility model.Visibility, pinned bool, createdAt time.Time, content string) *model.Memo {
	memo := &model.Memo{
		UserID:     ownerID,
		Content:    content,
		Visibility: visibility,
		Pinned:     pinned,
		State:      model.MemoStateNormal,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	require.NoError(t, testDB.Omit("User").Create(memo).Error)
	return memo
}

func tagNames(tags []model.Tag) []string {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	sort.Strings(names)
	return names
}

func memoIDs(memos []model.Memo) []uint {
	ids := make([]uint, len(memos))
	for i, memo := range memos {
		ids[i] = memo.ID
	}
	return ids
}

func linkedTagNames(t *testing.T, testDB *gorm.DB, memoID uint) []string {
	var names []string
	require.NoError(t, testDB.Table("memo_tags").
		Select("tags.name").
		Joins("JOIN tags ON tags.id = memo_tags.tag_id").
		Where("memo_tags.memo_id = ?", memoID).
		Order("tags.name").
		Pluck("tags.name", &names).Error)
	return names
}

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{name: "Two tags", content: "buy milk #shopping #todo", want: []string{"shopping", "todo"}},
		{name: "Duplicates collapse in first-occurrence order", content: "#b #a #b #a", want: []string{"b", "a"}},
		{name: "Case sensitive", content: "#Work and #work", want: []string{"Work", "work"}},
		{name: "Han characters", content: "오늘 #工作 끝", want: []string{"工作"}},
		{name: "Dash and underscore", content: "#tag-name_1!", want: []string{"tag-name_1"}},
		{name: "Bare hash", content: "# heading only", want: []string{}},
		{name: "No tags", content: "plain text", want: []string{}},
		{name: "Stops at punctuation", content: "#go, #rust.", want: []string{"go", "rust"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTags(tt.content))
		})
	}
}

func TestSanitizeContent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "Plain", in: "  hello #world  ", want: "hello #world"},
		{name: "Script block", in: "a<script>alert(1)</script>b", want: "ab"},
		{name: "Multiline script, mixed case", in: "x<SCRIPT type=\"t\">\nevil()\n</Script>y", want: "xy"},
		{name: "Javascript scheme", in: "[link](JavaScript:alert(1))", want: "[link](alert(1))"},
		{name: "Only script", in: "<script>x</script>", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeContent(tt.in))
		})
	}
}

func TestMemoService_CreateMemo(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	owner := createTestUser(t, env.db, 1, "alice", model.RoleUser)

	memo, err := env.service.CreateMemo(ctx, owner, model.CreateMemoRequest{Content: "buy milk #shopping #todo"})
	require.NoError(t, err)

	assert.NotZero(t, memo.ID)
	assert.Equal(t, model.VisibilityPrivate, memo.Visibility)
	assert.Equal(t, model.MemoStateNormal, memo.State)
	assert.Equal(t, []string{"shopping", "todo"}, tagNames(memo.Tags))
	assert.Equal(t, []string{"shopping", "todo"}, linkedTagNames(t, env.db, memo.ID))
	require.NotNil(t, memo.User)
	assert.Equal(t, "alice", memo.User.Username)
}

func TestMemoService_CreateMemo_Validation(t *testing.T) {
	env := setupMemoServiceTest(t, false, WithMaxContentLength(20))
	ctx := context.Background()
	owner := createTestUser(t, env.db, 1, "alice", model.RoleUser)

	tests := []struct {
		name  string
		req   model.CreateMemoRequest
		field string
	}{
		{name: "Empty content", req: model.CreateMemoRequest{Content: ""}, field: "content"},
		{name: "Whitespace only", req: model.CreateMemoRequest{Content: "   \n "}, field: "content"},
		{name: "Empty after sanitizing", req: model.CreateMemoRequest{Content: "<script>x()</script>"}, field: "content"},
		{name: "Too long", req: model.CreateMemoRequest{Content: strings.Repeat("가", 21)}, field: "content"},
		{name: "Unknown visibility", req: model.CreateMemoRequest{Content: "ok", Visibility: "PROTECTED"}, field: "visibility"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memo, err := env.service.CreateMemo(ctx, owner, tt.req)
			assert.Nil(t, memo)
			require.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	var count int64
	env.db.Model(&model.Memo{}).Count(&count)
	assert.Zero(t, count)
}

func TestMemoService_CreateMemo_RollsBackOnSyncFailure(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	owner := createTestUser(t, env.db, 1, "alice", model.RoleUser)

	require.NoError(t, env.db.Migrator().DropTable(&model.MemoTag{}))

	memo, err := env.service.CreateMemo(ctx, owner, model.CreateMemoRequest{Content: "hello #broken"})
	assert.Nil(t, memo)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	var memos, tags int64
	env.db.Model(&model.Memo{}).Count(&memos)
	env.db.Model(&model.Tag{}).Count(&tags)
	assert.Zero(t, memos, "memo write must roll back with the failed sync")
	assert.Zero(t, tags)
}

// pruningTagRepository runs the unused-tag cleanup right before linking, the
// window a concurrent tag GC can hit between Upsert and LinkMemo.
type pruningTagRepository struct {
	repository.TagRepository
	remaining *int
}

func (r pruningTagRepository) WithTx(tx *gorm.DB) repository.TagRepository {
	return pruningTagRepository{TagRepository: r.TagRepository.WithTx(tx), remaining: r.remaining}
}

func (r pruningTagRepository) LinkMemo(ctx context.Context, memoID, tagID uint) error {
	if *r.remaining > 0 {
		*r.remaining--
		if _, err := r.TagRepository.DeleteUnused(ctx); err != nil {
			return err
		}
	}
	return r.TagRepository.LinkMemo(ctx, memoID, tagID)
}

func TestMemoService_WriteSurvivesConcurrentTagPrune(t *testing.T) {
	tests := []struct {
		name      string
		prunes    int
		wantErr   bool
		wantMemos int64
	}{
		{name: "Single prune is retried", prunes: 1, wantMemos: 1},
		{name: "Repeated prune gives up", prunes: 2, wantErr: true, wantMemos: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB, err := db.SetupTestDB()
			require.NoError(t, err)
			t.Cleanup(func() { db.CleanupTestDB(testDB) })

			owner := createTestUser(t, testDB, 1, "alice", model.RoleUser)
			remaining := tt.prunes
			syncer := NewTagSynchronizer(pruningTagRepository{
				TagRepository: repository.NewTagRepository(testDB),
				remaining:     &remaining,
			})
			service := NewMemoService(repository.NewMemoRepository(testDB, false), syncer, testDB)

			memo, err := service.CreateMemo(context.Background(), owner, model.CreateMemoRequest{Content: "plan #trip"})

			var memos int64
			testDB.Model(&model.Memo{}).Count(&memos)
			assert.Equal(t, tt.wantMemos, memos)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrStoreUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"trip"}, tagNames(memo.Tags))
			assert.Equal(t, []string{"trip"}, linkedTagNames(t, testDB, memo.ID))
		})
	}
}

func TestMemoService_UpdateMemo_TagRemoval(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	owner := createTestUser(t, env.db, 1, "alice", model.RoleUser)

	memo, err := env.service.CreateMemo(ctx, owner, model.CreateMemoRequest{Content: "today #work #misc"})
	require.NoError(t, err)

	content := "today #life #misc"
	updated, err := env.service.UpdateMemo(ctx, owner, memo.ID, model.UpdateMemoRequest{Content: &content})
	require.NoError(t, err)

	assert.Equal(t, []string{"life", "misc"}, tagNames(updated.Tags))
	assert.Equal(t, []string{"life", "misc"}, linkedTagNames(t, env.db, memo.ID))

	// the tag row itself may linger without associations
	var work model.Tag
	require.NoError(t, env.db.Where("name = ?", "work").First(&work).Error)
}

func TestMemoService_UpdateMemo_RemovingAllTags(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	owner := createTestUser(t, env.db, 1, "alice", model.RoleUser)

	memo, err := env.service.CreateMemo(ctx, owner, model.CreateMemoRequest{Content: "#work only"})
	require.NoError(t, err)

	content := "nothing tagged"
	updated, err := env.service.UpdateMemo(ctx, owner, memo.ID, model.UpdateMemoRequest{Content: &content})
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)
	assert.Empty(t, linkedTagNames(t, env.db, memo.ID))
}

func TestMemoService_UpdateMemo_WithoutContentKeepsTags(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	owner := createTestUser(t, env.db, 1, "alice", model.RoleUser)

	memo, err := env.service.CreateMemo(ctx, owner, model.CreateMemoRequest{Content: "#keep #these"})
	require.NoError(t, err)

	pinned := true
	visibility := "PUBLIC"
	state := "ARCHIVED"
	updated, err := env.service.UpdateMemo(ctx, owner, memo.ID, model.UpdateMemoRequest{
		Pinned:     &pinned,
		Visibility: &visibility,
		State:      &state,
	})
	require.NoError(t, err)

	assert.True(t, updated.Pinned)
	assert.Equal(t, model.VisibilityPublic, updated.Visibility)
	assert.Equal(t, model.MemoStateArchived, updated.State)
	assert.Equal(t, []string{"keep", "these"}, linkedTagNames(t, env.db, memo.ID))
}

func TestMemoService_UpdateMemo_SyncIsIdempotent(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	owner := createTestUser(t, env.db, 1, "alice", model.RoleUser)

	content := "#a #b #a"
	memo, err := env.service.CreateMemo(ctx, owner, model.CreateMemoRequest{Content: content})
	require.NoError(t, err)
	first := linkedTagNames(t, env.db, memo.ID)

	for i := 0; i < 2; i++ {
		_, err := env.service.UpdateMemo(ctx, owner, memo.ID, model.UpdateMemoRequest{Content: &content})
		require.NoError(t, err)
	}

	assert.Equal(t, first, linkedTagNames(t, env.db, memo.ID))

	var links, tags int64
	env.db.Model(&model.MemoTag{}).Count(&links)
	env.db.Model(&model.Tag{}).Count(&tags)
	assert.Equal(t, int64(2), links)
	assert.Equal(t, int64(2), tags)
}

func TestTagSynchronizer_LinkTwice(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	owner := createTestUser(t, env.db, 1, "alice", model.RoleUser)
	memo := seedMemo(t, env.db, owner.UserID, model.VisibilityPrivate, false, baseTime, "#x #y")

	syncer := NewTagSynchronizer(repository.NewTagRepository(env.db))
	for i := 0; i < 2; i++ {
		_, err := syncer.Link(ctx, env.db, memo.ID, memo.Content)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"x", "y"}, linkedTagNames(t, env.db, memo.ID))
}

func TestMemoService_WriteOwnership(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	owner := createTestUser(t, env.db, 9, "owner", model.RoleUser)
	other := createTestUser(t, env.db, 7, "other", model.RoleUser)
	admin := createTestUser(t, env.db, 1, "root", model.RoleAdmin)

	private := seedMemo(t, env.db, owner.UserID, model.VisibilityPrivate, false, baseTime, "secret")
	public := seedMemo(t, env.db, owner.UserID, model.VisibilityPublic, false, baseTime, "hello")
	content := "hijacked"

	tests := []struct {
		name    string
		viewer  model.Viewer
		memoID  uint
		wantErr error
	}{
		{name: "Other user on private memo", viewer: other, memoID: private.ID, wantErr: ErrMemoNotFound},
		{name: "Other user on public memo", viewer: other, memoID: public.ID, wantErr: ErrMemoAccessDenied},
		{name: "Admin on private memo", viewer: admin, memoID: private.ID, wantErr: ErrMemoNotFound},
		{name: "Anonymous on public memo", viewer: model.AnonymousViewer(), memoID: public.ID, wantErr: ErrMemoAccessDenied},
		{name: "Missing memo", viewer: owner, memoID: 9999, wantErr: ErrMemoNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.service.UpdateMemo(ctx, tt.viewer, tt.memoID, model.UpdateMemoRequest{Content: &content})
			assert.ErrorIs(t, err, tt.wantErr)

			err = env.service.DeleteMemo(ctx, tt.viewer, tt.memoID)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	var stored model.Memo
	require.NoError(t, env.db.First(&stored, private.ID).Error)
	assert.Equal(t, "secret", stored.Content)
}

func TestMemoService_GetMemo(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	viewer7 := createTestUser(t, env.db, 7, "seven", model.RoleUser)
	owner9 := createTestUser(t, env.db, 9, "nine", model.RoleUser)

	private := seedMemo(t, env.db, owner9.UserID, model.VisibilityPrivate, false, baseTime, "mine")
	public := seedMemo(t, env.db, owner9.UserID, model.VisibilityPublic, false, baseTime, "ours")

	tests := []struct {
		name    string
		viewer  model.Viewer
		memoID  uint
		wantErr error
	}{
		{name: "Owner reads own private memo", viewer: owner9, memoID: private.ID},
		{name: "User 7 reads user 9 private memo", viewer: viewer7, memoID: private.ID, wantErr: ErrMemoAccessDenied},
		{name: "Anonymous reads private memo", viewer: model.AnonymousViewer(), memoID: private.ID, wantErr: ErrMemoAccessDenied},
		{name: "Anonymous reads public memo", viewer: model.AnonymousViewer(), memoID: public.ID},
		{name: "Missing memo", viewer: owner9, memoID: 4242, wantErr: ErrMemoNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memo, err := env.service.GetMemo(ctx, tt.viewer, tt.memoID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, memo)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.memoID, memo.ID)
			assert.NotNil(t, memo.Tags)
		})
	}
}

func TestMemoService_DeleteMemo(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	owner := createTestUser(t, env.db, 1, "alice", model.RoleUser)

	memo, err := env.service.CreateMemo(ctx, owner, model.CreateMemoRequest{Content: "bye #soon", Visibility: "PUBLIC"})
	require.NoError(t, err)
	require.NoError(t, env.db.Create(&model.Comment{MemoID: memo.ID, UserID: owner.UserID, Content: "note"}).Error)

	require.NoError(t, env.service.DeleteMemo(ctx, owner, memo.ID))

	_, err = env.service.GetMemo(ctx, owner, memo.ID)
	assert.ErrorIs(t, err, ErrMemoNotFound)

	var links, comments int64
	env.db.Model(&model.MemoTag{}).Where("memo_id = ?", memo.ID).Count(&links)
	env.db.Model(&model.Comment{}).Where("memo_id = ?", memo.ID).Count(&comments)
	assert.Zero(t, links)
	assert.Zero(t, comments)
}

func TestMemoService_ListMemos_AnonymousScenario(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	owner := createTestUser(t, env.db, 1, "alice", model.RoleUser)

	public := seedMemo(t, env.db, owner.UserID, model.VisibilityPublic, false, baseTime, "public")
	seedMemo(t, env.db, owner.UserID, model.VisibilityPrivate, true, baseTime.Add(time.Hour), "private pinned")

	page, err := env.service.ListMemos(ctx, model.AnonymousViewer(), model.MemoQuery{})
	require.NoError(t, err)
	assert.Equal(t, []uint{public.ID}, memoIDs(page.Memos))
	assert.Equal(t, int64(1), page.Total)

	// asking for PRIVATE as anonymous is an empty set, not an error
	page, err = env.service.ListMemos(ctx, model.AnonymousViewer(), model.MemoQuery{Visibility: "PRIVATE"})
	require.NoError(t, err)
	assert.Empty(t, page.Memos)
	assert.Zero(t, page.Total)
}

func TestMemoService_ListMemos_VisibilityFilters(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	alice := createTestUser(t, env.db, 1, "alice", model.RoleUser)
	bob := createTestUser(t, env.db, 2, "bob", model.RoleUser)

	alicePrivate := seedMemo(t, env.db, alice.UserID, model.VisibilityPrivate, false, baseTime, "a-private")
	alicePublic := seedMemo(t, env.db, alice.UserID, model.VisibilityPublic, false, baseTime.Add(1*time.Minute), "a-public")
	seedMemo(t, env.db, bob.UserID, model.VisibilityPrivate, false, baseTime.Add(2*time.Minute), "b-private")
	bobPublic := seedMemo(t, env.db, bob.UserID, model.VisibilityPublic, false, baseTime.Add(3*time.Minute), "b-public")

	tests := []struct {
		name       string
		visibility string
		want       []uint
	}{
		{name: "Default is own plus public", visibility: "", want: []uint{bobPublic.ID, alicePublic.ID, alicePrivate.ID}},
		{name: "ALL equals default", visibility: "ALL", want: []uint{bobPublic.ID, alicePublic.ID, alicePrivate.ID}},
		{name: "PUBLIC lists every public memo", visibility: "PUBLIC", want: []uint{bobPublic.ID, alicePublic.ID}},
		{name: "PRIVATE lists only own private memos", visibility: "PRIVATE", want: []uint{alicePrivate.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := env.service.ListMemos(ctx, alice, model.MemoQuery{Visibility: tt.visibility})
			require.NoError(t, err)
			assert.Equal(t, tt.want, memoIDs(page.Memos))
		})
	}

	t.Run("Unknown visibility is rejected", func(t *testing.T) {
		_, err := env.service.ListMemos(ctx, alice, model.MemoQuery{Visibility: "FRIENDS"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Unknown state is rejected", func(t *testing.T) {
		_, err := env.service.ListMemos(ctx, alice, model.MemoQuery{State: "DELETED"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestMemoService_ListMemos_VisibilityInvariant(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	viewers := []model.Viewer{
		model.AnonymousViewer(),
		createTestUser(t, env.db, 1, "u1", model.RoleUser),
		createTestUser(t, env.db, 2, "u2", model.RoleUser),
		createTestUser(t, env.db, 3, "u3", model.RoleUser),
		createTestUser(t, env.db, 4, "admin", model.RoleAdmin),
	}

	var memos []*model.Memo
	for i := 0; i < 60; i++ {
		owner := uint(rng.Intn(4) + 1)
		visibility := model.VisibilityPrivate
		if rng.Intn(2) == 0 {
			visibility = model.VisibilityPublic
		}
		memos = append(memos, seedMemo(t, env.db, owner, visibility, rng.Intn(5) == 0,
			baseTime.Add(time.Duration(i)*time.Minute), fmt.Sprintf("memo %d", i)))
	}

	for _, viewer := range viewers {
		for _, filter := range []string{"", "PUBLIC", "PRIVATE"} {
			t.Run(fmt.Sprintf("viewer=%d/%s", viewer.UserID, filter), func(t *testing.T) {
				page, err := env.service.ListMemos(ctx, viewer, model.MemoQuery{Visibility: filter, Limit: "100"})
				require.NoError(t, err)

				got := make(map[uint]bool)
				for _, m := range page.Memos {
					got[m.ID] = true
				}

				for _, m := range memos {
					want := viewer.CanView(m)
					switch filter {
					case "PUBLIC":
						want = m.Visibility == model.VisibilityPublic
					case "PRIVATE":
						want = m.Visibility == model.VisibilityPrivate && viewer.Owns(m)
					}
					assert.Equal(t, want, got[m.ID], "memo %d owner=%d visibility=%s", m.ID, m.UserID, m.Visibility)
				}
				assert.Equal(t, int64(len(page.Memos)), page.Total)
			})
		}
	}
}

func TestMemoService_ListMemos_OwnMemoCompleteness(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	alice := createTestUser(t, env.db, 1, "alice", model.RoleUser)
	bob := createTestUser(t, env.db, 2, "bob", model.RoleUser)

	var own []uint
	for i := 0; i < 10; i++ {
		visibility := model.VisibilityPrivate
		if i%3 == 0 {
			visibility = model.VisibilityPublic
		}
		m := seedMemo(t, env.db, alice.UserID, visibility, i%4 == 0, baseTime.Add(time.Duration(i)*time.Hour), "alice")
		own = append(own, m.ID)
		seedMemo(t, env.db, bob.UserID, model.VisibilityPrivate, false, baseTime.Add(time.Duration(i)*time.Hour), "bob")
	}

	page, err := env.service.ListMemos(ctx, alice, model.MemoQuery{})
	require.NoError(t, err)
	assert.ElementsMatch(t, own, memoIDs(page.Memos))
}

func TestMemoService_ListMemos_Ordering(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	owner := createTestUser(t, env.db, 1, "alice", model.RoleUser)

	oldPinned := seedMemo(t, env.db, owner.UserID, model.VisibilityPublic, true, baseTime, "old pinned")
	newest := seedMemo(t, env.db, owner.UserID, model.VisibilityPublic, false, baseTime.Add(3*time.Hour), "newest")
	middle := seedMemo(t, env.db, owner.UserID, model.VisibilityPrivate, false, baseTime.Add(2*time.Hour), "middle")
	newPinned := seedMemo(t, env.db, owner.UserID, model.VisibilityPrivate, true, baseTime.Add(1*time.Hour), "new pinned")
	oldest := seedMemo(t, env.db, owner.UserID, model.VisibilityPublic, false, baseTime.Add(-time.Hour), "oldest")

	page, err := env.service.ListMemos(ctx, owner, model.MemoQuery{})
	require.NoError(t, err)
	assert.Equal(t, []uint{newPinned.ID, oldPinned.ID, newest.ID, middle.ID, oldest.ID}, memoIDs(page.Memos))

	// pinned memos stay on top of every page
	page, err = env.service.ListMemos(ctx, owner, model.MemoQuery{Limit: "2", Offset: "1"})
	require.NoError(t, err)
	assert.Equal(t, []uint{oldPinned.ID, newest.ID}, memoIDs(page.Memos))
	assert.Equal(t, int64(5), page.Total)
}

func TestMemoService_ListMemos_PaginationClamp(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	owner := createTestUser(t, env.db, 1, "alice", model.RoleUser)

	rows := make([]model.Memo, 0, 120)
	for i := 0; i < 120; i++ {
		rows = append(rows, model.Memo{
			UserID:     owner.UserID,
			Content:    fmt.Sprintf("memo %d", i),
			Visibility: model.VisibilityPublic,
			State:      model.MemoStateNormal,
			CreatedAt:  baseTime.Add(time.Duration(i) * time.Second),
		})
	}
	require.NoError(t, env.db.Omit("User").CreateInBatches(rows, 50).Error)

	page, err := env.service.ListMemos(ctx, owner, model.MemoQuery{Limit: "1000", Offset: "-5"})
	require.NoError(t, err)
	assert.Equal(t, 100, page.Limit)
	assert.Equal(t, 0, page.Offset)
	assert.Len(t, page.Memos, 100)
	assert.Equal(t, int64(120), page.Total)

	page, err = env.service.ListMemos(ctx, owner, model.MemoQuery{})
	require.NoError(t, err)
	assert.Equal(t, 50, page.Limit)
	assert.Len(t, page.Memos, 50)

	page, err = env.service.ListMemos(ctx, owner, model.MemoQuery{Limit: "0", Offset: "500"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Limit)
	assert.Empty(t, page.Memos)
}

func TestMemoService_ListMemos_StateFilter(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	owner := createTestUser(t, env.db, 1, "alice", model.RoleUser)

	normal := seedMemo(t, env.db, owner.UserID, model.VisibilityPrivate, false, baseTime, "normal")
	archived := seedMemo(t, env.db, owner.UserID, model.VisibilityPrivate, false, baseTime.Add(time.Hour), "archived")
	require.NoError(t, env.db.Model(archived).Update("state", model.MemoStateArchived).Error)

	tests := []struct {
		state string
		want  []uint
	}{
		{state: "", want: []uint{normal.ID}},
		{state: "NORMAL", want: []uint{normal.ID}},
		{state: "ARCHIVED", want: []uint{archived.ID}},
		{state: "ALL", want: []uint{archived.ID, normal.ID}},
	}

	for _, tt := range tests {
		t.Run("state="+tt.state, func(t *testing.T) {
			page, err := env.service.ListMemos(ctx, owner, model.MemoQuery{State: tt.state})
			require.NoError(t, err)
			assert.Equal(t, tt.want, memoIDs(page.Memos))
		})
	}
}

func TestMemoService_ListMemos_SearchAndCreator(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	alice := createTestUser(t, env.db, 1, "alice", model.RoleUser)
	bob := createTestUser(t, env.db, 2, "bob", model.RoleUser)

	hello := seedMemo(t, env.db, alice.UserID, model.VisibilityPublic, false, baseTime, "Hello world")
	percent := seedMemo(t, env.db, alice.UserID, model.VisibilityPublic, false, baseTime.Add(time.Minute), "100% done")
	bobPublic := seedMemo(t, env.db, bob.UserID, model.VisibilityPublic, false, baseTime.Add(2*time.Minute), "Hello from bob")
	seedMemo(t, env.db, bob.UserID, model.VisibilityPrivate, false, baseTime.Add(3*time.Minute), "Hello private")

	page, err := env.service.ListMemos(ctx, alice, model.MemoQuery{Search: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, []uint{bobPublic.ID, hello.ID}, memoIDs(page.Memos))

	page, err = env.service.ListMemos(ctx, alice, model.MemoQuery{Search: "hello"})
	require.NoError(t, err)
	assert.Empty(t, page.Memos, "search is case-sensitive")

	page, err = env.service.ListMemos(ctx, alice, model.MemoQuery{Search: "%"})
	require.NoError(t, err)
	assert.Equal(t, []uint{percent.ID}, memoIDs(page.Memos), "search has no wildcards")

	bobID := bob.UserID
	page, err = env.service.ListMemos(ctx, alice, model.MemoQuery{CreatorID: &bobID})
	require.NoError(t, err)
	assert.Equal(t, []uint{bobPublic.ID}, memoIDs(page.Memos), "creator filter never widens visibility")
}

func TestMemoService_ListMemos_TagFilter(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	owner := createTestUser(t, env.db, 1, "alice", model.RoleUser)

	ab, err := env.service.CreateMemo(ctx, owner, model.CreateMemoRequest{Content: "#a #b", Visibility: "PUBLIC"})
	require.NoError(t, err)
	onlyA, err := env.service.CreateMemo(ctx, owner, model.CreateMemoRequest{Content: "#a", Visibility: "PUBLIC"})
	require.NoError(t, err)
	bca, err := env.service.CreateMemo(ctx, owner, model.CreateMemoRequest{Content: "#b #c #a", Visibility: "PUBLIC"})
	require.NoError(t, err)
	_, err = env.service.CreateMemo(ctx, owner, model.CreateMemoRequest{Content: "#b", Visibility: "PUBLIC"})
	require.NoError(t, err)
	tagging, err := env.service.CreateMemo(ctx, owner, model.CreateMemoRequest{Content: "#ab only", Visibility: "PUBLIC"})
	require.NoError(t, err)

	page, err := env.service.ListMemos(ctx, owner, model.MemoQuery{Tags: []string{"a"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{ab.ID, onlyA.ID, bca.ID, tagging.ID}, memoIDs(page.Memos), "substring match includes #ab")

	page, err = env.service.ListMemos(ctx, owner, model.MemoQuery{Tags: []string{"a", "b"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{ab.ID, bca.ID}, memoIDs(page.Memos))
	assert.Equal(t, int64(2), page.Total)

	page, err = env.service.ListMemos(ctx, owner, model.MemoQuery{Tags: []string{"a", "b"}, Limit: "1", Offset: "1"})
	require.NoError(t, err)
	assert.Len(t, page.Memos, 1)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Memos[0].Tags, len(ExtractTags(page.Memos[0].Content)))
}

func TestMemoService_ListMemos_StrictTagFilter(t *testing.T) {
	env := setupMemoServiceTest(t, true)
	ctx := context.Background()
	owner := createTestUser(t, env.db, 1, "alice", model.RoleUser)

	tagged, err := env.service.CreateMemo(ctx, owner, model.CreateMemoRequest{Content: "#tag #x"})
	require.NoError(t, err)
	_, err = env.service.CreateMemo(ctx, owner, model.CreateMemoRequest{Content: "#tagging"})
	require.NoError(t, err)

	page, err := env.service.ListMemos(ctx, owner, model.MemoQuery{Tags: []string{"tag"}})
	require.NoError(t, err)
	assert.Equal(t, []uint{tagged.ID}, memoIDs(page.Memos))

	page, err = env.service.ListMemos(ctx, owner, model.MemoQuery{Tags: []string{"tag", "x"}})
	require.NoError(t, err)
	assert.Equal(t, []uint{tagged.ID}, memoIDs(page.Memos))
}

func TestMemoService_GetMemoStats(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	alice := createTestUser(t, env.db, 1, "alice", model.RoleUser)
	bob := createTestUser(t, env.db, 2, "bob", model.RoleUser)

	seedMemo(t, env.db, alice.UserID, model.VisibilityPublic, false, baseTime, "d1")
	seedMemo(t, env.db, alice.UserID, model.VisibilityPrivate, false, baseTime.Add(time.Hour), "d1 private")
	seedMemo(t, env.db, alice.UserID, model.VisibilityPublic, false, baseTime.Add(24*time.Hour), "d2")

	stats, err := env.service.GetMemoStats(ctx, alice, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"2024-03-01": 2, "2024-03-02": 1}, stats)

	stats, err = env.service.GetMemoStats(ctx, bob, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"2024-03-01": 1, "2024-03-02": 1}, stats)
}

func TestMemoService_StoreUnavailable(t *testing.T) {
	env := setupMemoServiceTest(t, false)
	ctx := context.Background()
	owner := createTestUser(t, env.db, 1, "alice", model.RoleUser)

	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = env.service.ListMemos(ctx, owner, model.MemoQuery{})
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = env.service.CreateMemo(ctx, owner, model.CreateMemoRequest{Content: "x"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

type recordingPublisher struct {
	events []model.MemoEvent
}

func (p *recordingPublisher) Publish(event model.MemoEvent) {
	p.events = append(p.events, event)
}

func TestMemoService_PublishesEvents(t *testing.T) {
	publisher := &recordingPublisher{}
	env := setupMemoServiceTest(t, false, WithEventPublisher(publisher))
	ctx := context.Background()
	owner := createTestUser(t, env.db, 1, "alice", model.RoleUser)

	memo, err := env.service.CreateMemo(ctx, owner, model.CreateMemoRequest{Content: "hi"})
	require.NoError(t, err)
	pinned := true
	_, err = env.service.UpdateMemo(ctx, owner, memo.ID, model.UpdateMemoRequest{Pinned: &pinned})
	require.NoError(t, err)
	require.NoError(t, env.service.DeleteMemo(ctx, owner, memo.ID))

	require.Len(t, publisher.events, 3)
	assert.Equal(t, model.MemoEventCreated, publisher.events[0].Type)
	assert.Equal(t, model.MemoEventUpdated, publisher.events[1].Type)
	assert.Equal(t, model.MemoEventDeleted, publisher.events[2].Type)
	assert.Equal(t, memo.ID, publisher.events[2].Memo.ID)
}
