package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/nexus-api/internal/models"
)

func TestDoubtRepositoryCreateForcesPendingState(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDoubtRepository(db)

	senior := "Sneaky"
	doubt := &models.Doubt{
		StudentID:   "u1",
		StudentName: "Asha",
		StudentYear: 2,
		Major:       "cs",
		Title:       "Recursion",
		Description: "Base case?",
		Status:      models.DoubtStatusResolved,
		Senior:      &senior,
	}
	require.NoError(t, repo.Create(context.Background(), doubt))
	require.NotEmpty(t, doubt.ID)

	stored, err := repo.GetByID(context.Background(), doubt.ID)
	require.NoError(t, err)
	require.Equal(t, models.DoubtStatusPending, stored.Status)
	require.Nil(t, stored.Senior)
	require.Nil(t, stored.Solution)
	require.Equal(t, models.DefaultSyllabusID, stored.SyllabusID)
}

func TestDoubtRepositoryListByStatusOldestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDoubtRepository(db)
	base := time.Now().Add(-time.Hour)

	newer := seedDoubt(t, repo, "d2", base.Add(10*time.Minute))
	older := seedDoubt(t, repo, "d1", base)
	resolved := seedDoubt(t, repo, "d3", base.Add(20*time.Minute))
	require.NoError(t, repo.Resolve(context.Background(), resolved.ID, DoubtResolution{Senior: "Ravi", Solution: "done", ResolvedBy: "s1"}))

	pending, err := repo.ListByStatus(context.Background(), models.DoubtStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, older.ID, pending[0].ID)
	require.Equal(t, newer.ID, pending[1].ID)

	done, err := repo.ListByStatus(context.Background(), models.DoubtStatusResolved)
	require.NoError(t, err)
	require.Len(t, done, 1)
	require.True(t, done[0].IsResolved())
	require.Equal(t, "Ravi", *done[0].Senior)
	require.Equal(t, "s1", *done[0].ResolvedBy)
	require.NotNil(t, done[0].ResolvedAt)
}

func TestDoubtRepositoryListByStudentNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDoubtRepository(db)
	base := time.Now().Add(-time.Hour)

	first := seedDoubt(t, repo, "d1", base)
	second := seedDoubt(t, repo, "d2", base.Add(time.Minute))
	other := &models.Doubt{ID: "d3", StudentID: "u2", StudentName: "Other", StudentYear: 1, Major: "cs", Title: "t", Description: "d"}
	require.NoError(t, repo.Create(context.Background(), other))

	mine, err := repo.ListByStudent(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, second.ID, mine[0].ID)
	require.Equal(t, first.ID, mine[1].ID)
}

func TestDoubtRepositoryResolveRejectsSecondResolution(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDoubtRepository(db)
	doubt := seedDoubt(t, repo, "d1", time.Now())

	require.NoError(t, repo.Resolve(context.Background(), doubt.ID, DoubtResolution{Senior: "Ravi", Solution: "first", ResolvedBy: "s1"}))

	err := repo.Resolve(context.Background(), doubt.ID, DoubtResolution{Senior: "Meera", Solution: "second", ResolvedBy: "s2"})
	require.ErrorIs(t, err, ErrDoubtNotPending)

	stored, err := repo.GetByID(context.Background(), doubt.ID)
	require.NoError(t, err)
	require.Equal(t, "Ravi", *stored.Senior)
	require.Equal(t, "first", *stored.Solution)
}

func TestDoubtRepositoryResolveMissingDoubt(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDoubtRepository(db)

	err := repo.Resolve(context.Background(), "missing", DoubtResolution{Senior: "Ravi", Solution: "x"})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDoubtRepositoryConcurrentResolveHasSingleWinner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDoubtRepository(db)
	doubt := seedDoubt(t, repo, "d1", time.Now())

	const resolvers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   []string
		conflicts int
	)
	for i := 0; i < resolvers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("senior-%d", i)
			err := repo.Resolve(context.Background(), doubt.ID, DoubtResolution{Senior: name, Solution: "answer " + name, ResolvedBy: name})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners = append(winners, name)
				return
			}
			if errors.Is(err, ErrDoubtNotPending) {
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	require.Len(t, winners, 1)
	require.Equal(t, resolvers-1, conflicts)

	stored, err := repo.GetByID(context.Background(), doubt.ID)
	require.NoError(t, err)
	require.Equal(t, winners[0], *stored.Senior)
	require.Equal(t, "answer "+winners[0], *stored.Solution)
}

func TestDoubtRepositoryNoSeniorWithoutResolvedStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDoubtRepository(db)
	base := time.Now()
	for i := 0; i < 4; i++ {
		doubt := seedDoubt(t, repo, fmt.Sprintf("d%d", i), base.Add(time.Duration(i)*time.Second))
		if i%2 == 0 {
			require.NoError(t, repo.Resolve(context.Background(), doubt.ID, DoubtResolution{Senior: "Ravi", Solution: "ok", ResolvedBy: "s1"}))
		}
	}

	var violations int64
	require.NoError(t, db.Model(&models.Doubt{}).
		Where("(senior IS NOT NULL OR solution IS NOT NULL) AND status <> ?", models.DoubtStatusResolved).
		Count(&violations).Error)
	require.Zero(t, violations)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), counts[models.DoubtStatusPending])
	require.Equal(t, int64(2), counts[models.DoubtStatusResolved])
	require.Equal(t, int64(0), counts[models.DoubtStatusRejected])
}

func seedDoubt(t *testing.T, repo DoubtRepository, id string, createdAt time.Time) *models.Doubt {
	t.Helper()
	doubt := &models.Doubt{
		ID:          id,
		StudentID:   "u1",
		StudentName: "Asha",
		StudentYear: 2,
		Major:       "cs",
		Title:       "Question " + id,
		Description: "Details for " + id,
		CreatedAt:   createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), doubt))
	return doubt
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}
