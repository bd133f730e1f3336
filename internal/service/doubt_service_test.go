package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nexus-api/internal/dto"
	"github.com/noah-isme/nexus-api/internal/models"
	"github.com/noah-isme/nexus-api/internal/repository"
)

func newDoubtServiceFixture(t *testing.T) (DoubtService, *stubNotificationPublisher, repository.DoubtRepository) {
	t.Helper()
	db := setupServiceDB(t)
	seedStudent(t, db, "junior", "Asha", "cs", 2)
	seedStudent(t, db, "senior", "Ravi", "cs", 3)
	seedStudent(t, db, "senior2", "Meera", "cs", 4)
	seedStudent(t, db, "fresher", "Kiran", "cs", 1)
	seedStudent(t, db, "other", "Dev", "it", 4)

	doubts := repository.NewDoubtRepository(db)
	notifications := &stubNotificationPublisher{}
	svc := NewDoubtService(doubts, repository.NewStudentRepository(db), notifications, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	return svc, notifications, doubts
}

func TestDoubtServiceCreateSnapshotsProfile(t *testing.T) {
	svc, _, _ := newDoubtServiceFixture(t)

	created, err := svc.Create(context.Background(), Identity{UserID: "junior"}, dto.DoubtCreateRequest{
		Title:       "  Pointers in C ",
		Description: "How does pointer arithmetic work?",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Pointers in C", created.Title)
	require.Equal(t, "Asha", created.StudentName)
	require.Equal(t, 2, created.StudentYear)
	require.Equal(t, "cs", created.Major)
	require.Equal(t, models.DoubtStatusPending, created.Status)
	require.Equal(t, models.DefaultSyllabusID, created.SyllabusID)
	require.Nil(t, created.Senior)
	require.Nil(t, created.Solution)
}

func TestDoubtServiceCreateRejectsEmptyTitle(t *testing.T) {
	svc, _, doubts := newDoubtServiceFixture(t)

	_, err := svc.Create(context.Background(), Identity{UserID: "junior"}, dto.DoubtCreateRequest{Title: "", Description: "x"})
	require.ErrorIs(t, err, ErrDoubtValidation)
	var validationErrs validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrs))

	_, err = svc.Create(context.Background(), Identity{UserID: "junior"}, dto.DoubtCreateRequest{Title: "   ", Description: "x"})
	require.ErrorIs(t, err, ErrDoubtValidation)

	mine, err := doubts.ListByStudent(context.Background(), "junior")
	require.NoError(t, err)
	require.Empty(t, mine)
}

func TestDoubtServiceKeepsCodeTextVerbatim(t *testing.T) {
	svc, _, doubts := newDoubtServiceFixture(t)
	ctx := context.Background()

	title := "Why is a < b && c > d false?"
	description := "Tom's loop: for (i=0; i<n; i++)"
	created, err := svc.Create(ctx, Identity{UserID: "junior"}, dto.DoubtCreateRequest{Title: title, Description: description})
	require.NoError(t, err)

	stored, err := doubts.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, title, stored.Title)
	require.Equal(t, description, stored.Description)

	solution := `Use vector<int> v; and check "x" & y`
	_, err = svc.Resolve(ctx, Identity{UserID: "senior"}, created.ID, dto.DoubtResolveRequest{Solution: solution})
	require.NoError(t, err)

	stored, err = doubts.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Solution)
	require.Equal(t, solution, *stored.Solution)

	other, err := svc.Create(ctx, Identity{UserID: "junior"}, dto.DoubtCreateRequest{Title: "Templates", Description: "Which type?"})
	require.NoError(t, err)
	resolved, err := svc.Resolve(ctx, Identity{UserID: "senior"}, other.ID, dto.DoubtResolveRequest{Solution: "<int>"})
	require.NoError(t, err)
	require.Equal(t, "<int>", *resolved.Solution)
}

func TestDoubtServiceCreateRequiresProfile(t *testing.T) {
	svc, _, _ := newDoubtServiceFixture(t)

	_, err := svc.Create(context.Background(), Identity{UserID: "ghost"}, dto.DoubtCreateRequest{Title: "t", Description: "d"})
	require.ErrorIs(t, err, ErrProfileRequired)
}

func TestDoubtServiceListOpenFiltersByEligibility(t *testing.T) {
	svc, _, _ := newDoubtServiceFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, Identity{UserID: "junior"}, dto.DoubtCreateRequest{Title: "Year two", Description: "question"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Identity{UserID: "senior"}, dto.DoubtCreateRequest{Title: "Year three", Description: "question"})
	require.NoError(t, err)

	open, err := svc.ListOpen(ctx, Identity{UserID: "senior"})
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, "Year two", open[0].Title)

	open, err = svc.ListOpen(ctx, Identity{UserID: "senior2"})
	require.NoError(t, err)
	require.Len(t, open, 2)
	require.Equal(t, "Year two", open[0].Title)

	open, err = svc.ListOpen(ctx, Identity{UserID: "fresher"})
	require.NoError(t, err)
	require.Empty(t, open)

	open, err = svc.ListOpen(ctx, Identity{UserID: "other"})
	require.NoError(t, err)
	require.Empty(t, open)
}

func TestDoubtServiceResolveAttributesSeniorAndNotifies(t *testing.T) {
	svc, notifications, _ := newDoubtServiceFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, Identity{UserID: "junior"}, dto.DoubtCreateRequest{Title: "Recursion", Description: "base case"})
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, Identity{UserID: "senior", DisplayName: "Ravi K"}, created.ID, dto.DoubtResolveRequest{Solution: "Start with the smallest input."})
	require.NoError(t, err)
	require.Equal(t, models.DoubtStatusResolved, resolved.Status)
	require.NotNil(t, resolved.Senior)
	require.Equal(t, "Ravi K", *resolved.Senior)
	require.Equal(t, "Start with the smallest input.", *resolved.Solution)

	require.Len(t, notifications.calls, 1)
	require.Equal(t, "junior", notifications.calls[0].UserID)
	require.Equal(t, models.NotificationTypeDoubtResolved, notifications.calls[0].Type)
	require.Equal(t, created.ID, notifications.calls[0].Metadata["doubt_id"])

	mine, err := svc.ListMine(ctx, Identity{UserID: "junior"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, models.DoubtStatusResolved, mine[0].Status)
}

func TestDoubtServiceResolveFallsBackToProfileName(t *testing.T) {
	svc, _, _ := newDoubtServiceFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, Identity{UserID: "junior"}, dto.DoubtCreateRequest{Title: "Graphs", Description: "BFS"})
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, Identity{UserID: "senior"}, created.ID, dto.DoubtResolveRequest{Solution: "Use a queue."})
	require.NoError(t, err)
	require.Equal(t, "Ravi", *resolved.Senior)
}

func TestDoubtServiceResolveErrors(t *testing.T) {
	svc, _, _ := newDoubtServiceFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, Identity{UserID: "junior"}, dto.DoubtCreateRequest{Title: "Sorting", Description: "Quick sort pivot"})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, Identity{UserID: "senior"}, created.ID, dto.DoubtResolveRequest{Solution: ""})
	require.ErrorIs(t, err, ErrDoubtValidation)

	_, err = svc.Resolve(ctx, Identity{UserID: "senior"}, "missing", dto.DoubtResolveRequest{Solution: "x"})
	require.ErrorIs(t, err, ErrDoubtNotFound)

	_, err = svc.Resolve(ctx, Identity{UserID: "other"}, created.ID, dto.DoubtResolveRequest{Solution: "x"})
	require.ErrorIs(t, err, ErrResolverIneligible)

	_, err = svc.Resolve(ctx, Identity{UserID: "fresher"}, created.ID, dto.DoubtResolveRequest{Solution: "x"})
	require.ErrorIs(t, err, ErrResolverIneligible)

	_, err = svc.Resolve(ctx, Identity{UserID: "senior"}, created.ID, dto.DoubtResolveRequest{Solution: "Median of three."})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, Identity{UserID: "senior2"}, created.ID, dto.DoubtResolveRequest{Solution: "Random pivot."})
	require.ErrorIs(t, err, ErrDoubtNotPending)

	stored, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Ravi", *stored.Senior)
	require.Equal(t, "Median of three.", *stored.Solution)
}

func TestDoubtServiceNotificationFailureDoesNotFailResolve(t *testing.T) {
	svc, notifications, _ := newDoubtServiceFixture(t)
	notifications.err = errors.New("broker down")
	ctx := context.Background()

	created, err := svc.Create(ctx, Identity{UserID: "junior"}, dto.DoubtCreateRequest{Title: "Heaps", Description: "heapify"})
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, Identity{UserID: "senior"}, created.ID, dto.DoubtResolveRequest{Solution: "Sift down."})
	require.NoError(t, err)
	require.Equal(t, models.DoubtStatusResolved, resolved.Status)
}

func TestDoubtServiceConcurrentResolveSingleWinner(t *testing.T) {
	svc, _, _ := newDoubtServiceFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, Identity{UserID: "junior"}, dto.DoubtCreateRequest{Title: "Tries", Description: "prefix search"})
	require.NoError(t, err)

	resolvers := []string{"senior", "senior2"}
	results := make([]error, len(resolvers))
	var wg sync.WaitGroup
	for i, resolver := range resolvers {
		wg.Add(1)
		go func(i int, resolver string) {
			defer wg.Done()
			_, results[i] = svc.Resolve(ctx, Identity{UserID: resolver}, created.ID, dto.DoubtResolveRequest{Solution: "answer from " + resolver})
		}(i, resolver)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		require.ErrorIs(t, err, ErrDoubtNotPending)
	}
	require.Equal(t, 1, successes)

	stored, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Contains(t, []string{"Ravi", "Meera"}, *stored.Senior)
	require.Equal(t, "answer from "+map[string]string{"Ravi": "senior", "Meera": "senior2"}[*stored.Senior], *stored.Solution)
}

type failingDoubtRepo struct {
	repository.DoubtRepository
	err error
}

func (f failingDoubtRepo) Create(ctx context.Context, doubt *models.Doubt) error {
	return f.err
}

func (f failingDoubtRepo) ListByStatus(ctx context.Context, status string) ([]models.Doubt, error) {
	return nil, f.err
}

func TestDoubtServicePersistenceFailures(t *testing.T) {
	db := setupServiceDB(t)
	seedStudent(t, db, "junior", "Asha", "cs", 2)
	repo := failingDoubtRepo{err: errors.New("connection reset")}
	svc := NewDoubtService(repo, repository.NewStudentRepository(db), nil, validator.New(), zerolog.Nop())

	_, err := svc.Create(context.Background(), Identity{UserID: "junior"}, dto.DoubtCreateRequest{Title: "t", Description: "d"})
	require.ErrorIs(t, err, ErrDoubtPersistence)

	leaderboard := NewLeaderboardService(repo, zerolog.Nop())
	_, err = leaderboard.GetLeaderboard(context.Background())
	require.ErrorIs(t, err, ErrDoubtPersistence)
}

// faultyDoubtRepo injects store faults into an otherwise working repository.
type faultyDoubtRepo struct {
	repository.DoubtRepository
	getErr     error
	resolveErr error
}

func (f faultyDoubtRepo) GetByID(ctx context.Context, id string) (models.Doubt, error) {
	if f.getErr != nil {
		return models.Doubt{}, f.getErr
	}
	return f.DoubtRepository.GetByID(ctx, id)
}

func (f faultyDoubtRepo) Resolve(ctx context.Context, id string, resolution repository.DoubtResolution) error {
	if f.resolveErr != nil {
		return f.resolveErr
	}
	return f.DoubtRepository.Resolve(ctx, id, resolution)
}

func TestDoubtServiceResolveStoreFaultLeavesDoubtPending(t *testing.T) {
	db := setupServiceDB(t)
	seedStudent(t, db, "junior", "Asha", "cs", 2)
	seedStudent(t, db, "senior", "Ravi", "cs", 3)
	doubts := repository.NewDoubtRepository(db)
	students := repository.NewStudentRepository(db)
	validate := validator.New(validator.WithRequiredStructEnabled())
	notifications := &stubNotificationPublisher{}
	ctx := context.Background()

	created, err := NewDoubtService(doubts, students, nil, validate, zerolog.Nop()).
		Create(ctx, Identity{UserID: "junior"}, dto.DoubtCreateRequest{Title: "Hashing", Description: "collisions"})
	require.NoError(t, err)

	cases := map[string]faultyDoubtRepo{
		"resolve fails": {DoubtRepository: doubts, resolveErr: errors.New("connection reset")},
		"lookup fails":  {DoubtRepository: doubts, getErr: errors.New("connection reset")},
	}
	for name, repo := range cases {
		t.Run(name, func(t *testing.T) {
			svc := NewDoubtService(repo, students, notifications, validate, zerolog.Nop())

			_, err := svc.Resolve(ctx, Identity{UserID: "senior"}, created.ID, dto.DoubtResolveRequest{Solution: "Chain them."})
			require.ErrorIs(t, err, ErrDoubtPersistence)
			require.NotErrorIs(t, err, ErrDoubtNotFound)

			stored, err := doubts.GetByID(ctx, created.ID)
			require.NoError(t, err)
			require.Equal(t, models.DoubtStatusPending, stored.Status)
			require.Nil(t, stored.Senior)
			require.Nil(t, stored.Solution)
			require.Nil(t, stored.ResolvedBy)
			require.Nil(t, stored.ResolvedAt)
		})
	}
	require.Empty(t, notifications.calls)
}

func TestDoubtServiceProfileEditKeepsDoubtSnapshot(t *testing.T) {
	db := setupServiceDB(t)
	seedStudent(t, db, "junior", "Asha", "cs", 2)
	seedStudent(t, db, "senior", "Ravi", "cs", 3)
	seedStudent(t, db, "itsenior", "Dev", "it", 4)
	students := repository.NewStudentRepository(db)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewDoubtService(repository.NewDoubtRepository(db), students, nil, validate, zerolog.Nop())
	profiles := NewProfileService(students, validate, zerolog.Nop())
	ctx := context.Background()

	created, err := svc.Create(ctx, Identity{UserID: "junior"}, dto.DoubtCreateRequest{Title: "Linked lists", Description: "reverse in place"})
	require.NoError(t, err)

	_, err = profiles.Upsert(ctx, "junior", dto.ProfileUpsertRequest{Name: "Asha Rao", Email: "junior@example.com", Major: "it", Year: 4})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Asha", got.StudentName)
	require.Equal(t, 2, got.StudentYear)
	require.Equal(t, "cs", got.Major)

	mine, err := svc.ListMine(ctx, Identity{UserID: "junior"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "Asha", mine[0].StudentName)
	require.Equal(t, 2, mine[0].StudentYear)
	require.Equal(t, "cs", mine[0].Major)

	open, err := svc.ListOpen(ctx, Identity{UserID: "senior"})
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, created.ID, open[0].ID)

	open, err = svc.ListOpen(ctx, Identity{UserID: "itsenior"})
	require.NoError(t, err)
	require.Empty(t, open)
}

func TestLeaderboardServiceReflectsResolutions(t *testing.T) {
	svc, _, doubts := newDoubtServiceFixture(t)
	ctx := context.Background()
	leaderboard := NewLeaderboardService(doubts, zerolog.Nop())

	entries, err := leaderboard.GetLeaderboard(ctx)
	require.NoError(t, err)
	require.Empty(t, entries)

	for _, title := range []string{"one", "two", "three"} {
		created, err := svc.Create(ctx, Identity{UserID: "junior"}, dto.DoubtCreateRequest{Title: title, Description: "d"})
		require.NoError(t, err)
		resolver := "senior"
		if title == "two" {
			resolver = "senior2"
		}
		_, err = svc.Resolve(ctx, Identity{UserID: resolver}, created.ID, dto.DoubtResolveRequest{Solution: "s"})
		require.NoError(t, err)
	}

	entries, err = leaderboard.GetLeaderboard(ctx)
	require.NoError(t, err)
	require.Equal(t, []dto.LeaderboardEntry{
		{Rank: 1, Name: "Ravi", DoubtsResolved: 2, Points: 10},
		{Rank: 2, Name: "Meera", DoubtsResolved: 1, Points: 5},
	}, entries)
}
