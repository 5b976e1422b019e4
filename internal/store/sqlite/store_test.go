// internal/store/sqlite/store_test.go
package sqlite

import (
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/founderdesk/daylog/internal/models"
)

func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	s, err := NewSQLiteStore(":memory:", "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

type testData struct {
	store *SQLiteStore
	now   time.Time
}

func setupTestData(t *testing.T) (*testData, func()) {
	s, cleanup := setupTestDB(t)
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	_, err := s.DB.Exec(`
		INSERT INTO tasks (id, title, points, eligible_role, active) VALUES
		('standup', 'Post the daily standup', 10, 'ALL', 1),
		('outreach', 'Reach out to five leads', 5, 'MARKETING', 1),
		('board-update', 'Send the board update', 25, 'CEO', 0)`)
	require.NoError(t, err, "Failed to insert test data")

	return &testData{
		store: s,
		now:   now,
	}, cleanup
}

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func submissionFixture(td *testData) models.Submission {
	return models.Submission{
		ID:        "sub-1",
		OwnerID:   "alice",
		OwnerRole: "CEO",
		TaskID:    "standup",
		Day:       "2024-01-15",
		Note:      "synced with the team",
		ProofRef:  "blob://proof-1",
		Status:    models.StatusPending,
		Version:   1,
		CreatedAt: td.now.Unix(),
		UpdatedAt: td.now.Unix(),
	}
}

func TestCreateAndGetSubmission(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	sub := submissionFixture(td)

	t.Run("create submission", func(t *testing.T) {
		err := td.store.CreateSubmission(&sub)
		require.NoError(t, err, "Failed to create submission")
	})

	t.Run("get by natural key", func(t *testing.T) {
		got, err := td.store.GetSubmission("alice", "standup", "2024-01-15")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, sub.ID, got.ID)
		assert.Equal(t, sub.Note, got.Note)
		assert.Equal(t, models.StatusPending, got.Status)
		assert.Equal(t, 1, got.Version)
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := td.store.GetSubmissionByID("sub-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, sub.OwnerID, got.OwnerID)
	})

	t.Run("get non-existent submission", func(t *testing.T) {
		got, err := td.store.GetSubmission("nobody", "standup", "2024-01-15")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("duplicate natural key is rejected", func(t *testing.T) {
		dup := submissionFixture(td)
		dup.ID = "sub-other"
		err := td.store.CreateSubmission(&dup)
		assert.Error(t, err)
	})
}

func TestSubmissionTransitions(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	sub := submissionFixture(td)
	require.NoError(t, td.store.CreateSubmission(&sub))

	t.Run("draft update keeps version", func(t *testing.T) {
		ok, err := td.store.UpdateDraft(sub.ID, "better note", "blob://proof-2", td.now.Unix()+60)
		require.NoError(t, err)
		require.True(t, ok)

		got, err := td.store.GetSubmissionByID(sub.ID)
		require.NoError(t, err)
		assert.Equal(t, "better note", got.Note)
		assert.Equal(t, 1, got.Version)
		assert.Equal(t, models.StatusPending, got.Status)
	})

	t.Run("cas from wrong version loses", func(t *testing.T) {
		ok, err := td.store.TransitionStatus(sub.ID, 7, models.StatusPending, models.StatusVerified, td.now.Unix())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("reopen requires a rejected row", func(t *testing.T) {
		ok, err := td.store.ReopenSubmission(sub.ID, "redo", "", td.now.Unix())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("reject then reopen bumps version", func(t *testing.T) {
		ok, err := td.store.TransitionStatus(sub.ID, 1, models.StatusPending, models.StatusRejected, td.now.Unix())
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = td.store.ReopenSubmission(sub.ID, "second take", "blob://proof-3", td.now.Unix()+120)
		require.NoError(t, err)
		require.True(t, ok)

		got, err := td.store.GetSubmissionByID(sub.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, got.Status)
		assert.Equal(t, 2, got.Version)
		assert.Equal(t, "second take", got.Note)
	})

	t.Run("cas on stale status loses after transition", func(t *testing.T) {
		ok, err := td.store.TransitionStatus(sub.ID, 2, models.StatusRejected, models.StatusPending, td.now.Unix())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("draft update skips finalized rows", func(t *testing.T) {
		ok, err := td.store.TransitionStatus(sub.ID, 2, models.StatusPending, models.StatusVerified, td.now.Unix())
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = td.store.UpdateDraft(sub.ID, "too late", "", td.now.Unix())
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := td.store.GetSubmissionByID(sub.ID)
		require.NoError(t, err)
		assert.Equal(t, "second take", got.Note)
	})
}

func TestListOwnerLogs(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	subs := []models.Submission{
		{ID: "sub-a", OwnerID: "alice", OwnerRole: "CEO", TaskID: "standup", Day: "2024-01-15",
			Note: "a", Status: models.StatusPending, Version: 1, CreatedAt: td.now.Unix(), UpdatedAt: td.now.Unix()},
		{ID: "sub-b", OwnerID: "alice", OwnerRole: "CEO", TaskID: "outreach", Day: "2024-01-14",
			Note: "b", Status: models.StatusVerified, Version: 1, CreatedAt: td.now.Unix() + 10, UpdatedAt: td.now.Unix() + 10},
		{ID: "sub-c", OwnerID: "bob", OwnerRole: "COO", TaskID: "standup", Day: "2024-01-15",
			Note: "c", Status: models.StatusPending, Version: 1, CreatedAt: td.now.Unix() + 20, UpdatedAt: td.now.Unix() + 20},
	}
	for i := range subs {
		require.NoError(t, td.store.CreateSubmission(&subs[i]))
	}

	require.NoError(t, td.store.UpsertDecision(models.Decision{
		SubmissionID: "sub-a",
		Version:      1,
		ReviewerID:   "bob",
		ReviewerRole: "COO",
		Verdict:      models.VerdictApprove,
		DecidedAt:    td.now.Unix(),
	}))

	t.Run("rows carry live decision counts", func(t *testing.T) {
		logs, err := td.store.ListOwnerLogs("alice", "2024-01-15")
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, "sub-a", logs[0].ID)
		assert.Equal(t, "a", logs[0].Note)
		assert.Equal(t, int64(1), logs[0].Approvals)
		assert.Equal(t, int64(0), logs[0].Rejections)
	})

	t.Run("empty day means all days", func(t *testing.T) {
		logs, err := td.store.ListOwnerLogs("alice", "")
		require.NoError(t, err)
		require.Len(t, logs, 2)
		assert.Equal(t, "sub-a", logs[0].ID)
		assert.Equal(t, "sub-b", logs[1].ID)
	})

	t.Run("other owners' rows stay out", func(t *testing.T) {
		logs, err := td.store.ListOwnerLogs("bob", "2024-01-15")
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, "sub-c", logs[0].ID)
	})

	t.Run("stale-version decisions are not counted", func(t *testing.T) {
		ok, err := td.store.TransitionStatus("sub-a", 1, models.StatusPending, models.StatusRejected, td.now.Unix())
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = td.store.ReopenSubmission("sub-a", "redo", "", td.now.Unix())
		require.NoError(t, err)
		require.True(t, ok)

		logs, err := td.store.ListOwnerLogs("alice", "2024-01-15")
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, int64(0), logs[0].Approvals)
	})
}

func TestDecisionOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	sub := submissionFixture(td)
	require.NoError(t, td.store.CreateSubmission(&sub))

	decision := models.Decision{
		SubmissionID: sub.ID,
		Version:      1,
		ReviewerID:   "bob",
		ReviewerRole: "COO",
		Verdict:      models.VerdictApprove,
		Comment:      "looks done",
		DecidedAt:    td.now.Unix(),
	}

	t.Run("upsert decision", func(t *testing.T) {
		require.NoError(t, td.store.UpsertDecision(decision))

		live, err := td.store.ListLiveDecisions(sub.ID, 1)
		require.NoError(t, err)
		require.Len(t, live, 1)
		assert.Equal(t, models.VerdictApprove, live[0].Verdict)
	})

	t.Run("same reviewer overwrites their verdict", func(t *testing.T) {
		decision.Verdict = models.VerdictReject
		decision.Comment = "changed my mind"
		decision.DecidedAt = td.now.Unix() + 30
		require.NoError(t, td.store.UpsertDecision(decision))

		live, err := td.store.ListLiveDecisions(sub.ID, 1)
		require.NoError(t, err)
		require.Len(t, live, 1)
		assert.Equal(t, models.VerdictReject, live[0].Verdict)
		assert.Equal(t, "changed my mind", live[0].Comment)
	})

	t.Run("older versions stay out of the live set", func(t *testing.T) {
		live, err := td.store.ListLiveDecisions(sub.ID, 2)
		require.NoError(t, err)
		assert.Empty(t, live)
	})

	t.Run("deleting the submission cascades", func(t *testing.T) {
		require.NoError(t, td.store.DeleteSubmission(sub.ID))

		live, err := td.store.ListLiveDecisions(sub.ID, 1)
		require.NoError(t, err)
		assert.Empty(t, live)
	})
}

func TestListPendingForReviewer(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	subs := []models.Submission{
		{ID: "sub-a", OwnerID: "alice", OwnerRole: "CEO", TaskID: "standup", Day: "2024-01-15",
			Note: "a", Status: models.StatusPending, Version: 1, CreatedAt: td.now.Unix(), UpdatedAt: td.now.Unix()},
		{ID: "sub-b", OwnerID: "bob", OwnerRole: "COO", TaskID: "standup", Day: "2024-01-15",
			Note: "b", Status: models.StatusPending, Version: 1, CreatedAt: td.now.Unix() + 10, UpdatedAt: td.now.Unix() + 10},
		{ID: "sub-c", OwnerID: "carol", OwnerRole: "MARKETING", TaskID: "outreach", Day: "2024-01-14",
			Note: "c", Status: models.StatusVerified, Version: 1, CreatedAt: td.now.Unix() + 20, UpdatedAt: td.now.Unix() + 20},
	}
	for i := range subs {
		require.NoError(t, td.store.CreateSubmission(&subs[i]))
	}

	t.Run("own and non-pending rows are excluded", func(t *testing.T) {
		queue, err := td.store.ListPendingForReviewer("bob", "2024-01-15")
		require.NoError(t, err)
		require.Len(t, queue, 1)
		assert.Equal(t, "sub-a", queue[0].ID)
	})

	t.Run("empty day means all days", func(t *testing.T) {
		queue, err := td.store.ListPendingForReviewer("carol", "")
		require.NoError(t, err)
		require.Len(t, queue, 2)
		assert.Equal(t, "sub-a", queue[0].ID)
		assert.Equal(t, "sub-b", queue[1].ID)
	})

	t.Run("decided rows drop off for that reviewer", func(t *testing.T) {
		require.NoError(t, td.store.UpsertDecision(models.Decision{
			SubmissionID: "sub-a",
			Version:      1,
			ReviewerID:   "carol",
			ReviewerRole: "MARKETING",
			Verdict:      models.VerdictApprove,
			DecidedAt:    td.now.Unix(),
		}))

		queue, err := td.store.ListPendingForReviewer("carol", "")
		require.NoError(t, err)
		require.Len(t, queue, 1)
		assert.Equal(t, "sub-b", queue[0].ID)
	})
}

func TestTaskOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("get existing task", func(t *testing.T) {
		task, err := td.store.GetTask("standup")
		require.NoError(t, err)
		require.NotNil(t, task)
		assert.Equal(t, 10, task.Points)
		assert.True(t, task.Active)
	})

	t.Run("get non-existent task", func(t *testing.T) {
		task, err := td.store.GetTask("not.exists")
		require.NoError(t, err)
		assert.Nil(t, task)
	})

	t.Run("active listing skips deactivated tasks", func(t *testing.T) {
		tasks, err := td.store.ListActiveTasks()
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "outreach", tasks[0].ID)
		assert.Equal(t, "standup", tasks[1].ID)
	})

	t.Run("save task upserts", func(t *testing.T) {
		require.NoError(t, td.store.SaveTask(models.Task{
			ID:           "standup",
			Title:        "Post the daily standup",
			Points:       12,
			EligibleRole: "ALL",
			Active:       true,
		}))

		task, err := td.store.GetTask("standup")
		require.NoError(t, err)
		assert.Equal(t, 12, task.Points)

		tasks, err := td.store.ListTasks()
		require.NoError(t, err)
		assert.Len(t, tasks, 3)
	})
}

func TestScoreSnapshotOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	snap := models.ScoreSnapshot{
		UserID:      "alice",
		Day:         "2024-01-15",
		RawPoints:   10,
		ProofBonus:  2,
		VerifyBonus: 1,
		Total:       13,
	}

	t.Run("save and get snapshot", func(t *testing.T) {
		require.NoError(t, td.store.SaveScoreSnapshot(snap))

		got, err := td.store.GetScoreSnapshot("alice", "2024-01-15")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, snap, *got)
	})

	t.Run("resave overwrites", func(t *testing.T) {
		snap.RawPoints = 0
		snap.ProofBonus = 0
		snap.VerifyBonus = 0
		snap.Total = 0
		require.NoError(t, td.store.SaveScoreSnapshot(snap))

		got, err := td.store.GetScoreSnapshot("alice", "2024-01-15")
		require.NoError(t, err)
		assert.Equal(t, 0, got.Total)
	})

	t.Run("get non-existent snapshot", func(t *testing.T) {
		got, err := td.store.GetScoreSnapshot("nobody", "2024-01-15")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestFetchLifetimeBoard(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	subs := []models.Submission{
		{ID: "sub-a", OwnerID: "alice", OwnerRole: "CEO", TaskID: "standup", Day: "2024-01-14",
			Note: "a", Status: models.StatusVerified, Version: 1, CreatedAt: td.now.Unix(), UpdatedAt: td.now.Unix()},
		{ID: "sub-b", OwnerID: "alice", OwnerRole: "CEO", TaskID: "standup", Day: "2024-01-15",
			Note: "b", Status: models.StatusVerified, Version: 1, CreatedAt: td.now.Unix() + 10, UpdatedAt: td.now.Unix() + 10},
		{ID: "sub-c", OwnerID: "bob", OwnerRole: "COO", TaskID: "standup", Day: "2024-01-15",
			Note: "c", Status: models.StatusVerified, Version: 1, CreatedAt: td.now.Unix() + 20, UpdatedAt: td.now.Unix() + 20},
	}
	for i := range subs {
		require.NoError(t, td.store.CreateSubmission(&subs[i]))
	}

	snaps := []models.ScoreSnapshot{
		{UserID: "alice", Day: "2024-01-14", RawPoints: 10, VerifyBonus: 1, Total: 11},
		{UserID: "alice", Day: "2024-01-15", RawPoints: 10, ProofBonus: 2, VerifyBonus: 1, Total: 13},
		{UserID: "bob", Day: "2024-01-15", RawPoints: 10, VerifyBonus: 1, Total: 11},
	}
	for _, s := range snaps {
		require.NoError(t, td.store.SaveScoreSnapshot(s))
	}

	board, err := td.store.FetchLifetimeBoard()
	require.NoError(t, err)
	require.Len(t, board, 2)

	assert.Equal(t, "alice", board[0].UserID)
	assert.Equal(t, "CEO", board[0].Role)
	assert.Equal(t, 2, board[0].TasksApproved)
	assert.Equal(t, 24, board[0].Total)

	assert.Equal(t, "bob", board[1].UserID)
	assert.Equal(t, 11, board[1].Total)
}

func TestFetchDailyReviewStats(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	sub := submissionFixture(td)
	require.NoError(t, td.store.CreateSubmission(&sub))

	decisions := []models.Decision{
		{SubmissionID: sub.ID, Version: 1, ReviewerID: "bob", ReviewerRole: "COO",
			Verdict: models.VerdictApprove, DecidedAt: td.now.Unix()},
		{SubmissionID: sub.ID, Version: 1, ReviewerID: "carol", ReviewerRole: "MARKETING",
			Verdict: models.VerdictReject, DecidedAt: td.now.Unix() + 5},
	}
	for _, d := range decisions {
		require.NoError(t, td.store.UpsertDecision(d))
	}

	stats, err := td.store.FetchDailyReviewStats("2024-01-15")
	require.NoError(t, err)
	require.Len(t, stats, 1)

	assert.Equal(t, sub.ID, stats[0].SubmissionID)
	assert.Equal(t, "alice", stats[0].OwnerID)
	assert.Equal(t, int64(1), stats[0].Approvals)
	assert.Equal(t, int64(1), stats[0].Rejections)

	stats, err = td.store.FetchDailyReviewStats("2024-01-16")
	require.NoError(t, err)
	assert.Empty(t, stats)
}
