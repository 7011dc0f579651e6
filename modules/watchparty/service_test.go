package watchparty

import (
	"errors"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %s", err)
	}

	// the in-memory database vanishes if the pool opens a second connection
	sqlDb, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get connection pool: %s", err)
	}
	sqlDb.SetMaxOpenConns(1)

	err = db.AutoMigrate(&Pool{}, &Submission{}, &SubmissionMessage{}, &Upvote{})
	if err != nil {
		t.Fatalf("failed to migrate schema: %s", err)
	}

	return NewService(db)
}

func Test_DefinePool(t *testing.T) {
	service := newTestService(t)

	t.Run("lookup before define reports unconfigured", func(t *testing.T) {
		_, err := service.LookupPool("100")
		if !errors.Is(err, ErrChannelNotConfigured) {
			t.Errorf("expected ErrChannelNotConfigured, got %v", err)
		}
	})

	t.Run("lookup after define returns the pool", func(t *testing.T) {
		id, err := service.DefinePool("100", 3)
		if err != nil {
			t.Fatalf("define failed: %s", err)
		}

		pool, err := service.LookupPool("100")
		if err != nil {
			t.Fatalf("lookup failed: %s", err)
		}
		if pool.ID != id {
			t.Errorf("expected pool id %d, got %d", id, pool.ID)
		}
		if pool.MaxSubmissions != 3 {
			t.Errorf("expected max submissions 3, got %d", pool.MaxSubmissions)
		}
	})

	t.Run("duplicate channel id is rejected by the store", func(t *testing.T) {
		_, err := service.DefinePool("100", 5)
		if err == nil {
			t.Error("expected unique constraint failure for duplicate channel")
		}
	})
}

func Test_SubmissionQuota(t *testing.T) {
	service := newTestService(t)

	poolId, err := service.DefinePool("200", 2)
	if err != nil {
		t.Fatalf("define failed: %s", err)
	}

	for n := 0; n < 2; n++ {
		ok, err := service.CanSubmit(poolId, "userA")
		if err != nil {
			t.Fatalf("quota check failed: %s", err)
		}
		if !ok {
			t.Fatalf("submission %d should be within quota", n+1)
		}

		_, err = service.Submit(fmt.Sprintf("url%d", n+1), poolId, "userA")
		if err != nil {
			t.Fatalf("submit failed: %s", err)
		}
	}

	ok, err := service.CanSubmit(poolId, "userA")
	if err != nil {
		t.Fatalf("quota check failed: %s", err)
	}
	if ok {
		t.Error("userA should be at the limit")
	}

	// a forced insert past the check still lands; the cap is check-then-insert
	_, err = service.Submit("url3", poolId, "userA")
	if err != nil {
		t.Errorf("forced submit should not be blocked by the store: %s", err)
	}

	ok, err = service.CanSubmit(poolId, "userB")
	if err != nil {
		t.Fatalf("quota check failed: %s", err)
	}
	if !ok {
		t.Error("userB has a separate quota and should be allowed")
	}
}

func Test_UpvoteIdempotent(t *testing.T) {
	service := newTestService(t)

	poolId, _ := service.DefinePool("300", 5)
	submissionId, err := service.Submit("url1", poolId, "userA")
	if err != nil {
		t.Fatalf("submit failed: %s", err)
	}

	for n := 0; n < 2; n++ {
		if err = service.Upvote(submissionId, "voter1"); err != nil {
			t.Fatalf("upvote %d failed: %s", n+1, err)
		}
	}

	count, err := service.UpvoteCount(submissionId)
	if err != nil {
		t.Fatalf("count failed: %s", err)
	}
	if count != 1 {
		t.Errorf("expected 1 upvote after re-casting, got %d", count)
	}

	if err = service.Upvote(submissionId, "voter2"); err != nil {
		t.Fatalf("upvote failed: %s", err)
	}

	count, _ = service.UpvoteCount(submissionId)
	if count != 2 {
		t.Errorf("expected 2 upvotes from distinct users, got %d", count)
	}
}

func Test_TopSubmissionsOrder(t *testing.T) {
	service := newTestService(t)

	poolId, _ := service.DefinePool("400", 10)

	// vote counts 3, 1, 3, 0 in insertion order
	counts := []int{3, 1, 3, 0}
	ids := make([]uint, 0)
	for n, c := range counts {
		id, err := service.Submit(fmt.Sprintf("url%d", n+1), poolId, "userA")
		if err != nil {
			t.Fatalf("submit failed: %s", err)
		}
		ids = append(ids, id)

		for v := 0; v < c; v++ {
			if err = service.Upvote(id, fmt.Sprintf("voter%d", v)); err != nil {
				t.Fatalf("upvote failed: %s", err)
			}
		}
	}

	ranked, err := service.TopSubmissions(poolId, 10)
	if err != nil {
		t.Fatalf("ranking failed: %s", err)
	}

	expected := []struct {
		text  string
		count int64
	}{
		{"url1", 3},
		{"url3", 3},
		{"url2", 1},
		{"url4", 0},
	}

	if len(ranked) != len(expected) {
		t.Fatalf("expected %d rows, got %d", len(expected), len(ranked))
	}

	for n, want := range expected {
		if ranked[n].Text != want.text || ranked[n].UpvoteCount != want.count {
			t.Errorf("row %d: expected %s(%d), got %s(%d)", n, want.text, want.count, ranked[n].Text, ranked[n].UpvoteCount)
		}
	}
}

func Test_TopVoters(t *testing.T) {
	service := newTestService(t)

	poolId, _ := service.DefinePool("500", 10)

	ids := make([]uint, 0)
	for n := 0; n < 3; n++ {
		id, _ := service.Submit(fmt.Sprintf("url%d", n+1), poolId, "userA")
		ids = append(ids, id)
	}

	// voter1 votes on all three, voter2 on one, voter3 and voter4 tie at two;
	// voter4 casts first so the tie can only resolve by user id, not by
	// insertion order
	for _, id := range ids {
		_ = service.Upvote(id, "voter1")
	}
	_ = service.Upvote(ids[1], "voter4")
	_ = service.Upvote(ids[2], "voter4")
	_ = service.Upvote(ids[0], "voter2")
	_ = service.Upvote(ids[0], "voter3")
	_ = service.Upvote(ids[1], "voter3")

	voters, err := service.TopVoters(poolId, 10)
	if err != nil {
		t.Fatalf("ranking failed: %s", err)
	}

	expected := []string{"voter1", "voter3", "voter4", "voter2"}
	if len(voters) != len(expected) {
		t.Fatalf("expected %d voters, got %d", len(expected), len(voters))
	}
	for n, want := range expected {
		if voters[n] != want {
			t.Errorf("rank %d: expected %s, got %s", n+1, want, voters[n])
		}
	}
}

func Test_MessageLink(t *testing.T) {
	service := newTestService(t)

	poolId, _ := service.DefinePool("600", 5)
	submissionId, _ := service.Submit("url1", poolId, "userA")

	t.Run("stored submission backs the displayed embed", func(t *testing.T) {
		submission, err := service.LookupSubmission(submissionId)
		if err != nil {
			t.Fatalf("lookup failed: %s", err)
		}
		if submission.Text != "url1" || submission.SubmitterId != "userA" {
			t.Errorf("unexpected submission %+v", submission)
		}
	})

	t.Run("missing link reported before reveal", func(t *testing.T) {
		_, err := service.MessageId(submissionId)
		if !errors.Is(err, ErrMessageLinkMissing) {
			t.Errorf("expected ErrMessageLinkMissing, got %v", err)
		}
	})

	t.Run("link round trip", func(t *testing.T) {
		if err := service.LinkMessage(submissionId, "9001"); err != nil {
			t.Fatalf("link failed: %s", err)
		}

		messageId, err := service.MessageId(submissionId)
		if err != nil {
			t.Fatalf("lookup failed: %s", err)
		}
		if messageId != "9001" {
			t.Errorf("expected message id 9001, got %s", messageId)
		}
	})

	t.Run("second link for the same submission is rejected", func(t *testing.T) {
		err := service.LinkMessage(submissionId, "9002")
		if err == nil {
			t.Error("expected unique constraint failure for second link")
		}
	})
}

func Test_EndCycle(t *testing.T) {
	service := newTestService(t)

	poolId, err := service.DefinePool("700", 5)
	if err != nil {
		t.Fatalf("define failed: %s", err)
	}

	submissionId, _ := service.Submit("url1", poolId, "userA")
	_ = service.LinkMessage(submissionId, "9001")
	_ = service.Upvote(submissionId, "voter1")
	_ = service.Upvote(submissionId, "voter2")

	if err = service.EndCycle(poolId); err != nil {
		t.Fatalf("end cycle failed: %s", err)
	}

	submissions, err := service.Submissions(poolId)
	if err != nil {
		t.Fatalf("list failed: %s", err)
	}
	if len(submissions) != 0 {
		t.Errorf("expected no submissions after cycle end, got %d", len(submissions))
	}

	exists, err := service.SubmissionExists(submissionId)
	if err != nil {
		t.Fatalf("existence check failed: %s", err)
	}
	if exists {
		t.Error("submission should be purged")
	}

	if _, err = service.MessageId(submissionId); !errors.Is(err, ErrMessageLinkMissing) {
		t.Errorf("expected ErrMessageLinkMissing after purge, got %v", err)
	}

	count, err := service.UpvoteCount(submissionId)
	if err != nil {
		t.Fatalf("count failed: %s", err)
	}
	if count != 0 {
		t.Errorf("expected purged upvotes, got %d", count)
	}

	// the pool definition survives and is immediately reusable
	pool, err := service.LookupPool("700")
	if err != nil {
		t.Fatalf("pool should survive cycle end: %s", err)
	}
	if pool.ID != poolId || pool.MaxSubmissions != 5 {
		t.Errorf("pool definition changed across cycle end: %+v", pool)
	}

	ok, err := service.CanSubmit(poolId, "userA")
	if err != nil {
		t.Fatalf("quota check failed: %s", err)
	}
	if !ok {
		t.Error("quota should reset with the purged submissions")
	}
}

func Test_StaleSubmission(t *testing.T) {
	service := newTestService(t)

	exists, err := service.SubmissionExists(9999)
	if err != nil {
		t.Fatalf("existence check errored for unknown id: %s", err)
	}
	if exists {
		t.Error("unknown submission should not exist")
	}

	if _, err = service.MessageId(9999); !errors.Is(err, ErrMessageLinkMissing) {
		t.Errorf("expected ErrMessageLinkMissing for unknown id, got %v", err)
	}

	if _, err = service.LookupSubmission(9999); !errors.Is(err, ErrSubmissionNotFound) {
		t.Errorf("expected ErrSubmissionNotFound for unknown id, got %v", err)
	}

	if err = castVote(service, 9999, "voter1"); !errors.Is(err, ErrSubmissionNotFound) {
		t.Errorf("expected ErrSubmissionNotFound for stale vote, got %v", err)
	}

	count, err := service.UpvoteCount(9999)
	if err != nil || count != 0 {
		t.Errorf("stale vote must not land: count %d, err %v", count, err)
	}
}

func Test_FullCycleScenario(t *testing.T) {
	service := newTestService(t)

	poolId, err := service.DefinePool("100100", 2)
	if err != nil {
		t.Fatalf("define failed: %s", err)
	}

	submit := func(text, user string) (uint, bool) {
		ok, err := service.CanSubmit(poolId, user)
		if err != nil {
			t.Fatalf("quota check failed: %s", err)
		}
		if !ok {
			return 0, false
		}
		id, err := service.Submit(text, poolId, user)
		if err != nil {
			t.Fatalf("submit failed: %s", err)
		}
		return id, true
	}

	url1, ok := submit("url1", "userA")
	if !ok {
		t.Fatal("url1 should be accepted")
	}
	if _, ok = submit("url2", "userA"); !ok {
		t.Fatal("url2 should be accepted")
	}
	if _, ok = submit("url3", "userA"); ok {
		t.Fatal("url3 should be rejected, userA is at the limit")
	}

	url4, ok := submit("url4", "userB")
	if !ok {
		t.Fatal("url4 should be accepted, userB has a separate quota")
	}

	_ = service.Upvote(url1, "voter1")
	_ = service.Upvote(url1, "voter2")
	_ = service.Upvote(url4, "voter1")

	ranked, err := service.TopSubmissions(poolId, 10)
	if err != nil {
		t.Fatalf("ranking failed: %s", err)
	}

	expected := []struct {
		text  string
		count int64
	}{
		{"url1", 2},
		{"url4", 1},
		{"url2", 0},
	}

	if len(ranked) != len(expected) {
		t.Fatalf("expected %d rows, got %d", len(expected), len(ranked))
	}
	for n, want := range expected {
		if ranked[n].Text != want.text || ranked[n].UpvoteCount != want.count {
			t.Errorf("row %d: expected %s(%d), got %s(%d)", n, want.text, want.count, ranked[n].Text, ranked[n].UpvoteCount)
		}
	}
}

func Test_ProcessSubmission(t *testing.T) {
	service := newTestService(t)

	t.Run("unconfigured channel is reported without inserting", func(t *testing.T) {
		err := processSubmission(service, "url1", "900", "userA")
		if !errors.Is(err, ErrChannelNotConfigured) {
			t.Errorf("expected ErrChannelNotConfigured, got %v", err)
		}
	})

	poolId, err := service.DefinePool("900", 1)
	if err != nil {
		t.Fatalf("define failed: %s", err)
	}

	t.Run("within quota the submission lands", func(t *testing.T) {
		if err := processSubmission(service, "url1", "900", "userA"); err != nil {
			t.Fatalf("submission failed: %s", err)
		}

		submissions, err := service.Submissions(poolId)
		if err != nil {
			t.Fatalf("list failed: %s", err)
		}
		if len(submissions) != 1 || submissions[0].Text != "url1" {
			t.Errorf("expected one submission url1, got %+v", submissions)
		}
	})

	t.Run("over quota is rejected", func(t *testing.T) {
		err := processSubmission(service, "url2", "900", "userA")
		if !errors.Is(err, ErrSubmissionLimit) {
			t.Errorf("expected ErrSubmissionLimit, got %v", err)
		}
	})
}

func Test_SubmissionIds(t *testing.T) {
	service := newTestService(t)

	poolA, _ := service.DefinePool("800", 5)
	poolB, _ := service.DefinePool("801", 5)

	id1, _ := service.Submit("url1", poolA, "userA")
	id2, _ := service.Submit("url2", poolB, "userB")

	ids, err := service.SubmissionIds()
	if err != nil {
		t.Fatalf("listing failed: %s", err)
	}

	if len(ids) != 2 || ids[0] != id1 || ids[1] != id2 {
		t.Errorf("expected [%d %d], got %v", id1, id2, ids)
	}
}
