package cloudsync_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/superpet/superpet-api/internal/clients/cloudsync"
	"github.com/superpet/superpet-api/internal/repositories/storage"
)

type SchedulerTestSuite struct {
	suite.Suite
	cloud     *fakeCloud
	server    *httptest.Server
	store     *storage.MemoryStore
	scheduler *cloudsync.Scheduler
	ctx       context.Context
}

func (s *SchedulerTestSuite) SetupTest() {
	s.cloud = newFakeCloud()
	s.server = httptest.NewServer(s.cloud)
	client, err := cloudsync.New(&cloudsync.Config{BaseURL: s.server.URL})
	s.Require().NoError(err)

	s.store = storage.NewMemory()
	s.scheduler, err = cloudsync.NewScheduler(&cloudsync.SchedulerConfig{
		Client: client,
		Store:  s.store,
		Delay:  30 * time.Millisecond,
	})
	s.Require().NoError(err)
	s.ctx = context.Background()

	s.Require().NoError(s.store.Save(s.ctx, "p1:characters", `[{"id":"c1"}]`))
	s.Require().NoError(s.store.Save(s.ctx, "p1:active-character", "c1"))
}

func (s *SchedulerTestSuite) TearDownTest() {
	s.scheduler.Close()
	s.server.Close()
}

func (s *SchedulerTestSuite) TestSaveNow() {
	s.True(s.scheduler.SaveNow(s.ctx, "p1"))

	saved := s.cloud.saved("p1")
	s.Require().NotNil(saved)
	s.Require().NotNil(saved["characters"])
	s.Equal(`[{"id":"c1"}]`, *saved["characters"])
	s.Equal("c1", *saved["active-character"])
	s.Contains(saved, "inventory")
	s.Nil(saved["inventory"])
}

func (s *SchedulerTestSuite) TestMarkDirtyDebounces() {
	for i := 0; i < 5; i++ {
		s.scheduler.MarkDirty("p1")
		time.Sleep(5 * time.Millisecond)
	}
	s.True(s.scheduler.Pending("p1"))

	s.Eventually(func() bool {
		return s.cloud.count("/api/superpet/save") == 1
	}, time.Second, 10*time.Millisecond)
	s.False(s.scheduler.Pending("p1"))

	time.Sleep(60 * time.Millisecond)
	s.Equal(1, s.cloud.count("/api/superpet/save"))
}

func (s *SchedulerTestSuite) TestSaveNowCancelsPending() {
	s.scheduler.MarkDirty("p1")
	s.True(s.scheduler.SaveNow(s.ctx, "p1"))
	s.False(s.scheduler.Pending("p1"))

	time.Sleep(60 * time.Millisecond)
	s.Equal(1, s.cloud.count("/api/superpet/save"))
}

func (s *SchedulerTestSuite) TestFailuresAreSwallowed() {
	s.cloud.mu.Lock()
	s.cloud.failSave = true
	s.cloud.mu.Unlock()

	s.False(s.scheduler.SaveNow(s.ctx, "p1"))

	s.server.Close()
	s.False(s.scheduler.SaveNow(s.ctx, "p1"))
}

func (s *SchedulerTestSuite) TestRestore() {
	s.Require().True(s.scheduler.SaveNow(s.ctx, "p1"))
	s.Require().NoError(storage.ClearGameData(s.ctx, s.store, "p1"))

	s.True(s.scheduler.Restore(s.ctx, "p1"))

	v, ok, err := s.store.Load(s.ctx, "p1:characters")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(`[{"id":"c1"}]`, v)
	_, ok, err = s.store.Load(s.ctx, "p1:inventory")
	s.Require().NoError(err)
	s.False(ok, "null cloud keys are not written")
}

func (s *SchedulerTestSuite) TestRestoreWithoutCloudSave() {
	s.False(s.scheduler.Restore(s.ctx, "p2"))
}

func (s *SchedulerTestSuite) TestNoop() {
	var saver cloudsync.Saver = cloudsync.Noop{}
	saver.MarkDirty("p1")
	s.False(saver.SaveNow(s.ctx, "p1"))
}

func TestSchedulerTestSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}
