package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/KirkDiggler/tally/internal/models"
	"github.com/KirkDiggler/tally/internal/repositories/game"
	gameMocks "github.com/KirkDiggler/tally/internal/repositories/game/mocks"
	"github.com/KirkDiggler/tally/internal/services/checkpoint/mocks"
	"github.com/KirkDiggler/tally/internal/services/counting"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type CheckpointTestSuite struct {
	suite.Suite
	mockCtrl     *gomock.Controller
	mockEngine   *mocks.MockEngine
	mockGameRepo *gameMocks.MockRepository
	checkpointer *Checkpointer
	ctx          context.Context

	snapshot *models.Snapshot
}

func TestCheckpointTestSuite(t *testing.T) {
	suite.Run(t, new(CheckpointTestSuite))
}

func (s *CheckpointTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockEngine = mocks.NewMockEngine(s.mockCtrl)
	s.mockGameRepo = gameMocks.NewMockRepository(s.mockCtrl)
	s.ctx = context.Background()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	checkpointer, err := New(&Config{
		Engine:   s.mockEngine,
		GameRepo: s.mockGameRepo,
		GuildID:  "test-guild-id",
		Logger:   logger,
	})
	s.Require().NoError(err)
	s.checkpointer = checkpointer

	s.snapshot = &models.Snapshot{
		Game: &models.Game{CurrentCount: 12, HighestCount: 30, LastParticipantID: "test-player"},
		Participants: []*models.ParticipantStatus{
			{ParticipantID: "test-player", LivesRemaining: 2},
		},
		TakenAt: time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC),
	}
}

func (s *CheckpointTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *CheckpointTestSuite) TestNew_ValidatesConfig() {
	_, err := New(nil)
	s.ErrorIs(err, ErrNilConfig)

	_, err = New(&Config{GameRepo: s.mockGameRepo, GuildID: "g"})
	s.ErrorIs(err, ErrNilEngine)

	_, err = New(&Config{Engine: s.mockEngine, GuildID: "g"})
	s.ErrorIs(err, ErrNilGameRepo)

	_, err = New(&Config{Engine: s.mockEngine, GameRepo: s.mockGameRepo})
	s.ErrorIs(err, ErrEmptyGuild)
}

func (s *CheckpointTestSuite) TestLoad_RestoresSnapshot() {
	s.mockGameRepo.EXPECT().
		GetSnapshot(gomock.Any(), &game.GetSnapshotInput{GuildID: "test-guild-id"}).
		Return(s.snapshot, nil)
	s.mockEngine.EXPECT().
		Restore(gomock.Any(), &counting.RestoreInput{Snapshot: s.snapshot}).
		Return(&counting.RestoreOutput{ParticipantsRestored: 1}, nil)

	restored, err := s.checkpointer.Load(s.ctx)
	s.Require().NoError(err)
	s.True(restored)
}

func (s *CheckpointTestSuite) TestLoad_NothingStored() {
	s.mockGameRepo.EXPECT().
		GetSnapshot(gomock.Any(), gomock.Any()).
		Return(nil, game.ErrSnapshotNotFound)

	restored, err := s.checkpointer.Load(s.ctx)
	s.Require().NoError(err)
	s.False(restored)
}

func (s *CheckpointTestSuite) TestLoad_Errors() {
	s.mockGameRepo.EXPECT().
		GetSnapshot(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused"))

	restored, err := s.checkpointer.Load(s.ctx)
	s.Error(err)
	s.False(restored)

	s.mockGameRepo.EXPECT().
		GetSnapshot(gomock.Any(), gomock.Any()).
		Return(s.snapshot, nil)
	s.mockEngine.EXPECT().
		Restore(gomock.Any(), gomock.Any()).
		Return(nil, counting.ErrInvalidSnapshot)
	s.mockGameRepo.EXPECT().
		DeleteSnapshot(gomock.Any(), &game.DeleteSnapshotInput{GuildID: "test-guild-id"}).
		Return(nil)

	restored, err = s.checkpointer.Load(s.ctx)
	s.ErrorIs(err, counting.ErrInvalidSnapshot)
	s.False(restored)
}

func (s *CheckpointTestSuite) TestLoad_DeletesCorruptSnapshot() {
	s.mockGameRepo.EXPECT().
		GetSnapshot(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: unexpected end of JSON input", game.ErrCorruptSnapshot))
	s.mockGameRepo.EXPECT().
		DeleteSnapshot(gomock.Any(), &game.DeleteSnapshotInput{GuildID: "test-guild-id"}).
		Return(nil)

	restored, err := s.checkpointer.Load(s.ctx)
	s.ErrorIs(err, game.ErrCorruptSnapshot)
	s.False(restored)
}

func (s *CheckpointTestSuite) TestLoad_DeleteFailureKeepsLoadError() {
	s.mockGameRepo.EXPECT().
		GetSnapshot(gomock.Any(), gomock.Any()).
		Return(nil, game.ErrCorruptSnapshot)
	s.mockGameRepo.EXPECT().
		DeleteSnapshot(gomock.Any(), gomock.Any()).
		Return(errors.New("connection refused"))

	restored, err := s.checkpointer.Load(s.ctx)
	s.ErrorIs(err, game.ErrCorruptSnapshot)
	s.False(restored)
}

func (s *CheckpointTestSuite) TestSave() {
	s.mockEngine.EXPECT().
		GetSnapshot(gomock.Any(), &counting.GetSnapshotInput{}).
		Return(&counting.GetSnapshotOutput{Snapshot: s.snapshot}, nil)
	s.mockGameRepo.EXPECT().
		SaveSnapshot(gomock.Any(), &game.SaveSnapshotInput{GuildID: "test-guild-id", Snapshot: s.snapshot}).
		Return(nil)

	s.NoError(s.checkpointer.Save(s.ctx))
}

func (s *CheckpointTestSuite) TestSave_RepositoryError() {
	s.mockEngine.EXPECT().
		GetSnapshot(gomock.Any(), gomock.Any()).
		Return(&counting.GetSnapshotOutput{Snapshot: s.snapshot}, nil)
	s.mockGameRepo.EXPECT().
		SaveSnapshot(gomock.Any(), gomock.Any()).
		Return(errors.New("read only replica"))

	s.Error(s.checkpointer.Save(s.ctx))
}

func (s *CheckpointTestSuite) TestRun_SavesOnShutdown() {
	s.mockEngine.EXPECT().
		GetSnapshot(gomock.Any(), gomock.Any()).
		Return(&counting.GetSnapshotOutput{Snapshot: s.snapshot}, nil).
		MinTimes(1)
	s.mockGameRepo.EXPECT().
		SaveSnapshot(gomock.Any(), gomock.Any()).
		Return(nil).
		MinTimes(1)

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	// Cancelled before the first tick, so only the final save runs
	s.NoError(s.checkpointer.Run(ctx, time.Hour))
}
