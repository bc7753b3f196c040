package progress

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gamestore/internal/dependencies/mocks"
	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/storage/memory"
	"github.com/mcoot/gamestore/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context

	dev    *model.Account
	player *model.Account
	owned  *model.Game
	paid   *model.Game
	free   *model.Game
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()

	s.dev = s.account("dev", model.RoleDeveloper)
	s.player = s.account("alice", model.RolePlayer)
	s.owned = s.game("Chess", 500)
	s.paid = s.game("Go", 300)
	s.free = s.game("Checkers", 0)

	order := &model.Order{BuyerID: s.player.ID, SellerID: s.dev.ID, GameID: s.owned.ID, Price: 500}
	s.Require().NoError(s.storage.CreateOrder(s.ctx, order))
	_, err := s.storage.CompleteOrder(s.ctx, order.ID, s.clock.Now())
	s.Require().NoError(err)
}

func (s *ServiceSuite) account(username string, role model.Role) *model.Account {
	account := &model.Account{Username: username, Role: role, Activated: true}
	s.Require().NoError(s.storage.CreateAccount(s.ctx, account))
	return account
}

func (s *ServiceSuite) game(name string, price model.Price) *model.Game {
	game := &model.Game{Name: name, Category: "Board", URL: "https://games.example.com/x", Price: price, DeveloperID: s.dev.ID}
	s.Require().NoError(s.storage.CreateGame(s.ctx, game))
	return game
}

// Score tests

func (s *ServiceSuite) TestSubmitScoreKeepsEveryScore() {
	for _, score := range []int{10, 40, 20} {
		_, err := s.service.SubmitScore(s.ctx, s.player, s.owned.ID, score)
		s.Require().NoError(err)
	}

	game, scores, err := s.service.HighScores(s.ctx, s.owned.ID)
	s.Require().NoError(err)
	s.Equal("Chess", game.Name)
	s.Require().Len(scores, 3)
	s.Equal(40, scores[0].HighScore.Score)
	s.Equal(20, scores[1].HighScore.Score)
	s.Equal(10, scores[2].HighScore.Score)
	s.Equal("alice", scores[0].Player)
}

func (s *ServiceSuite) TestSubmitScoreFreeGame() {
	_, err := s.service.SubmitScore(s.ctx, s.player, s.free.ID, 5)
	s.NoError(err)
}

func (s *ServiceSuite) TestSubmitScoreUnownedGame() {
	_, err := s.service.SubmitScore(s.ctx, s.player, s.paid.ID, 5)
	s.ErrorIs(err, model.ErrForbidden)
}

func (s *ServiceSuite) TestSubmitScoreRequiresPlayer() {
	_, err := s.service.SubmitScore(s.ctx, s.dev, s.owned.ID, 5)
	s.ErrorIs(err, model.ErrForbidden)
}

// Save and load tests

func (s *ServiceSuite) TestLoadLatestReturnsNewestInsert() {
	_, err := s.service.SaveState(s.ctx, s.player, s.owned.ID, `{"level":1}`)
	s.Require().NoError(err)
	_, err = s.service.SubmitScore(s.ctx, s.player, s.owned.ID, 99)
	s.Require().NoError(err)
	_, err = s.service.SaveState(s.ctx, s.player, s.owned.ID, `{"level":2}`)
	s.Require().NoError(err)
	_, err = s.service.SubmitScore(s.ctx, s.player, s.owned.ID, 1)
	s.Require().NoError(err)

	state, err := s.service.LoadLatest(s.ctx, s.player, s.owned.ID)
	s.Require().NoError(err)
	s.Equal(`{"level":2}`, state)
}

func (s *ServiceSuite) TestLoadLatestWithoutSave() {
	_, err := s.service.LoadLatest(s.ctx, s.player, s.owned.ID)
	s.ErrorIs(err, model.ErrSaveNotFound)
}

func (s *ServiceSuite) TestSaveStateValidation() {
	_, err := s.service.SaveState(s.ctx, s.player, s.owned.ID, "")
	var verr *model.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "state")

	_, err = s.service.SaveState(s.ctx, s.player, s.owned.ID, strings.Repeat("x", model.MaxSaveStateSize+1))
	s.Require().ErrorAs(err, &verr)

	_, err = s.service.SaveState(s.ctx, s.player, s.owned.ID, strings.Repeat("x", model.MaxSaveStateSize))
	s.NoError(err)
}

func (s *ServiceSuite) TestLoadMessage() {
	msg, err := s.service.LoadMessage(s.ctx, s.player, s.owned.ID)
	s.Require().NoError(err)
	s.JSONEq(`{"messageType":"ERROR","info":"Gamestate could not be loaded"}`, msg)

	_, err = s.service.SaveState(s.ctx, s.player, s.owned.ID, `{"playerItems":["sword"],"score":12}`)
	s.Require().NoError(err)

	msg, err = s.service.LoadMessage(s.ctx, s.player, s.owned.ID)
	s.Require().NoError(err)
	s.JSONEq(`{"messageType":"LOAD","gameState":{"playerItems":["sword"],"score":12}}`, msg)
}

func (s *ServiceSuite) TestLoadMessageOnUnownedGame() {
	msg, err := s.service.LoadMessage(s.ctx, s.player, s.paid.ID)
	s.Require().NoError(err)
	s.JSONEq(`{"messageType":"ERROR","info":"Gamestate could not be loaded"}`, msg)
}

func (s *ServiceSuite) TestLoadEnvelopeEmbedsNonJSONAsString() {
	msg, err := LoadEnvelope("not json")
	s.Require().NoError(err)
	s.JSONEq(`{"messageType":"LOAD","gameState":"not json"}`, msg)
}

// Query tests

func (s *ServiceSuite) TestQueryHighScores() {
	_, err := s.service.SubmitScore(s.ctx, s.player, s.owned.ID, 10)
	s.Require().NoError(err)
	_, err = s.service.SubmitScore(s.ctx, s.player, s.free.ID, 30)
	s.Require().NoError(err)

	all, err := s.service.QueryHighScores(s.ctx, nil)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("Checkers", all[0].Game)

	name := "Chess"
	chess, err := s.service.QueryHighScores(s.ctx, &name)
	s.Require().NoError(err)
	s.Require().Len(chess, 1)
	s.Equal(10, chess[0].HighScore.Score)

	unknown := "Pong"
	none, err := s.service.QueryHighScores(s.ctx, &unknown)
	s.Require().NoError(err)
	s.NotNil(none)
	s.Empty(none)
}
