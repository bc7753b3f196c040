package web_test

import (
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gamestore/internal/model"
)

func gamePath(game *model.Game) string {
	return "/game/" + strconv.FormatUint(uint64(game.ID), 10) + "/"
}

func TestGamePageAnonymous(t *testing.T) {
	ts := newWebTestServer(t)
	dev := ts.loginAs("dev", model.RoleDeveloper)
	game := ts.addGame(dev, "Tetris", "0")
	ts.logout()

	rr := ts.get(gamePath(game))
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "#game_name", "Tetris")
	assertContainsText(t, doc, ".developer", "dev")
	assertNotContainsElement(t, doc, "#game_iframe")
	assert.Equal(t, "/login/?next="+gamePath(game), doc.Find("p.notice a").AttrOr("href", ""))
}

func TestGamePageFreeGameIsPlayable(t *testing.T) {
	ts := newWebTestServer(t)
	dev := ts.loginAs("dev", model.RoleDeveloper)
	game := ts.addGame(dev, "Tetris", "0")

	ts.loginAs("alice", model.RolePlayer)
	doc := parseHTML(ts.get(gamePath(game)).Body)

	assert.Equal(t, game.URL, doc.Find("#game_iframe").AttrOr("src", ""))
	for _, form := range []string{"#score_form", "#save_form", "#request_load_form"} {
		assert.Equal(t, gamePath(game), doc.Find(form).AttrOr("action", ""), form)
	}
	assert.Equal(t, "None", doc.Find("#load_data").AttrOr("value", ""))
	assertNotContainsElement(t, doc, "#buy_form")
	assertNotContainsElement(t, doc, "p.owner")
}

func TestGamePagePaidGameShowsBuyForm(t *testing.T) {
	ts := newWebTestServer(t)
	dev := ts.loginAs("dev", model.RoleDeveloper)
	game := ts.addGame(dev, "Sudoku", "1.50")

	ts.loginAs("alice", model.RolePlayer)
	doc := parseHTML(ts.get(gamePath(game)).Body)
	assertNotContainsElement(t, doc, "#game_iframe")
	assert.Equal(t, "/buygame/"+strconv.FormatUint(uint64(game.ID), 10)+"/", doc.Find("#buy_form").AttrOr("action", ""))
	assertContainsText(t, doc, "#buy_form", "1.50")
}

func TestGamePageDeveloper(t *testing.T) {
	ts := newWebTestServer(t)
	dev := ts.loginAs("dev", model.RoleDeveloper)
	game := ts.addGame(dev, "Sudoku", "1.50")

	doc := parseHTML(ts.get(gamePath(game)).Body)
	assertContainsElement(t, doc, "#game_iframe")
	assertContainsElement(t, doc, "p.owner a[href^='/account/sales/']")

	ts.loginAs("other", model.RoleDeveloper)
	doc = parseHTML(ts.get(gamePath(game)).Body)
	assertNotContainsElement(t, doc, "#game_iframe")
	assertNotContainsElement(t, doc, "#buy_form")
	assertContainsText(t, doc, "p.notice", "not available")
}

func TestGamePageNotFound(t *testing.T) {
	ts := newWebTestServer(t)
	rr := ts.get("/game/999/")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assertContainsElement(t, parseHTML(rr.Body), "#error[data-status='404']")
}

func TestSubmitScoresAndHighScores(t *testing.T) {
	ts := newWebTestServer(t)
	dev := ts.loginAs("dev", model.RoleDeveloper)
	game := ts.addGame(dev, "Tetris", "0")

	ts.loginAs("alice", model.RolePlayer)
	rr := ts.post(gamePath(game), url.Values{"score": {"120"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assertContainsElement(t, parseHTML(rr.Body), "#game_iframe")
	ts.post(gamePath(game), url.Values{"score": {"80"}})

	ts.loginAs("bob", model.RolePlayer)
	ts.post(gamePath(game), url.Values{"score": {"300"}})

	ts.logout()
	rr = ts.get("/highscores/" + strconv.FormatUint(uint64(game.ID), 10) + "/")
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	scores := doc.Find("ol#highscores li.score")
	require.Equal(t, 3, scores.Length())
	assert.Equal(t, "bob", scores.Eq(0).Find(".player").Text())
	assert.Equal(t, "300", scores.Eq(0).Find(".points").Text())
	assert.Equal(t, "80", scores.Eq(2).Find(".points").Text())
}

func TestSubmitScoreRejectsGarbage(t *testing.T) {
	ts := newWebTestServer(t)
	dev := ts.loginAs("dev", model.RoleDeveloper)
	game := ts.addGame(dev, "Tetris", "0")

	ts.loginAs("alice", model.RolePlayer)
	assert.Equal(t, http.StatusBadRequest, ts.post(gamePath(game), url.Values{"score": {"lots"}}).Code)
	assert.Equal(t, http.StatusBadRequest, ts.post(gamePath(game), url.Values{"other": {"1"}}).Code)
}

func TestGameMessagesRequireAccess(t *testing.T) {
	ts := newWebTestServer(t)
	dev := ts.loginAs("dev", model.RoleDeveloper)
	game := ts.addGame(dev, "Sudoku", "1.50")

	ts.loginAs("alice", model.RolePlayer)
	assert.Equal(t, http.StatusForbidden, ts.post(gamePath(game), url.Values{"score": {"10"}}).Code)
	assert.Equal(t, http.StatusForbidden, ts.post(gamePath(game), url.Values{"state": {`{"a":1}`}}).Code)

	ts.logout()
	assert.Equal(t, http.StatusForbidden, ts.post(gamePath(game), url.Values{"score": {"10"}}).Code)
}

func TestSaveAndLoad(t *testing.T) {
	ts := newWebTestServer(t)
	dev := ts.loginAs("dev", model.RoleDeveloper)
	game := ts.addGame(dev, "Tetris", "0")
	ts.loginAs("alice", model.RolePlayer)

	// Nothing saved yet
	doc := parseHTML(ts.post(gamePath(game), url.Values{"request_load": {"load_game"}}).Body)
	assert.JSONEq(t, `{"messageType":"ERROR","info":"Gamestate could not be loaded"}`,
		doc.Find("#load_data").AttrOr("value", ""))

	rr := ts.post(gamePath(game), url.Values{"state": {`{"playerItems":["A Sword"],"score":5}`}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "None", parseHTML(rr.Body).Find("#load_data").AttrOr("value", ""))
	ts.post(gamePath(game), url.Values{"score": {"10"}})
	ts.post(gamePath(game), url.Values{"state": {`{"playerItems":[],"score":10}`}})

	doc = parseHTML(ts.post(gamePath(game), url.Values{"request_load": {"load_game"}}).Body)
	assert.JSONEq(t, `{"messageType":"LOAD","gameState":{"playerItems":[],"score":10}}`,
		doc.Find("#load_data").AttrOr("value", ""))

	// Saves are per player
	ts.loginAs("bob", model.RolePlayer)
	doc = parseHTML(ts.post(gamePath(game), url.Values{"request_load": {"load_game"}}).Body)
	assert.Contains(t, doc.Find("#load_data").AttrOr("value", ""), `"ERROR"`)
}
