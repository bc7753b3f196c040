package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mcoot/gamestore/internal/services/catalog"
	"github.com/mcoot/gamestore/internal/services/progress"
	"github.com/mcoot/gamestore/internal/web/middleware"
	"github.com/mcoot/gamestore/internal/web/templates/pages"
)

// GameplayHandler serves the play page and relays the in-frame game messages
type GameplayHandler struct {
	catalog  *catalog.Service
	progress *progress.Service
	logger   *slog.Logger
}

// NewGameplayHandler creates a new GameplayHandler
func NewGameplayHandler(catalogService *catalog.Service, progressService *progress.Service, logger *slog.Logger) *GameplayHandler {
	return &GameplayHandler{
		catalog:  catalogService,
		progress: progressService,
		logger:   logger,
	}
}

// View renders the play page
func (h *GameplayHandler) View(w http.ResponseWriter, r *http.Request) {
	h.renderGame(w, r, "")
}

// Message handles a relayed game message. Exactly one of score, state or
// request_load is expected; a load request puts the reply in #load_data.
func (h *GameplayHandler) Message(w http.ResponseWriter, r *http.Request) {
	id, ok := gameIDVar(r)
	if !ok {
		NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		RenderErrorPage(w, r, http.StatusBadRequest, "Bad Request", "Invalid form data.")
		return
	}

	ctx := r.Context()
	account := middleware.GetAccount(ctx)
	var loadData string

	switch {
	case r.PostFormValue("score") != "":
		score, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("score")))
		if err != nil {
			RenderErrorPage(w, r, http.StatusBadRequest, "Bad Request", "The score must be a whole number.")
			return
		}
		if _, err := h.progress.SubmitScore(ctx, account, id, score); err != nil {
			h.messageError(w, r, err)
			return
		}
	case r.PostFormValue("state") != "":
		if _, err := h.progress.SaveState(ctx, account, id, r.PostFormValue("state")); err != nil {
			h.messageError(w, r, err)
			return
		}
	case r.PostFormValue("request_load") != "":
		msg, err := h.progress.LoadMessage(ctx, account, id)
		if err != nil {
			h.messageError(w, r, err)
			return
		}
		loadData = msg
	default:
		RenderErrorPage(w, r, http.StatusBadRequest, "Bad Request", "Unknown game message.")
		return
	}

	h.renderGame(w, r, loadData)
}

func (h *GameplayHandler) messageError(w http.ResponseWriter, r *http.Request, err error) {
	if fields, ok := fieldErrors(err); ok {
		msg := "Invalid game message."
		for _, m := range fields {
			msg = m
		}
		RenderErrorPage(w, r, http.StatusBadRequest, "Bad Request", msg)
		return
	}
	renderError(w, r, h.logger, err)
}

func (h *GameplayHandler) renderGame(w http.ResponseWriter, r *http.Request, loadData string) {
	id, ok := gameIDVar(r)
	if !ok {
		NotFound(w, r)
		return
	}

	ctx := r.Context()
	account := middleware.GetAccount(ctx)
	access, err := h.catalog.Access(ctx, account, id)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}
	developer, err := h.catalog.DeveloperName(ctx, access.Game)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	canPlay := access.CanPlay(account)
	render(w, r, http.StatusOK, pages.Game(pages.GameData{
		PageData:  pageData(r, access.Game.Name),
		Game:      access.Game,
		Developer: developer,
		CanPlay:   canPlay,
		CanBuy:    !canPlay && account.IsPlayer() && !access.Game.IsFree(),
		IsOwner:   access.DeveloperOwns,
		LoadData:  loadData,
	}))
}

// HighScores renders a game's leaderboard
func (h *GameplayHandler) HighScores(w http.ResponseWriter, r *http.Request) {
	id, ok := gameIDVar(r)
	if !ok {
		NotFound(w, r)
		return
	}

	game, scores, err := h.progress.HighScores(r.Context(), id)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	rows := make([]pages.ScoreRow, 0, len(scores))
	for _, s := range scores {
		rows = append(rows, pages.ScoreRow{Player: s.Player, Score: s.HighScore.Score})
	}
	render(w, r, http.StatusOK, pages.HighScores(pages.HighScoresData{
		PageData: pageData(r, "High scores"),
		Game:     game,
		Scores:   rows,
	}))
}
