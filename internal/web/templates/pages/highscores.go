package pages

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/web/templates/layout"
)

// ScoreRow is one leaderboard entry
type ScoreRow struct {
	Player string
	Score  int
}

// HighScoresData contains data for a game's leaderboard
type HighScoresData struct {
	layout.PageData
	Game   *model.Game
	Scores []ScoreRow
}

// HighScores renders the leaderboard, best first
func HighScores(data HighScoresData) templ.Component {
	return layout.Base(data.PageData, layout.Component(func(p *layout.Printer) {
		p.Raw(`<h1>High scores: `)
		p.Text(data.Game.Name)
		p.Raw(`</h1>`)
		if len(data.Scores) == 0 {
			p.Raw(`<p class="empty">No scores yet.</p>`)
			return
		}
		p.Raw(`<ol id="highscores">`)
		for _, s := range data.Scores {
			p.Raw(`<li class="score"><span class="player">`)
			p.Text(s.Player)
			p.Raw(`</span> <span class="points">`)
			p.Text(strconv.Itoa(s.Score))
			p.Raw(`</span></li>`)
		}
		p.Raw(`</ol>`)
	}))
}
