package pages

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/web/templates/layout"
)

// GameListData contains data for the game list and home page
type GameListData struct {
	layout.PageData
	Games      []*model.Game
	Categories []string
	Category   string
	Name       string
}

// GameList renders the search form and every matching game
func GameList(data GameListData) templ.Component {
	return layout.Base(data.PageData, layout.Component(func(p *layout.Printer) {
		p.Raw(`<h1>Games</h1><form id="search_form" method="get" action="/gamelist/">`)
		categorySelect(p, nil, data.Categories, data.Category, true)
		p.Raw(`<label for="name">Name</label><input id="name" name="name" type="search" value="`)
		p.Text(data.Name)
		p.Raw(`"><button type="submit">Search</button></form>`)

		if len(data.Games) == 0 {
			p.Raw(`<p class="empty">No games found.</p>`)
			return
		}
		p.Raw(`<ul class="games">`)
		for _, g := range data.Games {
			p.Component(gameCard(g))
		}
		p.Raw(`</ul>`)
	}))
}

func gameCard(g *model.Game) templ.Component {
	return layout.Component(func(p *layout.Printer) {
		id := strconv.FormatUint(uint64(g.ID), 10)
		p.Raw(`<li class="game" data-game-id="`)
		p.Text(id)
		p.Raw(`"><a class="game-name" href="/game/`)
		p.Text(id)
		p.Raw(`/">`)
		p.Text(g.Name)
		p.Raw(`</a> <span class="category">`)
		p.Text(g.Category)
		p.Raw(`</span> <span class="price">`)
		if g.IsFree() {
			p.Raw(`Free`)
		} else {
			p.Text(g.Price.String())
		}
		p.Raw(`</span></li>`)
	})
}

// GameFormData contains data for the add and edit game forms
type GameFormData struct {
	layout.PageData
	GameID      model.GameID // zero when adding
	Name        string
	Category    string
	Description string
	URL         string
	Price       string
	Categories  []string
	Error       string
	FieldErrors map[string]string
	Added       *model.Game
}

// AddGame renders the form developers use to list a new game
func AddGame(data GameFormData) templ.Component {
	return layout.Base(data.PageData, layout.Component(func(p *layout.Printer) {
		p.Raw(`<h1>Add a game</h1>`)
		if data.Added != nil {
			id := strconv.FormatUint(uint64(data.Added.ID), 10)
			p.Raw(`<p class="success" id="new_game">Added <a href="/game/`)
			p.Text(id)
			p.Raw(`/">`)
			p.Text(data.Added.Name)
			p.Raw(`</a>.</p>`)
		}
		gameForm(p, data, "/addgame/", true)
	}))
}

// EditGame renders the form for changing a game's details
func EditGame(data GameFormData) templ.Component {
	return layout.Base(data.PageData, layout.Component(func(p *layout.Printer) {
		p.Raw(`<h1>Edit `)
		p.Text(data.Name)
		p.Raw(`</h1>`)
		gameForm(p, data, "/account/edit/game/"+strconv.FormatUint(uint64(data.GameID), 10), false)
	}))
}

func gameForm(p *layout.Printer, data GameFormData, action string, withURL bool) {
	if data.Error != "" {
		p.Raw(`<p class="error">`)
		p.Text(data.Error)
		p.Raw(`</p>`)
	}
	p.Raw(`<form id="game_form" method="post" action="`)
	p.Text(action)
	p.Raw(`">`)
	textInput(p, data.FieldErrors, "name", "Name", "text", data.Name)
	categorySelect(p, data.FieldErrors, data.Categories, data.Category, false)
	textArea(p, data.FieldErrors, "description", "Description", data.Description)
	if withURL {
		textInput(p, data.FieldErrors, "game_url", "Game URL", "url", data.URL)
	}
	textInput(p, data.FieldErrors, "price", "Price", "text", data.Price)
	p.Raw(`<button type="submit">Save</button></form>`)
}
