package pages

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/web/templates/layout"
)

// NoLoadData is the #load_data value when no load was requested
const NoLoadData = "None"

// GameData contains data for the game page
type GameData struct {
	layout.PageData
	Game      *model.Game
	Developer string
	CanPlay   bool
	CanBuy    bool
	IsOwner   bool // the developer who added the game
	LoadData  string
}

// Game renders the play page. When the game can be played it embeds the frame,
// the hidden forms the frame's messages are relayed through and #load_data.
func Game(data GameData) templ.Component {
	return layout.Base(data.PageData, layout.Component(func(p *layout.Printer) {
		g := data.Game
		id := strconv.FormatUint(uint64(g.ID), 10)
		action := "/game/" + id + "/"

		p.Raw(`<h1 id="game_name">`)
		p.Text(g.Name)
		p.Raw(`</h1><p class="meta"><span class="category">`)
		p.Text(g.Category)
		p.Raw(`</span> by <span class="developer">`)
		p.Text(data.Developer)
		p.Raw(`</span> <span class="price">`)
		if g.IsFree() {
			p.Raw(`Free`)
		} else {
			p.Text(g.Price.String())
		}
		p.Raw(`</span></p><p class="description">`)
		p.Text(g.Description)
		p.Raw(`</p><p><a href="/highscores/`)
		p.Text(id)
		p.Raw(`/">High scores</a></p>`)

		if data.IsOwner {
			p.Raw(`<p class="owner"><a href="/account/edit/game/`)
			p.Text(id)
			p.Raw(`">Edit</a> <a href="/account/sales/`)
			p.Text(id)
			p.Raw(`/">Sales</a></p>`)
		}

		switch {
		case data.CanPlay:
			p.Raw(`<iframe id="game_iframe" src="`)
			p.Text(g.URL)
			p.Raw(`" width="800" height="600"></iframe>`)

			p.Raw(`<form id="score_form" method="post" action="`)
			p.Text(action)
			p.Raw(`"><input type="hidden" id="score" name="score"></form>`)
			p.Raw(`<form id="save_form" method="post" action="`)
			p.Text(action)
			p.Raw(`"><input type="hidden" id="state" name="state"></form>`)
			p.Raw(`<form id="request_load_form" method="post" action="`)
			p.Text(action)
			p.Raw(`"><input type="hidden" id="request_load" name="request_load"></form>`)

			loadData := data.LoadData
			if loadData == "" {
				loadData = NoLoadData
			}
			p.Raw(`<input type="hidden" id="load_data" value="`)
			p.Text(loadData)
			p.Raw(`">`)
			p.Raw(gameMessagesScript)
		case data.CanBuy:
			p.Raw(`<form id="buy_form" method="post" action="/buygame/`)
			p.Text(id)
			p.Raw(`/"><button type="submit">Buy for `)
			p.Text(g.Price.String())
			p.Raw(`</button></form>`)
		case data.Account == nil:
			p.Raw(`<p class="notice"><a href="/login/?next=`)
			p.Text(action)
			p.Raw(`">Log in</a> to play.</p>`)
		default:
			p.Raw(`<p class="notice">This game is not available to your account.</p>`)
		}
	}))
}

// gameMessagesScript relays postMessage traffic between the frame and the hidden forms.
// A LOAD or ERROR reply in #load_data is posted back to the frame once the page has settled.
const gameMessagesScript = `<script>
(function () {
  'use strict';
  var frame = document.getElementById('game_iframe');
  function submit(form, field, value) {
    document.getElementById(field).value = value;
    document.getElementById(form).submit();
  }
  window.addEventListener('message', function (event) {
    var msg = event.data || {};
    switch (msg.messageType) {
    case 'SCORE':
      submit('score_form', 'score', msg.score);
      break;
    case 'SAVE':
      submit('save_form', 'state', JSON.stringify(msg.gameState));
      break;
    case 'LOAD_REQUEST':
      if (document.getElementById('load_data').value === 'None') {
        submit('request_load_form', 'request_load', 'load_game');
      }
      break;
    case 'SETTING':
      frame.style.width = msg.options.width + 'px';
      frame.style.height = msg.options.height + 'px';
      break;
    }
  });
  window.setTimeout(function () {
    var data = document.getElementById('load_data').value;
    if (data !== 'None') {
      frame.contentWindow.postMessage(JSON.parse(data), '*');
    }
  }, 500);
})();
</script>`
