package pages

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/web/templates/layout"
)

// AccountData contains data for the account page
type AccountData struct {
	layout.PageData
	// Games are the owned games of a player or the added games of a developer
	Games []*model.Game
}

// Account renders the account overview
func Account(data AccountData) templ.Component {
	return layout.Base(data.PageData, layout.Component(func(p *layout.Printer) {
		a := data.Account
		p.Raw(`<h1>My account</h1><dl class="account">`)
		p.Raw(`<dt>Username</dt><dd id="username">`)
		p.Text(a.Username)
		p.Raw(`</dd><dt>Name</dt><dd id="full_name">`)
		p.Text(a.FirstName + " " + a.LastName)
		p.Raw(`</dd><dt>Email</dt><dd>`)
		p.Text(a.Email)
		p.Raw(`</dd><dt>Account type</dt><dd id="account_type">`)
		p.Text(a.Role.Label())
		p.Raw(`</dd></dl>`)
		p.Raw(`<p><a href="/account/edit/name/">Edit name</a> <a href="/account/edit/password/">Change password</a></p>`)

		if a.IsDeveloper() {
			p.Raw(`<h2>My games</h2>`)
		} else {
			p.Raw(`<h2>Owned games</h2>`)
		}
		if len(data.Games) == 0 {
			p.Raw(`<p class="empty">No games yet.</p>`)
			return
		}
		p.Raw(`<ul class="games">`)
		for _, g := range data.Games {
			id := strconv.FormatUint(uint64(g.ID), 10)
			p.Raw(`<li class="game" data-game-id="`)
			p.Text(id)
			p.Raw(`"><a href="/game/`)
			p.Text(id)
			p.Raw(`/">`)
			p.Text(g.Name)
			p.Raw(`</a>`)
			if a.IsDeveloper() {
				p.Raw(` <a class="edit" href="/account/edit/game/`)
				p.Text(id)
				p.Raw(`">Edit</a>`)
				p.Raw(` <a class="sales" href="/account/sales/`)
				p.Text(id)
				p.Raw(`/">Sales</a>`)
			}
			p.Raw(`</li>`)
		}
		p.Raw(`</ul>`)
	}))
}

// EditNameData contains data for the edit name form
type EditNameData struct {
	layout.PageData
	FirstName   string
	LastName    string
	FieldErrors map[string]string
}

// EditName renders the name form
func EditName(data EditNameData) templ.Component {
	return layout.Base(data.PageData, layout.Component(func(p *layout.Printer) {
		p.Raw(`<h1>Edit name</h1><form id="edit_name_form" method="post" action="/account/edit/name/">`)
		textInput(p, data.FieldErrors, "first_name", "First name", "text", data.FirstName)
		textInput(p, data.FieldErrors, "last_name", "Last name", "text", data.LastName)
		p.Raw(`<button type="submit">Save</button></form>`)
	}))
}

// EditPasswordData contains data for the change password form
type EditPasswordData struct {
	layout.PageData
	FieldErrors map[string]string
}

// EditPassword renders the password form
func EditPassword(data EditPasswordData) templ.Component {
	return layout.Base(data.PageData, layout.Component(func(p *layout.Printer) {
		p.Raw(`<h1>Change password</h1><form id="edit_password_form" method="post" action="/account/edit/password/">`)
		textInput(p, data.FieldErrors, "old_password", "Current password", "password", "")
		textInput(p, data.FieldErrors, "password", "New password", "password", "")
		textInput(p, data.FieldErrors, "password_check", "New password again", "password", "")
		p.Raw(`<button type="submit">Change</button></form>`)
	}))
}

// SaleRow is one paid order on the sales page
type SaleRow struct {
	OrderID model.OrderID
	Buyer   string
	Price   model.Price
	PaidAt  string
}

// SalesData contains data for a game's sales page
type SalesData struct {
	layout.PageData
	Game  *model.Game
	Sales []SaleRow
}

// Sales renders the sales statistics of one game
func Sales(data SalesData) templ.Component {
	return layout.Base(data.PageData, layout.Component(func(p *layout.Printer) {
		var total model.Price
		for _, s := range data.Sales {
			total += s.Price
		}

		p.Raw(`<h1>Sales of `)
		p.Text(data.Game.Name)
		p.Raw(`</h1><p>Copies sold: <span id="sales_count">`)
		p.Text(strconv.Itoa(len(data.Sales)))
		p.Raw(`</span>, revenue: <span id="sales_total">`)
		p.Text(total.String())
		p.Raw(`</span></p>`)

		p.Raw(`<table id="sales"><thead><tr><th>Order</th><th>Buyer</th><th>Price</th><th>Paid</th></tr></thead><tbody>`)
		for _, s := range data.Sales {
			p.Raw(`<tr class="sale"><td>`)
			p.Text(strconv.FormatUint(uint64(s.OrderID), 10))
			p.Raw(`</td><td class="buyer">`)
			p.Text(s.Buyer)
			p.Raw(`</td><td>`)
			p.Text(s.Price.String())
			p.Raw(`</td><td>`)
			p.Text(s.PaidAt)
			p.Raw(`</td></tr>`)
		}
		p.Raw(`</tbody></table>`)
	}))
}
