package layout

import (
	"github.com/a-h/templ"

	"github.com/mcoot/gamestore/internal/model"
)

// FlashMessage represents a one-time notification
type FlashMessage struct {
	Type    string // "success", "error", "info"
	Message string
}

// PageData contains common data for all pages
type PageData struct {
	Title   string
	Account *model.Account
	Flash   *FlashMessage
}

// Base wraps page content in the site chrome: head, navigation and flash message
func Base(data PageData, content templ.Component) templ.Component {
	return Component(func(p *Printer) {
		p.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`)
		p.Text(data.Title)
		p.Raw(` | GameStore</title></head><body>`)

		p.Component(nav(data.Account))

		if data.Flash != nil {
			p.Raw(`<div class="flash flash-`)
			p.Text(data.Flash.Type)
			p.Raw(`" role="alert">`)
			p.Text(data.Flash.Message)
			p.Raw(`</div>`)
		}

		p.Raw(`<main>`)
		p.Component(content)
		p.Raw(`</main></body></html>`)
	})
}

func nav(account *model.Account) templ.Component {
	return Component(func(p *Printer) {
		p.Raw(`<nav><a href="/" class="brand">GameStore</a> <a href="/gamelist/">Games</a>`)
		switch {
		case account == nil:
			p.Raw(` <a href="/login/">Log in</a> <a href="/register/">Register</a>`)
		default:
			if account.IsDeveloper() {
				p.Raw(` <a href="/addgame/">Add game</a>`)
			}
			p.Raw(` <a href="/account/" class="account-name">`)
			p.Text(account.DisplayName())
			p.Raw(`</a> <span class="account-type">`)
			p.Text(account.Role.Label())
			p.Raw(`</span> <a href="/logout/">Log out</a>`)
		}
		p.Raw(`</nav>`)
	})
}

// FieldError renders the message for a form field, if any
func FieldError(errors map[string]string, field string) templ.Component {
	return Component(func(p *Printer) {
		msg, ok := errors[field]
		if !ok {
			return
		}
		p.Raw(`<span class="field-error" data-field="`)
		p.Text(field)
		p.Raw(`">`)
		p.Text(msg)
		p.Raw(`</span>`)
	})
}
