package pages

import (
	"github.com/a-h/templ"

	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/web/templates/layout"
)

// RegisterData contains data for the registration page
type RegisterData struct {
	layout.PageData
	Username    string
	Email       string
	FirstName   string
	LastName    string
	AccountType string
	Error       string
	FieldErrors map[string]string
}

// Register renders the registration form
func Register(data RegisterData) templ.Component {
	return layout.Base(data.PageData, layout.Component(func(p *layout.Printer) {
		p.Raw(`<h1>Register</h1>`)
		if data.Error != "" {
			p.Raw(`<p class="error">`)
			p.Text(data.Error)
			p.Raw(`</p>`)
		}
		p.Raw(`<form id="register_form" method="post" action="/register/">`)
		textInput(p, data.FieldErrors, "username", "Username", "text", data.Username)
		textInput(p, data.FieldErrors, "email", "Email", "email", data.Email)
		textInput(p, data.FieldErrors, "first_name", "First name", "text", data.FirstName)
		textInput(p, data.FieldErrors, "last_name", "Last name", "text", data.LastName)
		textInput(p, data.FieldErrors, "password", "Password", "password", "")
		textInput(p, data.FieldErrors, "password_check", "Password again", "password", "")

		p.Raw(`<label for="account_type">Account type</label><select id="account_type" name="account_type">`)
		for _, role := range []model.Role{model.RolePlayer, model.RoleDeveloper} {
			p.Raw(`<option value="`)
			p.Text(string(role))
			p.Raw(`"`, layout.Selected(data.AccountType, string(role)), `>`)
			p.Text(role.Label())
			p.Raw(`</option>`)
		}
		p.Raw(`</select>`)
		p.Component(layout.FieldError(data.FieldErrors, "account_type"))
		p.Raw(`<button type="submit">Register</button></form>`)
	}))
}

// LoginData contains data for the login page
type LoginData struct {
	layout.PageData
	Username string
	Next     string
	Notice   string
	Error    string
}

// Login renders the login form
func Login(data LoginData) templ.Component {
	return layout.Base(data.PageData, layout.Component(func(p *layout.Printer) {
		p.Raw(`<h1>Log in</h1>`)
		if data.Notice != "" {
			p.Raw(`<p class="notice">`)
			p.Text(data.Notice)
			p.Raw(`</p>`)
		}
		if data.Error != "" {
			p.Raw(`<p class="error">`)
			p.Text(data.Error)
			p.Raw(`</p>`)
		}
		p.Raw(`<form id="login_form" method="post" action="/login/">`)
		textInput(p, nil, "username", "Username", "text", data.Username)
		textInput(p, nil, "password", "Password", "password", "")
		if data.Next != "" {
			p.Raw(`<input type="hidden" name="next" value="`)
			p.Text(data.Next)
			p.Raw(`">`)
		}
		p.Raw(`<button type="submit">Log in</button></form>`)
		p.Raw(`<p>No account yet? <a href="/register/">Register</a></p>`)
	}))
}

// textInput renders a labelled input with its field error
func textInput(p *layout.Printer, errors map[string]string, name, label, kind, value string) {
	p.Raw(`<label for="`)
	p.Text(name)
	p.Raw(`">`)
	p.Text(label)
	p.Raw(`</label><input id="`)
	p.Text(name)
	p.Raw(`" name="`)
	p.Text(name)
	p.Raw(`" type="`)
	p.Text(kind)
	p.Raw(`"`)
	if value != "" {
		p.Raw(` value="`)
		p.Text(value)
		p.Raw(`"`)
	}
	p.Raw(`>`)
	p.Component(layout.FieldError(errors, name))
}

func textArea(p *layout.Printer, errors map[string]string, name, label, value string) {
	p.Raw(`<label for="`)
	p.Text(name)
	p.Raw(`">`)
	p.Text(label)
	p.Raw(`</label><textarea id="`)
	p.Text(name)
	p.Raw(`" name="`)
	p.Text(name)
	p.Raw(`" maxlength="500">`)
	p.Text(value)
	p.Raw(`</textarea>`)
	p.Component(layout.FieldError(errors, name))
}

func categorySelect(p *layout.Printer, errors map[string]string, categories []string, selected string, allowAny bool) {
	p.Raw(`<label for="category">Category</label><select id="category" name="category">`)
	if allowAny {
		p.Raw(`<option value="">All categories</option>`)
	}
	for _, c := range categories {
		p.Raw(`<option value="`)
		p.Text(c)
		p.Raw(`"`, layout.Selected(selected, c), `>`)
		p.Text(c)
		p.Raw(`</option>`)
	}
	p.Raw(`</select>`)
	p.Component(layout.FieldError(errors, "category"))
}
