package pages

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/mcoot/gamestore/internal/web/templates/layout"
)

// ErrorData contains data for an error page
type ErrorData struct {
	layout.PageData
	Status  int
	Message string
}

// Error renders a generic error page
func Error(data ErrorData) templ.Component {
	return layout.Base(data.PageData, layout.Component(func(p *layout.Printer) {
		p.Raw(`<div id="error" data-status="`)
		p.Text(strconv.Itoa(data.Status))
		p.Raw(`"><h1>`)
		p.Text(data.Title)
		p.Raw(`</h1><p>`)
		p.Text(data.Message)
		p.Raw(`</p><p><a href="/">Return to the store</a></p></div>`)
	}))
}
