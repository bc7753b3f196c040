package layout

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Printer writes HTML fragments and remembers the first write error
type Printer struct {
	ctx context.Context
	w   io.Writer
	err error
}

// NewPrinter creates a Printer rendering to w
func NewPrinter(ctx context.Context, w io.Writer) *Printer {
	return &Printer{ctx: ctx, w: w}
}

// Raw writes markup literals as-is. Values taken from data, ids included, go through Text.
func (p *Printer) Raw(parts ...string) {
	for _, s := range parts {
		p.write(s)
	}
}

// Text writes escaped text. Quotes are escaped too, so it is safe inside attribute values.
func (p *Printer) Text(s string) {
	p.write(templ.EscapeString(s))
}

func (p *Printer) write(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

// Component renders a nested component
func (p *Printer) Component(c templ.Component) {
	if p.err != nil || c == nil {
		return
	}
	p.err = c.Render(p.ctx, p.w)
}

// Err returns the first error encountered
func (p *Printer) Err() error {
	return p.err
}

// Component builds a templ.Component from a function that writes through a Printer
func Component(fn func(p *Printer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := NewPrinter(ctx, w)
		fn(p)
		return p.Err()
	})
}

// Selected returns the selected attribute when the values match
func Selected(a, b string) string {
	if a == b {
		return " selected"
	}
	return ""
}
