package svgchart

import "github.com/openhoops/shotchart/internal/domain/court"

// Option configures a Renderer.
type Option func(*Renderer)

// WithWidth sets the canvas width in pixels.
func WithWidth(px float64) Option {
	return func(r *Renderer) {
		if px > 0 {
			r.width = px
		}
	}
}

// WithTheme sets the zone fill palette.
func WithTheme(theme court.Theme) Option {
	return func(r *Renderer) {
		if theme != nil {
			r.theme = theme
		}
	}
}
