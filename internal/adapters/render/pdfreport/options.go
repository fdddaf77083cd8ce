package pdfreport

import "github.com/openhoops/shotchart/internal/domain/court"

// Option configures a Report.
type Option func(*Report)

// WithTheme sets the zone fill palette for the chart page.
func WithTheme(theme court.Theme) Option {
	return func(r *Report) {
		if theme != nil {
			r.theme = theme
		}
	}
}
