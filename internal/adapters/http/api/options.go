package api

// Option configures a Server.
type Option func(*Server)

// WithMaxListLimit caps the limit query parameter on list endpoints.
func WithMaxListLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithChartWidth sets the default SVG chart width in pixels.
func WithChartWidth(px float64) Option {
	return func(s *Server) {
		if px > 0 {
			s.chartWidth = px
		}
	}
}
