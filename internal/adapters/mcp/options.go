package mcp

import "github.com/okian/rinkrank/pkg/logger"

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for tool failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithVersion sets the implementation version advertised to clients.
func WithVersion(v string) Option {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}
