package config

import "github.com/urfave/cli/v3"

// Server holds server configuration
type Server struct {
	Addr       string
	HookSecret string `masq:"secret"`
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("HERALD_ADDR"),
		},
		&cli.StringFlag{
			Name:        "hook-secret",
			Usage:       "Shared secret expected in the X-Herald-Secret header of service hook requests",
			Required:    true,
			Destination: &c.HookSecret,
			Sources:     cli.EnvVars("HERALD_HOOK_SECRET"),
		},
	}
}
