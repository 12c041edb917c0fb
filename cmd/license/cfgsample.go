package main

import (
	"time"

	"github.com/xakep666/license/cmd/license/app"

	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
)

var ConfigSample = app.Config{
	Debug: false,
	Upstream: app.Upstream{
		Source:    app.SourceSPDX,
		Ref:       "master",
		Timeout:   5 * time.Second,
		UserAgent: "license-cli",
	},
	Overrides: []app.Override{
		{
			Match: `^GPL-(\d)\.0-only$`,
			Name:  `GNU General Public License v$1.0 only`,
		},
	},
	Cache: &app.Cache{
		Type: app.CacheTypeRedis,
		Redis: &app.Redis{
			Addrs: []string{"127.0.0.1:6379"},
			TTL:   24 * time.Hour,
		},
	},
}

func ConfigSampleCommand() *cli.Command {
	return &cli.Command{
		Name:        "sample-config",
		Usage:       "Print sample config file",
		Description: "Prints sample config file to stdout",
		Action: func(ctx *cli.Context) error {
			return toml.NewEncoder(ctx.App.Writer).Encode(ConfigSample)
		},
	}
}
