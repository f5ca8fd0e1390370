package cli

import (
	"github.com/go-barry/backbone"
	"github.com/urfave/cli/v2"
)

var startServer = backbone.Start

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   backbone.DefaultConfigFile,
		Usage:   "path to the YAML or TOML config file",
	}
}

func serverFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Value:   8080,
			EnvVars: []string{"PORT"},
			Usage:   "port to listen on",
		},
	}
}

var DevCommand = &cli.Command{
	Name:  "dev",
	Usage: "Start Backbone in dev mode (no caching, live reload)",
	Flags: serverFlags(),
	Action: func(c *cli.Context) error {
		return startServer(backbone.RuntimeConfig{
			Env:         "dev",
			EnableCache: false,
			Port:        c.Int("port"),
			ConfigFile:  c.String("config"),
		})
	},
}

var ProdCommand = &cli.Command{
	Name:  "prod",
	Usage: "Start Backbone in production mode (caching on by default)",
	Flags: serverFlags(),
	Action: func(c *cli.Context) error {
		return startServer(backbone.RuntimeConfig{
			Env:         "prod",
			EnableCache: true,
			Port:        c.Int("port"),
			ConfigFile:  c.String("config"),
		})
	},
}
