package main

import (
	"log"
	"os"

	backbonecli "github.com/go-barry/backbone/cli"
	clilib "github.com/urfave/cli/v2"
)

func runApp(args []string) error {
	app := &clilib.App{
		Name:  "backbone",
		Usage: "REST resources and JST template bundles for Backbone.js apps",
		Commands: []*clilib.Command{
			backbonecli.InitCommand,
			backbonecli.DevCommand,
			backbonecli.ProdCommand,
			backbonecli.BuildCommand,
			backbonecli.CheckCommand,
			backbonecli.InfoCommand,
			backbonecli.CleanCommand,
		},
	}
	return app.Run(args)
}

func main() {
	if err := runApp(os.Args); err != nil {
		log.Fatal(err)
	}
}
