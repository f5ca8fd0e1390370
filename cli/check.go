package cli

import (
	"fmt"

	"github.com/go-barry/backbone/core"
	"github.com/go-barry/backbone/jst"
	"github.com/urfave/cli/v2"
)

var CheckCommand = &cli.Command{
	Name:  "check",
	Usage: "Compile every JST template and syntax-check the bundle",
	Flags: []cli.Flag{configFlag()},
	Action: func(c *cli.Context) error {
		config := loadConfig(c.String("config"))

		registry, err := registryFor(config)
		if err != nil {
			return err
		}
		compiler := jst.NewCompiler(registry)

		templates, err := compiler.Templates(config.ViewsDir)
		if err != nil {
			return cli.Exit(fmt.Sprintf("❌ cannot read views: %v", err), 1)
		}

		var failed bool
		var fragments []string
		for _, tpl := range templates {
			js, err := tpl.Engine.Compile()
			if err == nil {
				err = core.ValidateJS([]byte("var c = {}, JST = {};\n" + js))
			}
			if err != nil {
				failed = true
				fmt.Printf("❌ %s (%s) → %v\n", tpl.Name, tpl.Ext, err)
				continue
			}
			fragments = append(fragments, js)
			fmt.Printf("✅ %s (%s)\n", tpl.Name, tpl.Ext)
		}

		if failed {
			return cli.Exit("some templates failed to compile", 1)
		}

		bundle, err := jst.Bundle(fragments)
		if err != nil {
			return cli.Exit(fmt.Sprintf("❌ %v", err), 1)
		}
		if err := core.ValidateJS([]byte("var window = {};\n" + bundle)); err != nil {
			return cli.Exit(fmt.Sprintf("❌ bundle is not valid JavaScript: %v", err), 1)
		}

		fmt.Printf("✅ All %d templates compiled successfully.\n", len(templates))
		return nil
	},
}
