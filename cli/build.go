package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-barry/backbone/core"
	"github.com/go-barry/backbone/jst"
	"github.com/urfave/cli/v2"
)

var osWriteFileFunc = os.WriteFile
var osMkdirAllFunc = os.MkdirAll

var BuildCommand = &cli.Command{
	Name:      "build",
	Usage:     "Compile the JST bundle ahead of time (into the cache by default)",
	ArgsUsage: "[output file]",
	Flags: []cli.Flag{
		configFlag(),
		&cli.BoolFlag{Name: "minify", Aliases: []string{"m"}, Value: true, Usage: "minify the bundle"},
	},
	Action: func(c *cli.Context) error {
		config := loadConfig(c.String("config"))

		registry, err := registryFor(config)
		if err != nil {
			return err
		}

		compiler := jst.NewCompiler(registry, jst.WithMinify(c.Bool("minify")))
		body, err := compiler.Build(config.JSTPath, config.ViewsDir)
		if err != nil {
			return fmt.Errorf("failed to build bundle: %w", err)
		}

		if c.Args().Len() == 0 {
			if err := core.SaveCachedBundle(config, config.JSTPath, body); err != nil {
				return fmt.Errorf("failed to write bundle: %w", err)
			}
			fmt.Printf("📦 Cached %s in %s (%s)\n", config.JSTPath, config.OutputDir, core.Version(body))
			return nil
		}

		out := c.Args().Get(0)
		if err := osMkdirAllFunc(filepath.Dir(out), os.ModePerm); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := osWriteFileFunc(out, body, 0644); err != nil {
			return fmt.Errorf("failed to write bundle: %w", err)
		}

		fmt.Printf("📦 Wrote %s (%s)\n", out, core.Version(body))
		return nil
	},
}
