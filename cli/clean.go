package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-barry/backbone/core"
	"github.com/urfave/cli/v2"
)

var CleanCommand = &cli.Command{
	Name:      "clean",
	Usage:     "Delete cached bundles from the output directory (default: outputDir in backbone.config.yml)",
	ArgsUsage: "[bundle path (optional)]",
	Flags:     []cli.Flag{configFlag()},
	Action: func(c *cli.Context) error {
		config := loadConfig(c.String("config"))

		if c.Args().Len() > 0 {
			name := "/" + strings.TrimPrefix(c.Args().Get(0), "/")
			fmt.Println("🧹 Cleaning:", filepath.Join(config.OutputDir, filepath.FromSlash(name)))
			if err := core.ClearCachedBundle(config, name); err != nil {
				return fmt.Errorf("failed to clean cache: %w", err)
			}
			fmt.Println("✅ Done.")
			return nil
		}

		target := config.OutputDir
		info, err := os.Stat(target)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Println("🧼 Nothing to clean:", target)
				return nil
			}
			return fmt.Errorf("failed to access path: %w", err)
		}

		if !info.IsDir() {
			return fmt.Errorf("not a directory: %s", target)
		}

		fmt.Println("🧹 Cleaning:", target)
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("failed to clean cache: %w", err)
		}

		fmt.Println("✅ Done.")
		return nil
	},
}
