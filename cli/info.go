package cli

import (
	"fmt"
	"strings"

	"github.com/go-barry/backbone/core"
	"github.com/go-barry/backbone/jst"
	"github.com/urfave/cli/v2"
)

var InfoCommand = &cli.Command{
	Name:  "info",
	Usage: "Print configuration, template engines and cache summary",
	Flags: []cli.Flag{configFlag()},
	Action: func(c *cli.Context) error {
		config := loadConfig(c.String("config"))

		fmt.Println("📁 Output Directory:", config.OutputDir)
		fmt.Println("🔁 Cache Enabled:", config.CacheEnabled)
		fmt.Println("🔁 Debug Headers Enabled:", config.DebugHeaders)
		fmt.Println("🗄️  Storage:", config.Storage.Type)
		fmt.Println()

		registry, err := registryFor(config)
		if err != nil {
			return err
		}
		fmt.Println("🧩 Engines:", strings.Join(registry.Extensions(), ", "))

		templates, err := jst.NewCompiler(registry).Templates(config.ViewsDir)
		if err != nil {
			fmt.Printf("🗂️  Templates Found: 0 (%v)\n", err)
		} else {
			fmt.Println("🗂️  Templates Found:", len(templates))
			for _, tpl := range templates {
				fmt.Printf("   • %s (%s)\n", tpl.Name, tpl.Ext)
			}
		}

		if body, ok := core.GetCachedBundle(config, config.JSTPath); ok {
			fmt.Printf("💾 Cached Bundle: %s (%d bytes, %s)\n", config.JSTPath, len(body), core.Version(body))
		} else {
			fmt.Println("💾 Cached Bundle: none")
		}

		return nil
	},
}
