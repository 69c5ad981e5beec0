package main

import (
	"github.com/spf13/cobra"

	"github.com/vireo-ui/vireo/pkg/export"
)

func exportCmd() *cobra.Command {
	var (
		configPath string
		out        string
		title      string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a static HTML snapshot",
		Long: `Render the built-in demo application and write it as static HTML.

The output directory comes from vireo.json's export section; --out
overrides it.

Examples:
  vireo export
  vireo export --out=./public`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(configPath, out, title)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to vireo.json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output directory (overrides config)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Page title (overrides config)")

	return cmd
}

func runExport(configPath, out, title string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	dir := out
	if dir == "" {
		if cfg.Path() != "" {
			dir = cfg.OutputPath()
		} else {
			dir = cfg.Export.Output
		}
	}
	pageTitle := title
	if pageTitle == "" {
		pageTitle = cfg.Server.Title
	}

	store, err := export.NewDiskStore(dir)
	if err != nil {
		return err
	}

	e := export.New(store, export.Config{
		Title: pageTitle,
		Lang:  cfg.Server.Lang,
	})
	if err := e.Snapshot("/", demoRoot()); err != nil {
		return err
	}

	success("Exported to %s", dir)
	return nil
}
