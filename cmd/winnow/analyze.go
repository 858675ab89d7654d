package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/fluttertools/winnow/internal/output"
	"github.com/fluttertools/winnow/pkg/config"
	"github.com/fluttertools/winnow/pkg/models"
	"github.com/urfave/cli/v2"
)

// analysisFlags are shared by every analysis command.
func analysisFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "keep-alive",
			Usage: "Additional method names to treat as framework-invoked",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Source exclusion patterns (gitignore syntax)",
		},
	}
}

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"all"},
		Usage:     "Report all unused classes, methods, packages, and assets",
		ArgsUsage: "<project-root>",
		Flags:     analysisFlags(),
		Action:    runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	root, err := projectRoot(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c, root)
	if err != nil {
		return err
	}

	report, err := runAnalysis(c, root, cfg)
	if err != nil {
		return err
	}
	applyToggles(report, cfg)

	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(report)
	}

	if cfg.Analysis.Classes {
		if err := renderClasses(formatter, report.UnusedClasses); err != nil {
			return err
		}
	}
	if cfg.Analysis.Methods {
		if err := renderMethods(formatter, report.UnusedMethods); err != nil {
			return err
		}
	}
	if cfg.Analysis.Packages {
		if err := renderPackages(formatter, report.UnusedPackages); err != nil {
			return err
		}
	}
	if cfg.Analysis.Assets {
		if err := renderAssets(formatter, report.UnusedAssets); err != nil {
			return err
		}
	}

	fmt.Fprintf(formatter.Writer(), "Summary: %d unused classes, %d unused methods, %d unused packages, %d unused assets\n",
		len(report.UnusedClasses),
		len(report.UnusedMethods),
		len(report.UnusedPackages),
		len(report.UnusedAssets))
	return nil
}

// applyToggles clears the categories the config disables so every
// output format agrees on what was reported.
func applyToggles(report *models.Report, cfg *config.Config) {
	if !cfg.Analysis.Classes {
		report.UnusedClasses = []models.ClassFinding{}
	}
	if !cfg.Analysis.Methods {
		report.UnusedMethods = []models.MethodFinding{}
	}
	if !cfg.Analysis.Packages {
		report.UnusedPackages = []models.PackageFinding{}
	}
	if !cfg.Analysis.Assets {
		report.UnusedAssets = []models.AssetFinding{}
	}
}

func classesCmd() *cli.Command {
	return &cli.Command{
		Name:      "classes",
		Usage:     "Report classes never referenced outside their declarations",
		ArgsUsage: "<project-root>",
		Flags:     analysisFlags(),
		Action: categoryAction(func(f *output.Formatter, r *models.Report) error {
			if f.Format() == output.FormatJSON || f.Format() == output.FormatTOON {
				return f.Output(struct {
					UnusedClasses []models.ClassFinding `json:"unused_classes" toon:"unused_classes"`
				}{r.UnusedClasses})
			}
			return renderClasses(f, r.UnusedClasses)
		}),
	}
}

func methodsCmd() *cli.Command {
	return &cli.Command{
		Name:      "methods",
		Usage:     "Report methods and functions never referenced",
		ArgsUsage: "<project-root>",
		Flags:     analysisFlags(),
		Action: categoryAction(func(f *output.Formatter, r *models.Report) error {
			if f.Format() == output.FormatJSON || f.Format() == output.FormatTOON {
				return f.Output(struct {
					UnusedMethods []models.MethodFinding `json:"unused_methods" toon:"unused_methods"`
				}{r.UnusedMethods})
			}
			return renderMethods(f, r.UnusedMethods)
		}),
	}
}

func packagesCmd() *cli.Command {
	return &cli.Command{
		Name:      "packages",
		Aliases:   []string{"deps"},
		Usage:     "Report pubspec dependencies never imported",
		ArgsUsage: "<project-root>",
		Flags:     analysisFlags(),
		Action: categoryAction(func(f *output.Formatter, r *models.Report) error {
			if f.Format() == output.FormatJSON || f.Format() == output.FormatTOON {
				return f.Output(struct {
					UnusedPackages []models.PackageFinding `json:"unused_packages" toon:"unused_packages"`
				}{r.UnusedPackages})
			}
			return renderPackages(f, r.UnusedPackages)
		}),
	}
}

func assetsCmd() *cli.Command {
	return &cli.Command{
		Name:      "assets",
		Usage:     "Report declared assets never referenced by a string literal",
		ArgsUsage: "<project-root>",
		Flags:     analysisFlags(),
		Action: categoryAction(func(f *output.Formatter, r *models.Report) error {
			if f.Format() == output.FormatJSON || f.Format() == output.FormatTOON {
				return f.Output(struct {
					UnusedAssets []models.AssetFinding `json:"unused_assets" toon:"unused_assets"`
				}{r.UnusedAssets})
			}
			return renderAssets(f, r.UnusedAssets)
		}),
	}
}

// categoryAction builds the shared run-then-render action for the
// single-category commands.
func categoryAction(render func(*output.Formatter, *models.Report) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		root, err := projectRoot(c)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(c, root)
		if err != nil {
			return err
		}

		report, err := runAnalysis(c, root, cfg)
		if err != nil {
			return err
		}

		formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), cfg.Output.Color)
		if err != nil {
			return err
		}
		defer formatter.Close()

		return render(formatter, report)
	}
}

func renderClasses(f *output.Formatter, findings []models.ClassFinding) error {
	if len(findings) == 0 {
		if f.Format() == output.FormatText {
			color.Green("No unused classes found")
			fmt.Fprintln(f.Writer())
		}
		return nil
	}

	var rows [][]string
	for _, cf := range findings {
		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", cf.File, cf.Line),
			cf.Name,
		})
	}
	table := output.NewTable(
		"Unused Classes",
		[]string{"Location", "Class"},
		rows,
		[]string{fmt.Sprintf("Total: %d", len(findings)), ""},
		findings,
	)
	return f.Output(table)
}

func renderMethods(f *output.Formatter, findings []models.MethodFinding) error {
	if len(findings) == 0 {
		if f.Format() == output.FormatText {
			color.Green("No unused methods found")
			fmt.Fprintln(f.Writer())
		}
		return nil
	}

	var rows [][]string
	for _, mf := range findings {
		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", mf.File, mf.Line),
			mf.Name,
		})
	}
	table := output.NewTable(
		"Unused Methods",
		[]string{"Location", "Method"},
		rows,
		[]string{fmt.Sprintf("Total: %d", len(findings)), ""},
		findings,
	)
	return f.Output(table)
}

func renderPackages(f *output.Formatter, findings []models.PackageFinding) error {
	if len(findings) == 0 {
		if f.Format() == output.FormatText {
			color.Green("No unused packages found")
			fmt.Fprintln(f.Writer())
		}
		return nil
	}

	var rows [][]string
	for _, pf := range findings {
		rows = append(rows, []string{
			pf.Name,
			fmt.Sprintf("pubspec.yaml:%d", pf.Line),
		})
	}
	table := output.NewTable(
		"Unused Packages",
		[]string{"Package", "Declared At"},
		rows,
		[]string{fmt.Sprintf("Total: %d", len(findings)), ""},
		findings,
	)
	return f.Output(table)
}

func renderAssets(f *output.Formatter, findings []models.AssetFinding) error {
	if len(findings) == 0 {
		if f.Format() == output.FormatText {
			color.Green("No unused assets found")
			fmt.Fprintln(f.Writer())
		}
		return nil
	}

	var rows [][]string
	for _, af := range findings {
		rows = append(rows, []string{af.Path})
	}
	table := output.NewTable(
		"Unused Assets",
		[]string{"Asset"},
		rows,
		[]string{fmt.Sprintf("Total: %d", len(findings))},
		findings,
	)
	return f.Output(table)
}
