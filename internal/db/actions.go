// Package db implements the csslim db CLI commands for browsing pass history.
package db

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	dbpkg "github.com/perfkit/csslim/pkg/db"
)

// Command returns the csslim db command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "browse recorded optimize passes",
		Subcommands: []*cli.Command{
			{
				Name:   "passes",
				Usage:  "list recorded passes",
				Action: PassesAction,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "max passes to list"},
					&cli.StringFlag{Name: "db", Usage: "pass-history database path"},
				},
			},
			{
				Name:   "pass",
				Usage:  "show per-stylesheet decisions for a pass (latest if no id)",
				Action: PassAction,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "id", Usage: "pass id"},
					&cli.StringFlag{Name: "db", Usage: "pass-history database path"},
				},
			},
		},
	}
}

func openDatabase(c *cli.Context) (*dbpkg.DB, error) {
	if path := c.String("db"); path != "" {
		return dbpkg.OpenAt(path)
	}
	return dbpkg.Open()
}

// PassesAction lists recorded optimize passes, newest first.
func PassesAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	passes, err := database.ListPasses(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list passes: %w", err)
	}

	if len(passes) == 0 {
		fmt.Println("No passes recorded")
		return nil
	}

	// Print table header
	fmt.Printf("%-6s %-20s %-8s %-8s %-10s %-10s %-8s %-40s\n",
		"ID", "Created", "Sheets", "Inlined", "Extracted", "Preloaded", "Skipped", "Page URL")
	fmt.Println(strings.Repeat("-", 115))

	for _, p := range passes {
		fmt.Printf("%-6d %-20s %-8d %-8d %-10d %-10d %-8d %-40s\n",
			p.PassID,
			p.CreatedAt.Format("2006-01-02 15:04:05"),
			p.SheetCount,
			p.InlinedCount,
			p.ExtractedCount,
			p.PreloadedCount,
			p.SkippedCount,
			p.PageURL,
		)
	}

	fmt.Printf("\nTotal: %d passes\n", len(passes))
	fmt.Printf("\nTip: Use 'csslim db pass <id>' to see per-stylesheet decisions\n")

	return nil
}

// PassAction shows the per-stylesheet decisions for one pass.
func PassAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	passID := int64(c.Int("id"))
	if !c.IsSet("id") {
		passes, err := database.ListPasses(1)
		if err != nil {
			return fmt.Errorf("failed to find latest pass: %w", err)
		}
		if len(passes) == 0 {
			return fmt.Errorf("no passes recorded")
		}
		passID = passes[0].PassID
	}

	pass, err := database.GetPassByID(passID)
	if err != nil {
		return fmt.Errorf("failed to get pass: %w", err)
	}
	sheets, err := database.GetPassSheets(passID)
	if err != nil {
		return fmt.Errorf("failed to get pass sheets: %w", err)
	}

	fmt.Printf("Pass %d\n", pass.PassID)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Created:    %s\n", pass.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Page URL:   %s\n", pass.PageURL)
	fmt.Printf("Output:     %s\n", pass.OutputPath)
	fmt.Printf("Sheets:     %d total (%d inlined, %d extracted, %d preloaded, %d skipped)\n",
		pass.SheetCount, pass.InlinedCount, pass.ExtractedCount, pass.PreloadedCount, pass.SkippedCount)

	if len(sheets) > 0 {
		fmt.Printf("\nStylesheets (%d):\n", len(sheets))
		fmt.Println(strings.Repeat("-", 60))
		for i, s := range sheets {
			fmt.Printf("%2d. [%s] %s\n", i+1, s.Status, s.Src)
			switch s.Status {
			case "error":
				fmt.Printf("    Error: [%s] %s\n", s.ErrorType, s.ErrorMessage)
			case "rewritten":
				fmt.Printf("    Strategy: %s | Full: %d bytes | Used: %d bytes\n",
					s.Strategy, s.ContentBytes, s.UsedBytes)
			}
		}
	}

	return nil
}
