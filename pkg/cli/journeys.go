package cli

import (
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/replaykit/journey-runner/pkg/journey"
	"github.com/replaykit/journey-runner/pkg/scoring"
	"github.com/replaykit/journey-runner/pkg/storage"
	"github.com/replaykit/journey-runner/pkg/validator"
)

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Check whether a page satisfies a journey's starting context",
	ArgsUsage: "<journey-file-or-id>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "url",
			Usage:    "Page to navigate to before validating",
			Required: true,
		},
	},
	Action: runValidate,
}

var listCommand = &cli.Command{
	Name:  "list",
	Usage: "List journeys in the database",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "domain", Usage: "Filter by domain"},
		&cli.StringFlag{Name: "category", Usage: "Filter by category"},
		&cli.StringFlag{Name: "tag", Usage: "Filter by tag"},
		&cli.Float64Flag{Name: "min-success-rate", Usage: "Minimum success rate (0..1)"},
		&cli.StringFlag{Name: "sort", Usage: "Sort by: successRate, usageCount, lastUsed, name", Value: storage.SortByLastUsed},
		&cli.IntFlag{Name: "limit", Usage: "Maximum journeys to show"},
	},
	Action: runList,
}

var importCommand = &cli.Command{
	Name:      "import",
	Usage:     "Import journey YAML files into the database",
	ArgsUsage: "<file-or-glob>...",
	Action:    runImport,
}

var scoreCommand = &cli.Command{
	Name:      "score",
	Usage:     "Score a journey's compatibility with a live page",
	ArgsUsage: "<journey-file-or-id>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "url",
			Usage:    "Page to navigate to before scoring",
			Required: true,
		},
	},
	Action: runScore,
}

var similarCommand = &cli.Command{
	Name:      "similar",
	Usage:     "Find journeys similar to the given one",
	ArgsUsage: "<journey-file-or-id>",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "limit", Usage: "Maximum results", Value: 5},
	},
	Action: runSimilar,
}

var recommendCommand = &cli.Command{
	Name:  "recommend",
	Usage: "Rank stored journeys by compatibility with a live page",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "url",
			Usage:    "Page to navigate to before ranking",
			Required: true,
		},
		&cli.IntFlag{Name: "limit", Usage: "Maximum results", Value: 5},
	},
	Action: runRecommend,
}

func runValidate(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one journey file or ID")
	}
	if err := setupLogging(c); err != nil {
		return err
	}

	wsCfg, err := loadWorkspaceConfig(c)
	if err != nil {
		return err
	}
	store, err := openStore(c, wsCfg)
	if err != nil {
		return err
	}
	defer store.Close()

	j, err := resolveJourney(c.Args().First(), store)
	if err != nil {
		return err
	}

	page, cleanup, err := newPage(c)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := page.Navigate(c.Context, c.String("url")); err != nil {
		return err
	}

	v := validator.New(store)
	result := v.Validate(c.Context, j.StartingContext, page)

	if result.IsValid {
		fmt.Printf("  %s✓ valid%s confidence %.0f%%\n",
			color(colorGreen), color(colorReset), result.Confidence*100)
	} else {
		fmt.Printf("  %s✗ invalid%s confidence %.0f%%\n",
			color(colorRed), color(colorReset), result.Confidence*100)
	}
	if result.URLMismatch {
		fmt.Printf("    %s- URL does not match%s\n", color(colorDim), color(colorReset))
	}
	for _, el := range result.MissingElements {
		fmt.Printf("    %s- missing element: %s%s\n", color(colorDim), el, color(colorReset))
	}
	for _, issue := range result.StateIssues {
		fmt.Printf("    %s- %s%s\n", color(colorDim), issue, color(colorReset))
	}
	for _, s := range result.Suggestions {
		fmt.Printf("    %s→ %s%s\n", color(colorCyan), s, color(colorReset))
	}
	if len(result.AlternativeJourneys) > 0 {
		fmt.Println("  Alternatives:")
		for _, id := range result.AlternativeJourneys {
			fmt.Printf("    %s\n", id)
		}
	}

	if !result.IsValid {
		return cli.Exit("", 1)
	}
	return nil
}

func runList(c *cli.Context) error {
	wsCfg, err := loadWorkspaceConfig(c)
	if err != nil {
		return err
	}
	store, err := openStore(c, wsCfg)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := store.SearchJourneys(storage.SearchCriteria{
		Domain:         c.String("domain"),
		Category:       c.String("category"),
		Tag:            c.String("tag"),
		MinSuccessRate: c.Float64("min-success-rate"),
		SortBy:         c.String("sort"),
		SortOrder:      "desc",
		Limit:          c.Int("limit"),
	})
	if err != nil {
		return err
	}

	if len(result.Journeys) == 0 {
		fmt.Println("  No journeys found.")
		return nil
	}

	for _, j := range result.Journeys {
		fmt.Printf("  %s%-24s%s %-20s %3d steps  %4s success  %d runs\n",
			color(colorBold), j.ID, color(colorReset),
			j.Domain(), len(j.Steps),
			formatRate(j.Metadata.SuccessRate), j.Metadata.UsageCount)
	}
	fmt.Printf("\n  %d of %d journey(s)\n", len(result.Journeys), result.TotalCount)
	return nil
}

func runImport(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("expected at least one journey file or glob")
	}

	wsCfg, err := loadWorkspaceConfig(c)
	if err != nil {
		return err
	}
	store, err := openStore(c, wsCfg)
	if err != nil {
		return err
	}
	defer store.Close()

	imported := 0
	for _, arg := range c.Args().Slice() {
		paths, err := filepath.Glob(arg)
		if err != nil {
			return fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(paths) == 0 {
			paths = []string{arg}
		}
		for _, path := range paths {
			j, err := journey.ParseFile(path)
			if err != nil {
				fmt.Printf("  %s✗%s %s: %v\n", color(colorRed), color(colorReset), path, err)
				continue
			}
			if err := store.SaveJourney(j); err != nil {
				return fmt.Errorf("saving %s: %w", j.ID, err)
			}
			fmt.Printf("  %s✓%s %s (%d steps)\n", color(colorGreen), color(colorReset), j.ID, len(j.Steps))
			imported++
		}
	}
	fmt.Printf("\n  Imported %d journey(s)\n", imported)
	return nil
}

func runScore(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one journey file or ID")
	}

	wsCfg, err := loadWorkspaceConfig(c)
	if err != nil {
		return err
	}
	store, err := openStore(c, wsCfg)
	if err != nil {
		return err
	}
	defer store.Close()

	j, err := resolveJourney(c.Args().First(), store)
	if err != nil {
		return err
	}

	page, cleanup, err := newPage(c)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := page.Navigate(c.Context, c.String("url")); err != nil {
		return err
	}

	info := scoring.Snapshot(c.Context, page, j)
	result := scoring.Compatibility(info, j)

	fmt.Printf("  %s%s%s → %s\n", color(colorBold), j.ID, color(colorReset), c.String("url"))
	fmt.Printf("  Compatibility: %s%.2f%s\n", scoreColor(result.Score), result.Score, color(colorReset))
	for _, reason := range result.Reasons {
		fmt.Printf("    %s- %s%s\n", color(colorDim), reason, color(colorReset))
	}
	return nil
}

func runSimilar(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one journey file or ID")
	}

	wsCfg, err := loadWorkspaceConfig(c)
	if err != nil {
		return err
	}
	store, err := openStore(c, wsCfg)
	if err != nil {
		return err
	}
	defer store.Close()

	j, err := resolveJourney(c.Args().First(), store)
	if err != nil {
		return err
	}

	ranked, err := scoring.FindAlternatives(j, store, c.Int("limit"))
	if err != nil {
		return err
	}
	if len(ranked) == 0 {
		fmt.Println("  No similar journeys found.")
		return nil
	}

	for _, r := range ranked {
		fmt.Printf("  %s%.2f%s  %s%-24s%s %s\n",
			scoreColor(r.Score), r.Score, color(colorReset),
			color(colorBold), r.Journey.ID, color(colorReset), r.Journey.Name)
	}

	hints, err := scoring.SuggestImprovements(j, store)
	if err == nil && len(hints) > 0 {
		fmt.Println()
		for _, hint := range hints {
			fmt.Printf("  %s→ %s%s\n", color(colorCyan), hint, color(colorReset))
		}
	}
	return nil
}

func runRecommend(c *cli.Context) error {
	wsCfg, err := loadWorkspaceConfig(c)
	if err != nil {
		return err
	}
	store, err := openStore(c, wsCfg)
	if err != nil {
		return err
	}
	defer store.Close()

	page, cleanup, err := newPage(c)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := page.Navigate(c.Context, c.String("url")); err != nil {
		return err
	}

	all, err := store.SearchJourneys(storage.SearchCriteria{})
	if err != nil {
		return err
	}
	info := scoring.Snapshot(c.Context, page, all.Journeys...)
	ranked, err := scoring.Recommend(info, store, c.Int("limit"))
	if err != nil {
		return err
	}
	if len(ranked) == 0 {
		fmt.Println("  No compatible journeys found.")
		return nil
	}

	fmt.Printf("  Journeys compatible with %s:\n\n", c.String("url"))
	for _, r := range ranked {
		fmt.Printf("  %s%.2f%s  %s%-24s%s %s\n",
			scoreColor(r.Score), r.Score, color(colorReset),
			color(colorBold), r.Journey.ID, color(colorReset), r.Journey.Name)
		for _, reason := range r.Reasons {
			fmt.Printf("        %s- %s%s\n", color(colorGray), reason, color(colorReset))
		}
	}
	return nil
}

func scoreColor(score float64) string {
	switch {
	case score >= 0.7:
		return color(colorGreen)
	case score >= 0.4:
		return color(colorYellow)
	default:
		return color(colorRed)
	}
}
