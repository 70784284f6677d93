package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"storyforge/internal/ai"
	"storyforge/internal/config"
	"storyforge/internal/errors"
	"storyforge/internal/ops"
	"storyforge/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, client *ai.Client, cfg *config.Config, baseDir string) *cli.App {
	app := &cli.App{
		Name:    "storyforge",
		Usage:   "User story generation and quality analysis",
		Version: Version,
		Commands: []*cli.Command{
			generateCmd(db, client, cfg),
			refineCmd(db, client, cfg),
			fetchCmd(db),
			listCmd(db, cfg),
			searchCmd(db, cfg),
			updateCmd(db),
			deleteCmd(db),
			validateCmd(),
			suggestCmd(),
			exportCmd(db, baseDir),
			purgeCmd(db),
			serveCmd(db, client, cfg, baseDir),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// generateCmd creates the generate command.
func generateCmd(db *sql.DB, client *ai.Client, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "Generate a user story from a feature description",
		ArgsUsage: "[description]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Story type: epic|feature|story|task"},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "Priority: low|medium|high|critical"},
			&cli.StringFlag{Name: "project", Usage: "Project ID to attach the story to"},
		},
		Action: func(c *cli.Context) error {
			description, err := descriptionArg(c)
			if err != nil {
				return outputError(err)
			}

			input := ops.GenerateInput{
				FeatureDescription: description,
				StoryType:          c.String("type"),
				Priority:           c.String("priority"),
			}
			if project := c.String("project"); project != "" {
				input.ProjectID = &project
			}

			output, err := ops.Generate(c.Context, db, client, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// refineCmd creates the refine command.
func refineCmd(db *sql.DB, client *ai.Client, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "refine",
		Usage:     "Refine an existing story with feedback (flag or stdin)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "feedback", Aliases: []string{"f"}, Usage: "Refinement feedback"},
		},
		Action: func(c *cli.Context) error {
			feedback := c.String("feedback")
			if feedback == "" && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				feedback = text
			}

			output, err := ops.Refine(c.Context, db, client, cfg, ops.RefineInput{
				ID:       c.Args().First(),
				Feedback: feedback,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// fetchCmd creates the fetch command.
func fetchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch a story by ID",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted stories"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Fetch(c.Context, db, ops.FetchInput{
				ID:             c.Args().First(),
				IncludeDeleted: c.Bool("include-deleted"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stories with optional filters",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Usage: "Filter by project ID"},
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Filter by story type"},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "Filter by priority"},
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "Filter by status"},
			&cli.StringFlag{Name: "feature-type", Usage: "Filter by detected feature type"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted stories"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ListInput{
				ProjectID:      optString(c, "project"),
				StoryType:      optString(c, "type"),
				Priority:       optString(c, "priority"),
				Status:         optString(c, "status"),
				FeatureType:    optString(c, "feature-type"),
				Limit:          c.Int("limit"),
				Offset:         c.Int("offset"),
				IncludeDeleted: c.Bool("include-deleted"),
			}

			output, err := ops.List(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Full-text search across descriptions and Gherkin content",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Usage: "Filter by project ID"},
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "Filter by status"},
			&cli.StringFlag{Name: "feature-type", Usage: "Filter by detected feature type"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted stories"},
		},
		Action: func(c *cli.Context) error {
			input := ops.SearchInput{
				Query:          strings.Join(c.Args().Slice(), " "),
				ProjectID:      optString(c, "project"),
				Status:         optString(c, "status"),
				FeatureType:    optString(c, "feature-type"),
				Limit:          c.Int("limit"),
				Offset:         c.Int("offset"),
				IncludeDeleted: c.Bool("include-deleted"),
			}

			output, err := ops.Search(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// updateCmd creates the update command. New Gherkin content is read from
// stdin when piped.
func updateCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update story fields (optionally reads gherkin_content from stdin)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "effort", Aliases: []string{"e"}, Usage: "Estimated effort (Fibonacci: 1,2,3,5,8,13)"},
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Story type: epic|feature|story|task"},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "Priority: low|medium|high|critical"},
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "Status: draft|ready|in_progress|done|blocked"},
			&cli.StringFlag{Name: "project", Usage: "Project ID (empty string clears)"},
			&cli.StringFlag{Name: "tags", Usage: "New comma-separated tags"},
			&cli.StringFlag{Name: "criteria", Usage: "New comma-separated acceptance criteria"},
		},
		Action: func(c *cli.Context) error {
			input := ops.UpdateInput{
				ID: c.Args().First(),
			}

			// New Gherkin from stdin if piped
			if stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				if text != "" {
					input.GherkinContent = &text
				}
			}

			if c.IsSet("effort") {
				effort := c.Int("effort")
				input.EstimatedEffort = &effort
			}
			input.StoryType = optString(c, "type")
			input.Priority = optString(c, "priority")
			input.Status = optString(c, "status")
			if c.IsSet("project") {
				project := c.String("project")
				input.ProjectID = &project
			}
			if c.IsSet("tags") {
				input.Tags = parseCSV(c.String("tags"))
			}
			if c.IsSet("criteria") {
				input.AcceptanceCriteria = parseCSV(c.String("criteria"))
			}

			output, err := ops.Update(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Soft-delete a story",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, db, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// validateCmd creates the validate command.
func validateCmd() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Validate Gherkin content (reads from stdin)",
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("gherkin_content must be piped via stdin"))
			}

			content, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			output, err := ops.Validate(ops.ValidateInput{GherkinContent: content})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// suggestCmd creates the suggest command.
func suggestCmd() *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Suggest improvements for a feature description",
		ArgsUsage: "[description]",
		Action: func(c *cli.Context) error {
			description, err := descriptionArg(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Suggest(ops.SuggestInput{FeatureDescription: description})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, baseDir string) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a story to a .feature or .md file",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "feature", Usage: "Export format: feature|markdown"},
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Output directory (default: <base>/exports)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, db, baseDir, ops.ExportInput{
				ID:     c.Args().First(),
				Format: ops.ExportFormat(c.String("format")),
				Dir:    c.String("dir"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Permanently delete soft-deleted stories",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "older-than", Usage: "Only purge if deleted more than N days ago (e.g., 7d)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PurgeInput{}

			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.OlderThanDays = &days
			}

			output, err := ops.Purge(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command, which runs the HTTP JSON API.
func serveCmd(db *sql.DB, client *ai.Client, cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP JSON API server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8713, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, client, cfg, Version, baseDir, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// descriptionArg returns the feature description from positional arguments,
// falling back to stdin when piped.
func descriptionArg(c *cli.Context) (string, error) {
	if c.NArg() > 0 {
		return strings.Join(c.Args().Slice(), " "), nil
	}
	if stdinHasData() {
		text, err := readStdin()
		if err != nil {
			return "", errors.NewInternal(err)
		}
		if text != "" {
			return text, nil
		}
	}
	return "", errors.NewInvalidRequest("feature description is required (argument or stdin)")
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if cErr, ok := err.(*errors.Error); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", cErr.Code, cErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// optString returns a pointer to the flag's value when it is non-empty.
func optString(c *cli.Context, name string) *string {
	if v := c.String(name); v != "" {
		return &v
	}
	return nil
}

// parseCSV splits a comma-separated string into trimmed, non-empty parts.
// An empty input yields an empty (non-nil) slice, which clears the field.
func parseCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}
