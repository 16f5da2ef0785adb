package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pommapper/pkg/catalog"
	"github.com/matzehuels/pommapper/pkg/errors"
	"github.com/matzehuels/pommapper/pkg/index"
	"github.com/matzehuels/pommapper/pkg/server"
)

// queryCommand creates the query command.
func (c *CLI) queryCommand() *cobra.Command {
	var (
		snapshots, releases, limit, since string
		asJSON                            bool
	)

	cmd := &cobra.Command{
		Use:   "query <id>",
		Short: "Run a by-id query against the configured repositories",
		Long: `Run a by-id query against the configured repositories.

Flags take the same values as the HTTP query parameters, with the same
fallbacks: invalid values are replaced by their defaults.`,
		Example: `  pommapper query BetonQuest
  pommapper query BetonQuest --snapshots=false --limit 3
  pommapper query BetonQuest --since 2.0.0 --json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeArtifactIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := url.Values{}
			setIfChanged(cmd, values, server.ParamSnapshots, snapshots)
			setIfChanged(cmd, values, server.ParamReleases, releases)
			setIfChanged(cmd, values, server.ParamLimit, limit)
			setIfChanged(cmd, values, server.ParamSince, since)
			q := server.ParseQuery(values)

			e, err := c.newEnv(cmd.Context(), -1)
			if err != nil {
				return err
			}
			defer e.Close()

			spinner := newSpinner(cmd.Context(), "Indexing "+args[0]+"...")
			spinner.Start()
			prog := newProgress(c.Logger)
			groups, err := e.indexer.Query(cmd.Context(), args[0], q)
			spinner.Stop()
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Resolved %d groups", len(groups)))

			if asJSON {
				return writeJSON(groups)
			}
			if len(groups) == 0 {
				printInfo("%s", server.NoEntriesMessage)
				return nil
			}
			fmt.Println(renderGroups(groups))
			return nil
		},
	}

	cmd.Flags().StringVar(&snapshots, server.ParamSnapshots, "true", "include snapshot groups")
	cmd.Flags().StringVar(&releases, server.ParamReleases, "true", "include release groups")
	cmd.Flags().StringVar(&limit, server.ParamLimit, "-1", "versions per group (<= 0 for all)")
	cmd.Flags().StringVar(&since, server.ParamSince, index.DefaultSince, "only versions newer than this")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the HTTP response body")

	return cmd
}

// lookupCommand creates the lookup command.
func (c *CLI) lookupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <repository> <path>",
		Short: "Resolve a repository path to an artifact id",
		Example: `  pommapper lookup releases org/betonquest/betonquest
  pommapper lookup releases org/betonquest/betonquest/2.1.0`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			cat := catalog.New(cfg.Artifacts)
			a, ok := cat.FindArtifact(args[0], args[1])
			if !ok {
				return errors.New(errors.ErrCodeArtifactNotFound, "no artifact at %s/%s", args[0], args[1])
			}

			printSuccess("%s", StyleHighlight.Render(a.ID))
			printKeyValue("Coordinate", a.Coordinate())
			printKeyValue("Repository", a.Repository)
			printKeyValue("Path", a.Path())
			printKeyValue("Redirect", server.RedirectTarget(cfg.Server.BasePath, a.ID, ""))
			return nil
		},
	}
}

// versionsCommand creates the versions command.
func (c *CLI) versionsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:               "versions <id>",
		Short:             "List the cached entries of an artifact",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeArtifactIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.newEnv(cmd.Context(), -1)
			if err != nil {
				return err
			}
			defer e.Close()

			spinner := newSpinner(cmd.Context(), "Loading "+args[0]+"...")
			spinner.Start()
			entries, err := e.indexer.Entries(cmd.Context(), args[0])
			spinner.Stop()
			if err != nil {
				return err
			}
			if asJSON {
				out := make([]entryJSON, len(entries))
				for i, en := range entries {
					out[i] = entryJSON{Group: en.Group, Version: en.MavenVersion, Snapshot: en.IsSnapshot(), Jar: en.Jar, Fields: en.Fields}
				}
				return writeJSON(out)
			}
			if len(entries) == 0 {
				printInfo("No cached entries for %s", args[0])
				return nil
			}
			fmt.Println(renderEntries(entries))
			printDetail("%d entries", len(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}

type entryJSON struct {
	Group    string            `json:"group"`
	Version  string            `json:"version"`
	Snapshot bool              `json:"snapshot"`
	Jar      string            `json:"jar"`
	Fields   map[string]string `json:"fields"`
}

// setIfChanged copies a flag into values only when the user set it, so that
// unset flags behave like absent query parameters.
func setIfChanged(cmd *cobra.Command, values url.Values, name, value string) {
	if cmd.Flags().Changed(name) {
		values.Set(name, value)
	}
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// =============================================================================
// Tables
// =============================================================================

// headerRow is the row index lipgloss passes to StyleFunc for headers.
const headerRow = -1

func newTable(headers ...string) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return headerStyle.Padding(0, 1)
			}
			if col == 0 {
				return StyleHighlight.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// fieldNames returns the sorted union of field names.
func fieldNames(fields ...map[string]string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, f := range fields {
		for name := range f {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// renderGroups renders query results as one row per version.
func renderGroups(groups []index.Group) string {
	var all []map[string]string
	for _, g := range groups {
		for _, v := range g.Versions {
			all = append(all, v.Entries)
		}
	}
	names := fieldNames(all...)

	t := newTable(append([]string{"Group", "Version"}, names...)...)
	for _, g := range groups {
		for i, v := range g.Versions {
			group := ""
			if i == 0 {
				group = g.Group
			}
			row := []string{group, v.Version}
			for _, n := range names {
				row = append(row, v.Entries[n])
			}
			t.Row(row...)
		}
	}
	return t.Render()
}

// renderEntries renders raw cache entries in recording order.
func renderEntries(entries []index.VersionEntry) string {
	t := newTable("Group", "Version", "Snapshot", "Fields", "Jar")
	for _, e := range entries {
		t.Row(e.Group, e.MavenVersion, strconv.FormatBool(e.IsSnapshot()), strconv.Itoa(len(e.Fields)), e.Jar)
	}
	return t.Render()
}
