// Command abalonectl submits predictions to and reads the leaderboard of an
// abalone competition server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/okian/abalone/internal/client"
	"github.com/okian/abalone/internal/domain/types"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

const (
	flagURL     = "url"
	flagTeam    = "team"
	flagMembers = "members"
	flagFile    = "file"
	flagFormat  = "format"
)

var (
	version = "v0.0.1-default"
	commit  = ""
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "abalonectl",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Usage:   "CLI for the abalone leaderboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagURL,
				Usage:   "Base URL of the competition server",
				Value:   "http://localhost:9080",
				Sources: cli.EnvVars("ABALONE_URL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "submit",
				Usage: "Upload a prediction file and print its RMSE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagTeam, Usage: "Team name", Required: true},
					&cli.StringFlag{Name: flagMembers, Usage: "Comma-separated team members", Required: true},
					&cli.StringFlag{Name: flagFile, Usage: "Prediction CSV with a Rings column", Required: true},
				},
				Action: submitAction,
			},
			{
				Name:  "leaderboard",
				Usage: "Print the ranked leaderboard",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagFormat, Usage: "Output format [table, json]", Value: formatTable},
				},
				Action: leaderboardAction,
			},
		},
	}
}

func submitAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String(flagFile)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	c := client.New(cmd.String(flagURL))
	res, err := c.Submit(ctx, cmd.String(flagTeam), cmd.String(flagMembers), filepath.Base(path), f)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.Root().Writer, "%s: RMSE %.6f\n", res.Message, res.RMSE)
	return err
}

func leaderboardAction(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String(flagFormat)
	if format != formatTable && format != formatJSON {
		return fmt.Errorf("unknown format %q", format)
	}

	entries, err := client.New(cmd.String(flagURL)).Leaderboard(ctx)
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	return printTable(w, entries)
}

func printTable(w io.Writer, entries []types.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "no submissions yet")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RANK\tTEAM\tSCORE\tMEMBERS")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%.6f\t%s\n", e.Rank, e.TeamName, e.Score, joinMembers(e.Members))
	}
	return tw.Flush()
}

func joinMembers(members []string) string {
	b, _ := json.Marshal(members)
	return string(b)
}
