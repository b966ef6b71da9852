// equipctl talks to a running server from the terminal.
//
//	equipctl [-url URL] [-token TOKEN] <command> [args]
//
// The token can also come from EQUIPCTL_TOKEN and the URL from EQUIPCTL_URL.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/parshv1234/ChemicalVisualizer/internal/client"
	"github.com/parshv1234/ChemicalVisualizer/internal/core"
)

const usage = `usage: equipctl [-url URL] [-token TOKEN] <command> [args]

commands:
  login USERNAME PASSWORD   print a token for EQUIPCTL_TOKEN
  upload FILE               upload a CSV file
  history [-n N]            list the most recent datasets (default 5)
  show ID                   print a dataset summary
  raw ID [-n N]             print the first rows of a dataset
  pdf ID [-o FILE]          download the PDF report
`

func main() {
	baseURL := flag.String("url", envOr("EQUIPCTL_URL", "http://localhost:8000"), "server base URL")
	token := flag.String("token", os.Getenv("EQUIPCTL_TOKEN"), "API token")
	timeout := flag.Duration("timeout", client.DefaultTimeout, "request timeout")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	c := client.New(*baseURL).SetTimeout(*timeout)
	if *token != "" {
		c.SetToken(*token)
	}

	if err := run(context.Background(), c, os.Stdout, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "equipctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client.Client, out io.Writer, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	limit := fs.Int("n", 0, "number of rows")
	output := fs.String("o", "", "output file")

	// Positional arguments come first, flags after them.
	var positional []string
	for len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		positional = append(positional, args[0])
		args = args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	positional = append(positional, fs.Args()...)

	need := func(n int) error {
		if len(positional) != n {
			return fmt.Errorf("%s: expected %d argument(s), got %d", cmd, n, len(positional))
		}
		return nil
	}

	switch cmd {
	case "login":
		if err := need(2); err != nil {
			return err
		}
		tok, err := c.Login(ctx, positional[0], positional[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, tok.Token)

	case "upload":
		if err := need(1); err != nil {
			return err
		}
		data, err := os.ReadFile(positional[0])
		if err != nil {
			return err
		}
		ds, err := c.Upload(ctx, filepath.Base(positional[0]), data)
		if err != nil {
			return err
		}
		printSummary(out, ds)

	case "history":
		n := *limit
		if n <= 0 {
			n = 5
		}
		list, err := c.List(ctx, n)
		if err != nil {
			return err
		}
		printHistory(out, list)

	case "show":
		if err := need(1); err != nil {
			return err
		}
		ds, err := c.Get(ctx, positional[0])
		if err != nil {
			return err
		}
		printSummary(out, ds)

	case "raw":
		if err := need(1); err != nil {
			return err
		}
		rows, err := c.RawData(ctx, positional[0], *limit)
		if err != nil {
			return err
		}
		printRows(out, rows)

	case "pdf":
		if err := need(1); err != nil {
			return err
		}
		name, data, err := c.DownloadReport(ctx, positional[0])
		if err != nil {
			return err
		}
		if *output != "" {
			name = *output
		}
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(out, "saved %s (%d bytes)\n", name, len(data))

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func printSummary(out io.Writer, ds *client.Dataset) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", ds.ID)
	fmt.Fprintf(tw, "File:\t%s\n", ds.FileName)
	fmt.Fprintf(tw, "Uploaded:\t%s\n", ds.UploadedAt.Local().Format(time.DateTime))
	if ds.UploaderUsername != nil {
		fmt.Fprintf(tw, "Uploader:\t%s\n", *ds.UploaderUsername)
	}
	fmt.Fprintf(tw, "Total Equipment:\t%d\n", ds.TotalCount)
	fmt.Fprintf(tw, "Avg Flowrate:\t%.2f\n", ds.AvgFlowrate)
	fmt.Fprintf(tw, "Avg Pressure:\t%.2f\n", ds.AvgPressure)
	fmt.Fprintf(tw, "Avg Temperature:\t%.2f\n", ds.AvgTemperature)
	tw.Flush()

	if len(ds.TypeDistribution) == 0 {
		return
	}
	fmt.Fprintln(out, "\nEquipment Type Distribution:")
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, tc := range core.TypeDistribution(ds.TypeDistribution).Sorted() {
		label := tc.Label
		if label == "" {
			label = "(blank)"
		}
		fmt.Fprintf(tw, "  %s\t%d\n", label, tc.Count)
	}
	tw.Flush()
}

func printHistory(out io.Writer, list []client.Dataset) {
	if len(list) == 0 {
		fmt.Fprintln(out, "no datasets uploaded yet")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tUPLOADED\tCOUNT")
	for _, ds := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", ds.ID, ds.FileName, ds.UploadedAt.Local().Format(time.DateTime), ds.TotalCount)
	}
	tw.Flush()
}

func printRows(out io.Writer, rows []client.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "no rows")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(rows[0].Columns, "\t"))
	for _, row := range rows {
		cells := make([]string, len(row.Values))
		for i := range row.Values {
			cells[i] = row.Format(i)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
