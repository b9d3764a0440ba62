package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"wgsmaster/internal/diag"
	"wgsmaster/internal/diagfmt"
	"wgsmaster/internal/driver"
	"wgsmaster/internal/lookup"
	"wgsmaster/internal/observ"
	"wgsmaster/internal/trace"
	"wgsmaster/internal/validate"
	"wgsmaster/internal/version"
)

// errVerdict reports a completed run whose verdict is not pass.
var errVerdict = errors.New("submission rejected")

var processCmd = &cobra.Command{
	Use:   "process [paths...]",
	Short: "Validate a submission, stamp accessions and write the master record",
	Long: `Process validates every record of the submission files, assigns project
accessions and writes the processed records next to the master record.
Paths may be files or directories; with none, the manifest's input dir is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSubmission(cmd, args, false)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Validate a submission without writing any file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSubmission(cmd, args, true)
	},
}

func init() {
	for _, c := range []*cobra.Command{processCmd, checkCmd} {
		addRunFlags(c)
	}
	addOutputFlags(processCmd)
}

// addRunFlags registers the flags shared by process and check.
func addRunFlags(c *cobra.Command) {
	addConfigFlags(c)
	f := c.Flags()
	f.IntP("jobs", "j", 0, "parallel scan workers (0 = GOMAXPROCS)")
	f.Bool("scan-cache", false, "cache scan results on disk")
	f.String("format", "pretty", "diagnostics format (pretty|short|json|sarif)")
	f.String("path-mode", "auto", "how paths are shown (auto|absolute|relative|basename)")
	f.Bool("notes", true, "show diagnostic notes")
	f.Bool("titles", false, "show the title of each diagnostic code")
	f.Bool("info", false, "include informational diagnostics")
}

// outputFlags are the rendering options of process and check.
type outputFlags struct {
	color     bool
	quiet     bool
	timings   bool
	maxDiags  int
	ui        uiMode
	format    string
	pathMode  diagfmt.PathMode
	notes     bool
	titles    bool
	info      bool
	jobs      int
	scanCache bool
}

func readOutputFlags(cmd *cobra.Command) (*outputFlags, error) {
	root := cmd.Root().PersistentFlags()
	out := &outputFlags{}
	colorStr, err := root.GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	if out.color, err = resolveColor(colorStr); err != nil {
		return nil, err
	}
	color.NoColor = !out.color
	if out.quiet, err = root.GetBool("quiet"); err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if out.timings, err = root.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if out.maxDiags, err = root.GetInt("max-diagnostics"); err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	uiStr, err := root.GetString("ui")
	if err != nil {
		return nil, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if out.ui, err = readUIMode(uiStr); err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if out.format, err = f.GetString("format"); err != nil {
		return nil, fmt.Errorf("failed to get format flag: %w", err)
	}
	out.format = strings.ToLower(out.format)
	switch out.format {
	case "pretty", "short", "json", "sarif":
	default:
		return nil, fmt.Errorf("unsupported format %q (must be pretty, short, json or sarif)", out.format)
	}
	pm, err := f.GetString("path-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	var ok bool
	if out.pathMode, ok = diagfmt.ParsePathMode(pm); !ok {
		return nil, fmt.Errorf("invalid --path-mode %q", pm)
	}
	if out.notes, err = f.GetBool("notes"); err != nil {
		return nil, fmt.Errorf("failed to get notes flag: %w", err)
	}
	if out.titles, err = f.GetBool("titles"); err != nil {
		return nil, fmt.Errorf("failed to get titles flag: %w", err)
	}
	if out.info, err = f.GetBool("info"); err != nil {
		return nil, fmt.Errorf("failed to get info flag: %w", err)
	}
	if out.jobs, err = f.GetInt("jobs"); err != nil {
		return nil, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if out.scanCache, err = f.GetBool("scan-cache"); err != nil {
		return nil, fmt.Errorf("failed to get scan-cache flag: %w", err)
	}
	return out, nil
}

func resolveColor(mode string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "", "auto":
		return !color.NoColor && isTerminal(os.Stdout), nil
	}
	return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
}

// runSubmission is the body of process and check.
func runSubmission(cmd *cobra.Command, args []string, check bool) error {
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	of, err := readOutputFlags(cmd)
	if err != nil {
		return err
	}
	s, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}
	inputs, err := driver.ListInputs(s.paths, s.pattern, s.recursive)
	if err != nil {
		return fmt.Errorf("failed to list inputs: %w", err)
	}

	opts := driver.Options{
		Config:    &s.cfg,
		Inputs:    inputs,
		InputRoot: s.inputRoot,
		Output:    s.output,
		Check:     check,
		Jobs:      of.jobs,
		Timer:     observ.NewTimer(),
		RunID:     trace.NewRunID(),
	}
	if of.scanCache {
		if opts.Cache, err = driver.OpenScanCache("wgsmaster"); err != nil {
			return fmt.Errorf("failed to open scan cache: %w", err)
		}
	}
	if s.lookup.Taxonomy != "" {
		tax, err := lookup.LoadTaxonomy(s.lookup.Taxonomy)
		if err != nil {
			return err
		}
		opts.Taxonomy = tax
	}
	if s.lookup.Biblio != "" {
		bib, err := lookup.LoadBiblio(s.lookup.Biblio)
		if err != nil {
			return err
		}
		opts.Biblio = bib
	}

	bag := diag.NewBag(0)
	opts.Reporter = diag.NewDedupReporter(diag.BagReporter{Bag: bag})

	var res *driver.Result
	var runErr error
	if !of.quiet && of.format == "pretty" && shouldUseTUI(of.ui) && len(inputs) > 0 {
		title := "processing"
		if check {
			title = "checking"
		}
		res, runErr = runWithUI(ctx, title, inputs, opts)
	} else {
		res, runErr = driver.Run(ctx, opts)
	}

	if !of.info {
		bag.Filter(func(d *diag.Diagnostic) bool { return d.Severity > diag.SevInfo })
	}
	stdout := cmd.OutOrStdout()
	if err := renderDiagnostics(stdout, bag, of, opts.RunID); err != nil {
		return err
	}
	if !of.quiet && of.format == "pretty" && res != nil {
		printRunSummary(stdout, res, bag, check)
	}
	if of.timings {
		fmt.Fprint(cmd.ErrOrStderr(), opts.Timer.Summary())
	}

	if runErr != nil {
		return runErr
	}
	if !res.OK() {
		return fmt.Errorf("%w: verdict %s", errVerdict, res.Verdict)
	}
	return nil
}

func renderDiagnostics(w io.Writer, bag *diag.Bag, of *outputFlags, runID string) error {
	switch of.format {
	case "json":
		return diagfmt.JSON(w, bag, diagfmt.JSONOpts{
			PathMode:     of.pathMode,
			Max:          of.maxDiags,
			IncludeNotes: of.notes,
			RunID:        runID,
		})
	case "sarif":
		return diagfmt.Sarif(w, bag, diagfmt.SarifRunMeta{
			ToolName:       "wgsmaster",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args,
			RunID:          runID,
		})
	case "short":
		shown := limitBag(bag, of.maxDiags)
		_, err := io.WriteString(w, diag.FormatShortDiagnostics(shown.Items(), of.notes))
		return err
	}
	bag.Sort()
	shown := limitBag(bag, of.maxDiags)
	width := 0
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		width = terminalWidth(f)
	}
	diagfmt.Pretty(w, shown, diagfmt.PrettyOpts{
		Color:     of.color,
		PathMode:  of.pathMode,
		Width:     width,
		ShowNotes: of.notes,
		ShowTitle: of.titles,
	})
	if n := shown.Dropped(); n > 0 {
		fmt.Fprintf(w, "... %d more diagnostics not shown (raise --max-diagnostics)\n", n)
	}
	return nil
}

// limitBag copies at most max diagnostics; max <= 0 keeps all of them.
func limitBag(bag *diag.Bag, max int) *diag.Bag {
	shown := diag.NewBag(max)
	for _, d := range bag.Items() {
		shown.Add(d)
	}
	return shown
}

func printRunSummary(w io.Writer, res *driver.Result, bag *diag.Bag, check bool) {
	verdictColor := color.New(color.FgGreen, color.Bold)
	if !res.OK() {
		verdictColor = color.New(color.FgRed, color.Bold)
	}
	fmt.Fprintf(w, "%d records in %d files: %d passed, %d partially failed, %d failed\n",
		res.Records, len(res.Files),
		res.Verdicts[validate.Pass], res.Verdicts[validate.PartialFail], res.Verdicts[validate.Fail])
	if res.First != "" {
		fmt.Fprintf(w, "accessions %s..%s\n", res.First, res.Last)
	}
	if res.MasterPath != "" {
		fmt.Fprintf(w, "master written to %s\n", res.MasterPath)
	} else if check && res.Master != nil {
		fmt.Fprintln(w, "master built (check mode, nothing written)")
	}
	fmt.Fprintf(w, "%s: %s\n", verdictColor.Sprint(res.Verdict.String()), diagfmt.Counts(bag))
}
