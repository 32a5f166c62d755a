package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"

	"github.com/tosih/motor-curve-tool/pkg/compare"
	"github.com/tosih/motor-curve-tool/pkg/config"
	"github.com/tosih/motor-curve-tool/pkg/editor"
	"github.com/tosih/motor-curve-tool/pkg/export"
	"github.com/tosih/motor-curve-tool/pkg/grid"
	"github.com/tosih/motor-curve-tool/pkg/reader"
	"github.com/tosih/motor-curve-tool/pkg/renderer"
	"github.com/tosih/motor-curve-tool/pkg/scanner"
	"github.com/tosih/motor-curve-tool/pkg/web"
)

func main() {
	filename := flag.String("file", "", "Motor file to open (.json, .yaml or .yml)")
	configPath := flag.String("config", "", "Config file (default: user config dir)")
	logLevel := flag.String("log-level", "", "Log level: trace, debug, info, warn, error")

	list := flag.Bool("list", false, "List drives and voltages")
	show := flag.String("show", "", "Show the grid of a voltage, e.g. 0.1 for drive 0 voltage 1")
	display := flag.String("display", renderer.ModeValues, "Display mode: values, heatmap, symbols")
	every := flag.Int("every", 10, "Show every n-th row of the grid")
	chart := flag.Bool("chart", false, "Draw the curves of the shown voltage")
	edit := flag.Bool("edit", false, "Interactive edit mode")
	serve := flag.Bool("web", false, "Start the web editor")
	port := flag.Int("port", 0, "Web editor port (overrides config)")
	compareFile := flag.String("compare", "", "Compare against another motor file")
	exportDir := flag.String("export", "", "Export every voltage to CSV files in this directory")
	scan := flag.Bool("scan", false, "Scan curves for suspicious points")
	validate := flag.Bool("validate", false, "Validate the file and exit")
	convert := flag.String("convert", "", "Write the motor to another file; the format follows the extension")

	selectCells := flag.String("select", "", "Batch edit: cell rectangle as row,col:row,col")
	paste := flag.String("paste", "", `Batch edit: text to paste onto the selection; \t separates fields, \n rows`)
	apply := flag.Float64("apply", 0, "Batch edit: torque value to write into the selection")
	scale := flag.Float64("scale", 0, "Batch edit: multiply the selected torque by this factor")
	dryRun := flag.Bool("dry-run", false, "Batch edit: show the result without saving")
	flag.Parse()

	if *filename == "" {
		fmt.Println("Usage: motor-curve-tool -file <motor.json> [-list] [-show d.v] [-edit] [-web] [-compare other] [-export dir] [-scan]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *port != 0 {
		cfg.Web.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	logger := cfg.Logger()

	m, err := reader.ReadMotor(*filename)
	if err != nil {
		pterm.Error.Printf("Error reading %s: %v\n", *filename, err)
		os.Exit(1)
	}
	logger.Debug("motor loaded", logger.Args("file", *filename, "drives", len(m.Drives)))

	if *validate {
		pterm.Success.Printf("%s is valid\n", *filename)
		return
	}

	applySet := false
	flag.Visit(func(f *flag.Flag) { applySet = applySet || f.Name == "apply" })
	batch := *paste != "" || applySet || *scale != 0
	opts := editor.Options{
		Epsilon:  cfg.Editor.Epsilon,
		Backup:   cfg.Editor.BackupOnSave,
		Headless: batch,
		Logger:   logger,
	}

	switch {
	case *list:
		renderer.ListVoltages(m)
	case *compareFile != "":
		err = compare.CompareFiles(*filename, *compareFile)
	case *exportDir != "":
		err = export.ExportVoltagesToCSV(m, *exportDir)
	case *scan:
		scanner.DisplayFindings(scanner.ScanMotor(m))
	case *convert != "":
		if err = export.WriteMotor(*convert, m); err == nil {
			pterm.Success.Printf("Written to %s\n", *convert)
		}
	case *serve:
		err = web.NewServer(editor.NewSession(m, *filename, opts), cfg.Web.Port).Start()
	case *edit:
		editor.Interactive(editor.NewSession(m, *filename, opts), cfg.Editor.ChartHeight)
	case batch:
		err = runBatch(editor.NewSession(m, *filename, opts), *show, *selectCells, *paste, *apply, *scale, *dryRun)
	default:
		err = showVoltage(editor.NewSession(m, *filename, opts), *show, renderer.Options{Mode: *display, Every: *every}, *chart, cfg.Editor.ChartHeight)
	}
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

// parseVoltage reads "d.v" as drive and voltage indexes.
func parseVoltage(s string) (int, int, error) {
	if s == "" {
		return 0, 0, nil
	}
	var d, v int
	if _, err := fmt.Sscanf(s, "%d.%d", &d, &v); err != nil {
		return 0, 0, fmt.Errorf("invalid voltage %q, want drive.voltage such as 0.1", s)
	}
	return d, v, nil
}

// parseRect reads "row,col:row,col"; a single "row,col" is one cell.
func parseRect(s string) (a, b grid.CellPosition, err error) {
	first, second, found := strings.Cut(s, ":")
	if !found {
		second = first
	}
	if _, err = fmt.Sscanf(first, "%d,%d", &a.Row, &a.Column); err != nil {
		return a, b, fmt.Errorf("invalid cell %q", first)
	}
	if _, err = fmt.Sscanf(second, "%d,%d", &b.Row, &b.Column); err != nil {
		return a, b, fmt.Errorf("invalid cell %q", second)
	}
	return a, b, nil
}

// unescapePaste expands the literal \t and \n a shell passes through, so a
// multi-row block fits in one -paste argument.
func unescapePaste(s string) string {
	return strings.NewReplacer(`\t`, "\t", `\n`, "\n").Replace(s)
}

func showVoltage(s *editor.Session, which string, opts renderer.Options, withChart bool, chartHeight int) error {
	d, v, err := parseVoltage(which)
	if err != nil {
		return err
	}
	if err := s.SelectVoltage(d, v); err != nil {
		return err
	}
	pterm.DefaultHeader.WithFullWidth().
		WithBackgroundStyle(pterm.NewStyle(pterm.BgDarkGray)).
		WithTextStyle(pterm.NewStyle(pterm.FgLightWhite)).
		Println(fmt.Sprintf("%s %s - %s", s.Motor.Manufacturer, s.Motor.Name, s.Drive().Name))
	renderer.ShowProperties(s.Voltage())
	renderer.RenderGrid(s.Grid, s.Selection, opts)
	if withChart {
		view := renderer.NewChartView(s.Grid, s.Coordinator, chartHeight)
		defer view.Close()
		pterm.DefaultBox.WithTitle("Torque").WithTitleTopLeft().Println(view.Render())
	}
	return nil
}

func runBatch(s *editor.Session, which, rect, paste string, apply, scale float64, dryRun bool) error {
	d, v, err := parseVoltage(which)
	if err != nil {
		return err
	}
	if err := s.SelectVoltage(d, v); err != nil {
		return err
	}
	if rect == "" {
		s.Selection.SelectAll()
	} else {
		a, b, err := parseRect(rect)
		if err != nil {
			return err
		}
		if !s.Grid.Contains(a.Row, a.Column) || !s.Grid.Contains(b.Row, b.Column) {
			return fmt.Errorf("selection %s outside the %dx%d grid", rect, s.Grid.RowCount(), s.Grid.ColumnCount())
		}
		s.Selection.SelectRectangularRange(a, b)
	}

	var changed bool
	switch {
	case paste != "":
		changed, err = s.Paste(unescapePaste(paste))
	case scale != 0:
		changed, err = s.ScaleSelection(scale)
	default:
		changed, err = s.ApplyValue(apply)
	}
	if err != nil {
		return err
	}
	if !changed {
		pterm.Info.Println("No cells changed")
		return nil
	}

	renderer.RenderGrid(s.Grid, s.Selection, renderer.Options{Mode: renderer.ModeValues, Every: 10})
	if dryRun {
		pterm.Warning.Println("DRY RUN - No changes saved")
		return nil
	}
	return s.Save()
}
