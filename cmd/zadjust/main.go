// Command zadjust repairs and locally adjusts the layer boundaries of a
// corner-point grid kept in a snapshot database.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/banshee-data/cornerpoint/internal/config"
	"github.com/banshee-data/cornerpoint/internal/fsutil"
	"github.com/banshee-data/cornerpoint/internal/grid3d"
	"github.com/banshee-data/cornerpoint/internal/gridstore"
	"github.com/banshee-data/cornerpoint/internal/section"
	"github.com/banshee-data/cornerpoint/internal/security"
	"github.com/banshee-data/cornerpoint/internal/version"
)

var (
	configPath   = flag.String("config", "", "path to geometry config JSON (defaults built in)")
	dbPath       = flag.String("db", "", "snapshot database path (overrides config db_path)")
	gridName     = flag.String("name", "", "grid name (required)")
	boxDims      = flag.String("box", "", "create a new box grid with dimensions ncol,nrow,nlay instead of loading one")
	boxOrigin    = flag.String("origin", "0,0,1000", "box origin x,y,z")
	boxIncrement = flag.String("increment", "100,100,5", "box cell size dx,dy,dz")
	repair       = flag.Bool("repair", false, "make the grid z-consistent")
	zsep         = flag.Float64("zsep", 0, "minimum gap between layer boundaries (0 uses config)")
	workers      = flag.Int("workers", 0, "pillar sweep workers (0 uses config)")
	pillarI      = flag.Int("i", -1, "pillar i index to adjust (-1 adjusts every pillar)")
	pillarJ      = flag.Int("j", -1, "pillar j index to adjust (-1 adjusts every pillar)")
	layerK       = flag.Int("k", -1, "layer boundary to adjust in single mode")
	offset       = flag.Float64("offset", 0, "depth offset to apply; positive moves down, 0 skips the adjustment")
	mode         = flag.String("mode", "", "adjust mode: all or single (empty uses config)")
	inactivateDz = flag.Float64("inactivate-dz", -1, "inactivate cells thinner than this (-1 uses config, 0 disables)")
	collapse     = flag.Bool("collapse-inactive", false, "shrink inactive cells in partly active columns to zsep thickness")
	plotDir      = flag.String("plot-dir", "", "write PNG and HTML cross-sections to this directory")
	sectionAxis  = flag.String("section", "row", "cross-section axis: row or column")
	sectionIndex = flag.Int("section-index", 0, "row (j) or column (i) index of the cross-section")
	trace        = flag.Bool("trace", false, "log per-pillar repair detail")
	showVersion  = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("zadjust"))
		return
	}
	if *gridName == "" {
		log.Fatal("-name is required")
	}

	cfg := config.DefaultGeometryConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadGeometryConfig(*configPath); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	opts, err := optionsFromFlags(cfg)
	if err != nil {
		log.Fatalf("invalid arguments: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	opts.ctx = ctx

	if err := run(opts, os.Stdout); err != nil {
		log.Fatalf("zadjust failed: %v", err)
	}
}

// runOptions is the resolved set of flag and config values.
type runOptions struct {
	ctx          context.Context
	dbPath       string
	name         string
	box          *grid3d.Dimensions
	origin       [3]float64
	increment    [3]float64
	repair       bool
	zsep         float64
	workers      int
	adjust       *grid3d.AdjustRequest
	inactivateDz float64
	collapse     bool
	plotDir      string
	sectionAxis  string
	sectionIndex int
	plotWidth    float64
	plotHeight   float64
	trace        io.Writer
	logs         io.Writer
	fs           fsutil.FileSystem
}

func optionsFromFlags(cfg *config.GeometryConfig) (*runOptions, error) {
	o := &runOptions{
		dbPath:       cfg.GetDBPath(),
		name:         *gridName,
		repair:       *repair,
		zsep:         cfg.GetZSep(),
		workers:      cfg.GetWorkers(),
		inactivateDz: cfg.GetInactivateDzThreshold(),
		collapse:     *collapse,
		plotDir:      *plotDir,
		sectionAxis:  *sectionAxis,
		sectionIndex: *sectionIndex,
		plotWidth:    cfg.GetPlotWidthInches(),
		plotHeight:   cfg.GetPlotHeightInches(),
		logs:         os.Stderr,
		fs:           fsutil.OSFileSystem{},
	}
	if *dbPath != "" {
		o.dbPath = *dbPath
	}
	if *zsep > 0 {
		o.zsep = *zsep
	}
	if *workers > 0 {
		o.workers = *workers
	}
	if *inactivateDz >= 0 {
		o.inactivateDz = *inactivateDz
	}
	if *trace {
		o.trace = os.Stderr
	}

	if *boxDims != "" {
		d, err := parseInts(*boxDims)
		if err != nil {
			return nil, fmt.Errorf("-box: %w", err)
		}
		o.box = &grid3d.Dimensions{NCol: d[0], NRow: d[1], NLay: d[2]}
		if o.origin, err = parseFloats(*boxOrigin); err != nil {
			return nil, fmt.Errorf("-origin: %w", err)
		}
		if o.increment, err = parseFloats(*boxIncrement); err != nil {
			return nil, fmt.Errorf("-increment: %w", err)
		}
	}

	if *offset != 0 {
		modeName := *mode
		if modeName == "" {
			modeName = cfg.GetDefaultMode()
		}
		req, err := adjustRequest(*pillarI, *pillarJ, *layerK, *offset, modeName)
		if err != nil {
			return nil, err
		}
		o.adjust = req
	}
	return o, nil
}

// adjustRequest turns the CLI pillar/layer flags into a request. A negative
// i and j select every pillar; supplying only one of them is an error.
func adjustRequest(i, j, k int, offset float64, modeName string) (*grid3d.AdjustRequest, error) {
	m, err := grid3d.ParseAdjustMode(modeName)
	if err != nil {
		return nil, err
	}
	req := &grid3d.AdjustRequest{Offset: offset, Mode: m}
	switch {
	case i >= 0 && j >= 0:
		req.Pillar = &grid3d.Pillar{I: i, J: j}
	case i >= 0 || j >= 0:
		return nil, fmt.Errorf("-i and -j must be given together")
	}
	if m == grid3d.SingleLayer {
		if k < 0 {
			return nil, fmt.Errorf("-k is required in single mode")
		}
		req.Layer = &k
	}
	return req, nil
}

func run(o *runOptions, out io.Writer) error {
	store, err := gridstore.Open(o.dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	g, reason, err := loadGrid(store, o)
	if err != nil {
		return err
	}

	gopts := (&grid3d.Options{}).
		WithWorkers(o.workers).
		WithLogs(grid3d.NewLogs(o.logs, o.logs, o.trace))
	if o.ctx != nil {
		gopts.WithContext(o.ctx)
	}

	if err := grid3d.CheckZConsistent(g.Dims, g.ZCorn, o.zsep); err != nil {
		fmt.Fprintf(out, "consistency: %v\n", err)
	} else {
		fmt.Fprintln(out, "consistency: ok")
	}

	if o.repair {
		stats, err := g.MakeZConsistent(o.zsep, gopts)
		if err != nil {
			return fmt.Errorf("repair: %w", err)
		}
		fmt.Fprintf(out, "repair: adjusted %d of %d nodes, max shift %.4f\n", stats.Adjusted, stats.Nodes, stats.MaxShift)
		reason = "repaired"
	}

	if o.adjust != nil {
		if err := g.AdjustZLocal(*o.adjust, o.zsep, gopts); err != nil {
			return fmt.Errorf("adjust: %w", err)
		}
		fmt.Fprintf(out, "adjust: %s offset %g applied\n", describe(o.adjust), o.adjust.Offset)
		reason = "adjusted"
	}

	if o.inactivateDz > 0 {
		n, err := g.InactivateByDz(o.inactivateDz)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "inactivate: %d cells thinner than %g\n", n, o.inactivateDz)
	}

	if o.collapse {
		n, err := g.CollapseInactive(o.zsep, gopts)
		if err != nil {
			return fmt.Errorf("collapse: %w", err)
		}
		fmt.Fprintf(out, "collapse: %d inactive cells collapsed\n", n)
		reason = "collapsed"
	}

	s := grid3d.SummarizeDz(g.Dz(), g.ActNum)
	fmt.Fprintf(out, "grid %s %s: active=%d dz mean=%.4f std=%.4f min=%.4f max=%.4f\n",
		g.Name, g.Dims, g.NActive(), s.Mean, s.StdDev, s.Min, s.Max)

	snap, err := gridstore.NewSnapshot(g, o.zsep, reason)
	if err != nil {
		return err
	}
	if err := store.Insert(snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	fmt.Fprintf(out, "snapshot: %s (%s)\n", snap.SnapshotID, reason)

	if o.plotDir != "" {
		if err := writeSection(g, o); err != nil {
			return err
		}
	}
	return nil
}

func loadGrid(store *gridstore.Store, o *runOptions) (*grid3d.Grid, string, error) {
	if o.box != nil {
		g, err := grid3d.CreateBox(o.name, *o.box, o.origin, o.increment)
		if err != nil {
			return nil, "", err
		}
		return g, "created", nil
	}
	snap, err := store.Latest(o.name)
	if err != nil {
		return nil, "", err
	}
	g, err := snap.Grid()
	if err != nil {
		return nil, "", err
	}
	return g, "manual", nil
}

func writeSection(g *grid3d.Grid, o *runOptions) error {
	var sec *section.Section
	var err error
	switch o.sectionAxis {
	case "row":
		sec, err = section.RowSection(g, o.sectionIndex)
	case "column":
		sec, err = section.ColumnSection(g, o.sectionIndex)
	default:
		return fmt.Errorf("unknown section axis %q", o.sectionAxis)
	}
	if err != nil {
		return err
	}

	base, err := security.JoinWithin(o.plotDir, fmt.Sprintf("%s_%s_%03d", security.SanitizeFilename(g.Name), o.sectionAxis, o.sectionIndex))
	if err != nil {
		return err
	}
	if err := section.SavePNG(o.fs, base+".png", sec, o.plotWidth, o.plotHeight); err != nil {
		return err
	}

	w, err := o.fs.Create(base + ".html")
	if err != nil {
		return fmt.Errorf("create html section: %w", err)
	}
	if err := section.RenderHTML(w, sec); err != nil {
		w.Close()
		return fmt.Errorf("render html section: %w", err)
	}
	return w.Close()
}

func describe(req *grid3d.AdjustRequest) string {
	target := "all pillars"
	if req.Pillar != nil {
		target = fmt.Sprintf("pillar (%d,%d)", req.Pillar.I, req.Pillar.J)
	}
	if req.Mode == grid3d.SingleLayer {
		return fmt.Sprintf("%s layer %d", target, *req.Layer)
	}
	return target + " all layers"
}

func parseInts(s string) ([3]int, error) {
	var v [3]int
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("want 3 comma-separated values, got %q", s)
	}
	for n, p := range parts {
		x, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return v, fmt.Errorf("parse %q: %w", p, err)
		}
		v[n] = x
	}
	return v, nil
}

func parseFloats(s string) ([3]float64, error) {
	var v [3]float64
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("want 3 comma-separated values, got %q", s)
	}
	for n, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return v, fmt.Errorf("parse %q: %w", p, err)
		}
		v[n] = x
	}
	return v, nil
}
