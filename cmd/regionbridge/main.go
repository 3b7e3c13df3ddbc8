package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/astrogo/fitsio"
	"gopkg.in/yaml.v3"

	"regionbridge/internal/models"
	"regionbridge/pkg/config"
	"regionbridge/pkg/fitsdata"
	"regionbridge/pkg/logger"
	"regionbridge/pkg/server"
	"regionbridge/pkg/shape"
	"regionbridge/pkg/subset"
	"regionbridge/pkg/translate"
	"regionbridge/pkg/visualization"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is the configuration read by every command
	ConfigFileName = "regionbridge.yml"
)

func root() {
	str := `regionbridge converts selections drawn on FITS images into region shapes,
and circular annuli back into selections.

Usage:
	regionbridge <command>

Commands:
	run
	export
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `regionbridge reads regionbridge.yml from the working directory.  Run
"regionbridge mkconf" to write one holding the defaults.

run serves the datasets listed in the configuration over HTTP:
	GET  /formats
	GET  /datasets
	POST /datasets/{name}/export[/{format}]   selection JSON -> shape JSON
	POST /datasets/{name}/mask                selection JSON -> PNG mask
	POST /datasets/{name}/import              annulus JSON -> selection JSON

export translates one selection against one FITS image:
	regionbridge export -fits m31.fits -selection sel.json [-format regions]
		[-mask out.png|out.tif] [-fits-mask out.fits] [-o shape.json]

Formats:
	regions         circular annuli are written as annuli
	regions-legacy  circular annuli are written as the XOR of two circles`
	fmt.Println(str)
}

func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(ConfigFileName)
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}
	return cfg
}

func newLogger(cfg *config.Config) logger.ILogger {
	level, err := logger.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Output.Verbose {
		level = logger.LogDebug
	}
	return logger.NewStdErrLogger(level)
}

func translationOptions(cfg *config.Config, l logger.ILogger) translate.Options {
	return translate.Options{
		CenterTolerance: cfg.Translation.CenterTolerance,
		MaxDepth:        cfg.Translation.MaxDepth,
		Logger:          l,
	}
}

func mkconf() {
	if err := config.SaveConfig(loadConfig(), ConfigFileName); err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	err := yaml.NewEncoder(os.Stdout).Encode(loadConfig())
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("regionbridge version %v\n", Version)
}

func run() {
	cfg := loadConfig()
	l := newLogger(cfg)
	opts := translationOptions(cfg, l)

	datasets := make(map[string]server.Dataset, len(cfg.Datasets))
	for _, src := range cfg.Datasets {
		img, err := fitsdata.LoadFile(src.Path)
		if err != nil {
			log.Fatal(err)
		}
		name := src.Name
		if name == "" {
			name = img.Label
		}
		if _, dup := datasets[name]; dup {
			log.Fatalf("dataset %s configured twice", name)
		}
		l.Infof("loaded %s", img)
		datasets[name] = server.Dataset{Data: img, Unit: img.Unit}
	}
	if len(datasets) == 0 {
		l.Errorf("no datasets configured, see regionbridge help")
	}

	srv := server.New(translate.DefaultRegistry(opts), datasets, server.Options{
		Translation: opts,
		Format:      cfg.Translation.Format,
		Workers:     cfg.Output.Workers,
		Logger:      l,
	})
	l.Infof("now listening for requests at %s", cfg.Server.Addr)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, srv.Router()))
}

func export(args []string) {
	cfg := loadConfig()

	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fitsPath := fs.String("fits", "", "FITS image the selection was drawn on")
	selPath := fs.String("selection", "", "Selection JSON file, - for stdin")
	format := fs.String("format", cfg.Translation.Format, "Export format")
	outPath := fs.String("o", "", "Shape JSON output file (default stdout)")
	maskPath := fs.String("mask", "", "Write the rendered selection as a PNG mask, TIFF for .tif names")
	fitsMaskPath := fs.String("fits-mask", "", "Write the rendered selection as a FITS mask")
	fs.Parse(args)

	if *fitsPath == "" || *selPath == "" {
		fs.Usage()
		os.Exit(1)
	}

	l := newLogger(cfg)
	opts := translationOptions(cfg, l)

	img, err := fitsdata.LoadFile(*fitsPath)
	if err != nil {
		log.Fatal(err)
	}
	sel, err := readSelection(*selPath, img)
	if err != nil {
		log.Fatalf("failed to read selection: %v", err)
	}

	out, err := translate.DefaultRegistry(opts).SelectionToShape(*format, img, sel)
	if err != nil {
		log.Fatalf("export failed: %v", err)
	}
	data, err := shape.Marshal(out)
	if err != nil {
		log.Fatal(err)
	}
	if *outPath == "" {
		fmt.Println(string(data))
	} else if err := os.WriteFile(*outPath, data, 0644); err != nil {
		log.Fatal(err)
	}

	if *maskPath == "" && *fitsMaskPath == "" {
		return
	}
	viewer, err := visualization.NewViewer(img, cfg.Output.Workers)
	if err != nil {
		log.Fatal(err)
	}
	mask := viewer.RenderMask(out)
	l.Infof("selection covers %d of %d pixels of %s", visualization.CountSet(mask), img.Size(), img.Label)

	if *maskPath != "" {
		if err := viewer.SaveMask(mask, maskFile(cfg, *maskPath)); err != nil {
			log.Fatal(err)
		}
	}
	if *fitsMaskPath != "" {
		cards := []fitsio.Card{
			{Name: "OBJECT", Value: img.Label, Comment: "source image"},
			{Name: "REGFMT", Value: *format, Comment: "export format"},
			{Name: "REGKIND", Value: out.Kind(), Comment: "exported shape kind"},
		}
		if err := viewer.SaveMaskFITS(mask, maskFile(cfg, *fitsMaskPath), cards); err != nil {
			log.Fatal(err)
		}
	}
}

func readSelection(path string, img *models.Image) (subset.State, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return subset.Decode(data, img)
}

// maskFile places bare file names in the configured mask directory.
func maskFile(cfg *config.Config, name string) string {
	if filepath.Base(name) != name {
		return name
	}
	return filepath.Join(cfg.Output.MaskDir, name)
}

func main() {
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	cmd := strings.ToLower(args[1])
	switch cmd {
	case "help":
		help()
	case "mkconf":
		mkconf()
	case "conf":
		printconf()
	case "run":
		run()
	case "export":
		export(args[2:])
	case "version":
		pversion()
	default:
		log.Fatal("unknown command")
	}
}
