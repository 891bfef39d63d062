package main

import (
	"context"
	"fmt"
	"github.com/alecthomas/kong"
	"github.com/hauke96/sigolo/v2"
	"github.com/joho/godotenv"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"os"
	"os/signal"
	"path/filepath"
	"snapindex/feature"
	"snapindex/importing"
	"snapindex/index"
	ownIo "snapindex/io"
	"snapindex/parser"
	"snapindex/storage"
	"snapindex/transform"
	"snapindex/util"
	"snapindex/web"
	"strconv"
	"strings"
	"sync"
	"syscall"
)

const VERSION = "v0.1.0"

var cli struct {
	Logging     string      `help:"Logging verbosity." enum:"info,debug,trace" short:"l" default:"info" env:"SNAPINDEX_LOGGING"`
	Version     VersionFlag `help:"Print version information and quit" name:"version" short:"v"`
	Source      string      `help:"The feature source. Either .geojson, .json, .osm, .pbf or a SQLite .db file. Defaults to the database of --db." short:"s" placeholder:"<source-file>" env:"SNAPINDEX_SOURCE"`
	SourceCrs   string      `help:"Reference system of the source coordinates, e.g. EPSG:4326." name:"source-crs" env:"SNAPINDEX_SOURCE_CRS"`
	Crs         string      `help:"Working reference system of the index. Probe coordinates and tolerances are given in it. Defaults to the reference system of the source." env:"SNAPINDEX_CRS"`
	Extent      string      `help:"Only index features intersecting this extent, given as min-x,min-y,max-x,max-y in the working reference system." placeholder:"<min-x,min-y,max-x,max-y>" env:"SNAPINDEX_EXTENT"`
	MaxFeatures int         `help:"Don't build an index when the source has more indexable features. A negative value disables this limit." name:"max-features" default:"-1" env:"SNAPINDEX_MAX_FEATURES"`
	Db          string      `help:"The SQLite database used by the import and as default source." default:"snapindex.db" env:"SNAPINDEX_DB"`
	Query       struct {
		Probe  string `help:"The probe text, e.g. 'vertex(1 2 0.5).exclude{3}'." placeholder:"<probe>" arg:""`
		Output string `help:"Write the matches into this GeoJSON file instead of stdout." short:"o" placeholder:"<output-file>"`
	} `cmd:"" help:"Executes the given probes and prints the matches as GeoJSON."`
	Serve struct {
		Port  string `help:"The port of the HTTP API." short:"p" default:"8080" env:"SNAPINDEX_PORT"`
		Watch bool   `help:"Reload a GeoJSON source whenever the file changes." short:"w" env:"SNAPINDEX_WATCH"`
	} `cmd:"" help:"Starts the HTTP API on the given source."`
	Import struct {
		Input string `help:"The input file. Either .geojson, .json, .osm or .osm.pbf." placeholder:"<input-file>" arg:"" type:"existingfile"`
	} `cmd:"" help:"Imports the given file into the SQLite database."`
}

type VersionFlag string

func (v VersionFlag) Decode(ctx *kong.DecodeContext) error { return nil }
func (v VersionFlag) IsBool() bool                         { return true }
func (v VersionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	fmt.Println(vars["version"])
	app.Exit(0)
	return nil
}

func main() {
	// Values from a .env file are only defaults, real environment variables take precedence.
	_ = godotenv.Load(".env")

	ctx := kong.Parse(
		&cli,
		kong.Name("snapindex"),
		kong.Description("A point locator snapping coordinates to the vertices, edges and areas of features."),
		kong.Vars{
			"version": VERSION,
		},
	)

	if strings.ToLower(cli.Logging) == "debug" {
		sigolo.SetDefaultLogLevel(sigolo.LOG_DEBUG)
	} else if strings.ToLower(cli.Logging) == "trace" {
		sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)
	} else if strings.ToLower(cli.Logging) == "info" {
		sigolo.SetDefaultLogLevel(sigolo.LOG_INFO)
		sigolo.SetDefaultFormatFunctionAll(sigolo.LogPlain)
	} else {
		sigolo.SetDefaultFormatFunctionAll(sigolo.LogPlain)
		sigolo.Fatalf("Unknown logging level '%s'", cli.Logging)
	}

	signalContext, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch ctx.Command() {
	case "import <input>":
		_, err := importing.Import(signalContext, cli.Import.Input, cli.Db, transform.ReferenceSystem(cli.SourceCrs))
		sigolo.FatalCheck(err)
	case "query <probe>":
		q, err := parser.ParseQueryString(cli.Query.Probe)
		sigolo.FatalCheck(err)

		source, closeSource, err := openSource(signalContext)
		sigolo.FatalCheck(err)
		defer closeSource()

		locator, err := newLocator(source)
		sigolo.FatalCheck(err)

		if !locator.Build(cli.MaxFeatures) {
			sigolo.Fatalf("Source has more than %d indexable features", cli.MaxFeatures)
		}

		results := q.Execute(locator)
		if cli.Query.Output != "" {
			err = ownIo.WriteMatchesAsGeoJsonFile(results, cli.Query.Output)
		} else {
			err = ownIo.WriteMatchesAsGeoJson(results, os.Stdout)
		}
		sigolo.FatalCheck(err)
	case "serve":
		source, closeSource, err := openSource(signalContext)
		sigolo.FatalCheck(err)
		defer closeSource()

		locator, err := newLocator(source)
		sigolo.FatalCheck(err)

		if cli.MaxFeatures >= 0 && !locator.Build(cli.MaxFeatures) {
			sigolo.Infof("Source has more than %d indexable features, the index is built on the first query", cli.MaxFeatures)
		}

		lock := &sync.Mutex{}
		if cli.Serve.Watch {
			startWatcher(signalContext, source, lock)
		}

		err = web.StartServer(cli.Serve.Port, web.NewServer(locator, source, lock))
		sigolo.FatalCheck(err)
	default:
		util.LogFatalBug("Unknown command '%s'", ctx.Command())
	}
}

// openSource opens the source file or, without one, the database. The returned function closes the source.
func openSource(ctx context.Context) (feature.EditableSource, func(), error) {
	referenceSystem := transform.ReferenceSystem(cli.SourceCrs)

	path := cli.Source
	if path == "" {
		path = cli.Db
	}

	if strings.ToLower(filepath.Ext(path)) == ".db" {
		source, err := storage.OpenSqliteSource(ctx, path, referenceSystem)
		if err != nil {
			return nil, nil, err
		}
		return source, func() {
			err := source.Close()
			if err != nil {
				sigolo.Errorf("Unable to close database %s: %+v", path, err)
			}
		}, nil
	}

	source, err := ownIo.OpenSource(ctx, path, referenceSystem)
	if err != nil {
		return nil, nil, err
	}
	return source, func() {}, nil
}

func newLocator(source feature.Source) (*index.PointLocator, error) {
	extent, err := parseExtent(cli.Extent)
	if err != nil {
		return nil, err
	}

	return index.NewPointLocator(source, index.Options{
		DestinationReferenceSystem: transform.ReferenceSystem(cli.Crs),
		Extent:                     extent,
	})
}

func startWatcher(ctx context.Context, source feature.EditableSource, lock sync.Locker) {
	memorySource, ok := source.(*feature.MemorySource)
	if !ok || !ownIo.IsGeoJsonFile(cli.Source) {
		sigolo.Fatalf("Only GeoJSON sources can be watched, but source is '%s'", cli.Source)
	}

	watcher, err := ownIo.NewGeoJsonWatcher(cli.Source, memorySource, lock)
	sigolo.FatalCheck(err)

	watcher.OnReload = func(err error) {
		if err != nil {
			sigolo.Errorf("Keep previous features of %s: %+v", cli.Source, err)
			return
		}
		sigolo.Infof("Reloaded %s with %d features", cli.Source, memorySource.Count())
	}

	go watcher.Run(ctx)
}

// parseExtent parses "min-x,min-y,max-x,max-y". An empty string means no extent.
func parseExtent(extentString string) (*orb.Bound, error) {
	if strings.TrimSpace(extentString) == "" {
		return nil, nil
	}

	parts := strings.Split(extentString, ",")
	if len(parts) != 4 {
		return nil, errors.Errorf("Extent '%s' must consist of four comma separated numbers", extentString)
	}

	var values [4]float64
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid number '%s' in extent '%s'", part, extentString)
		}
		values[i] = value
	}

	if values[0] > values[2] || values[1] > values[3] {
		return nil, errors.Errorf("Minimum of extent '%s' is larger than its maximum", extentString)
	}

	return &orb.Bound{Min: orb.Point{values[0], values[1]}, Max: orb.Point{values[2], values[3]}}, nil
}
