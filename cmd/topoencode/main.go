// Command topoencode encodes coordinates into a topocode and optionally
// queries topocoding.com for their altitudes.
//
// Usage:
//
//	topoencode 55.7558,37.6173 59.9343,30.3351
//	topoencode --polyline '_p~iF~ps|U_ulLnnqC'
//	topoencode --url --api-key KEY 38.5,-120.2
//	topoencode --fetch --api-key KEY 38.5,-120.2
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/spf13/cast"
	"github.com/twpayne/go-polyline"

	"github.com/NERVsystems/topomcp/pkg/geo"
	"github.com/NERVsystems/topomcp/pkg/topocode"
	"github.com/NERVsystems/topomcp/pkg/topocoding"
)

// Options are the command line options of topoencode.
type Options struct {
	Polyline string `short:"p" long:"polyline" description:"Read the points from a Google encoded polyline"`
	URL      bool   `short:"u" long:"url"      description:"Print the full altitude request URL instead of the topocode"`
	Fetch    bool   `short:"f" long:"fetch"    description:"Query the altitude service and print one altitude per point"`
	APIKey   string `long:"api-key"            env:"TOPOCODING_API_KEY" description:"topocoding.com API key"`
	BaseURL  string `long:"base-url"           env:"TOPOCODING_BASE_URL" description:"Altitude service base URL" default:"http://topocoding.com"`
	Batch    bool   `long:"batch"              description:"Split more than 280 points into several requests"`
	Debug    bool   `short:"d" long:"debug"    description:"Enable debug logging"`

	Args struct {
		Points []string `positional-arg-name:"lat,lon" description:"Coordinates in decimal degrees"`
	} `positional-args:"yes"`
}

var errNoPoints = errors.New("no points given; pass lat,lon arguments or --polyline")

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	level := slog.LevelWarn
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout, logger); err != nil {
		fmt.Fprintln(os.Stderr, "topoencode:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts Options, w io.Writer, logger *slog.Logger) error {
	points, err := readPoints(opts)
	if err != nil {
		return err
	}

	encoded, err := topocode.Encode(points)
	if err != nil && !(opts.Fetch && opts.Batch) {
		return err
	}

	if !opts.URL && !opts.Fetch {
		_, err := fmt.Fprintln(w, encoded)
		return err
	}

	client := topocoding.NewClient(topocoding.Options{
		APIKey:  opts.APIKey,
		BaseURL: opts.BaseURL,
		Logger:  logger,
	})

	if opts.URL {
		url, err := client.URL(encoded)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, url)
		return err
	}

	var profile *topocoding.Profile
	if opts.Batch {
		profile, err = client.AltitudesBatched(ctx, points)
	} else {
		profile, err = client.Altitudes(ctx, points)
	}
	if err != nil {
		return err
	}

	for i, p := range profile.Points {
		if _, err := fmt.Fprintf(w, "%.6f,%.6f\t%g\n", p.Latitude, p.Longitude, profile.Altitudes[i]); err != nil {
			return err
		}
	}
	return nil
}

// readPoints collects the points from --polyline or the positional arguments.
func readPoints(opts Options) ([]geo.Location, error) {
	if opts.Polyline != "" {
		coords, _, err := polyline.DecodeCoords([]byte(opts.Polyline))
		if err != nil {
			return nil, fmt.Errorf("invalid polyline: %w", err)
		}
		points := make([]geo.Location, len(coords))
		for i, c := range coords {
			points[i] = geo.Location{Latitude: c[0], Longitude: c[1]}
		}
		return points, nil
	}

	if len(opts.Args.Points) == 0 {
		return nil, errNoPoints
	}

	points := make([]geo.Location, 0, len(opts.Args.Points))
	for _, arg := range opts.Args.Points {
		p, err := parseLatLon(arg)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

func parseLatLon(arg string) (geo.Location, error) {
	latStr, lonStr, ok := strings.Cut(arg, ",")
	if !ok {
		return geo.Location{}, fmt.Errorf("invalid point %q: want lat,lon", arg)
	}
	lat, err := cast.ToFloat64E(strings.TrimSpace(latStr))
	if err != nil {
		return geo.Location{}, fmt.Errorf("invalid latitude in %q: %w", arg, err)
	}
	lon, err := cast.ToFloat64E(strings.TrimSpace(lonStr))
	if err != nil {
		return geo.Location{}, fmt.Errorf("invalid longitude in %q: %w", arg, err)
	}

	p := geo.Location{Latitude: lat, Longitude: lon}
	if err := geo.ValidateCoords(p.Latitude, p.Longitude); err != nil {
		return geo.Location{}, fmt.Errorf("invalid point %q: %w", arg, err)
	}
	return p, nil
}
