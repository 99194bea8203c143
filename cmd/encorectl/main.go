package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/ewilliams-labs/encore/internal/adapters/spotify"
	"github.com/ewilliams-labs/encore/internal/config"
	"github.com/ewilliams-labs/encore/internal/core/services"
	"github.com/ewilliams-labs/encore/internal/logger"
)

func main() {
	app := &cli.App{
		Name:  "encorectl",
		Usage: "Build Spotify recommendation playlists from the command line.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "token",
				Usage:    "Spotify user access token",
				EnvVars:  []string{"SPOTIFY_ACCESS_TOKEN"},
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log pipeline progress to stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "recommend",
				Usage:     "Create a recommendation playlist from one of your playlists",
				ArgsUsage: "<playlist-id>",
				Action:    recommend,
			},
			{
				Name:   "playlists",
				Usage:  "List the playlists you own",
				Action: listPlaylists,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type env struct {
	svc    *services.Recommender
	client *spotify.Client
	logger *zap.Logger
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	zl := zap.NewNop()
	if c.Bool("verbose") {
		if zl, err = logger.NewLogger("local", cfg.LogLevel); err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.String("token")})
	client := spotify.NewClient(oauth2.NewClient(c.Context, src), cfg.APIBaseURL,
		spotify.WithRetry(cfg.MaxRetries, cfg.RetryBackoff()),
		spotify.WithLogger(zl),
	)

	svc := services.NewRecommender(services.Options{
		SeedCount:    cfg.SeedCount,
		DesiredCount: cfg.DesiredCount,
		FetchLimit:   cfg.RecommendationLimit,
		PlaylistName: cfg.PlaylistName,
	}, zl)

	return &env{svc: svc, client: client, logger: zl}, nil
}

func recommend(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("recommend: expected exactly one playlist id")
	}
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()

	res, err := e.svc.BuildRecommendationPlaylist(c.Context, e.client, c.Args().First())
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Created %s from %q\n", res.PlaylistURL, res.SourceName)
	for i, t := range res.Tracks {
		fmt.Fprintf(c.App.Writer, "%2d. %s - %s\n", i+1, t.Name, t.Artists)
	}
	if res.SkippedRecords > 0 {
		fmt.Fprintf(c.App.Writer, "(%d tracks without audio features were ignored)\n", res.SkippedRecords)
	}
	return nil
}

func listPlaylists(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()

	playlists, err := e.svc.ListPlaylists(c.Context, e.client)
	if err != nil {
		return err
	}
	for _, p := range playlists {
		fmt.Fprintf(c.App.Writer, "%s\t%s\t(%d tracks)\n", p.ID, p.Name, p.TrackCount)
	}
	return nil
}
