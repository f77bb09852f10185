package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/transcribe-helpers/internal/config"
	"github.com/andresuchdata/transcribe-helpers/internal/domain"
	"github.com/andresuchdata/transcribe-helpers/internal/secrets"
	"github.com/andresuchdata/transcribe-helpers/internal/storage"
	"github.com/andresuchdata/transcribe-helpers/pkg/logger"
)

type contextKey string

const toolkitKey contextKey = "toolkit"

// toolkit carries what every command needs.
type toolkit struct {
	cfg     *config.Config
	store   storage.ObjectStorage
	secrets domain.Secrets
}

func contextWithToolkit(c *cli.Context, tk *toolkit) context.Context {
	return context.WithValue(c.Context, toolkitKey, tk)
}

func fromContext(c *cli.Context) *toolkit {
	tk, _ := c.Context.Value(toolkitKey).(*toolkit)
	return tk
}

func newBucketFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "bucket",
		Aliases: []string{"b"},
		Usage:   "Bucket name (defaults to S3_DEFAULT_BUCKET)",
		EnvVars: []string{"S3_DEFAULT_BUCKET"},
	}
}

func newKeyFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "key",
		Aliases:  []string{"k"},
		Usage:    "Object key",
		Required: required,
	}
}

func initToolkit(c *cli.Context) error {
	cfg := config.Load()
	logger.Configure(c.String("log-level"), cfg.App.LogFormat)

	store, err := storage.New(storage.Backend(cfg.Storage.Backend))
	if err != nil {
		return err
	}

	c.Context = contextWithToolkit(c, &toolkit{cfg: cfg, store: store})
	return nil
}

func loadSecrets(c *cli.Context) error {
	tk := fromContext(c)
	if tk == nil {
		return fmt.Errorf("toolkit not initialized")
	}
	loaded, err := secrets.NewLoader(tk.cfg.LoaderConfig(), tk.store).Load(c.Context)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	tk.secrets = loaded
	return nil
}

// newApp builds the command tree. before runs ahead of every command and must
// place a toolkit in the context.
func newApp(before cli.BeforeFunc) *cli.App {
	return &cli.App{
		Name:  "s3ctl",
		Usage: "Object storage and transcript helpers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: before,
		Commands: []*cli.Command{
			{
				Name:      "put",
				Usage:     "Upload local files with a public-read ACL",
				ArgsUsage: "FILE [FILE...]",
				Flags: []cli.Flag{
					newBucketFlag(),
					newKeyFlag(false),
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Key prefix used when --key is not set",
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Maximum parallel uploads",
						Value: 4,
					},
				},
				Before: loadSecrets,
				Action: runPut,
			},
			{
				Name:   "url",
				Usage:  "Print the public URL of an object",
				Flags:  []cli.Flag{newBucketFlag(), newKeyFlag(true)},
				Action: runURL,
			},
			{
				Name:   "list",
				Usage:  "List the first page of objects in a bucket",
				Flags:  []cli.Flag{newBucketFlag()},
				Before: loadSecrets,
				Action: runList,
			},
			{
				Name:   "delete",
				Usage:  "Delete an object (missing keys are not an error)",
				Flags:  []cli.Flag{newBucketFlag(), newKeyFlag(true)},
				Before: loadSecrets,
				Action: runDelete,
			},
			{
				Name:   "secrets",
				Usage:  "Show which secret names are available",
				Before: loadSecrets,
				Action: runSecrets,
			},
			{
				Name:  "purge",
				Usage: "Remove every entry of the working directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Usage:   "Directory to purge",
						EnvVars: []string{"APP_WORKING_DIR"},
					},
				},
				Action: runPurge,
			},
			{
				Name:      "best",
				Usage:     "Print the words of the most confident transcription alternative",
				ArgsUsage: "ALTERNATIVES_JSON",
				Action:    runBest,
			},
			{
				Name:      "lower",
				Usage:     "Lower-case every string value of a JSON object",
				ArgsUsage: "OBJECT_JSON",
				Action:    runLower,
			},
		},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		logger.Log.Warn().Err(err).Msg("could not load .env file")
	}

	if err := newApp(initToolkit).Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("s3ctl failed")
	}
}
