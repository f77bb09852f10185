package main

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/transcribe-helpers/internal/domain"
	"github.com/andresuchdata/transcribe-helpers/internal/storage"
	"github.com/andresuchdata/transcribe-helpers/internal/textutil"
	"github.com/andresuchdata/transcribe-helpers/internal/transcript"
	"github.com/andresuchdata/transcribe-helpers/internal/workdir"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func bucketFrom(c *cli.Context) (string, error) {
	bucket := strings.TrimSpace(c.String("bucket"))
	if bucket == "" {
		bucket = fromContext(c).cfg.Storage.DefaultBucket
	}
	if bucket == "" {
		return "", fmt.Errorf("--bucket is required")
	}
	return bucket, nil
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runPut(c *cli.Context) error {
	tk := fromContext(c)
	files := c.Args().Slice()
	if len(files) == 0 {
		return fmt.Errorf("at least one file is required")
	}
	if c.IsSet("key") && len(files) > 1 {
		return fmt.Errorf("--key can only be used with a single file")
	}

	bucket, err := bucketFrom(c)
	if err != nil {
		return err
	}

	keys := make([]string, len(files))
	for i, file := range files {
		keys[i] = c.String("key")
		if keys[i] == "" {
			keys[i] = path.Join(c.String("prefix"), filepath.Base(file))
		}
	}

	urls := make([]string, len(files))
	g, ctx := errgroup.WithContext(c.Context)
	g.SetLimit(max(1, c.Int("concurrency")))
	opts := tk.cfg.Storage.Options()
	for i, file := range files {
		g.Go(func() error {
			loc := storage.Location{Bucket: bucket, Key: keys[i]}
			if err := tk.store.Put(ctx, file, loc, tk.secrets, opts); err != nil {
				return fmt.Errorf("upload %s: %w", file, err)
			}
			urls[i] = tk.store.URL(loc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, url := range urls {
		fmt.Fprintln(c.App.Writer, url)
	}
	return nil
}

func runURL(c *cli.Context) error {
	bucket, err := bucketFrom(c)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, storage.PublicURL(storage.Location{Bucket: bucket, Key: c.String("key")}))
	return nil
}

func runList(c *cli.Context) error {
	tk := fromContext(c)
	bucket, err := bucketFrom(c)
	if err != nil {
		return err
	}

	objects, err := tk.store.List(c.Context, bucket, tk.secrets, tk.cfg.Storage.Options())
	if err != nil {
		return err
	}
	return printJSON(c, objects)
}

func runDelete(c *cli.Context) error {
	tk := fromContext(c)
	bucket, err := bucketFrom(c)
	if err != nil {
		return err
	}
	return tk.store.Delete(c.Context, storage.Location{Bucket: bucket, Key: c.String("key")}, tk.secrets, tk.cfg.Storage.Options())
}

func runSecrets(c *cli.Context) error {
	return printJSON(c, fromContext(c).secrets.Names())
}

func runPurge(c *cli.Context) error {
	dir := c.String("dir")
	if dir == "" {
		dir = fromContext(c).cfg.App.WorkingDir
	}

	removed, err := workdir.Purge(dir)
	for _, p := range removed {
		fmt.Fprintln(c.App.Writer, p)
	}
	return err
}

func runBest(c *cli.Context) error {
	data, err := readArgFile(c)
	if err != nil {
		return err
	}

	// Accept both a bare list and a speech-to-text result object.
	var alternatives []domain.Alternative
	if err := json.Unmarshal(data, &alternatives); err != nil {
		var wrapped struct {
			Alternatives []domain.Alternative `json:"alternatives"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return fmt.Errorf("parse alternatives: %w", err)
		}
		alternatives = wrapped.Alternatives
	}

	return printJSON(c, transcript.PickBestAlternative(alternatives))
}

func runLower(c *cli.Context) error {
	data, err := readArgFile(c)
	if err != nil {
		return err
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse object: %w", err)
	}
	return printJSON(c, textutil.LowercaseStringValues(m))
}

// readArgFile reads the file named by the first argument, or stdin for "-".
func readArgFile(c *cli.Context) ([]byte, error) {
	name := c.Args().First()
	switch name {
	case "":
		return nil, fmt.Errorf("a JSON file argument is required")
	case "-":
		return io.ReadAll(os.Stdin)
	default:
		return os.ReadFile(name)
	}
}
