package extract

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/walteh/downson/pkg/config"
	"github.com/walteh/downson/pkg/converter"
	"github.com/walteh/downson/pkg/diagnostic"
	"github.com/walteh/downson/pkg/downson"
	"github.com/walteh/downson/pkg/failure"
	"github.com/walteh/downson/pkg/finder"
	"github.com/walteh/downson/pkg/settings"
	"github.com/walteh/downson/pkg/store"
)

type Handler struct {
	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	format      string // json, yaml
	diagnostics string // text, json, yaml
	configFile  string
	dbPath      string
	silent      bool
	strict      bool
	patterns    []string
	colorize    bool
}

type document struct {
	path    string
	content []byte
}

func NewExtractCommand() *cobra.Command {
	me := &Handler{
		fs:       afero.NewOsFs(),
		colorize: !color.NoColor,
	}

	cmd := &cobra.Command{
		Use:   "extract [files, directories or globs...]",
		Short: "extract the data overlay of markdown documents",
		Long: `extract runs every given document through the extraction pipeline and
prints a map from document path to extracted data. Directories are searched
with --pattern; "-" reads one document from stdin. Failures are reported on
stderr.`,
	}

	cmd.Flags().String("format", "json", "output format of the extracted data: json, yaml")
	cmd.Flags().String("diagnostics", "text", "format of the failure report: text, json, yaml")
	cmd.Flags().String("config", "", "types and markdown options file (.hcl, .yaml)")
	cmd.Flags().String("db", "", "sqlite database the results are saved to")
	cmd.Flags().Bool("silent", false, "degrade hard errors to empty results")
	cmd.Flags().Bool("strict", false, "fail when a document has interpretation errors")
	cmd.Flags().StringSlice("pattern", finder.DefaultPatterns, "doublestar patterns used inside directories")

	cmd.Args = cobra.MinimumNArgs(1)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		v, err := settings.Bind(cmd)
		if err != nil {
			return err
		}

		me.format = v.GetString("format")
		me.diagnostics = v.GetString("diagnostics")
		me.configFile = v.GetString("config")
		me.dbPath = v.GetString("db")
		me.silent = v.GetBool("silent")
		me.strict = v.GetBool("strict")
		me.patterns = v.GetStringSlice("pattern")
		me.stdin = cmd.InOrStdin()
		me.stdout = cmd.OutOrStdout()
		me.stderr = cmd.ErrOrStderr()

		return me.Run(cmd.Context(), args)
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, args []string) error {
	runID := uuid.NewString()
	logger := zerolog.Ctx(ctx).With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	switch me.format {
	case "", "json", "yaml", "yml":
	default:
		return errors.Errorf("unknown output format %q", me.format)
	}

	cfg, err := config.LoadOrDefault(me.fs, me.configFile)
	if err != nil {
		return err
	}

	reg, err := cfg.Registry()
	if err != nil {
		return errors.Errorf("applying config types: %w", err)
	}

	formatter, err := diagnostic.NewFormatter(me.diagnostics, me.colorize)
	if err != nil {
		return err
	}

	docs, err := me.resolve(ctx, args)
	if err != nil {
		return err
	}

	var db *store.Store
	if me.dbPath != "" {
		db, err = store.Open(me.dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	opts := []downson.Option{
		downson.WithRegistry(reg),
		downson.WithMarkdownOptions(cfg.MarkdownOptions()),
		downson.WithSilent(me.silent || cfg.Silent),
	}

	// 🔄 extract every document in parallel, report in argument order
	results := make([]*downson.Result, len(docs))
	errs := make([]error, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			results[i], errs[i] = downson.Extract(gctx, string(doc.content), opts...)
			return nil
		})
	}
	_ = g.Wait()

	var merr *multierror.Error
	out := make(map[string]any, len(docs))

	for i, doc := range docs {
		res := results[i]
		if errs[i] != nil {
			merr = multierror.Append(merr, errors.Errorf("%s: %w", doc.path, errs[i]))
			continue
		}

		out[doc.path] = res.Data

		diags := diagnostic.Generate(ctx, doc.path, res.Failures)
		if err := diagnostic.Write(me.stderr, formatter, diags); err != nil {
			return err
		}

		if db != nil {
			rec := &store.Record{
				Path:        doc.path,
				RunID:       runID,
				Data:        res.Data,
				Failures:    len(res.Failures),
				Errors:      res.Failures.Count(failure.InterpretationError),
				ExtractedAt: time.Now(),
			}
			if err := db.Save(ctx, rec); err != nil {
				merr = multierror.Append(merr, err)
			}
		}

		if me.strict && res.HasInterpretationErrors {
			merr = multierror.Append(merr, errors.Errorf("%s: %w", doc.path, res.Failures.Err()))
		}
	}

	if err := me.write(out); err != nil {
		return err
	}

	logger.Debug().Int("documents", len(docs)).Msg("extract finished")

	return merr.ErrorOrNil()
}

// resolve turns the arguments into documents. A directory is searched with
// the configured patterns, an argument with glob characters is matched from
// the working directory and "-" is stdin.
func (me *Handler) resolve(ctx context.Context, args []string) ([]*document, error) {
	f := finder.NewFinder(me.fs)
	docs := make([]*document, 0, len(args))
	seen := map[string]bool{}

	add := func(path string, content []byte) {
		if seen[path] {
			return
		}
		seen[path] = true
		docs = append(docs, &document{path: path, content: content})
	}

	for _, arg := range args {
		if arg == "-" {
			content, err := io.ReadAll(me.stdin)
			if err != nil {
				return nil, errors.Errorf("reading stdin: %w", err)
			}
			add("-", content)
			continue
		}

		stat, statErr := me.fs.Stat(arg)
		switch {
		case statErr == nil && stat.IsDir():
			files, err := f.Find(ctx, arg, me.patterns)
			if err != nil {
				return nil, err
			}
			for _, file := range files {
				add(file.Path, file.Content)
			}
		case statErr == nil:
			content, err := afero.ReadFile(me.fs, arg)
			if err != nil {
				return nil, errors.Errorf("reading %s: %w", arg, err)
			}
			add(arg, content)
		case os.IsNotExist(statErr) && hasMeta(arg):
			files, err := f.Find(ctx, ".", []string{arg})
			if err != nil {
				return nil, err
			}
			if len(files) == 0 {
				return nil, errors.Errorf("no documents match %q", arg)
			}
			for _, file := range files {
				add(file.Path, file.Content)
			}
		default:
			return nil, errors.Errorf("reading %s: %w", arg, statErr)
		}
	}

	return docs, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

func (me *Handler) write(out map[string]any) error {
	switch me.format {
	case "", "json":
		enc := json.NewEncoder(me.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(converter.Portable(out)); err != nil {
			return errors.Errorf("encoding json: %w", err)
		}
	case "yaml", "yml":
		enc := yaml.NewEncoder(me.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return errors.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return errors.Errorf("encoding yaml: %w", err)
		}
	default:
		return errors.Errorf("unknown output format %q", me.format)
	}
	return nil
}
