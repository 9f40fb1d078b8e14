// Package process implements stylesheet processing command: finding
// stylesheets in files, directories and archives, resolving range notation
// and writing results.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"rangecss/archive"
	"rangecss/css"
	"rangecss/fluid"
	"rangecss/state"
)

// StdinName is source argument requesting stylesheet from standard input.
const StdinName = "-"

// Flags returns flags understood by Run.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "continue even if destination exists, overwrite files"},
		&cli.BoolFlag{Name: "nodirs", Aliases: []string{"nd"}, Usage: "when producing output do not keep input directory structure"},
		&cli.StringFlag{Name: "force-zip-cp", Usage: "force `ENCODING` for ALL file names in archives (see IANA.org for character set names)"},
		&cli.StringFlag{Name: "prefix", Usage: "name of the range `FUNCTION` (overrides configuration)"},
		&cli.FloatFlag{Name: "root-rem", Usage: "root font size in `PX` used for px to rem conversion"},
		&cli.StringFlag{Name: "screen-min", Usage: "default minimum screen `SIZE` (e.g. 48rem)"},
		&cli.StringFlag{Name: "screen-max", Usage: "default maximum screen `SIZE` (e.g. 100rem)"},
		&cli.BoolFlag{Name: "no-clamp", Usage: "always produce @media fallback instead of clamp()"},
	}
}

// Run is the action of process command.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("process")

	if err := applyFlags(cmd, &env.Options); err != nil {
		return err
	}
	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	resolver, err := env.Resolver()
	if err != nil {
		return fmt.Errorf("unable to prepare range resolver: %w", err)
	}
	r := &runner{env: env, log: log, resolver: resolver, parser: css.NewParser(env.Log)}

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src == StdinName {
		return r.processStream(cmd.Root().Reader, cmd.Root().Writer, cmd.Args().Get(1))
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Int("stylesheets", r.count),
			zap.Int("failed", r.failed),
			zap.Int("ranges", r.stats.Declarations),
			zap.Int("clamped", r.stats.Fluid),
			zap.Int("fallbacks", r.stats.Fallback),
			zap.Int("unresolved", r.stats.Unresolved))
	}(time.Now())

	if err := r.process(ctx, src, dst); err != nil {
		return err
	}
	return r.errs
}

// applyFlags overrides configured resolver options with explicitly set
// command line flags.
func applyFlags(cmd *cli.Command, opts *fluid.Options) error {
	if cmd.IsSet("prefix") {
		opts.Prefix = cmd.String("prefix")
	}
	if cmd.IsSet("root-rem") {
		opts.RootRem = cmd.Float("root-rem")
	}
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"screen-min", &opts.ScreenMin},
		{"screen-max", &opts.ScreenMax},
	} {
		if !cmd.IsSet(f.name) {
			continue
		}
		v := cmd.String(f.name)
		if d, err := fluid.ParseDimension(v); err != nil || d.IsRatio() {
			return fmt.Errorf("--%s requires size with unit, got %q", f.name, v)
		}
		*f.dst = v
	}
	if cmd.Bool("no-clamp") {
		opts.Clamp = false
	}
	return nil
}

// runner keeps state of a single Run.
type runner struct {
	env      *state.LocalEnv
	log      *zap.Logger
	resolver *fluid.Resolver
	parser   *css.Parser

	stats  fluid.Stats
	count  int
	failed int
	errs   error
}

// fail records failure of a single stylesheet, processing continues.
func (r *runner) fail(src string, err error) {
	r.failed++
	r.errs = multierr.Append(r.errs, fmt.Errorf("%s: %w", src, err))
	r.log.Error("Unable to process stylesheet", zap.String("source", src), zap.Error(err))
}

// process determines the input type (directory, archive, archive with path
// inside or single file) and processes accordingly.
func (r *runner) process(ctx context.Context, src, dst string) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			return r.processDir(ctx, head, dst)
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := r.processArchive(ctx, head, filepath.ToSlash(tail), "", dst); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			return nil
		}

		stylesheet, err := isStylesheetFile(head)
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if stylesheet && len(tail) == 0 {
			r.processFile(head, filepath.Base(head), dst)
			return nil
		}
		return fmt.Errorf("input was not recognized as stylesheet (%s)", head)
	}
	return fmt.Errorf("input source was not found (%s)", src)
}

func naturalCompare(a, b string) int {
	switch {
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	}
	return 0
}

// processDir walks directory tree in natural name order finding stylesheets
// and archives.
func (r *runner) processDir(ctx context.Context, dir, dst string) error {
	count := r.count
	defer func() {
		if count == r.count {
			r.log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()
	return r.walkDir(ctx, dir, "", dst)
}

func (r *runner) walkDir(ctx context.Context, root, rel, dst string) error {
	entries, err := os.ReadDir(filepath.Join(root, rel))
	if err != nil {
		r.log.Warn("Skipping path", zap.String("path", filepath.Join(root, rel)), zap.Error(err))
		return nil
	}
	slices.SortStableFunc(entries, func(a, b fs.DirEntry) int {
		return naturalCompare(a.Name(), b.Name())
	})

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := filepath.Join(rel, e.Name())
		switch {
		case e.IsDir():
			if err := r.walkDir(ctx, root, name, dst); err != nil {
				return err
			}
		case e.Type().IsRegular():
			r.processDirEntry(ctx, filepath.Join(root, name), name, dst)
		}
	}
	return nil
}

func (r *runner) processDirEntry(ctx context.Context, path, rel, dst string) {
	isArchive, err := isArchiveFile(path)
	if err != nil {
		r.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
		return
	}
	if isArchive {
		if err := r.processArchive(ctx, path, "", filepath.Dir(rel), dst); err != nil {
			r.count++
			r.fail(rel, err)
		}
		return
	}

	stylesheet, err := isStylesheetFile(path)
	if err != nil {
		r.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
		return
	}
	if !stylesheet {
		r.log.Debug("Skipping file, not recognized as stylesheet or archive", zap.String("file", path))
		return
	}
	r.processFile(path, rel, dst)
}

// processArchive processes stylesheets inside archive under pathIn, pathOut
// is location of the archive relative to the original source.
func (r *runner) processArchive(ctx context.Context, path, pathIn, pathOut, dst string) error {
	count := r.count
	err := archive.Walk(path, pathIn, func(e *archive.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		src := filepath.Join(pathOut, filepath.FromSlash(e.Name))
		data, err := e.ReadAll()
		if err != nil {
			r.count++
			r.fail(src, err)
			return nil
		}
		if !isText(data) {
			r.log.Debug("Skipping file, not recognized as stylesheet", zap.String("archive", e.Archive), zap.String("file", e.Name))
			return nil
		}
		r.processStylesheet(data, src, dst)
		return nil
	}, archive.WithCodePage(r.env.CodePage), archive.WithMatch(isStylesheetName))
	if err == nil && count == r.count {
		r.log.Debug("Nothing to process", zap.String("archive", path))
	}
	return err
}

func (r *runner) processFile(path, src, dst string) {
	data, err := os.ReadFile(path)
	if err != nil {
		r.count++
		r.fail(src, err)
		return
	}
	if err := r.env.Rpt.StoreCopy(reportName(src, "source"), path); err != nil {
		r.log.Debug("Unable to store source in report", zap.String("file", path), zap.Error(err))
	}
	r.processStylesheet(data, src, dst)
}

// processStylesheet processes single stylesheet. "src" is part of the source
// path (always including file name) relative to the original path. When
// actual file was specified it will be just base file name. When looking
// inside archive or directory it will be relative path inside archive or
// directory. "dst" is the destination directory.
func (r *runner) processStylesheet(data []byte, src, dst string) {
	r.count++

	outputName := buildOutputPath(src, dst, r.env)
	r.log.Info("Stylesheet processing starting", zap.String("from", src))
	defer func(start time.Time) {
		r.log.Debug("Stylesheet processing ended", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
	}(time.Now())

	if err := checkDestination(outputName, r.env.Overwrite); err != nil {
		r.fail(src, err)
		return
	}
	out, err := r.transform(data, src)
	if err != nil {
		r.fail(src, err)
		return
	}
	if err := writeFile(outputName, out); err != nil {
		r.fail(src, err)
	}
}

// processStream reads stylesheet from in and writes result to out or to file
// dst when it is specified.
func (r *runner) processStream(in io.Reader, out io.Writer, dst string) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("unable to read standard input: %w", err)
	}
	result, err := r.transform(data, "stdin.css")
	if err != nil {
		return err
	}
	if len(dst) == 0 {
		_, err = out.Write(result)
		return err
	}
	if err := checkDestination(dst, r.env.Overwrite); err != nil {
		return err
	}
	return writeFile(dst, result)
}

// transform decodes, parses and resolves a single stylesheet returning its
// new text. Intermediate trees are stored in debug report.
func (r *runner) transform(data []byte, src string) ([]byte, error) {
	text, err := css.Decode(data)
	if err != nil {
		return nil, err
	}

	sheet := r.parser.Parse(text, src)
	for _, w := range sheet.Warnings {
		r.log.Warn("Stylesheet problem skipped", zap.String("source", src), zap.String("warning", w))
	}
	r.log.Debug("Stylesheet parsed", zap.String("source", src), zap.Int("items", len(sheet.Items)), zap.Int("rules", len(sheet.Rules())))
	r.env.Rpt.StoreData(reportName(src, "parsed.txt"), []byte(sheet.Dump()))

	stats, err := r.resolver.Process(sheet)
	r.stats.Declarations += stats.Declarations
	r.stats.Fluid += stats.Fluid
	r.stats.Fallback += stats.Fallback
	r.stats.Unresolved += stats.Unresolved
	if err != nil {
		return nil, err
	}
	r.env.Rpt.StoreData(reportName(src, "resolved.txt"), []byte(sheet.Dump()))

	var buf bytes.Buffer
	if _, err := sheet.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func reportName(src, kind string) string {
	return path.Join("stylesheets", strings.Join(splitPath(src), "/")) + "." + kind
}

// checkDestination makes sure output file could be written.
func checkDestination(name string, overwrite bool) error {
	if _, err := os.Stat(name); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}

// writeFile replaces file atomically, so source could be overwritten in
// place.
func writeFile(name string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*")
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, os.Remove(tmp.Name()))
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), name)
}
