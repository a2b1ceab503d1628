package analyzer

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/Zachacious/go-routedoc/internal/config"
	"github.com/Zachacious/go-routedoc/internal/model"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"
)

// Analyzer holds the state for a single analysis run over one package.
type Analyzer struct {
	projectPath string
	pkg         *packages.Package
	directive   string
	logger      *slog.Logger
}

// New loads the package in projectPath. A nil logger discards output.
func New(projectPath string, cfg *config.Config, logger *slog.Logger) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	pcfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedImports | packages.NeedTypes |
			packages.NeedSyntax | packages.NeedTypesInfo,
		Dir: projectPath,
	}
	if overlay := staleOutputOverlay(filepath.Join(projectPath, cfg.Output)); overlay != nil {
		// A previously generated file may reference handlers that no longer
		// exist. It is replaced by an empty file of the same package.
		pcfg.Overlay = overlay
	}
	pkgs, err := packages.Load(pcfg, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		return nil, fmt.Errorf("packages contain errors")
	}
	if len(pkgs) != 1 {
		return nil, fmt.Errorf("expected one package in %s, found %d", projectPath, len(pkgs))
	}
	return &Analyzer{
		projectPath: projectPath,
		pkg:         pkgs[0],
		directive:   cfg.Directive,
		logger:      logger,
	}, nil
}

// Analyze extracts every annotated handler. Files are processed concurrently
// and the handlers are returned in source order.
func (a *Analyzer) Analyze(ctx context.Context) (*model.APIModel, error) {
	a.logger.Debug("analyzing package", "pkg", a.pkg.PkgPath, "files", len(a.pkg.Syntax))

	perFile := make([][]*model.Handler, len(a.pkg.Syntax))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, file := range a.pkg.Syntax {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			handlers, err := a.fileHandlers(file)
			if err != nil {
				return err
			}
			perFile[i] = handlers
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var handlers []*model.Handler
	for _, hs := range perFile {
		handlers = append(handlers, hs...)
	}
	sort.Slice(handlers, func(i, j int) bool {
		pi, pj := handlers[i].Pos, handlers[j].Pos
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		return pi.Offset < pj.Offset
	})

	imports := newImportSet(a.pkg.Types)
	for _, h := range handlers {
		imports.render(h)
	}

	a.logger.Debug("analysis finished", "handlers", len(handlers))
	return &model.APIModel{
		PkgPath:  a.pkg.PkgPath,
		PkgName:  a.pkg.Name,
		Dir:      a.dir(),
		Handlers: handlers,
		Imports:  imports.names,
	}, nil
}

// dir returns the directory of the package's files.
func (a *Analyzer) dir() string {
	if len(a.pkg.GoFiles) > 0 {
		return filepath.Dir(a.pkg.GoFiles[0])
	}
	return a.projectPath
}

// staleOutputOverlay returns a packages overlay that empties the generated
// file at path, or nil if there is no such generated file.
func staleOutputOverlay(path string) map[string][]byte {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	file, err := parser.ParseFile(token.NewFileSet(), path, src, parser.PackageClauseOnly|parser.ParseComments)
	if err != nil || !ast.IsGenerated(file) {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil
	}
	return map[string][]byte{abs: []byte("package " + file.Name.Name + "\n")}
}
