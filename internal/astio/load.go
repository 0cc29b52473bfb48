package astio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"kestrel/internal/ast"
	"kestrel/internal/source"
	"kestrel/internal/trace"
)

// ReadFile decodes one input: a YAML document or a forest cache.
func ReadFile(path string) ([]*Document, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), CacheExt) {
		return DecodeCache(bytes.NewReader(data))
	}
	doc, err := DecodeYAML(data)
	if err != nil {
		return nil, err
	}
	if doc.Path == "" {
		doc.Path = path
	}
	return []*Document{doc}, nil
}

// ReadFiles decodes paths concurrently. Results keep the order of paths.
func ReadFiles(ctx context.Context, paths []string, jobs int) ([][]*Document, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID
	out := make([][]*Document, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(paths))))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			span := trace.Begin(tracer, trace.ScopeUnit, "load:"+filepath.Base(path), parent)
			docs, err := ReadFile(path)
			span.End("")
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			out[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Register adds the documents to fs, stamps every span with its document
// and returns the combined forest. Documents are registered in order so
// file ids do not depend on load timing.
func Register(fs *source.FileSet, docs []*Document) *ast.Forest {
	forest := &ast.Forest{}
	for _, doc := range docs {
		file := fs.AddVirtual(doc.Path, []byte(doc.Source))
		for _, u := range doc.Units {
			ast.StampFile(u, file)
			forest.Units = append(forest.Units, u)
		}
	}
	return forest
}

// LoadFiles reads every path and registers the result in fs.
func LoadFiles(ctx context.Context, fs *source.FileSet, paths []string, jobs int) (*ast.Forest, []*Document, error) {
	batches, err := ReadFiles(ctx, paths, jobs)
	if err != nil {
		return nil, nil, err
	}
	var docs []*Document
	for _, b := range batches {
		docs = append(docs, b...)
	}
	return Register(fs, docs), docs, nil
}
