// Package transform runs stylesheets through the CSS transform pipeline and
// persists the results. Per-stylesheet work fans out across a worker pool;
// all transforms and file writes complete before the caller proceeds to
// rewrite the DOM.
package transform

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"

	"github.com/perfkit/csslim/models"
	"github.com/perfkit/csslim/pkg/caching"
	"github.com/perfkit/csslim/pkg/storage"
	"github.com/perfkit/csslim/pkg/workspace"
)

// Pipeline transforms CSS text. The from/to paths identify the source and
// destination files for pipelines that care about file context.
type Pipeline interface {
	Transform(cssText, from, to string) (string, error)
}

// PipelineError marks a stylesheet the pipeline rejected. The stylesheet is
// skipped; the pass continues.
type PipelineError struct {
	Src string
	Err error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("css pipeline failed for %s: %v", e.Src, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Minifier is the default Pipeline, backed by tdewolff CSS minification.
type Minifier struct {
	m *minify.M
}

func NewMinifier() *Minifier {
	m := minify.New()
	m.AddFunc("text/css", mincss.Minify)
	return &Minifier{m: m}
}

func (mn *Minifier) Transform(cssText, from, to string) (string, error) {
	out, err := mn.m.String("text/css", cssText)
	if err != nil {
		return "", fmt.Errorf("minify failed: %w", err)
	}
	return out, nil
}

// Job is one stylesheet record to transform.
type Job struct {
	Record models.ClassificationRecord
}

// Result holds the outcome of one transformed stylesheet.
type Result struct {
	Record    models.ClassificationRecord
	DestPath  string
	Error     error
	ErrorType string
}

// Options configures a transform run.
type Options struct {
	Workers int
	Timeout time.Duration  // per-stylesheet; 0 disables
	Cache   *caching.Cache // may be nil
}

// RunAll transforms every same-site record (full content and used content),
// writes the transformed full content to its destination path, and returns
// one result per input record. Cross-site records pass through untouched.
// Failures are isolated per stylesheet and reported in the result, never
// returned as an error for the whole run.
func RunAll(logger *slog.Logger, records []models.ClassificationRecord, ws *workspace.Workspace, pipeline Pipeline, store *storage.Storage, opts Options) []Result {
	workerCount := opts.Workers
	if workerCount <= 0 {
		workerCount = 4
	}

	var wg sync.WaitGroup
	jobs := make(chan Job, len(records))
	results := make(chan Result, len(records))

	for w := 1; w <= workerCount; w++ {
		wg.Add(1)
		go worker(w, logger, ws, pipeline, store, opts, &wg, jobs, results)
	}

	for _, rec := range records {
		jobs <- Job{Record: rec}
	}
	close(jobs)

	wg.Wait()
	close(results)

	all := make([]Result, 0, len(records))
	for result := range results {
		all = append(all, result)
	}
	return all
}

// worker processes jobs from the jobs channel and sends results to the
// results channel.
func worker(id int, logger *slog.Logger, ws *workspace.Workspace, pipeline Pipeline, store *storage.Storage, opts Options, wg *sync.WaitGroup, jobs <-chan Job, results chan<- Result) {
	defer wg.Done()
	for job := range jobs {
		rec := job.Record

		if !rec.IsFromSameSite {
			// Cross-origin sheets are never fetched, transformed or written.
			results <- Result{Record: rec}
			continue
		}

		logger.Debug("Transforming stylesheet", "worker", id, "src", rec.Src)
		result := transformOne(rec, ws, pipeline, store, opts)
		if result.Error != nil {
			logger.Warn("Stylesheet skipped", "worker", id, "src", rec.Src, "error_type", result.ErrorType, "error", result.Error)
		}
		results <- result
	}
}

func transformOne(rec models.ClassificationRecord, ws *workspace.Workspace, pipeline Pipeline, store *storage.Storage, opts Options) Result {
	result := Result{Record: rec}

	from, err := ws.SourcePath(rec.Src)
	if err != nil {
		result.Error = err
		result.ErrorType = "path_error"
		return result
	}
	to, err := ws.DestPath(rec.Src)
	if err != nil {
		result.Error = err
		result.ErrorType = "path_error"
		return result
	}

	content, cached, err := transformContent(rec, pipeline, from, to, opts)
	if err != nil {
		result.Error = &PipelineError{Src: rec.Src, Err: err}
		result.ErrorType = "transform_error"
		return result
	}

	usedContent := rec.UsedContent
	if usedContent != "" {
		usedContent, err = runPipeline(pipeline, usedContent, from, to, opts.Timeout)
		if err != nil {
			result.Error = &PipelineError{Src: rec.Src, Err: err}
			result.ErrorType = "transform_error"
			return result
		}
	}

	if err := store.SaveFile(to, []byte(content)); err != nil {
		result.Error = err
		result.ErrorType = "save_error"
		return result
	}

	if opts.Cache != nil && !cached {
		_ = opts.Cache.Set(rec.Content, []byte(content))
	}

	result.Record.Content = content
	result.Record.UsedContent = usedContent
	result.DestPath = to
	return result
}

// transformContent runs the full content through the pipeline, consulting the
// cache first. Returns the output and whether it came from cache.
func transformContent(rec models.ClassificationRecord, pipeline Pipeline, from, to string, opts Options) (string, bool, error) {
	if opts.Cache != nil {
		if data, ok := opts.Cache.Get(rec.Content); ok {
			return string(data), true, nil
		}
	}
	out, err := runPipeline(pipeline, rec.Content, from, to, opts.Timeout)
	return out, false, err
}

// runPipeline invokes the pipeline, bounding it by the per-stylesheet timeout.
// A timeout is reported the same way as a pipeline rejection.
func runPipeline(pipeline Pipeline, cssText, from, to string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		return pipeline.Transform(cssText, from, to)
	}

	type outcome struct {
		out string
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		out, err := pipeline.Transform(cssText, from, to)
		done <- outcome{out: out, err: err}
	}()

	select {
	case o := <-done:
		return o.out, o.err
	case <-time.After(timeout):
		return "", fmt.Errorf("transform timed out after %s", timeout)
	}
}
