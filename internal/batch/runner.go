package batch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"

	"github.com/ivlev/promoreel/internal/config"
	"github.com/ivlev/promoreel/internal/engine"
	"github.com/ivlev/promoreel/internal/scene"
)

// Renderer is the per-row entry point; *engine.Renderer implements it.
type Renderer interface {
	Render(ctx context.Context, row scene.Row, style config.Style, videoAsset, fontAsset, outputPath string) engine.Result
}

// Job is one row with its resolved asset and output path.
type Job struct {
	Row        scene.Row
	VideoAsset string
	Output     string
}

type Status struct {
	Index  int
	Job    Job
	Result engine.Result
}

// Summary keeps statuses in input order.
type Summary struct {
	Statuses  []Status
	Succeeded int
	Failed    int
}

// Plan resolves every row against the unpacked video directory. Rows whose
// video is missing keep an empty asset and fail inside the renderer.
func Plan(rows []scene.Row, videoDir string, namer *Namer) []Job {
	jobs := make([]Job, len(rows))
	for i, row := range rows {
		jobs[i] = Job{
			Row:        row,
			VideoAsset: FindVideo(videoDir, row.Filename),
			Output:     namer.Path(row.City, row.Filename),
		}
	}
	return jobs
}

type Runner struct {
	Renderer Renderer
	Workers  int
	Log      zerolog.Logger
	// OnDone, when set, is called once per finished row from worker
	// goroutines with the number of rows finished so far.
	OnDone func(s Status, done, total int)
}

// Run renders jobs on an ants pool. A row never takes the batch down: its
// panics and errors end up in its Status.
func (r *Runner) Run(ctx context.Context, jobs []Job, style config.Style, fontAsset string) (Summary, error) {
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) && len(jobs) > 0 {
		workers = len(jobs)
	}

	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p interface{}) {
		r.Log.Error().Interface("panic", p).Msg("row worker panic")
	}))
	if err != nil {
		return Summary{}, fmt.Errorf("worker pool: %w", err)
	}
	defer pool.Release()

	statuses := make([]Status, len(jobs))
	var finished atomic.Int64
	var wg sync.WaitGroup
	for i, job := range jobs {
		i, job := i, job
		statuses[i] = Status{Index: i, Job: job}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			statuses[i].Result = r.renderOne(ctx, job, style, fontAsset)
			n := int(finished.Add(1))
			if r.OnDone != nil {
				r.OnDone(statuses[i], n, len(jobs))
			}
		})
		if err != nil {
			wg.Done()
			statuses[i].Result = engine.Result{Message: err.Error(), Err: err}
		}
	}
	wg.Wait()

	sum := Summary{Statuses: statuses}
	for _, s := range statuses {
		if s.Result.OK {
			sum.Succeeded++
		} else {
			sum.Failed++
		}
	}
	return sum, nil
}

func (r *Runner) renderOne(ctx context.Context, job Job, style config.Style, fontAsset string) (res engine.Result) {
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("%w: panic: %v", engine.ErrRender, p)
			res = engine.Result{Message: err.Error(), Err: err}
		}
	}()
	if err := ctx.Err(); err != nil {
		return engine.Result{Message: "skipped: " + err.Error(), Err: err}
	}
	return r.Renderer.Render(ctx, job.Row, style, job.VideoAsset, fontAsset, job.Output)
}
