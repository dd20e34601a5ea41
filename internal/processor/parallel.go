package processor

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/sbwhitecap/tqdm"
	"github.com/sbwhitecap/tqdm/iterators"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"imagesplit/internal/utils"
)

// copyJob は1ファイル分のコピー
type copyJob struct {
	src    string
	dstDir string
	task   string
	split  string
}

func (j copyJob) dst() string {
	return filepath.Join(j.dstDir, filepath.Base(j.src))
}

// copyResult は copyJob の結果 (done=false は未実行)
type copyResult struct {
	done  bool
	bytes int64
	err   error
}

// batchRunner はコピー群を順次または ants のプールで実行する
type batchRunner struct {
	fs       afero.Fs
	workers  int
	progress bool
	log      *zap.Logger
}

// run は jobs を実行し jobs と同じ順の結果を返す
// 出力先が同じジョブは1つのタスクにまとめて順に実行するので後のジョブが勝つ
// ctx がキャンセルされると未着手のジョブは done=false のまま残る
func (b *batchRunner) run(ctx context.Context, jobs []copyJob, desc string) []copyResult {
	results := make([]copyResult, len(jobs))
	if len(jobs) == 0 {
		return results
	}
	groups := groupByDestination(jobs)

	var pool *ants.Pool
	if b.workers > 1 {
		p, err := ants.NewPool(b.workers)
		if err != nil {
			b.log.Warn("ワーカープールの作成に失敗、順次処理します", zap.Error(err))
		} else {
			pool = p
			defer pool.Release()
		}
	}

	var wg sync.WaitGroup
	exec := func(group []int) {
		for _, i := range group {
			results[i] = b.copyOne(jobs[i])
		}
	}
	dispatch := func(g int) (brk bool) {
		if ctx.Err() != nil {
			return true
		}
		if pool == nil {
			exec(groups[g])
			return false
		}
		wg.Add(1)
		group := groups[g]
		if err := pool.Submit(func() {
			defer wg.Done()
			exec(group)
		}); err != nil {
			wg.Done()
			exec(group)
		}
		return false
	}

	if b.progress {
		err := tqdm.With(iterators.Interval(0, len(groups)), desc, func(v interface{}) (brk bool) {
			return dispatch(v.(int))
		})
		if err != nil {
			b.log.Warn("進捗表示に失敗", zap.Error(err))
		}
	} else {
		for g := range groups {
			if dispatch(g) {
				break
			}
		}
	}

	wg.Wait()
	return results
}

func (b *batchRunner) copyOne(job copyJob) copyResult {
	if err := b.fs.MkdirAll(job.dstDir, 0755); err != nil {
		return copyResult{done: true, err: err}
	}
	n, err := utils.CopyFile(b.fs, job.src, job.dst())
	return copyResult{done: true, bytes: n, err: err}
}

// groupByDestination は出力先ごとにジョブ番号をまとめる (初出順)
func groupByDestination(jobs []copyJob) [][]int {
	index := make(map[string]int, len(jobs))
	var groups [][]int
	for i, job := range jobs {
		dst := job.dst()
		g, ok := index[dst]
		if !ok {
			g = len(groups)
			index[dst] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}
