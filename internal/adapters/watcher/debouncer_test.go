package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/shelf/internal/adapters/watcher"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recorder) record(paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, paths)
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add("/data/b.yaml")
		time.Sleep(50 * time.Millisecond)
		d.Add("/data/a.yaml")
		time.Sleep(50 * time.Millisecond)
		d.Add("/data/a.yaml")

		synctest.Wait()
		assert.Empty(t, rec.snapshot(), "window restarts on every add")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, [][]string{{"/data/a.yaml", "/data/b.yaml"}}, rec.snapshot())
	})
}

func TestDebouncer_SeparateWindows(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add("/data/a.yaml")
		time.Sleep(150 * time.Millisecond)
		d.Add("/data/a.yaml")
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		assert.Len(t, rec.snapshot(), 2)
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := watcher.NewDebouncer(time.Second, rec.record)

		d.Add("/data/a.yaml")
		d.Flush()
		assert.Equal(t, [][]string{{"/data/a.yaml"}}, rec.snapshot())

		time.Sleep(2 * time.Second)
		synctest.Wait()
		assert.Len(t, rec.snapshot(), 1, "flushed paths are not delivered twice")

		d.Flush()
		assert.Len(t, rec.snapshot(), 1, "empty flush does not call back")
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := watcher.NewDebouncer(10*time.Millisecond, nil)
		d.Add("/data/a.yaml")
		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
		d.Flush()
	})
}
