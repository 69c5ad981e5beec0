package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vireo-ui/vireo/pkg/dom"
	"github.com/vireo-ui/vireo/pkg/reactive"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

func benchCmd() *cobra.Command {
	var (
		iters int
		seed  int64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run runtime micro-benchmarks",
		Long: `Benchmark the reactive scheduler and the virtual DOM patcher.

Two suites run: a propagation matrix that pushes a source write through
widening and deepening computed chains, and a keyed-list suite that
shuffles lists of increasing size through the patcher.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(iters, seed)
		},
	}

	cmd.Flags().IntVarP(&iters, "iterations", "n", 100, "Samples per cell")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Shuffle seed for the patch suite")

	return cmd
}

func runBench(iters int, seed int64) error {
	printBanner()
	fmt.Println("  bench")
	fmt.Println()

	benchPropagation(iters)
	fmt.Println()
	benchKeyedPatch(iters, seed)
	return nil
}

// readLazy reads a lazy watcher like a computed value: recompute when
// dirty, then hand its deps to the watcher currently evaluating.
func readLazy(w *reactive.Watcher) int {
	if w.Dirty() {
		w.Evaluate()
	}
	if reactive.Tracking() {
		w.DependAll()
	}
	n, _ := w.Value().(int)
	return n
}

// benchPropagation times one source write driving w independent chains
// of h lazy watchers each, with a synchronous effect at the end of
// every chain. This is the shape a component's computed graph takes.
func benchPropagation(iters int) {
	widths := []int{1, 10, 100}
	depths := []int{1, 10, 100}

	tbl := table.NewWriter()
	tbl.SetTitle("Reactive Propagation")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	var updates uint64
	for _, w := range widths {
		for _, h := range depths {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			src := reactive.NewObject(map[string]any{"value": 0})
			watchers := make([]*reactive.Watcher, 0, w*(h+1))
			for i := 0; i < w; i++ {
				last := reactive.NewWatcher(func() any {
					n, _ := src.Get("value").(int)
					return n
				}, nil, reactive.Lazy())
				watchers = append(watchers, last)
				for j := 1; j < h; j++ {
					prev := last
					last = reactive.NewWatcher(func() any {
						return readLazy(prev) + 1
					}, nil, reactive.Lazy())
					watchers = append(watchers, last)
				}

				terminal := last
				watchers = append(watchers, reactive.NewWatcher(func() any {
					return readLazy(terminal)
				}, func(newVal, oldVal any) {}, reactive.Sync()))
			}

			for i := 0; i < iters; i++ {
				v, _ := src.Get("value").(int)
				start := time.Now()
				src.Set("value", v+1)
				tach.AddTime(time.Since(start))
				updates += uint64(w * h)
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{{
				fmt.Sprintf("propagate: %d * %d", w, h),
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
			}})

			for _, watcher := range watchers {
				watcher.Teardown()
			}
		}
	}

	tbl.Render()
	info("%s watcher updates total", humanize.Comma(int64(updates)))
}

// benchKeyedPatch times shuffling keyed lists of increasing size
// through the patcher against an in-memory document.
func benchKeyedPatch(iters int, seed int64) {
	sizes := []int{10, 100, 1000}
	rng := rand.New(rand.NewSource(seed))

	tbl := table.NewWriter()
	tbl.SetTitle("Keyed List Patch")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	var patched uint64
	for _, size := range sizes {
		tach := tachymeter.New(&tachymeter.Config{Size: iters})

		keys := make([]int, size)
		for i := range keys {
			keys[i] = i
		}
		build := func(order []int) *vdom.VNode {
			children := make([]*vdom.VNode, len(order))
			for i, k := range order {
				children[i] = vdom.Li(vdom.Key(k), vdom.Textf("item %d", k))
			}
			return vdom.Ul(children)
		}

		p := vdom.NewPatcher(dom.NewBackend())
		old := build(keys)
		p.Patch(nil, old)

		for i := 0; i < iters; i++ {
			rng.Shuffle(len(keys), func(a, b int) {
				keys[a], keys[b] = keys[b], keys[a]
			})
			next := build(keys)

			start := time.Now()
			p.Patch(old, next)
			tach.AddTime(time.Since(start))

			old = next
			patched += uint64(size)
		}

		calc := tach.Calc()
		tbl.AppendRows([]table.Row{{
			fmt.Sprintf("shuffle: %d keyed rows", size),
			calc.Time.Avg,
			calc.Time.Min,
			calc.Time.P75,
			calc.Time.P99,
			calc.Time.Max,
		}})
	}

	tbl.Render()
	info("%s rows reconciled total", humanize.Comma(int64(patched)))
}
