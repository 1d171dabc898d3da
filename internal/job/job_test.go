package job

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		job  Job
		want string
	}{
		{
			name: "osm map",
			job:  Job{Map: "/home/lukas/Downloads/maps/karlsruhe.osm", K: 5, Seed: 42},
			want: "instance-karlsruhe-seed_42-k5",
		},
		{
			name: "negative K",
			job:  Job{Map: "maps/berlin.osm", K: -1, Seed: 7},
			want: "instance-berlin-seed_7-k-1",
		},
		{
			name: "no extension",
			job:  Job{Map: "/maps/paris", K: 10, Seed: 0},
			want: "instance-paris-seed_0-k10",
		},
		{
			name: "dotted basename keeps inner dots",
			job:  Job{Map: "/maps/baden.wuerttemberg.osm", K: 10, Seed: -3},
			want: "instance-baden.wuerttemberg-seed_-3-k10",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.job.Filename("instance"))
			// Pure: a second call yields the same name.
			assert.Equal(t, tt.job.Filename("instance"), tt.job.Filename("instance"))
		})
	}
}

func TestFilenameIgnoresPMap(t *testing.T) {
	a := Job{Map: "/m/x.osm", PMap: "/m/x.pycgr", K: 5, Seed: 1}
	b := Job{Map: "/m/x.osm", PMap: "/other/x.pycgr", K: 5, Seed: 1}
	assert.Equal(t, a.Filename("p"), b.Filename("p"))
}

func TestPlanCoversCrossProductExactlyOnce(t *testing.T) {
	maps := []MapPair{
		{Map: "/m/karlsruhe.osm", PMap: "/m/karlsruhe.pycgr"},
		{Map: "/m/berlin.osm", PMap: "/m/berlin.pycgr"},
	}
	ks := []int{5, 10, -1}

	for _, n := range []int{0, 1, 6, 7, 8, 14, 23} {
		t.Run(fmt.Sprintf("%d seeds", n), func(t *testing.T) {
			seeds := make([]int64, n)
			for i := range seeds {
				seeds[i] = int64(1000 + i)
			}

			jobs := Plan(seeds, maps, ks)
			require.Len(t, jobs, n*len(maps)*len(ks))

			seen := make(map[Job]int, len(jobs))
			for _, j := range jobs {
				seen[j]++
			}
			for _, m := range maps {
				for _, k := range ks {
					for _, s := range seeds {
						want := Job{Map: m.Map, PMap: m.PMap, K: k, Seed: s}
						assert.Equal(t, 1, seen[want], "job %v", want)
					}
				}
			}
		})
	}
}

func TestPlanBatchesSeedsInSevens(t *testing.T) {
	seeds := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	maps := []MapPair{{Map: "a.osm", PMap: "a.pycgr"}}
	ks := []int{5, 10}

	jobs := Plan(seeds, maps, ks)
	require.Len(t, jobs, 18)

	// First batch: seeds 1..7 for K=5, then 1..7 for K=10.
	for i := 0; i < 7; i++ {
		assert.Equal(t, Job{Map: "a.osm", PMap: "a.pycgr", K: 5, Seed: int64(i + 1)}, jobs[i])
		assert.Equal(t, Job{Map: "a.osm", PMap: "a.pycgr", K: 10, Seed: int64(i + 1)}, jobs[7+i])
	}
	// Second batch holds the remaining two seeds.
	assert.Equal(t, []Job{
		{Map: "a.osm", PMap: "a.pycgr", K: 5, Seed: 8},
		{Map: "a.osm", PMap: "a.pycgr", K: 5, Seed: 9},
		{Map: "a.osm", PMap: "a.pycgr", K: 10, Seed: 8},
		{Map: "a.osm", PMap: "a.pycgr", K: 10, Seed: 9},
	}, jobs[14:])
}

func TestReadSeeds(t *testing.T) {
	seeds, err := ReadSeeds(strings.NewReader("12\n  7 \n\n-4\r\n99999999999\n"))
	require.NoError(t, err)
	assert.Equal(t, []int64{12, 7, -4, 99999999999}, seeds)
}

func TestReadSeedsRejectsGarbage(t *testing.T) {
	_, err := ReadSeeds(strings.NewReader("1\n2\nthree\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), `"three"`)
}

func TestLoadSeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeds.txt")
	require.NoError(t, os.WriteFile(path, []byte("3\n1\n2\n"), 0o644))

	seeds, err := LoadSeeds(path)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, seeds)

	_, err = LoadSeeds(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
