// Package job describes one invocation of the external solver and builds the
// full set of invocations for a run.
package job

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SeedBatchSize is how many consecutive seeds are grouped before the batch is
// interleaved with every map and K value.
const SeedBatchSize = 7

// MapPair couples an OSM map with its preprocessed pmap companion.
type MapPair struct {
	Map  string
	PMap string
}

// Job is a single (map, pmap, K, seed) invocation. Jobs are values and are
// never mutated after Plan returns them.
type Job struct {
	Map  string
	PMap string
	K    int
	Seed int64
}

// Filename derives the artifact base name:
// <prefix>-<map basename without extension>-seed_<seed>-k<K>.
func (j Job) Filename(prefix string) string {
	base := filepath.Base(j.Map)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s-%s-seed_%d-k%d", prefix, base, j.Seed, j.K)
}

func (j Job) String() string {
	return fmt.Sprintf("map=%s k=%d seed=%d", filepath.Base(j.Map), j.K, j.Seed)
}

// Plan builds every job for the cross product maps × ks × seeds. Seeds are
// consumed in batches of SeedBatchSize; within a batch jobs are ordered by
// map, then K, then seed.
func Plan(seeds []int64, maps []MapPair, ks []int) []Job {
	jobs := make([]Job, 0, len(seeds)*len(maps)*len(ks))
	for start := 0; start < len(seeds); start += SeedBatchSize {
		end := min(start+SeedBatchSize, len(seeds))
		batch := seeds[start:end]

		for _, m := range maps {
			for _, k := range ks {
				for _, seed := range batch {
					jobs = append(jobs, Job{Map: m.Map, PMap: m.PMap, K: k, Seed: seed})
				}
			}
		}
	}
	return jobs
}
