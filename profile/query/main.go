// Profiling:
// go build ./profile/query
// go tool pprof -http=":8000" -nodefraction=0.001 ./query cpu.pprof

package main

import (
	"github.com/edwinsyarief/kessoku"
	"github.com/pkg/profile"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

type comp3 struct {
	V int32
}

type comp4 struct {
	V float32
	W float32
}

type comp5 struct {
	V int8
}

type comp6 struct {
	V [4]int16
}

// Declared out of layout order so spawning exercises the canonical signature.
type bundle6 struct {
	C5 comp5
	C3 comp3
	C1 comp1
	C6 comp6
	C4 comp4
	C2 comp2
}

type query6 struct {
	C1 *comp1 `ecs:"mut"`
	C2 *comp2
	C3 *comp3
	C4 *comp4
	C5 *comp5
	C6 *comp6 `ecs:"opt"`
}

func main() {
	count := 50
	iters := 10000
	entities := 100000
	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	run(count, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		w := kessoku.NewWorld(numEntities)
		query := kessoku.NewQuery[query6](w)
		builder := kessoku.NewBuilder[bundle6](w)
		builder.NewEntities(numEntities, bundle6{C2: comp2{V: 1, W: 2}})

		for range iters {
			query.Reset()
			for query.Next() {
				q := query.Get()
				q.C1.V += q.C2.V
				q.C1.W += q.C2.W
			}
		}
	}
}
