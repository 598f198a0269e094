// Profiling:
// go build ./profile/entities
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

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

type name string

type bundle2 struct {
	C1 comp1
	C2 comp2
}

type query2 struct {
	C1 *comp1 `ecs:"mut"`
	C2 *comp2
}

func main() {
	count := 50
	iters := 10000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(count, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		w := kessoku.NewWorld(numEntities)
		query := kessoku.NewQuery[query2](w)
		builder := kessoku.NewBuilder[bundle2](w)
		entities := make([]kessoku.Entity, 0, numEntities)

		for i := range iters {
			builder.NewEntities(numEntities, bundle2{C2: comp2{V: 1}})
			entities = entities[:0]
			for e, q := range query.All() {
				entities = append(entities, e)
				q.C1.V += q.C2.V
				q.C1.W += q.C2.W
			}
			// Every tenth round some entities change archetype on the way out.
			if i%10 == 0 {
				for _, e := range entities[:len(entities)/2] {
					kessoku.Set(w, e, name("tagged"))
				}
			}
			w.RemoveEntities(entities)
		}
	}
}
