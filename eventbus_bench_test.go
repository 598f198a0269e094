package kessoku

import (
	"fmt"
	"testing"
)

func BenchmarkEventBusSubscribe(b *testing.B) {
	for _, size := range benchSizes {
		b.Run(benchName(size), func(b *testing.B) {
			bus := &EventBus{}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < size; i++ {
				Subscribe(bus, func(e TestEvent) {})
			}
		})
	}
}

func BenchmarkEventBusPublishNoHandlers(b *testing.B) {
	bus := &EventBus{}
	event := TestEvent{Value: 42}
	b.ReportAllocs()
	for b.Loop() {
		Publish(bus, event)
	}
}

func BenchmarkEventBusPublishOneHandler(b *testing.B) {
	bus := &EventBus{}
	Subscribe(bus, func(e TestEvent) {})
	event := TestEvent{Value: 42}
	b.ReportAllocs()
	for b.Loop() {
		Publish(bus, event)
	}
}

func BenchmarkEventBusPublishManyHandlers(b *testing.B) {
	for _, size := range []int{10, 100, 1000} {
		b.Run(fmt.Sprint(size), func(b *testing.B) {
			bus := &EventBus{}
			for i := 0; i < size; i++ {
				Subscribe(bus, func(e TestEvent) {})
			}
			event := TestEvent{Value: 42}
			b.ReportAllocs()
			for b.Loop() {
				Publish(bus, event)
			}
		})
	}
}

// Spawning with a subscriber pays for one EntitySpawned publish per entity.
func BenchmarkSpawnWithSubscriber(b *testing.B) {
	bus := &EventBus{}
	spawned := 0
	Subscribe(bus, func(EntitySpawned) { spawned++ })
	for b.Loop() {
		b.StopTimer()
		w := NewWorld(10000, WithEventBus(bus))
		b.StartTimer()
		NewBuilder[benchMover](w).NewEntities(10000, benchMover{})
	}
	b.ReportAllocs()
}
