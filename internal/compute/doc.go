// Package compute provides the worker backends used to split per-target
// influence loops.
//
//   - CPU: fans contiguous target ranges out over one goroutine per core
//   - Serial: runs the whole range on the calling goroutine
//
// A backend only ever splits targets. Each target's sum runs on a single
// goroutine in source order, so results do not depend on the backend:
//
//	backend := compute.GetBackend()
//	backend.ParallelFor(n, func(start, end int) {
//		for i := start; i < end; i++ {
//			// accumulate into target i
//		}
//	})
package compute
