// Package mempool recycles float32 scratch buffers between recognition
// calls. The ONNX backend builds one input tensor per extracted region,
// and region crops share the model height and cluster around a handful of
// widths, so buffer sizes repeat heavily within a run. Pooling the backing
// slices by size class keeps that steady-state churn off the garbage
// collector.
package mempool

import "sync"

// bucketStep is the granularity of pool size classes. Requested sizes are
// rounded up to a shared class so slightly different crop widths reuse the
// same buffers.
const bucketStep = 1024

var pools sync.Map // size class -> *sync.Pool of []float32

func class(n int) int {
	if n <= bucketStep {
		return bucketStep
	}
	return (n + bucketStep - 1) / bucketStep * bucketStep
}

func classPool(cls int) *sync.Pool {
	if p, ok := pools.Load(cls); ok {
		if pool, ok := p.(*sync.Pool); ok {
			return pool
		}
	}
	p, _ := pools.LoadOrStore(cls, &sync.Pool{
		New: func() any { return make([]float32, cls) },
	})
	pool, ok := p.(*sync.Pool)
	if !ok {
		return &sync.Pool{New: func() any { return make([]float32, cls) }}
	}
	return pool
}

// Get returns a []float32 of length n, drawn from the pool for n's size
// class. Contents are not zeroed; callers that do not overwrite every
// element must clear it themselves. Return the slice with Put once nothing
// references it. Get with n <= 0 returns nil.
func Get(n int) []float32 {
	if n <= 0 {
		return nil
	}
	buf, ok := classPool(class(n)).Get().([]float32)
	if !ok || cap(buf) < n {
		buf = make([]float32, class(n))
	}
	return buf[:n]
}

// Put returns a buffer obtained from Get. Passing nil is a no-op. The
// caller must not touch the slice afterwards.
func Put(buf []float32) {
	if cap(buf) == 0 {
		return
	}
	classPool(class(cap(buf))).Put(buf[:cap(buf)]) //nolint:staticcheck // SA6002: slice buffers are the point of this pool
}
