package jpeg

import (
	"sync"

	"github.com/pixelkit/codec/quant"
)

// fence lets a downstream progressive-scan worker block until an upstream
// scan has finished a given MCU index. Each scan's own fence starts at -1;
// the first scan waits on a separate start fence that begins "done" for the
// whole grid, so it is never blocked.
type fence struct {
	mu   sync.Mutex
	cond *sync.Cond
	done int
}

func newFence(initial int) *fence {
	f := &fence{done: initial}
	f.cond = sync.NewCond(&f.mu)
	return f
}

func (f *fence) waitAtLeast(i int) {
	f.mu.Lock()
	for f.done < i {
		f.cond.Wait()
	}
	f.mu.Unlock()
}

func (f *fence) advance(i int) {
	f.mu.Lock()
	if i > f.done {
		f.done = i
	}
	f.cond.Broadcast()
	f.mu.Unlock()
}

// fatal is a set-once error slot shared by every pipeline worker: the first
// worker to observe a corrupt stream records it, and later errors are
// dropped. The failing worker stops and releases its output (closing its
// channel or advancing its fence to the end of the grid); other workers do
// not consult the slot and run to completion. run returns the recorded
// error, so Decode returns no image.
type fatal struct {
	mu  sync.Mutex
	err error
}

func (f *fatal) set(err error) {
	f.mu.Lock()
	if f.err == nil {
		f.err = err
	}
	f.mu.Unlock()
}

func (f *fatal) get() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// coordinator runs the dequantize -> IDCT -> colour stages as three
// goroutines connected by buffered channels of MCU-grid indices, per the
// producer/consumer queue design: each stage ranges over its input channel
// until it is closed, then closes its own output channel in turn.
type coordinator struct {
	g       *grid
	f       *stageInfo
	qtables [4]*quant.Table
	fatal   *fatal
}

// stageInfo carries the handful of FrameHeader fields the pipeline stages
// need without holding the whole parse result.
type stageInfo struct {
	Components []ComponentInfo
	MaxH, MaxV int
}

func newCoordinator(g *grid, comps []ComponentInfo, maxH, maxV int, qtables [4]*quant.Table) *coordinator {
	return &coordinator{
		g:       g,
		f:       &stageInfo{Components: comps, MaxH: maxH, MaxV: maxV},
		qtables: qtables,
		fatal:   &fatal{},
	}
}

const stageQueueDepth = 64

func (c *coordinator) setFatal(err error) {
	c.fatal.set(err)
}

// run starts the three downstream stages and an entropy producer (supplied
// by the caller as produce), and waits for everything to finish. It returns
// the first fatal error recorded by any stage, if any.
func (c *coordinator) run(produce func(dequantC chan<- int)) error {
	dequantC := make(chan int, stageQueueDepth)
	idctC := make(chan int, stageQueueDepth)
	colorC := make(chan int, stageQueueDepth)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		defer close(idctC)
		for idx := range dequantC {
			mcu := c.g.at(idx)
			c.dequantizeMCU(mcu)
			idctC <- idx
		}
	}()

	go func() {
		defer wg.Done()
		defer close(colorC)
		for idx := range idctC {
			mcu := c.g.at(idx)
			idctMCU(mcu)
			colorC <- idx
		}
	}()

	go func() {
		defer wg.Done()
		for idx := range colorC {
			mcu := c.g.at(idx)
			colorConvert(mcu, c.f.MaxH, c.f.MaxV)
		}
	}()

	produce(dequantC)
	wg.Wait()
	return c.fatal.get()
}

func (c *coordinator) dequantizeMCU(mcu *MCU) {
	for ci, block := range mcu.Y {
		mcu.Y[ci] = dequantizeBlock(block, c.qtables[c.f.Components[0].QTableSel])
	}
	if !mcu.Mono {
		mcu.Cb = dequantizeBlock(mcu.Cb, c.qtables[c.f.Components[1].QTableSel])
		mcu.Cr = dequantizeBlock(mcu.Cr, c.qtables[c.f.Components[2].QTableSel])
	}
}

func dequantizeBlock(b CoeffBlock, t *quant.Table) CoeffBlock {
	var wire [64]int32
	copy(wire[:], b[:])
	deq := t.Dequantize(wire)
	var out CoeffBlock
	for i, v := range deq {
		out[i] = int32(v)
	}
	return out
}

func idctMCU(mcu *MCU) {
	for ci := range mcu.Y {
		idctBlock(&mcu.Y[ci])
	}
	if !mcu.Mono {
		idctBlock(&mcu.Cb)
		idctBlock(&mcu.Cr)
	}
}

func idctBlock(b *CoeffBlock) {
	var f quant.Block
	for i, v := range b {
		f[i] = float32(v)
	}
	quant.InverseDCT(&f)
	for i, v := range f {
		if v >= 0 {
			b[i] = int32(v + 0.5)
		} else {
			b[i] = int32(v - 0.5)
		}
	}
}
