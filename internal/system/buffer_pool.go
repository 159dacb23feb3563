package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// FramePool хранит кадры *image.RGBA по размеру. Рендер одного ролика
// крутит несколько кадров по кругу, так что после разгона новых аллокаций
// почти нет. Ролики разного разрешения получают отдельные пулы.
type FramePool struct {
	sizes  sync.Map // image.Rectangle -> *sync.Pool
	allocs atomic.Int64
}

func NewFramePool() *FramePool {
	return &FramePool{}
}

var frames = NewFramePool()

// GetImage returns a frame from the shared pool. Its contents are undefined.
func GetImage(rect image.Rectangle) *image.RGBA {
	return frames.Get(rect)
}

// PutImage returns a frame to the shared pool.
func PutImage(img *image.RGBA) {
	frames.Put(img)
}

func (p *FramePool) Get(rect image.Rectangle) *image.RGBA {
	v, ok := p.sizes.Load(rect)
	if !ok {
		v, _ = p.sizes.LoadOrStore(rect, &sync.Pool{New: func() any {
			p.allocs.Add(1)
			return image.NewRGBA(rect)
		}})
	}
	return v.(*sync.Pool).Get().(*image.RGBA)
}

// Put drops frames whose size was never requested through Get.
func (p *FramePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	if v, ok := p.sizes.Load(img.Rect); ok {
		v.(*sync.Pool).Put(img)
	}
}

// FrameAllocs is how many frames the shared pool has allocated.
func FrameAllocs() int64 {
	return frames.Allocs()
}

// Allocs is how many frames the pool has had to allocate so far.
func (p *FramePool) Allocs() int64 {
	return p.allocs.Load()
}
