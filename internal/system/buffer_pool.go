package system

import (
	"image"
	"sync"
)

// ImagePool recycles frames by size. A long-running bot renders the same
// resolution over and over, so a frame per scene would otherwise churn the GC.
type ImagePool struct {
	bySize sync.Map // image.Point -> *sync.Pool
}

var frames = NewImagePool()

func NewImagePool() *ImagePool {
	return &ImagePool{}
}

// GetImage returns a frame covering rect from the shared pool. Its pixels
// are stale; callers overwrite every pixel.
func GetImage(rect image.Rectangle) *image.RGBA {
	return frames.Get(rect)
}

// PutImage hands a frame back to the shared pool.
func PutImage(img *image.RGBA) {
	frames.Put(img)
}

func (p *ImagePool) pool(size image.Point) *sync.Pool {
	if v, ok := p.bySize.Load(size); ok {
		return v.(*sync.Pool)
	}
	v, _ := p.bySize.LoadOrStore(size, &sync.Pool{
		New: func() any {
			return image.NewRGBA(image.Rectangle{Max: size})
		},
	})
	return v.(*sync.Pool)
}

func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	img := p.pool(rect.Size()).Get().(*image.RGBA)
	img.Rect = rect
	return img
}

// Put ignores nil and sizes the pool has never handed out.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	if v, ok := p.bySize.Load(img.Rect.Size()); ok {
		v.(*sync.Pool).Put(img)
	}
}
