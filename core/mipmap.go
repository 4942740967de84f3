package core

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// MipLevelBlit is one step of a generate_mipmaps blit chain: box-downsample
// mip level srcLevel (srcW x srcH) into srcLevel+1 (dstW x dstH, each
// dimension halved and floored at 1). The backend issues this as a blit
// (image copy with scaling) inside an open BlitEncoder.
type MipLevelBlit func(srcLevel int, srcW, srcH uint32, dstLevel int, dstW, dstH uint32)

// GenerateMipmaps records the mip-chain fill for a texture with mipCount
// levels: mipCount-1 chained box-downsample blits, each reading the
// previous level and halving dimensions, so the deepest mip converges on
// the average color of the source.
//
// This only emits the blit chain; it must be called with a BlitEncoder
// already open (BeginBlitPass) so the entry/exit barriers around the whole
// chain are in place.
func GenerateMipmaps(be *BlitEncoder, baseWidth, baseHeight uint32, mipCount int, blit MipLevelBlit) error {
	if be.cmd.OpenPass != PassBlit {
		return ErrNoPassOpen
	}
	if mipCount < 1 {
		return fmt.Errorf("core: generate_mipmaps: mipCount must be >= 1, got %d", mipCount)
	}

	w, h := baseWidth, baseHeight
	for level := 0; level < mipCount-1; level++ {
		nextW, nextH := halveDim(w), halveDim(h)
		blit(level, w, h, level+1, nextW, nextH)
		w, h = nextW, nextH
	}
	return nil
}

func halveDim(d uint32) uint32 {
	if d <= 1 {
		return 1
	}
	return d / 2
}

// GenerateMipmapsCPU is the host-side box-downsample used by the CPU
// conformance backend (and directly by tests checking the deepest mip
// against the source's average color) when there is no GPU blit path to
// exercise. It builds the full mip chain from src via
// golang.org/x/image/draw's approximate bilinear scaler, which for a
// power-of-two halving step is equivalent to box-filtering four texels
// into one.
func GenerateMipmapsCPU(src *image.RGBA, mipCount int) []*image.RGBA {
	levels := make([]*image.RGBA, 0, mipCount)
	levels = append(levels, src)

	cur := src
	for level := 1; level < mipCount; level++ {
		b := cur.Bounds()
		nextW := int(halveDim(uint32(b.Dx())))
		nextH := int(halveDim(uint32(b.Dy())))

		dst := image.NewRGBA(image.Rect(0, 0, nextW, nextH))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), cur, cur.Bounds(), draw.Src, nil)

		levels = append(levels, dst)
		cur = dst
	}
	return levels
}
