package autodiff

import (
	"github.com/gomlx/exceptions"
)

// ConvOptions carries the optional convolution parameters. The zero value
// is the default configuration: stride 1, no padding.
type ConvOptions struct {
	Stride  int // 0 means 1
	Padding int // symmetric zero padding per spatial side
}

func (o *ConvOptions) normalize(name string) (stride, padding int) {
	stride, padding = 1, 0
	if o != nil {
		if o.Stride != 0 {
			stride = o.Stride
		}
		padding = o.Padding
	}
	if stride < 1 {
		exceptions.Panicf("autodiff: %s: stride must be >= 1, got %d", name, stride)
	}
	if padding < 0 {
		exceptions.Panicf("autodiff: %s: padding must be >= 0, got %d", name, padding)
	}
	return stride, padding
}

// PoolOptions carries the optional pooling parameters. The zero value is
// the default configuration: stride equal to the kernel size, no padding,
// floor rounding of the output extents, and padded positions counted in
// averages.
type PoolOptions struct {
	Stride     []int // nil means the kernel size; one entry broadcasts
	Padding    []int // nil means zeros; one entry broadcasts
	CeilMode   bool  // round the output extents up instead of down
	ExcludePad bool  // divide averages by the in-range count only
}

// poolParams normalizes a kernel spec plus options into per-axis values.
// kernel may have one entry (broadcast over all spatial axes) or exactly
// spatial entries.
func poolParams(name string, kernel []int, opts *PoolOptions, spatial int) (k, s, p []int, ceil, includePad bool) {
	k = broadcastAxes(name, "kernel", kernel, spatial)
	includePad = true
	if opts == nil {
		return k, append([]int(nil), k...), make([]int, spatial), false, true
	}
	if opts.Stride == nil {
		s = append([]int(nil), k...)
	} else {
		s = broadcastAxes(name, "stride", opts.Stride, spatial)
	}
	if opts.Padding == nil {
		p = make([]int, spatial)
	} else {
		p = broadcastAxes(name, "padding", opts.Padding, spatial)
	}
	return k, s, p, opts.CeilMode, !opts.ExcludePad
}

func broadcastAxes(name, what string, v []int, spatial int) []int {
	switch len(v) {
	case 1:
		out := make([]int, spatial)
		for i := range out {
			out[i] = v[0]
		}
		return out
	case spatial:
		return append([]int(nil), v...)
	default:
		exceptions.Panicf("autodiff: %s: %s must have 1 or %d entries, got %d", name, what, spatial, len(v))
	}
	return nil
}
