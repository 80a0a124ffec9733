package window

// Geometry supplies the viewport, scroll, and screen metrics the window
// getters expose. The rendering pipeline owns the real values; this
// interface is the slice the window reads.
type Geometry interface {
	InnerSize() (width, height int)
	OuterSize() (width, height int)
	ScrollOffset() (x, y float64)
	ScreenSize() (width, height int)
	ScreenPosition() (x, y int)
	DevicePixelRatio() float64
}

// FixedGeometry is a static Geometry, used when no rendering pipeline is
// attached.
type FixedGeometry struct {
	InnerWidth, InnerHeight   int
	OuterWidth, OuterHeight   int
	ScrollX, ScrollY          float64
	ScreenWidth, ScreenHeight int
	ScreenLeft, ScreenTop     int
	PixelRatio                float64
}

// DefaultGeometry returns the fixed 1024x768 metrics fresh windows use.
func DefaultGeometry() *FixedGeometry {
	return &FixedGeometry{
		InnerWidth:   1024,
		InnerHeight:  768,
		OuterWidth:   1024,
		OuterHeight:  768,
		ScreenWidth:  1920,
		ScreenHeight: 1080,
		PixelRatio:   1.0,
	}
}

func (g *FixedGeometry) InnerSize() (int, int)            { return g.InnerWidth, g.InnerHeight }
func (g *FixedGeometry) OuterSize() (int, int)            { return g.OuterWidth, g.OuterHeight }
func (g *FixedGeometry) ScrollOffset() (float64, float64) { return g.ScrollX, g.ScrollY }
func (g *FixedGeometry) ScreenSize() (int, int)           { return g.ScreenWidth, g.ScreenHeight }
func (g *FixedGeometry) ScreenPosition() (int, int)       { return g.ScreenLeft, g.ScreenTop }
func (g *FixedGeometry) DevicePixelRatio() float64        { return g.PixelRatio }
