package preload

// Overlay is the rendering collaborator invoked from Frame while tasks are
// outstanding. Implementations draw the loading screen with whatever drawing
// API the host framework provides; the scheduler itself never renders.
//
// DrawLoading is called once per frame from the host's render thread.
type Overlay interface {
	DrawLoading(stats Stats)
}

// OverlayFunc adapts a plain function to the Overlay interface.
type OverlayFunc func(stats Stats)

// DrawLoading implements Overlay.
func (f OverlayFunc) DrawLoading(stats Stats) { f(stats) }

// nopOverlay is used when the host does not inject an overlay.
type nopOverlay struct{}

func (nopOverlay) DrawLoading(Stats) {}
