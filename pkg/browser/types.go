package browser

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout sets the default timeout for page operations (milliseconds)
	Timeout float64
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Defaults applied when SessionOptions leaves a field zero.
const (
	DefaultTimeout        = 30000.0
	DefaultViewportWidth  = 1920
	DefaultViewportHeight = 1080
)
