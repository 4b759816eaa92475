package app

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/lumen2d/lumen"
	"github.com/lumen2d/lumen/core"
	"github.com/lumen2d/lumen/gpu"
)

// UpdateFunc runs once per frame before the flush. dt is the elapsed
// time in seconds since the previous frame.
type UpdateFunc func(r *gpu.Renderer, dt float64) error

// App owns the window, the WebGPU device and surface, and the renderer.
type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	Renderer *gpu.Renderer
	Log      lumen.Logger

	cfg      Config
	lastTime float64

	FrameCount int
	FPS        float64
	fpsTime    float64
}

func NewApp(cfg Config, log lumen.Logger) *App {
	if log == nil {
		log = lumen.NewNopLogger()
	}
	return &App{cfg: cfg, Log: log}
}

// Init opens the window, brings up the device and surface, and builds
// the renderer.
func (a *App) Init() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(a.cfg.Window.Width, a.cfg.Window.Height, a.cfg.Window.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	a.Window = window

	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))

	a.Adapter, err = a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}

	a.Device, err = a.Adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	a.Queue = a.Device.GetQueue()

	width, height := window.GetFramebufferSize()
	caps := a.Surface.GetCapabilities(a.Adapter)
	format := caps.Formats[0]

	presentMode := wgpu.PresentModeFifo
	if !a.cfg.Window.VSync {
		presentMode = wgpu.PresentModeImmediate
	}
	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: presentMode,
		AlphaMode:   caps.AlphaModes[0],
	}
	a.Surface.Configure(a.Adapter, a.Device, a.Config)

	cc := a.cfg.Renderer.ClearColor
	a.Renderer, err = gpu.NewRenderer(a.Device, format, gpu.RendererOptions{
		Width:        float32(width),
		Height:       float32(height),
		MaxInstances: a.cfg.Renderer.MaxInstances,
		ClearColor:   core.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]},
		Log:          a.Log,
	})
	if err != nil {
		return err
	}

	if a.cfg.Font.Path != "" {
		fa, err := core.NewFontAtlas(a.cfg.Font.Path, a.cfg.Font.Size)
		if err != nil {
			a.Log.Warnf("font atlas unavailable: %v", err)
		} else if err := a.Renderer.SetFontAtlas(fa); err != nil {
			return err
		}
	}

	window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		a.resize(w, h)
	})

	a.lastTime = glfw.GetTime()
	return nil
}

func (a *App) resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	a.Config.Width = uint32(w)
	a.Config.Height = uint32(h)
	a.Surface.Configure(a.Adapter, a.Device, a.Config)
	a.Renderer.Resize(float32(w), float32(h))
}

// Run drives the frame loop until the window closes or update returns
// an error.
func (a *App) Run(update UpdateFunc) error {
	for !a.Window.ShouldClose() {
		glfw.PollEvents()

		now := glfw.GetTime()
		dt := now - a.lastTime
		a.lastTime = now
		a.trackFPS(dt)

		if update != nil {
			if err := update(a.Renderer, dt); err != nil {
				return err
			}
		}

		if err := a.renderFrame(); err != nil {
			a.Log.Errorf("frame: %v", err)
			return err
		}
	}
	return nil
}

func (a *App) renderFrame() error {
	frame, err := a.Surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("surface texture: %w: %v", core.ErrDeviceDispatch, err)
	}
	defer frame.Release()

	view, err := frame.CreateView(nil)
	if err != nil {
		return fmt.Errorf("surface view: %w: %v", core.ErrDeviceDispatch, err)
	}
	defer view.Release()

	if err := a.Renderer.Flush(view); err != nil {
		return err
	}
	a.Surface.Present()
	return nil
}

func (a *App) trackFPS(dt float64) {
	a.FrameCount++
	a.fpsTime += dt
	if a.fpsTime >= 1.0 {
		a.FPS = float64(a.FrameCount) / a.fpsTime
		a.FrameCount = 0
		a.fpsTime = 0
		a.Log.Debugf("fps: %.1f", a.FPS)
	}
}

// Close tears the application down.
func (a *App) Close() {
	if a.Renderer != nil {
		a.Renderer.Release()
	}
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Window != nil {
		a.Window.Destroy()
	}
	glfw.Terminate()
}
