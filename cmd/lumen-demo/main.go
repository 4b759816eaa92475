// Command lumen-demo opens a window and draws a mix of quads, points,
// text and debug shapes, most of them offscreen so the culling pass has
// work to do.
package main

import (
	"flag"
	"math"
	"os"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/lumen2d/lumen"
	"github.com/lumen2d/lumen/app"
	"github.com/lumen2d/lumen/core"
	"github.com/lumen2d/lumen/gpu"
)

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	debug := flag.Bool("debug", false, "enable debug logging and overlays")
	flag.Parse()

	log := lumen.NewDefaultLogger("lumen", *debug)

	cfg := app.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = app.LoadConfig(*configPath)
		if err != nil {
			log.Errorf("config: %v", err)
			os.Exit(1)
		}
	}

	a := app.NewApp(cfg, log)
	if err := a.Init(); err != nil {
		log.Errorf("init: %v", err)
		os.Exit(1)
	}
	defer a.Close()

	var elapsed float64
	err := a.Run(func(r *gpu.Renderer, dt float64) error {
		elapsed += dt
		t := float32(elapsed)

		// A grid of quads sweeping across the screen; about half are
		// outside the view at any moment.
		for i := 0; i < 40; i++ {
			for j := 0; j < 20; j++ {
				x := float32(i)*60 - 600 + 400*float32(math.Sin(elapsed*0.3))
				y := float32(j) * 36
				c := core.Color{
					R: 0.2 + 0.8*float32(i)/40,
					G: 0.2 + 0.8*float32(j)/20,
					B: 0.6,
					A: 1,
				}
				tr := core.NewTransform2D().
					WithPosition(x, y).
					WithSize(40, 24)
				if err := r.DrawQuad(tr, c); err != nil {
					return err
				}
			}
		}

		// A ring of points orbiting the center, half dipping offscreen.
		for i := 0; i < 200; i++ {
			a := elapsed + float64(i)*2*math.Pi/200
			pos := mgl32.Vec2{
				640 + 700*float32(math.Cos(a)),
				360 + 300*float32(math.Sin(a)),
			}
			if err := r.DrawPoint(pos, core.Yellow); err != nil {
				return err
			}
		}

		if r.Font() != nil {
			if err := r.DrawText(core.TextLabel{
				Text:     "lumen",
				Pivot:    mgl32.Vec2{640, 360},
				Rotation: t * 0.5,
				Scale:    2,
				Color:    core.White,
			}); err != nil {
				return err
			}
		}

		r.DrawRectOutline(mgl32.Vec2{40, 40}, mgl32.Vec2{200, 120}, core.Green)
		r.DrawCircle(mgl32.Vec2{640, 360}, 250, core.Red)
		return nil
	})
	if err != nil {
		log.Errorf("run: %v", err)
		os.Exit(1)
	}
}
