// Command gputext shows a rotating, rendered-on-GPU string whose first
// letters change every frame.
//
// The font file and an optional gputext.yml are read from the directory of
// the executable. Press Escape or close the window to quit.
package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/gogpu/gogpu"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gputext"
	"github.com/gogpu/gputext/gpu"
	"github.com/gogpu/gputext/shaders"
	"github.com/gogpu/gputext/text"
)

func main() {
	if err := run(); err != nil {
		slog.Error("gputext: exiting", "err", err)
		os.Exit(1)
	}
}

func run() error {
	installLogger(slog.LevelInfo)

	dir, err := gputext.ExecutableDir()
	if err != nil {
		return fmt.Errorf("%w: locate executable: %w", gputext.ErrInitialization, err)
	}
	cfg := gputext.LoadSiteConfig(dir)
	if level, err := cfg.Level(); err == nil {
		installLogger(level)
	}
	font, err := text.OpenFont(cfg.FontPath(dir), cfg.Font.Size,
		text.WithSDF(cfg.Font.SDF),
		text.WithWrapAlignment(cfg.Font.Align))
	if err != nil {
		return fmt.Errorf("%w: %w", gputext.ErrInitialization, err)
	}
	slog.Info("gputext: font loaded", "name", font.Name(), "size", font.Size(), "sdf", font.SDF())

	engine := text.NewEngine()
	sc := newScene(cfg, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	label := engine.CreateText(font, sc.initial())

	app := gogpu.NewApp(gogpu.DefaultConfig().
		WithTitle(cfg.Window.Title).
		WithSize(cfg.Window.Width, cfg.Window.Height).
		WithContinuousRender(false))

	var (
		ctx       *gpu.Context
		renderer  *gputext.Renderer
		animToken *gogpu.AnimationToken
		initErr   error
	)

	app.OnDraw(func(dc *gogpu.Context) {
		if initErr != nil {
			return
		}
		if renderer == nil {
			provider := app.GPUContextProvider()
			if provider == nil {
				return
			}
			backend := fmt.Sprint(dc.Backend())
			ctx, renderer, initErr = openRenderer(provider, cfg, backend)
			if initErr != nil {
				app.Quit()
				return
			}
			slog.Info("gputext: backend", "name", backend)
			animToken = app.StartAnimation()
		}

		label.SetString(sc.next())
		w, h, err := label.Size()
		if err != nil {
			slog.Warn("gputext: frame abandoned", "err", fmt.Errorf("%w: %w", gputext.ErrRuntimeCall, err))
			return
		}
		u := sc.uniforms(dc.Width(), dc.Height(), w, h)

		pages := engine.Pages()
		sources := make([]gpu.AtlasSource, len(pages))
		for i, p := range pages {
			sources[i] = p
		}
		if err := ctx.SyncAtlases(sources...); err != nil {
			slog.Warn("gputext: frame abandoned", "err", fmt.Errorf("%w: sync atlases: %w", gputext.ErrRuntimeCall, err))
			return
		}

		ctx.SetTarget(halView(dc.SurfaceView()))
		// Frame logs and recovers from its own failures.
		_, _ = renderer.Frame(label.DrawSequences(), &u)
	})

	app.EventSource().OnKeyPress(func(key gpucontext.Key, _ gpucontext.Modifiers) {
		if key == gpucontext.KeyEscape {
			app.Quit()
		}
	})

	app.OnClose(func() {
		if animToken != nil {
			animToken.Stop()
		}
		if ctx != nil {
			ctx.Destroy()
		}
	})

	if err := app.Run(); err != nil {
		return fmt.Errorf("%w: %w", gputext.ErrInitialization, err)
	}
	return initErr
}

func openRenderer(provider any, cfg gputext.Config, backend string) (*gpu.Context, *gputext.Renderer, error) {
	format, err := shaderFormat(cfg, backend)
	if err != nil {
		return nil, nil, err
	}
	ctx, err := gpu.Open(provider, gpu.Config{
		ShaderFormat: format,
		SDF:          cfg.Font.SDF,
		Logger:       slog.Default(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", gputext.ErrInitialization, err)
	}
	r, err := gputext.NewRenderer(ctx,
		gputext.WithTint(cfg.Tint.Color()),
		gputext.WithClearColor(cfg.Clear.Color()))
	if err != nil {
		ctx.Destroy()
		return nil, nil, err
	}
	return ctx, r, nil
}

// shaderFormat picks the shader format for the named graphics backend,
// honoring a format forced in the configuration.
func shaderFormat(cfg gputext.Config, backend string) (shaders.Format, error) {
	f, err := cfg.Shaders(shaders.FormatsFor(backend)...)
	if err != nil {
		return 0, fmt.Errorf("%w: backend %q: %w", gputext.ErrInitialization, backend, err)
	}
	return f, nil
}

// halView extracts the HAL texture view from the surface view handed out
// by the window.
func halView(v any) hal.TextureView {
	switch v := v.(type) {
	case hal.TextureView:
		return v
	case interface{ HalTextureView() any }:
		tv, _ := v.HalTextureView().(hal.TextureView)
		return tv
	}
	return nil
}

func installLogger(level slog.Level) {
	l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(l)
	gputext.SetLogger(l)
}
