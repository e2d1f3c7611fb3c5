// pipeview - interactive viewer for point, line, pipe and mesh geometry.
//
// Controls:
//
//	Right drag   - Orbit
//	Middle drag  - Pan
//	WASD/arrows  - Pan
//	Scroll       - Zoom
//	R            - Reset view
//	0-5          - Render mode (all, points, pipes, lines, meshes, polygons)
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/smasonuk/pipeview"
	"github.com/smasonuk/pipeview/viewer"
	"github.com/spf13/cobra"
)

var (
	configPath string
	watch      bool
	listenAddr string
	pipeSides  uint32
	fitOnLoad  bool
	verbose    bool
)

func main() {
	cmd := &cobra.Command{
		Use:   "pipeview [geometry.json]",
		Short: "3D geometry viewer",
		Long: `pipeview - 3D geometry viewer

Shows the points, lines, pipes, meshes and polygons of a JSON geometry
document. Without a file a demo scene is shown.

Controls:
  Right drag   - Orbit
  Middle drag  - Pan
  WASD/arrows  - Pan
  Scroll       - Zoom
  R            - Reset view
  0-5          - Render mode (all, points, pipes, lines, meshes, polygons)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return run(cfg, path)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a TOML config file")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the geometry file when it changes")
	cmd.Flags().StringVar(&listenAddr, "listen", "", "Serve websocket reloads on this address (e.g. 127.0.0.1:8642)")
	cmd.Flags().Uint32Var(&pipeSides, "sides", 12, "Sides of every pipe cylinder")
	cmd.Flags().BoolVar(&fitOnLoad, "fit", false, "Frame the camera on the geometry bounds")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	infoCmd := &cobra.Command{
		Use:   "info <geometry.json>",
		Short: "Display geometry information",
		Long:  "Display element counts and the bounding box of a geometry document.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0])
		},
	}
	cmd.AddCommand(infoCmd)

	initCmd := &cobra.Command{
		Use:   "init-config <config.toml>",
		Short: "Write the default configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeview.WriteConfig(args[0], pipeview.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	cmd.AddCommand(initCmd)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads --config and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (pipeview.Config, error) {
	cfg := pipeview.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = pipeview.LoadConfig(configPath); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("watch") {
		cfg.Reload.Watch = watch
	}
	if flags.Changed("listen") {
		cfg.Reload.Listen = listenAddr
	}
	if flags.Changed("sides") {
		cfg.Render.PipeSides = pipeSides
	}
	if flags.Changed("fit") {
		cfg.Camera.FitOnLoad = fitOnLoad
	}
	return cfg, cfg.Validate()
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func run(cfg pipeview.Config, path string) error {
	logger := newLogger()

	geo := pipeview.DemoGeometry()
	if path != "" {
		var err error
		if geo, err = pipeview.LoadGeometryFile(path); err != nil {
			return err
		}
	} else if cfg.Reload.Watch {
		logger.Warn("nothing to watch without a geometry file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	updates := pipeview.NewUpdates()

	if cfg.Reload.Watch && path != "" {
		w, err := pipeview.NewWatcher(path, cfg.Reload.Debounce(), updates, logger)
		if err != nil {
			return err
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Error("watcher stopped", "err", err)
			}
		}()
	}

	var remote *pipeview.RemoteServer
	if cfg.Reload.Listen != "" {
		remote = pipeview.NewRemoteServer(path, updates, logger)
		go func() {
			if err := remote.ListenAndServe(ctx, cfg.Reload.Listen); err != nil {
				logger.Error("remote reload stopped", "err", err)
			}
		}()
	}

	game := viewer.NewGame(viewer.Options{
		Context:  ctx,
		Config:   cfg,
		Geometry: geo,
		Updates:  updates,
		OnGeometry: func(g *pipeview.Geometry) {
			if remote != nil {
				remote.SetCurrent(g)
			}
		},
		Logger: logger,
	})
	return viewer.Run(game)
}

func runInfo(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	geo, err := pipeview.LoadGeometryFile(path)
	if err != nil {
		return err
	}

	st := geo.Stats()
	fmt.Printf("File:       %s\n", filepath.Base(path))
	fmt.Printf("Size:       %.2f KB\n", float64(info.Size())/1024)
	if geo.Metadata.Description != "" {
		fmt.Printf("About:      %s\n", geo.Metadata.Description)
	}
	fmt.Println()
	fmt.Printf("Meshes:     %d (%d triangles)\n", st.Meshes, st.Triangles)
	fmt.Printf("Points:     %d\n", st.Points)
	fmt.Printf("Lines:      %d\n", st.Lines)
	fmt.Printf("Pipes:      %d\n", st.Pipes)
	fmt.Printf("Polygons:   %d\n", st.Polygons)

	min, max, ok := geo.Bounds()
	if !ok {
		return nil
	}
	size := max.Sub(min)
	center := min.Add(max).Mul(0.5)
	fmt.Println()
	fmt.Printf("Bounds Min: (%.3f, %.3f, %.3f)\n", min.X(), min.Y(), min.Z())
	fmt.Printf("Bounds Max: (%.3f, %.3f, %.3f)\n", max.X(), max.Y(), max.Z())
	fmt.Printf("Dimensions: %.3f x %.3f x %.3f\n", size.X(), size.Y(), size.Z())
	fmt.Printf("Center:     (%.3f, %.3f, %.3f)\n", center.X(), center.Y(), center.Z())
	return nil
}
