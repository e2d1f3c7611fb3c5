package pipeview

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the whole viewer configuration. It is passed by value into the
// components that need it.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Camera   CameraSettings `toml:"camera"`
	Controls ControlsConfig `toml:"controls"`
	Render   RenderConfig   `toml:"render"`
	Reload   ReloadConfig   `toml:"reload"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	// FovY is in degrees.
	FovY float32 `toml:"fovy"`
	Near float32 `toml:"near"`
	Far  float32 `toml:"far"`
}

// CameraSettings is the file form of CameraConfig plus the start pose.
type CameraSettings struct {
	Eye          [3]float32 `toml:"eye"`
	Target       [3]float32 `toml:"target"`
	WorldUp      [3]float32 `toml:"world_up"`
	MinZoom      float32    `toml:"min_zoom"`
	MaxZoom      float32    `toml:"max_zoom"`
	ZoomSpeed    float32    `toml:"zoom_speed"`
	PanSpeed     float32    `toml:"pan_speed"`
	MaxOrbitStep float32    `toml:"max_orbit_step"`
	FitOnLoad    bool       `toml:"fit_on_load"`
}

type ControlsConfig struct {
	// Speed scales keyboard panning, in pan units per second.
	Speed       float32 `toml:"speed"`
	Sensitivity float32 `toml:"sensitivity"`
	// MousePanFactor scales mouse drag panning on top of Speed*Sensitivity.
	MousePanFactor float32 `toml:"mouse_pan_factor"`
}

// RenderConfig holds drawing parameters.
type RenderConfig struct {
	// PointSize is the point edge length in world units.
	PointSize float32 `toml:"point_size"`
	// MinPointPixels keeps distant points visible.
	MinPointPixels float32    `toml:"min_point_pixels"`
	LineWidth      float32    `toml:"line_width"`
	PipeSides      uint32     `toml:"pipe_sides"`
	LinePipeRadius float32    `toml:"line_pipe_radius"`
	LinePipeSides  uint32     `toml:"line_pipe_sides"`
	Shading        bool       `toml:"shading"`
	CullBackFaces  bool       `toml:"cull_back_faces"`
	Outlines       bool       `toml:"outlines"`
	Background     [3]float32 `toml:"background"`
	ShowGrid       bool       `toml:"show_grid"`
	ShowHUD        bool       `toml:"show_hud"`
}

type ReloadConfig struct {
	Watch      bool   `toml:"watch"`
	DebounceMS int    `toml:"debounce_ms"`
	Listen     string `toml:"listen"`
}

func (r ReloadConfig) Debounce() time.Duration {
	return time.Duration(r.DebounceMS) * time.Millisecond
}

func DefaultConfig() Config {
	cam := DefaultCameraConfig()
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "pipeview",
			FovY:   45,
			Near:   0.1,
			Far:    200,
		},
		Camera: CameraSettings{
			Eye:          [3]float32{0, -15, 8},
			Target:       [3]float32{0, 0, 2},
			WorldUp:      cam.WorldUp,
			MinZoom:      cam.MinZoom,
			MaxZoom:      cam.MaxZoom,
			ZoomSpeed:    cam.ZoomSpeed,
			PanSpeed:     cam.PanSpeed,
			MaxOrbitStep: cam.MaxOrbitStep,
		},
		Controls: ControlsConfig{
			Speed:          4.0,
			Sensitivity:    0.4,
			MousePanFactor: 0.1,
		},
		Render: RenderConfig{
			PointSize:      0.01,
			MinPointPixels: 2,
			LineWidth:      1,
			PipeSides:      12,
			LinePipeRadius: 0.02,
			LinePipeSides:  8,
			Shading:        true,
			CullBackFaces:  true,
			Background:     [3]float32{0.1, 0.2, 0.3},
			ShowGrid:       true,
			ShowHUD:        true,
		},
		Reload: ReloadConfig{
			DebounceMS: 250,
		},
	}
}

// LoadConfig reads a TOML file over DefaultConfig. Keys missing from the
// file keep their default; unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// WriteConfig stores cfg as TOML.
func WriteConfig(path string, cfg Config) error {
	b, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	case c.Window.FovY <= 0 || c.Window.FovY >= 180:
		return fmt.Errorf("%w: fovy %v out of (0, 180)", ErrInvalidConfig, c.Window.FovY)
	case c.Window.Near <= 0 || c.Window.Far <= c.Window.Near:
		return fmt.Errorf("%w: near %v far %v", ErrInvalidConfig, c.Window.Near, c.Window.Far)
	case c.Camera.MinZoom <= 0 || c.Camera.MaxZoom < c.Camera.MinZoom:
		return fmt.Errorf("%w: zoom range [%v, %v]", ErrInvalidConfig, c.Camera.MinZoom, c.Camera.MaxZoom)
	case mgl32.Vec3(c.Camera.WorldUp).Len() < minVectorLength:
		return fmt.Errorf("%w: world_up is zero", ErrInvalidConfig)
	case c.Render.PipeSides < minSides || c.Render.LinePipeSides < minSides:
		return fmt.Errorf("%w: pipe sides must be at least %d", ErrInvalidConfig, minSides)
	case c.Render.LinePipeRadius <= 0:
		return fmt.Errorf("%w: line_pipe_radius must be positive", ErrInvalidConfig)
	case c.Reload.DebounceMS < 0:
		return fmt.Errorf("%w: negative debounce", ErrInvalidConfig)
	}
	return nil
}

// CameraConfig converts the file settings into camera tunables.
func (s CameraSettings) CameraConfig() CameraConfig {
	return CameraConfig{
		WorldUp:      s.WorldUp,
		MinZoom:      s.MinZoom,
		MaxZoom:      s.MaxZoom,
		ZoomSpeed:    s.ZoomSpeed,
		PanSpeed:     s.PanSpeed,
		MaxOrbitStep: s.MaxOrbitStep,
	}
}

// NewCamera builds the start camera described by the settings.
func (s CameraSettings) NewCamera() *OrbitCamera {
	return NewOrbitCamera(s.Eye, s.Target, s.CameraConfig())
}

// NewProjection builds the projection described by the window settings.
func (w WindowConfig) NewProjection() *Projection {
	return NewProjection(w.Width, w.Height, mgl32.DegToRad(w.FovY), w.Near, w.Far)
}
