package capture

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// shutdownGrace is how long the bridge process gets to exit after stdin closes.
const shutdownGrace = 2 * time.Second

// DeviceConfig selects and configures one physical depth sensor.
//
// Serial wins over Index when both are set. There is no implicit device
// numbering: callers running several sensors pass a distinct selection to
// each Device.
type DeviceConfig struct {
	Serial string
	Index  int
	Width  int
	Height int
	FPS    int

	// Script is the path to realsense_service.py; searched for when empty.
	Script string
	// Python is the interpreter; a project venv or python3 when empty.
	Python string
}

// DeviceInfo describes a connected sensor.
type DeviceInfo struct {
	Serial string `json:"serial"`
	Name   string `json:"name"`
}

// Device streams aligned color+depth pairs from a RealSense sensor through a
// Python bridge process.
//
// The bridge writes packets to stdout: a 4-byte big-endian header length, a
// JSON header, then width*height*3 BGR bytes when the header has color and
// width*height*2 little-endian z16 bytes when it has depth. The first packet
// is a status header reporting whether the pipeline started.
type Device struct {
	serial string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	closeOnce sync.Once
	closeErr  error
	mu        sync.Mutex
	closed    bool
}

// ListDevices returns the sensors the bridge can see.
func ListDevices(ctx context.Context, cfg DeviceConfig) ([]DeviceInfo, error) {
	python, script, err := resolveBridge(cfg)
	if err != nil {
		return nil, err
	}

	out, err := exec.CommandContext(ctx, python, script, "--list").Output()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	var devices []DeviceInfo
	if err := json.Unmarshal(out, &devices); err != nil {
		return nil, fmt.Errorf("parse device list: %w", err)
	}
	return devices, nil
}

// selectDevice picks the configured device from the connected ones.
func selectDevice(devices []DeviceInfo, cfg DeviceConfig) (DeviceInfo, error) {
	if len(devices) == 0 {
		return DeviceInfo{}, fmt.Errorf("no devices connected: %w", ErrDeviceUnavailable)
	}
	if cfg.Serial != "" {
		for _, d := range devices {
			if d.Serial == cfg.Serial {
				return d, nil
			}
		}
		return DeviceInfo{}, fmt.Errorf("device %s not connected: %w", cfg.Serial, ErrDeviceUnavailable)
	}
	if cfg.Index < 0 || cfg.Index >= len(devices) {
		return DeviceInfo{}, fmt.Errorf("device index %d with %d connected: %w", cfg.Index, len(devices), ErrDeviceUnavailable)
	}
	return devices[cfg.Index], nil
}

// OpenDevice acquires the selected sensor and starts streaming. Any failure
// is reported as ErrDeviceUnavailable, and everything acquired so far is
// released before returning.
func OpenDevice(ctx context.Context, cfg DeviceConfig) (*Device, error) {
	cfg = withStreamDefaults(cfg)

	devices, err := ListDevices(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}
	info, err := selectDevice(devices, cfg)
	if err != nil {
		return nil, err
	}

	python, script, err := resolveBridge(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	cmd := exec.Command(python, script,
		"--serial", info.Serial,
		"--width", strconv.Itoa(cfg.Width),
		"--height", strconv.Itoa(cfg.Height),
		"--fps", strconv.Itoa(cfg.FPS),
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = stdin.Close()
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start realsense bridge: %w: %w", ErrDeviceUnavailable, err)
	}

	d := &Device{
		serial: info.Serial,
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReaderSize(stdout, cfg.Width*cfg.Height*3),
	}

	status, err := readHeader(d.stdout)
	if err == nil && !status.Ready {
		err = errors.New("bridge not ready")
		if status.Error != "" {
			err = errors.New(status.Error)
		}
	}
	if err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("start device %s: %w: %w", info.Serial, ErrDeviceUnavailable, err)
	}

	return d, nil
}

// Serial returns the serial number of the sensor.
func (d *Device) Serial() string {
	return d.serial
}

// Next reads the next packet from the bridge. A stream that can no longer be
// framed is closed and reported as ErrStreamEnd wrapping the cause.
func (d *Device) Next() (*Frame, error) {
	p, err := readPacket(d.stdout)
	if err != nil {
		if d.isClosed() || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrStreamEnd
		}
		if errors.Is(err, errCorruptStream) {
			_ = d.Close()
			return nil, fmt.Errorf("%w: %w", ErrStreamEnd, err)
		}
		return nil, err
	}
	return p.frame()
}

// Close stops the bridge process. It is safe to call more than once and
// concurrently with Next.
func (d *Device) Close() error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()

		_ = d.stdin.Close()

		done := make(chan error, 1)
		go func() { done <- d.cmd.Wait() }()

		select {
		case err := <-done:
			d.closeErr = err
		case <-time.After(shutdownGrace):
			_ = d.cmd.Process.Kill()
			<-done
		}
	})
	return d.closeErr
}

func (d *Device) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// frame turns a decoded packet into a Frame, or reports a desync when one
// half of the pair is missing.
func (p packet) frame() (*Frame, error) {
	if p.header.EOS {
		return nil, ErrStreamEnd
	}
	if p.color == nil || p.depth == nil {
		return nil, ErrFrameDesync
	}

	h := p.header
	if h.DepthScale <= 0 {
		h.DepthScale = DefaultDepthScale
	}
	depth, err := decodeDepth(h.Width, h.Height, h.DepthScale, p.depth, h.Intrinsics)
	if err != nil {
		return nil, fmt.Errorf("decode depth: %w", err)
	}

	mat, err := gocv.NewMatFromBytes(h.Height, h.Width, gocv.MatTypeCV8UC3, p.color)
	if err != nil {
		return nil, fmt.Errorf("decode color: %w", err)
	}

	f, err := NewFrame(h.Seq, &mat, depth)
	if err != nil {
		_ = mat.Close()
		return nil, err
	}
	return f, nil
}

func withStreamDefaults(cfg DeviceConfig) DeviceConfig {
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultFPS
	}
	return cfg
}

// resolveBridge finds the interpreter and bridge script.
func resolveBridge(cfg DeviceConfig) (python, script string, err error) {
	script = cfg.Script
	if script == "" {
		script = findInHome("scripts/realsense_service.py")
	}
	if script == "" {
		return "", "", fmt.Errorf("realsense_service.py not found")
	}

	python = cfg.Python
	if python == "" {
		python = findInHome("venv/bin/python")
	}
	if python == "" {
		python = "python3"
	}
	return python, script, nil
}

// findInHome looks for a path relative to the working directory, the
// executable, and ~/.handfuse.
func findInHome(rel string) string {
	var execDir string
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		rel,
		filepath.Join("..", rel),
		filepath.Join(execDir, rel),
		filepath.Join(os.Getenv("HOME"), ".handfuse", rel),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if absPath, err := filepath.Abs(path); err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}
