package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli"

	"github.com/valerio/go-yellow/yellow"
	"github.com/valerio/go-yellow/yellow/audio"
	"github.com/valerio/go-yellow/yellow/backend/terminal"
	"github.com/valerio/go-yellow/yellow/config"
	"github.com/valerio/go-yellow/yellow/input"
	"github.com/valerio/go-yellow/yellow/keypad"
	"github.com/valerio/go-yellow/yellow/relay"
	"github.com/valerio/go-yellow/yellow/script"
	"github.com/valerio/go-yellow/yellow/timing"
	"github.com/valerio/go-yellow/yellow/video"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "yellow"
	app.Description = "Runs the Yellow cartridge with native routines spliced into it"
	app.Usage = "yellow [options] <ROM file>"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "rom", Usage: "Path to the ROM file"},
		cli.StringFlag{Name: "config, c", Usage: "YAML configuration file"},
		cli.StringFlag{Name: "save", Usage: "Battery RAM image, loaded at start and written on exit"},
		cli.StringFlag{Name: "script", Usage: "Lua script registering native routines"},
		cli.StringFlag{Name: "record-audio", Usage: "Write the audio output to a WAV file"},
		cli.BoolFlag{Name: "no-audio", Usage: "Do not open an audio device"},
		cli.StringFlag{Name: "relay", Usage: "Serve frames and accept keys over websocket on this address, e.g. :8080"},
		cli.StringFlag{Name: "link", Usage: "Host serial device for the link port"},
		cli.IntFlag{Name: "baud", Usage: "Baud rate of the link device", Value: 115200},
		cli.StringFlag{Name: "limiter", Usage: "Frame pacing: adaptive, ticker or none"},
		cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		cli.StringFlag{Name: "log-file", Usage: "Write logs to a file instead of the screen"},
		cli.BoolFlag{Name: "headless", Usage: "Run without a terminal screen"},
		cli.IntFlag{Name: "frames", Usage: "Number of frames to run in headless mode (required for headless)"},
		cli.StringFlag{Name: "snapshot", Usage: "In headless mode, write the last frame as text to this file"},
	}
	app.Action = runGame
	return app
}

// loadConfig reads the config file, if any, and applies explicit flags on top.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	if rom := c.String("rom"); rom != "" {
		cfg.ROM = rom
	} else if c.NArg() > 0 {
		cfg.ROM = c.Args().Get(0)
	}
	if c.IsSet("save") {
		cfg.Save = c.String("save")
	}
	if c.IsSet("script") {
		cfg.Script = c.String("script")
	}
	if c.IsSet("record-audio") {
		cfg.Audio.Record = c.String("record-audio")
	}
	if c.Bool("no-audio") {
		cfg.Audio.Enabled = false
	}
	if c.IsSet("relay") {
		cfg.Relay.Listen = c.String("relay")
	}
	if c.IsSet("link") {
		cfg.Link.Device = c.String("link")
	}
	if c.IsSet("baud") {
		cfg.Link.Baud = c.Int("baud")
	}
	if c.IsSet("limiter") {
		cfg.Limiter = timing.Kind(c.String("limiter"))
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if cfg.Save == "" && cfg.ROM != "" {
		cfg.Save = strings.TrimSuffix(cfg.ROM, filepath.Ext(cfg.ROM)) + ".sav"
	}
	return cfg, cfg.Validate()
}

func runGame(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.ROM == "" {
		cli.ShowAppHelp(c)
		return errors.New("no ROM path provided")
	}
	headless := c.Bool("headless")
	frames := c.Int("frames")
	if headless && frames <= 0 {
		return errors.New("headless mode requires --frames option with a positive value")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logs := terminal.NewLogBuffer(200)
	closeLog, err := setupLogging(c.String("log-file"), level, headless, logs)
	if err != nil {
		return err
	}
	defer closeLog()

	rom, err := os.ReadFile(cfg.ROM)
	if err != nil {
		return fmt.Errorf("read rom: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keys := make(chan keypad.Event, 64)
	opts := yellow.Options{
		Frames:            make(chan []byte, 1),
		Keys:              keys,
		AutoReleaseFrames: cfg.AutoReleaseFrames,
		Mute:              cfg.Audio.Mute,
	}
	if opts.Palette, err = paletteOf(cfg); err != nil {
		return err
	}

	player := openPlayer(cfg, headless)
	defer func() {
		if err := player.Close(); err != nil {
			slog.Warn("Closing audio output failed", "error", err)
		}
	}()
	opts.Player = player

	if cfg.Link.Device != "" {
		port, err := openLink(cfg.Link.Device, cfg.Link.Baud)
		if err != nil {
			return err
		}
		defer port.Close()
		opts.Link = port
	}

	if headless {
		opts.Limiter = &frameBudget{Limiter: timing.NoOp{}, max: frames, done: cancel}
	} else {
		if opts.Limiter, err = timing.New(cfg.Limiter); err != nil {
			return err
		}
	}

	session, err := yellow.New(rom, opts)
	if err != nil {
		return err
	}
	loadSave(session, cfg.Save)

	if cfg.Script != "" {
		engine := script.New(session, slog.Default())
		defer engine.Close()
		if err := engine.LoadFile(cfg.Script); err != nil {
			return err
		}
	}

	sinks := []func([]byte){}
	if cfg.Relay.Listen != "" {
		srv := relay.NewServer(keys, slog.Default())
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Relay.Listen); err != nil {
				slog.Warn("Relay stopped", "error", err)
			}
		}()
		sinks = append(sinks, srv.Broadcast)
	}

	var last []byte
	if headless {
		sinks = append(sinks, func(f []byte) { last = f })
	} else {
		keymap, err := input.DefaultKeyMap.WithBindings(cfg.Keys)
		if err != nil {
			return err
		}
		term, err := terminal.Open(keymap, keys, logs)
		if err != nil {
			return err
		}
		defer term.Close()
		go term.PollInput(ctx)
		sinks = append(sinks, term.Draw)
	}

	fanDone := make(chan struct{})
	go func() {
		defer close(fanDone)
		fanOut(ctx, session.Frames(), sinks)
	}()

	slog.Info("Running", "rom", cfg.ROM, "headless", headless, "frames", frames)
	runErr := session.Run(ctx)
	cancel()
	<-fanDone

	writeSave(session, cfg.Save)
	if headless {
		select {
		case f := <-session.Frames():
			last = f
		default:
		}
		if path := c.String("snapshot"); path != "" && last != nil {
			if err := writeSnapshot(path, last); err != nil {
				slog.Error("Failed to save snapshot", "path", path, "error", err)
			} else {
				slog.Info("Saved frame snapshot", "path", path)
			}
		}
	}

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

func paletteOf(cfg config.Config) (*video.Palette, error) {
	p, err := cfg.ParsedPalette()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func setupLogging(path string, level slog.Level, headless bool, logs *terminal.LogBuffer) (func(), error) {
	var handler slog.Handler
	closeFn := func() {}
	switch {
	case path != "":
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		closeFn = func() { _ = f.Close() }
		handler = slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	case headless:
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	default:
		handler = terminal.NewLogHandler(logs, level)
	}
	slog.SetDefault(slog.New(handler))
	return closeFn, nil
}

func openPlayer(cfg config.Config, headless bool) audio.Player {
	rate := cfg.Audio.SampleRate
	if cfg.Audio.Record != "" {
		rec, err := audio.CreateWAVRecorder(cfg.Audio.Record, rate)
		if err == nil {
			slog.Info("Recording audio", "path", cfg.Audio.Record, "rate", rate)
			return rec
		}
		slog.Warn("Cannot record audio", "path", cfg.Audio.Record, "error", err)
	}
	if cfg.Audio.Enabled && !headless {
		p, err := audio.NewOtoPlayer(rate)
		if err == nil {
			return p
		}
		slog.Warn("No audio output", "error", err)
	}
	return &audio.NullPlayer{Rate: rate}
}

// fanOut hands each frame to every sink. Sinks must not keep the frame
// past the call unless they do not modify it.
func fanOut(ctx context.Context, frames <-chan []byte, sinks []func([]byte)) {
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-frames:
			for _, sink := range sinks {
				sink(f)
			}
		}
	}
}

func loadSave(s *yellow.Session, path string) {
	image, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("No save file, starting fresh", "path", path)
		return
	}
	if err != nil {
		slog.Warn("Cannot read save file", "path", path, "error", err)
		return
	}
	if err := s.ReplaceRAM(image); err != nil {
		slog.Warn("Ignoring save file", "path", path, "error", err)
		return
	}
	slog.Info("Loaded save file", "path", path, "bytes", len(image))
}

func writeSave(s *yellow.Session, path string) {
	if path == "" {
		return
	}
	if err := writeFileAtomic(path, s.RAMImage()); err != nil {
		slog.Warn("Cannot write save file", "path", path, "error", err)
	}
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
