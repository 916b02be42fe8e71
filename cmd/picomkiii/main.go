package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/afero"
	"github.com/user-none/picomkiii/adapter"
	"github.com/user-none/picomkiii/audio"
	"github.com/user-none/picomkiii/dvi"
	"github.com/user-none/picomkiii/emu"
	"github.com/user-none/picomkiii/exclproc"
	"github.com/user-none/picomkiii/host"
	"github.com/user-none/picomkiii/input"
	"github.com/user-none/picomkiii/loop"
	"github.com/user-none/picomkiii/romloader"
	"github.com/user-none/picomkiii/storage"
	"github.com/user-none/picomkiii/video"
	"github.com/user-none/picomkiii/wavwriter"
)

// HDMI audio clock regeneration values for 44.1 kHz at a 25.2 MHz pixel
// clock.
const (
	audioCTS = 28000
	audioN   = 6272
)

// prequeueSamples of silence are queued before the first frame.
const prequeueSamples = 255

type options struct {
	card     string
	rom      string
	board    string
	region   string
	headless bool
	frames   int
	wav      string
	volume   int
}

func main() {
	var opts options
	flag.StringVar(&opts.card, "card", ".", "directory holding the card contents")
	flag.StringVar(&opts.rom, "rom", "", "ROM path on the card (first ROM in the ROM directory if empty)")
	flag.StringVar(&opts.board, "board", "", fmt.Sprintf("DVI board preset %v (overrides config)", dvi.Boards()))
	flag.StringVar(&opts.region, "region", "", "region: auto, ntsc, or pal (overrides config)")
	flag.BoolVar(&opts.headless, "headless", false, "run without a window")
	flag.IntVar(&opts.frames, "frames", 0, "stop after this many frames (0 runs until closed)")
	flag.StringVar(&opts.wav, "wav", "", "record the streamed audio to this WAV file")
	flag.IntVar(&opts.volume, "volume", -1, "volume percent (overrides config)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var fatal loop.Fatal
	sys, err := boot(ctx, opts)
	if err != nil {
		fatal.Set(err)
		if opts.headless {
			os.Exit(1)
		}
		showFatal(ctx, &fatal)
		os.Exit(1)
	}
	err = sys.run(ctx, &fatal)
	sys.close()
	if err != nil {
		log.Fatal(err)
	}
}

// system is everything the two loops run on.
type system struct {
	opts    options
	engine  *dvi.Engine
	main    *loop.MainLoop
	stream  *loop.StreamingLoop
	proc    *exclproc.Proc
	sampler *input.Sampler
	bridge  *audio.Bridge
	fps     *loop.FPSMeter
	pads    *host.Gamepads
	led     *host.LED
	player  *host.AudioPlayer
	wav     *wavwriter.Writer
	wavFile afero.File
	title   string
}

func boot(ctx context.Context, opts options) (*system, error) {
	card := storage.Mount(opts.card)
	cfg, err := storage.LoadConfig(card)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.board != "" {
		cfg.Board = opts.board
	}
	if opts.region != "" {
		cfg.Region = opts.region
	}
	if opts.volume >= 0 {
		cfg.Volume = opts.volume
	}

	board, err := dvi.BoardConfig(cfg.Board)
	if err != nil {
		return nil, err
	}
	log.Printf("Initialising DVI: %s (TMDS pins %v, clock pin %d, invert %v)",
		board.Name, board.PinTMDS, board.PinClock, board.Invert)

	engine := dvi.NewEngine(dvi.Timing640x480p60, board, dvi.BlankSettings{Top: 4 * 2, Bottom: 4 * 2})
	engine.SetAudioFreq(emu.SampleRate, audioCTS, audioN)
	engine.AllocateAudioBuffer(max(cfg.AudioBufferSize, prequeueSamples+1))
	engine.AudioRingBuffer().AdvanceWritePointer(prequeueSamples)

	modes := video.NewModeController(engine, video.ScreenMode(cfg.ScreenMode))

	info := adapter.SystemInfo()
	log.Printf("Loading ROM")
	romPath := opts.rom
	if romPath == "" {
		romPath, err = storage.FindROM(card, cfg.ROMDir, func(name string) bool {
			return romloader.IsCandidate(name, info.Extensions)
		})
		if err != nil {
			return nil, err
		}
	}
	rom, name, err := romloader.Load(card, romPath, info.Extensions)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", romPath, err)
	}
	e, err := adapter.CreateEmulator(rom, cfg.Region)
	if err != nil {
		return nil, err
	}
	log.Printf("ROM %s: %d bytes, region %v, mapper %v", name, len(rom), e.GetRegion(), e.Mapper())

	conv := video.NewConverter(e.Palette())
	geo := video.DefaultGeometry()
	geo.CropX = cfg.CropX
	pipe := video.NewPipeline(engine, conv.Cache(), geo)
	e.SetDisplay(video.NewRenderer(conv, pipe))

	frameSamples := emu.SampleRate/e.GetTiming().FPS + 1
	bridge := audio.NewBridge(engine.AudioRingBuffer(), frameSamples, cfg.Volume, cfg.VolumeMax)

	pads := &host.Gamepads{}
	led := &host.LED{}
	proc := exclproc.New()
	sampler := input.NewSampler(pads, e, modes)
	sampler.SetSaveHandler(func() {
		err := proc.Do(ctx, func() {
			cfg.ScreenMode = int(modes.Mode())
			cfg.Volume = bridge.Volume()
			if err := storage.SaveConfig(card, cfg); err != nil {
				log.Printf("warning: failed to save settings: %v", err)
				return
			}
			log.Printf("Settings saved")
		})
		if err != nil {
			log.Printf("warning: settings not saved: %v", err)
		}
	})

	fps := &loop.FPSMeter{}
	sys := &system{
		opts:    opts,
		engine:  engine,
		proc:    proc,
		sampler: sampler,
		bridge:  bridge,
		fps:     fps,
		pads:    pads,
		led:     led,
		title:   fmt.Sprintf("%s - %s", info.Name, name),
	}
	sys.main = &loop.MainLoop{
		Input:    sampler,
		Emulator: e,
		Audio:    bridge,
		Clock:    engine,
		LED:      led,
		Bus:      pads,
		FPS:      fps,
		Frames:   opts.frames,

		Pacer:       engine,
		FrameRate:   e.GetTiming().FPS,
		DisplayRate: engine.Timing().FrameRate(),
	}
	sys.stream = &loop.StreamingLoop{Engine: engine, Exclusive: proc}

	if err := sys.openSinks(); err != nil {
		return nil, err
	}
	return sys, nil
}

func (s *system) openSinks() error {
	if !s.opts.headless {
		player, err := host.NewAudioPlayer(emu.SampleRate)
		if err != nil {
			log.Printf("warning: audio disabled: %v", err)
		} else {
			s.player = player
			s.engine.AddAudioSink(player)
		}
	}
	if s.opts.wav != "" {
		f, err := afero.NewOsFs().Create(s.opts.wav)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", s.opts.wav, err)
		}
		s.wavFile = f
		s.wav = wavwriter.New(f, emu.SampleRate)
		s.engine.AddAudioSink(s.wav)
	}
	return nil
}

func (s *system) run(ctx context.Context, fatal *loop.Fatal) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Printf("Starting game")
	if s.opts.headless {
		return s.runLoops(ctx)
	}

	errc := make(chan error, 1)
	go func() {
		defer cancel()
		errc <- s.runLoops(ctx)
	}()
	game := host.NewGame(ctx, s.engine, dvi.Timing640x480p60.HActive, dvi.Timing640x480p60.VActive,
		s.pads, s.led, &status{sampler: s.sampler, fps: s.fps, fatal: fatal})
	if err := host.Run(game, s.title); err != nil {
		return err
	}
	cancel()
	return <-errc
}

func (s *system) runLoops(ctx context.Context) error {
	defer s.proc.Close()
	err := loop.Run(ctx, s.main, s.stream, s.engine)
	log.Printf("Stopped after %d frames: %d samples streamed, %d underruns, %d samples dropped",
		s.main.FrameCount(), s.engine.SamplesStreamed(), s.engine.AudioUnderruns(), s.bridge.Dropped())
	return err
}

func (s *system) close() {
	if s.player != nil {
		s.player.Close()
	}
	if s.wav != nil {
		if err := s.wav.Close(); err != nil {
			log.Printf("warning: %v", err)
		}
		s.wavFile.Close()
		log.Printf("Wrote %d samples to %s", s.wav.Samples(), s.opts.wav)
	}
}

// showFatal keeps a black window open with the boot error until it is
// closed.
func showFatal(ctx context.Context, fatal *loop.Fatal) {
	engine := dvi.NewEngine(dvi.Timing640x480p60, dvi.Config{}, dvi.BlankSettings{})
	game := host.NewGame(ctx, engine, dvi.Timing640x480p60.HActive, dvi.Timing640x480p60.VActive,
		&host.Gamepads{}, &host.LED{}, &status{fatal: fatal})
	if err := host.Run(game, adapter.Name); err != nil {
		log.Printf("warning: %v", err)
	}
}

// status feeds the window overlay.
type status struct {
	sampler *input.Sampler
	fps     *loop.FPSMeter
	fatal   *loop.Fatal
}

func (s *status) FPSEnabled() bool {
	return s.sampler != nil && s.sampler.FPSEnabled()
}

func (s *status) FPS() int {
	if s.fps == nil {
		return 0
	}
	return s.fps.FPS()
}

func (s *status) Fatal() error {
	return s.fatal.Err()
}
