// Command nightlightd drives a two-channel PWM nightlight from a web-submitted
// schedule, keeping time over NTP and publishing transitions to MQTT.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/larsalmen/Nightlight-O-Matic/internal/alarm"
	"github.com/larsalmen/Nightlight-O-Matic/internal/clock"
	"github.com/larsalmen/Nightlight-O-Matic/internal/config"
	"github.com/larsalmen/Nightlight-O-Matic/internal/engine"
	"github.com/larsalmen/Nightlight-O-Matic/internal/mqtt"
	"github.com/larsalmen/Nightlight-O-Matic/internal/output"
	"github.com/larsalmen/Nightlight-O-Matic/internal/schedule"
	"github.com/larsalmen/Nightlight-O-Matic/internal/status"
	"github.com/larsalmen/Nightlight-O-Matic/internal/store"
	"github.com/larsalmen/Nightlight-O-Matic/internal/web"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flag.StringVar(&configPath, "c", "config.yaml", "Path to configuration file (shorthand)")
	wipeState := flag.Bool("wipe-state", false, "Clear the persisted schedule on startup")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogging(cfg.Log.Level, cfg.Log.Colors)

	log.Info().Str("config", configPath).Msg("Starting nightlightd")

	if err := run(cfg, *wipeState); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}

func setupLogging(level string, colors bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !colors,
	})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// applyRequest carries a schedule submission into the control loop.
type applyRequest struct {
	sched schedule.Schedule
	reply chan error
}

// overrideRequest carries a debug duty override into the control loop.
type overrideRequest struct {
	ch    output.Channel
	duty  int
	reply chan error
}

func run(cfg *config.Config, wipeState bool) error {
	st, err := store.OpenSQLite(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	if wipeState {
		log.Info().Msg("Clearing persisted schedule (--wipe-state)")
		if err := st.Wipe(); err != nil {
			log.Warn().Err(err).Msg("Failed to clear persisted schedule")
		}
	}

	var driver output.Driver
	if cfg.GPIO.Enabled {
		pwm, err := output.NewPWMDriver(cfg.GPIO.Chip, cfg.GPIO.DayPin, cfg.GPIO.NightPin, cfg.GPIO.PWMPeriod.Duration())
		if err != nil {
			return err
		}
		driver = pwm
	} else {
		log.Info().Msg("GPIO disabled, using logging output driver")
		driver = output.NewNopDriver()
	}
	defer driver.Close()

	clk := clock.NewNTPClock(cfg.NTP.Server, cfg.NTP.UTCOffset.Duration())
	if err := clk.Resync(); err != nil {
		// The engine resyncs again on every reconfiguration.
		log.Warn().Err(err).Str("server", cfg.NTP.Server).Msg("initial clock sync failed")
	}

	eng := engine.New(alarm.NewRegistry(), clk, st, driver, cfg.NTP.UTCOffset.Duration())

	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if cfg.MQTT.Enabled {
		real, err := mqtt.NewRealPublisher(cfg.MQTT.Broker)
		if err != nil {
			// The client keeps retrying in the background; events are
			// buffered until the broker comes up.
			log.Warn().Err(err).Str("broker", cfg.MQTT.Broker).Msg("mqtt connect failed")
		}
		if real != nil {
			publisher = real
			mqttStatus = real
			defer real.Close()
		}
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:    cfg.TickInterval.Duration().Milliseconds(),
		Broker:    cfg.MQTT.Broker,
		HTTPAddr:  cfg.HTTP.Addr,
		NTPServer: cfg.NTP.Server,
		DBPath:    cfg.Database.Path,
	})

	if err := eng.Restore(); err != nil {
		// A corrupt snapshot must not keep the light from starting.
		log.Warn().Err(err).Msg("could not restore persisted schedule")
	}
	tracker.Update(eng.State(), clk.Now(), eng.SlotsInUse())

	publishSystem(publisher, mqtt.SystemEvent{
		Timestamp:  time.Now(),
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(tracker.Snapshot(), "STARTUP", ""),
	})

	applyCh := make(chan applyRequest)
	overrideCh := make(chan overrideRequest)

	submit := func(s schedule.Schedule) error {
		req := applyRequest{sched: s, reply: make(chan error, 1)}
		applyCh <- req
		return <-req.reply
	}
	var debug web.DebugFunc
	if cfg.HTTP.Debug {
		debug = func(ch output.Channel, duty int) error {
			req := overrideRequest{ch: ch, duty: duty, reply: make(chan error, 1)}
			overrideCh <- req
			return <-req.reply
		}
	}

	srv := web.New(cfg.HTTP.Addr, tracker, submit, cfg.HTTP.Gatekeeper, debug)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server error")
		}
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout.Duration())
		defer cancel()
		srv.Shutdown(ctx)
	}()
	log.Info().Str("addr", cfg.HTTP.Addr).Bool("debug", cfg.HTTP.Debug).Msg("http server listening")

	ticker := time.NewTicker(cfg.TickInterval.Duration())
	defer ticker.Stop()
	resync := time.NewTicker(cfg.NTP.ResyncInterval.Duration())
	defer resync.Stop()

	var heartbeat <-chan time.Time
	if cfg.MQTT.Heartbeat > 0 {
		hb := time.NewTicker(cfg.MQTT.Heartbeat.Duration())
		defer hb.Stop()
		heartbeat = hb.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(eng, clk, publisher, mqttStatus, tracker,
		ticker.C, resync.C, heartbeat, applyCh, overrideCh, sigCh)
}

// runLoop is the single owner of the engine: ticks, reconfigurations, and
// debug overrides are all serialized here, so the engine never needs a lock.
func runLoop(eng *engine.Engine, clk clock.Clock, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, tick, resync, heartbeat <-chan time.Time, applyCh <-chan applyRequest, overrideCh <-chan overrideRequest, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Info().Str("signal", s.String()).Msg("shutting down")
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			refreshTracker(tracker, eng, clk, mqttStatus)
			publishSystem(publisher, mqtt.SystemEvent{
				Timestamp:  time.Now(),
				Event:      "SHUTDOWN",
				Reason:     signalName,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName),
			})
			return nil

		case <-tick:
			now := clk.Now()
			events := eng.Tick(now)
			for _, event := range events {
				log.Info().
					Str("event", string(event.Type)).
					Str("day", string(event.DayState)).
					Str("night", string(event.NightState)).
					Msg("alarm fired")
				if publisher != nil {
					if err := publisher.Publish(event); err != nil {
						// Never crash on publish failure.
						log.Error().Err(err).Msg("publish error")
					}
				}
			}
			tracker.RecordEvents(events)
			refreshTracker(tracker, eng, clk, mqttStatus)

		case <-resync:
			if err := clk.Resync(); err != nil {
				log.Warn().Err(err).Msg("periodic clock resync failed")
			} else {
				log.Debug().Msg("clock resynced")
			}

		case <-heartbeat:
			refreshTracker(tracker, eng, clk, mqttStatus)
			publishSystem(publisher, mqtt.SystemEvent{
				Timestamp:  time.Now(),
				Event:      "HEARTBEAT",
				RawPayload: status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", ""),
			})

		case req := <-applyCh:
			err := eng.Apply(req.sched)
			if err == nil {
				if perr := eng.Persist(); perr != nil {
					// The schedule is live; it just won't survive a restart.
					log.Warn().Err(perr).Msg("applied schedule not persisted")
				}
			}
			refreshTracker(tracker, eng, clk, mqttStatus)
			req.reply <- err

		case req := <-overrideCh:
			req.reply <- eng.Override(req.ch, req.duty)
		}
	}
}

func refreshTracker(tracker *status.Tracker, eng *engine.Engine, clk clock.Clock, mqttStatus mqtt.ConnectionStatus) {
	tracker.Update(eng.State(), clk.Now(), eng.SlotsInUse())
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
}

func publishSystem(publisher mqtt.Publisher, event mqtt.SystemEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishSystem(event); err != nil {
		log.Error().Err(err).Str("event", event.Event).Msg("system event publish failed")
	}
}
