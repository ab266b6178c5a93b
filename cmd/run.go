package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/labodj/lsh-core/internal/config"
	"github.com/labodj/lsh-core/internal/controller"
	"github.com/labodj/lsh-core/internal/gateway"
	"github.com/labodj/lsh-core/internal/gpio"
	"github.com/labodj/lsh-core/internal/link"
	"github.com/labodj/lsh-core/internal/mqtt"
	"github.com/labodj/lsh-core/internal/status"
	"github.com/labodj/lsh-core/internal/web"
	"github.com/labodj/lsh-core/internal/wire"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the panel daemon",
	RunE:  runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	regs, err := cfg.Build()
	if err != nil {
		return err
	}

	// Panel I/O.
	inputs, err := gpio.NewRealReader(cfg.GPIO.Chip, cfg.ButtonPins())
	if err != nil {
		return fmt.Errorf("init button inputs: %w", err)
	}
	defer inputs.Close()

	relays, err := gpio.NewRealWriter(cfg.GPIO.Chip, cfg.ActuatorPins())
	if err != nil {
		return fmt.Errorf("init relay outputs: %w", err)
	}
	defer relays.Close()
	regs.Actuators.SetSink(func(index int, on bool) {
		if err := relays.Set(index, on); err != nil {
			log.Printf("relay %d: %v", index, err)
		}
	})

	if len(cfg.Indicators) > 0 {
		leds, err := gpio.NewRealWriter(cfg.GPIO.Chip, cfg.IndicatorPins())
		if err != nil {
			return fmt.Errorf("init indicator outputs: %w", err)
		}
		defer leds.Close()
		regs.Indicators.SetSink(func(index int, on bool) {
			if err := leds.Set(index, on); err != nil {
				log.Printf("indicator %d: %v", index, err)
			}
		})
	}

	// Push the configured default states to the hardware.
	for i := 0; i < regs.Actuators.Count(); i++ {
		if regs.Actuators.Get(i).State() {
			if err := relays.Set(i, true); err != nil {
				log.Printf("relay %d: %v", i, err)
			}
		}
	}

	// Gateway link.
	codec, err := wire.ForEncoding(cfg.Encoding)
	if err != nil {
		return err
	}
	target := cfg.Link.Device
	if cfg.Link.Kind == "websocket" {
		target = cfg.Link.URL
	}
	l, err := link.Open(cfg.Link.Kind, target, cfg.Link.Baud)
	if err != nil {
		return fmt.Errorf("open gateway link: %w", err)
	}
	session := gateway.New(codec, l, cfg.Timings.PingInterval())
	defer session.Close()

	// Telemetry.
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if cfg.MQTT.Enabled {
		real, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.TopicBase)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer real.Close()
		publisher = real
		mqttStatus = real
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		Name:       cfg.Name,
		Encoding:   cfg.Encoding,
		LinkKind:   cfg.Link.Kind,
		TickMs:     int64(cfg.Timings.TickMS),
		DebounceMs: int64(cfg.Timings.DebounceMS),
		Broker:     cfg.MQTT.Broker,
		HTTPAddr:   cfg.HTTP.Addr,
	})

	if publisher != nil {
		snap := tracker.Snapshot()
		event := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(event); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		}
	}

	if cfg.HTTP.Enabled {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	// System commands from the gateway end the process; the service
	// manager handles the actual restart.
	sysCh := make(chan uint8, 1)
	ctrl := controller.New(controller.Params{
		Name:       cfg.Name,
		Actuators:  regs.Actuators,
		Buttons:    regs.Buttons,
		Indicators: regs.Indicators,
		Session:    session,
		Inputs:     inputs,
		Timings: controller.Timings{
			NetClickTimeout: cfg.Timings.NetClickTimeout(),
			NetClickSweep:   cfg.Timings.NetClickSweep(),
			AutoOffSweep:    cfg.Timings.AutoOffSweep(),
			DelayAfterRx:    cfg.Timings.DelayAfterRx(),
		},
		Publisher: publisher,
		Tracker:   tracker,
		OnSystem: func(code uint8) {
			select {
			case sysCh <- code:
			default:
			}
		},
	})

	session.Start()
	if err := session.SendBoot(time.Now()); err != nil {
		log.Printf("send boot: %v", err)
	}

	log.Printf("started: panel=%s encoding=%s link=%s tick=%v",
		cfg.Name, cfg.Encoding, cfg.Link.Kind, cfg.Timings.Tick())

	ticker := time.NewTicker(cfg.Timings.Tick())
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case s := <-sigCh:
			log.Printf("received %v, shutting down", s)
			name := "SIGINT"
			if s == syscall.SIGTERM {
				name = "SIGTERM"
			}
			shutdown(publisher, mqttStatus, tracker, name)
			return nil

		case code := <-sysCh:
			log.Printf("gateway requested shutdown (command %d)", code)
			shutdown(publisher, mqttStatus, tracker, "GATEWAY_COMMAND")
			return nil

		case <-ticker.C:
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			ctrl.Tick(time.Now())
		}
	}
}

func shutdown(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, reason string) {
	if publisher == nil {
		return
	}
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
	snap := tracker.Snapshot()
	event := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "SHUTDOWN",
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", reason),
	}
	if err := publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	}
}
