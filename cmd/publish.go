// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Grid Tools

package cmd

import (
	"fmt"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gridtools/currentcost/pkg/ccmsg"
)

var (
	mqttBroker   string
	mqttClientID string
	mqttTopic    string
	metricsAddr  string
)

var (
	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ccwatch_messages_total",
		Help: "Total decoded messages by device generation.",
	}, []string{"variant"})
	malformedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ccwatch_malformed_total",
		Help: "Total fragments that failed to decode.",
	})
	publishFailure = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ccwatch_publish_failure_total",
		Help: "Total MQTT publish attempts that failed or timed out.",
	})
	wattsGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ccwatch_watts",
		Help: "Latest power reading per phase (phase 0 is the total).",
	}, []string{"phase"})
	temperatureGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ccwatch_temperature_celsius",
		Help: "Latest ambient temperature reported by the meter.",
	})
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Forward live readings to MQTT and expose Prometheus metrics",
	Long: `Decode meter messages and forward each live reading to an MQTT broker as
a JSON payload, while exposing decode counters and reading gauges on a
Prometheus /metrics endpoint.

History-only messages update the counters but are not published.`,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().StringVar(&mqttBroker, "broker", "tcp://localhost:1883", "MQTT broker URL")
	publishCmd.Flags().StringVar(&mqttClientID, "client-id", "ccwatch", "MQTT client ID")
	publishCmd.Flags().StringVar(&mqttTopic, "topic", "energy/currentcost", "MQTT topic for readings")
	publishCmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Prometheus metrics listen address")
}

// readingPayload is the JSON document published per live reading
type readingPayload struct {
	Device        string             `json:"device"`
	Version       string             `json:"version"`
	Sensor        int                `json:"sensor"`
	Watts         float64            `json:"watts"`
	PhaseWatts    map[string]float64 `json:"phase_watts"`
	Temperature   *float64           `json:"temperature,omitempty"`
	DaysSinceBoot int                `json:"days_since_boot"`
	Time          string             `json:"time"`
}

func runPublish(cmd *cobra.Command, args []string) error {
	log := newLogger()

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	opts := mqtt.NewClientOptions().
		AddBroker(mqttBroker).
		SetClientID(mqttClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(_ mqtt.Client) {
			log.Info().Str("broker", mqttBroker).Msg("connected to MQTT broker")
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn().Err(err).Msg("MQTT connection lost, reconnecting")
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("timed out connecting to MQTT broker %s", mqttBroker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker %s: %v", mqttBroker, err)
	}
	defer client.Disconnect(250)

	// Metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Info().Str("addr", metricsAddr).Msg("serving metrics")
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()

	log.Info().Str("connection", connInfo).Str("topic", mqttTopic).Msg("publishing readings")

	decoder := ccmsg.NewDecoder(ccmsg.WithLogger(log))
	scanner := newFragmentScanner(conn)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		msg, err := decoder.Decode(line)
		if err != nil {
			malformedTotal.Inc()
			log.Warn().Err(err).Msg("dropping undecodable fragment")
			continue
		}
		messagesTotal.WithLabelValues(msg.Variant().String()).Inc()

		if !msg.HasReadings() {
			continue
		}
		publishReading(client, log, msg)
	}

	if err := scanner.Err(); err != nil && err != ErrConnectionClosed {
		return fmt.Errorf("read error: %v", err)
	}
	log.Info().Msg("connection closed")
	return nil
}

// publishReading forwards one live reading and updates the gauges
func publishReading(client mqtt.Client, log zerolog.Logger, msg *ccmsg.Message) {
	total, _ := msg.Value()
	sensor, _ := msg.Sensor()
	clock := msg.TimeOfDay()

	payload := readingPayload{
		Device:        msg.DeviceName(),
		Version:       msg.DeviceVersion(),
		Sensor:        sensor,
		Watts:         total,
		PhaseWatts:    map[string]float64{},
		DaysSinceBoot: msg.DaysSinceBoot(),
		Time:          fmt.Sprintf("%02d:%02d:%02d", clock.Hour, clock.Minute, clock.Second),
	}

	wattsGauge.WithLabelValues("0").Set(total)
	for ch := 1; ch <= ccmsg.MaxChannels; ch++ {
		if v, ok := msg.ChannelValue(ch); ok {
			phase := fmt.Sprintf("%d", ch)
			payload.PhaseWatts[phase] = v
			wattsGauge.WithLabelValues(phase).Set(v)
		}
	}
	if temp, ok := msg.Temperature(); ok {
		payload.Temperature = &temp
		temperatureGauge.Set(temp)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode reading")
		return
	}

	token := client.Publish(mqttTopic, 0, false, data)
	if !token.WaitTimeout(5 * time.Second) {
		publishFailure.Inc()
		log.Warn().Msg("publish timed out waiting for ack")
		return
	}
	if err := token.Error(); err != nil {
		publishFailure.Inc()
		log.Warn().Err(err).Msg("publish failed")
	}
}
