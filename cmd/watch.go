// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Grid Tools

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gridtools/currentcost/pkg/ccmsg"
)

var watchShowAnomalies bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Decode and display meter messages as they arrive",
	Long: `Continuously decode and display CurrentCost messages as they arrive.

Each fragment is shown with timestamp, device generation, and the decoded
reading or history summary. A statistics summary is printed on exit.

Supports both serial and WebSocket connections.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchShowAnomalies, "show-anomalies", true, "Flag implausible values inline")
}

func runWatch(cmd *cobra.Command, args []string) error {
	// Open connection (serial or WebSocket)
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Ccwatch - Live Message Log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	decoder := ccmsg.NewDecoder(ccmsg.WithLogger(newLogger()))
	stats := ccmsg.NewStatistics()

	// Print the statistics summary on Ctrl+C too
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Printf("\n%s", stats)
		os.Exit(0)
	}()

	scanner := newFragmentScanner(conn)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		msg, err := decoder.Decode(line)
		if err != nil {
			stats.Update(nil, err, nil)
			fmt.Printf("[ERROR] %v\n", err)
			continue
		}

		anomalies := ccmsg.ValidateMessage(msg)
		stats.Update(msg, nil, anomalies)

		fmt.Print(ccmsg.FormatMessage(msg))
		if watchShowAnomalies {
			for _, anomaly := range anomalies {
				fmt.Printf("  [ANOMALY] %s\n", anomaly.Message)
			}
		}
	}

	if err := scanner.Err(); err != nil && err != ErrConnectionClosed {
		fmt.Printf("\n%s", stats)
		return fmt.Errorf("read error: %v", err)
	}

	fmt.Printf("\n%s", stats)
	return nil
}
