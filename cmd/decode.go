// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Grid Tools

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gridtools/currentcost/pkg/ccmsg"
)

var decodeCmd = &cobra.Command{
	Use:   "decode [file...]",
	Short: "Decode captured message fragments from files or stdin",
	Long: `Decode CurrentCost message fragments offline, one fragment per line.

Reads the named files, or stdin when no file (or "-") is given, and prints a
summary per fragment. Useful for inspecting captured serial logs without a
live connection.`,
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return decodeStream(os.Stdin, "stdin")
	}

	for _, name := range args {
		if name == "-" {
			if err := decodeStream(os.Stdin, "stdin"); err != nil {
				return err
			}
			continue
		}

		f, err := os.Open(name)
		if err != nil {
			return fmt.Errorf("failed to open %s: %v", name, err)
		}
		err = decodeStream(f, name)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func decodeStream(r io.Reader, name string) error {
	decoder := ccmsg.NewDecoder(ccmsg.WithLogger(newLogger()))

	lineNo := 0
	failures := 0
	scanner := newFragmentScanner(r)
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		msg, err := decoder.Decode(line)
		if err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "%s:%d: %v\n", name, lineNo, err)
			continue
		}
		fmt.Print(msg.Summary(""))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %v", name, err)
	}

	if failures > 0 {
		return fmt.Errorf("%d fragment(s) could not be decoded", failures)
	}
	return nil
}
