// =================================================================================
//
//			fox-fx - https://www.foxhollow.cc/projects/fox-fx/
//
//		 fox-fx runs a live chain of audio effect plugins between the
//	  inputs and outputs of the JACK audio server and reports meters
//
//		 Copyright (c) 2024 Steve Cross <flip@foxhollow.cc>
//
//			Licensed under the Apache License, Version 2.0 (the "License");
//			you may not use this file except in compliance with the License.
//			You may obtain a copy of the License at
//
//			     http://www.apache.org/licenses/LICENSE-2.0
//
//			Unless required by applicable law or agreed to in writing, software
//			distributed under the License is distributed on an "AS IS" BASIS,
//			WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//			See the License for the specific language governing permissions and
//			limitations under the License.
//
// =================================================================================
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fox-fx/chain"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

const commandHelp = `commands:
  bypass <plugin> on|off
  bypass all on|off
  enable <plugin> on|off
  post <plugin> on|off
  set <plugin> <param> <value>
  reload
  status
  quit`

// HandleCommand runs one control line and returns the response text.
// Plugins are named by tag ("output:gate") or by bare name, which picks
// the first chain holding it.
func (e *Engine) HandleCommand(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}

	command, args := strings.ToLower(fields[0]), fields[1:]

	switch command {
	case "help":
		return commandHelp, nil

	case "status":
		return e.Status(), nil

	case "reload":
		if err := e.Reload(); err != nil {
			return "", err
		}
		return "reloaded " + e.profileName, nil

	case "quit", "exit":
		go e.reaper.Reap()
		return "shutting down", nil

	case "bypass", "enable", "post":
		if len(args) != 2 {
			return "", fmt.Errorf("%w: %s <plugin> on|off", ErrUsage, command)
		}

		on, err := parseSwitch(args[1])
		if err != nil {
			return "", err
		}

		if command == "bypass" && args[0] == "all" {
			for _, m := range e.Managers() {
				m.SetBypassAll(on)
			}
			return "bypass all " + args[1], nil
		}

		m, id, err := e.resolve(args[0])
		if err != nil {
			return "", err
		}

		switch command {
		case "bypass":
			err = m.SetBypass(id, on)
		case "enable":
			err = m.SetEnabled(id, on)
		case "post":
			err = m.SetPostMessages(id, on)
		}

		if err != nil {
			return "", err
		}

		return fmt.Sprintf("%s %s %s", command, args[0], args[1]), nil

	case "set":
		if len(args) != 3 {
			return "", fmt.Errorf("%w: set <plugin> <param> <value>", ErrUsage)
		}

		value, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return "", fmt.Errorf("invalid value '%s': %w", args[2], err)
		}

		m, id, err := e.resolve(args[0])
		if err != nil {
			return "", err
		}

		if err := m.SetParam(id, args[1], value); err != nil {
			return "", err
		}

		return fmt.Sprintf("set %s %s %g", args[0], args[1], value), nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnknownCommand, command)
}

// RunCommands reads control lines until input ends or ctx is done. Every
// response, error or not, goes to the display.
func (e *Engine) RunCommands(ctx context.Context, input io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}

		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-e.reaper.Reaping():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}

			response, err := e.HandleCommand(line)
			if err != nil {
				e.ui.WriteResponse("error: " + err.Error())
			} else if response != "" {
				e.ui.WriteResponse(response)
			}
		}
	}
}

// Status is a plain text summary of every chain.
func (e *Engine) Status() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "graph: %d nodes", e.router.NodeCount())

	for _, uiChain := range e.uiChains() {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%s: latency %.2f ms, %d plugins", uiChain.Role, uiChain.LatencyMs, len(uiChain.Plugins))

		for _, p := range uiChain.Plugins {
			state := "disabled"
			switch {
			case !p.Installed:
				state = "not installed"
			case p.Enabled && p.Bypass:
				state = "bypassed"
			case p.Enabled:
				state = "active"
			}

			fmt.Fprintf(&sb, "\n  %-24s %-14s node %-4d %.2f ms", p.Tag, state, p.NodeID, p.LatencyMs)
		}
	}

	return sb.String()
}

func (e *Engine) resolve(id string) (*chain.Manager, string, error) {
	if role, _, found := strings.Cut(id, ":"); found {
		m, ok := e.Manager(role)
		if !ok {
			return nil, "", fmt.Errorf("%w: no chain '%s'", chain.ErrUnknownPlugin, role)
		}

		return m, id, nil
	}

	for _, m := range e.Managers() {
		if _, err := m.Plugin(id); err == nil {
			return m, id, nil
		}
	}

	return nil, "", fmt.Errorf("%w: %s", chain.ErrUnknownPlugin, id)
}

func parseSwitch(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}

	return false, fmt.Errorf("%w: expected on or off, got '%s'", ErrUsage, value)
}
