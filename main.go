// scoopchat - a terminal client for the Scoop supplement assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/scoopchat/internal/backend"
	"github.com/jeranaias/scoopchat/internal/chat"
	"github.com/jeranaias/scoopchat/internal/config"
	"github.com/jeranaias/scoopchat/internal/identity"
	"github.com/jeranaias/scoopchat/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config.toml")
		backendURL = flag.String("backend", "", "backend base URL override")
		version    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Printf("scoopchat %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	var (
		cfg config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *backendURL != "" {
		cfg.BackendURL = *backendURL
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	client := backend.NewClientWithConfig(&backend.ClientConfig{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.Timeout(),
	})

	mgr, err := chat.NewManager(client, identity.NewProvider(cfg.ProfileDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(
		ui.New(mgr),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running scoopchat: %v\n", err)
		os.Exit(1)
	}
}
