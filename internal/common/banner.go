package common

import (
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner writes the version banner to w.
func PrintBanner(w io.Writer, config *Config) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	width := 56
	hr := lineColor + strings.Repeat("═", width) + banner.ColorReset

	art := []string{
		`    _   ___ __   _____ ___  ___  ___`,
		`   /_\ |   \\ \ / /_ _/ __|/ _ \| _ \`,
		`  / _ \| |) |\ V / | |\__ \ (_) |   /`,
		` /_/ \_\___/  \_/ |___|___/\___/|_|_\`,
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
	for _, line := range art {
		fmt.Fprintf(w, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s  Client & Portfolio Workspace%s\n\n%s\n\n", textColor, banner.ColorReset, hr)

	kvPad := 14
	kvLines := [][2]string{
		{"Version", Version},
		{"Build", Build},
		{"Commit", GitCommit},
	}
	if config != nil {
		kvLines = append(kvLines,
			[2]string{"Environment", config.Environment},
			[2]string{"Storage", config.Storage.Backend + " (" + config.StorageAddress() + ")"},
		)
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-*s %s%s\n", textColor, kvPad, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s\n", hr)
}
