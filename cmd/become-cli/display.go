//go:build linux

package main

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/kayon/become"
)

func displayRegions(regions become.Regions) {
	var candidates become.Regions
	for _, region := range regions {
		line := region.String()
		if region.Candidate() {
			candidates = append(candidates, region)
			fmt.Println(color.GreenString("%s", line))
		} else {
			fmt.Println(line)
		}
	}

	fmt.Printf("%s %d regions, %s candidates, %s scanned\n",
		color.YellowString("Total:"),
		len(regions),
		color.GreenString("%d", len(candidates)),
		color.CyanString("%s", formatSize(candidates.Size())),
	)
}

func formatSize(size uint64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := uint64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
