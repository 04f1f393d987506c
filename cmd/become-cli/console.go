//go:build linux

package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"

	"github.com/kayon/become"
)

const (
	ConsoleStepSelectRegion = iota
	ConsoleStepRegionAction
	ConsoleExit
)

const (
	actionBack = iota
	actionToggle
	actionRefresh
	actionExit
)

var (
	colorLabel = color.New(color.FgYellow)
)

type Console struct {
	step           uint8
	selectIndex    int
	regions        become.Regions
	candidatesOnly bool
	quit           chan os.Signal
}

func (console *Console) Run() {
Loop:
	for {
		switch console.step {
		case ConsoleStepSelectRegion:
			console.selectRegion()
		case ConsoleStepRegionAction:
			console.regionAction()
		default:
			break Loop
		}
	}
	signal.Stop(console.quit)
	close(console.quit)
}

func (console *Console) label() string {
	var help string
	var label string
	switch console.step {
	case ConsoleStepSelectRegion:
		help = "Press [J] [K] to navigate, [/] to search"
		if console.candidatesOnly {
			label = colorLabel.Sprintf("<CANDIDATES %d>", len(console.regions))
		} else {
			label = colorLabel.Sprintf("<REGIONS %d>", len(console.regions))
		}
	case ConsoleStepRegionAction:
		help = console.regions[console.selectIndex].Range().String()
		label = colorLabel.Sprintf("<REGION>")
	}
	return fmt.Sprintf("%s [%s]", label, help)
}

// refresh takes a new snapshot, the map is never reused between steps.
func (console *Console) refresh() {
	regions, err := become.SelfRegions()
	console.checkError(err)
	if console.candidatesOnly {
		regions = regions.Candidates()
	}
	console.regions = regions
}

func (console *Console) selectRegion() {
	console.refresh()
	if len(console.regions) == 0 {
		color.Red("ERROR: No regions.")
		os.Exit(1)
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ if .Candidate }}{{ .String | green }}{{ else }}{{ .String }}{{ end }}",
		Inactive: "  {{ if .Candidate }}{{ .String | green }}{{ else }}{{ .String | faint }}{{ end }}",
		Selected: "Region > {{ .String | green }}",
		Details: `
──────────────────── Region ────────────────────
{{ "Range:" | faint }}	{{ printf "%08x-%08x" .Start .End }}
{{ "Size:" | faint }}	{{ .Size | cyan }}
{{ "Perms:" | faint }}	{{ .Perms | yellow }}
{{ "Offset:" | faint }}	{{ printf "%08x" .Offset }}
{{ "Device:" | faint }}	{{ .Device }}
{{ "Inode:" | faint }}	{{ .Inode }}
{{ "Path:" | faint }}	{{ .Pathname }}
{{ "Scanned:" | faint }}	{{ .Candidate }}`,
	}

	regions := console.regions
	prompt := promptui.Select{
		Label:     console.label(),
		Items:     regions,
		Templates: templates,
		Size:      12,
		Searcher: func(input string, index int) bool {
			return strings.Contains(regions[index].String(), input)
		},
	}
	prompt.HideHelp = true

	i, _, err := prompt.Run()
	console.checkError(err)

	console.selectIndex = i
	console.step = ConsoleStepRegionAction
}

func (console *Console) regionAction() {
	region := console.regions[console.selectIndex]
	ranges := become.Regions{region}.ScanRanges()
	fmt.Printf("%s %s, %d scan ranges\n",
		colorLabel.Sprint("Size:"), formatSize(region.Size()), len(ranges))

	toggle := "Candidates only"
	if console.candidatesOnly {
		toggle = "All regions"
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ . | red }}",
		Inactive: "  {{ . }}",
	}
	prompt := promptui.Select{
		Label:     console.label(),
		Items:     []string{"Back", toggle, "Refresh", "Exit"},
		Templates: templates,
		Size:      4,
	}
	prompt.HideHelp = true

	i, _, err := prompt.RunCursorAt(0, 0)
	console.checkError(err)

	fmt.Print("\u001B[1A\u001B[2K")

	switch i {
	case actionToggle:
		console.candidatesOnly = !console.candidatesOnly
		console.step = ConsoleStepSelectRegion
	case actionExit:
		console.step = ConsoleExit
	case actionBack, actionRefresh:
		console.step = ConsoleStepSelectRegion
	}
}

func (console *Console) checkError(err error) {
	if err != nil {
		if err != promptui.ErrInterrupt && err != promptui.ErrEOF {
			color.Red("ERROR: %v", err)
		}
		os.Exit(1)
	}
}

func runConsole() {
	console := &Console{
		quit: make(chan os.Signal, 1),
	}

	signal.Notify(console.quit, os.Interrupt)
	go console.Run()
	<-console.quit
}
