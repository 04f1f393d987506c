//go:build linux

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/kayon/become"
	"github.com/kayon/become/heap"
	"github.com/kayon/become/scanner"
)

const demoArenaSize = 1 << 16

// demo points holders at a source object, then makes the source become a
// destination object, first across a private buffer and then across the whole
// process.
func demo(holders int) error {
	if holders < 1 {
		return errors.Errorf("invalid holders %d", holders)
	}

	arena, err := heap.NewArena(demoArenaSize)
	if err != nil {
		return err
	}

	if err = demoBuffer(arena); err != nil {
		return err
	}
	return demoProcess(arena, holders)
}

// demoBuffer rewrites a word buffer: [A,1,2,A,A,5,6,7,A,9] -> [B,1,2,B,B,5,6,7,B,9]
func demoBuffer(arena *heap.Arena) error {
	a, err := arena.New(0)
	if err != nil {
		return err
	}
	b, err := arena.New(0)
	if err != nil {
		return err
	}

	words, err := scanner.NewWords(10)
	if err != nil {
		return err
	}
	defer words.Unmap()

	data := words.Data()
	for i := range data {
		data[i] = uintptr(i)
	}
	for _, i := range []int{0, 3, 4, 8} {
		data[i] = a.Addr()
	}
	bAddr := b.Addr()

	fmt.Println(color.YellowString("Buffer:"), formatWords(data, bAddr))

	collector := scanner.NewSliceCollector(4)
	n, err := become.Substitute([]scanner.Range{words.Range()}, a, b, scanner.WithCollector(collector))
	if err != nil {
		return err
	}

	fmt.Println(color.YellowString("Result:"), formatWords(data, bAddr))
	fmt.Printf("%s %s words, destination refs %d\n",
		color.YellowString("Rewritten:"), color.GreenString("%d", n), b.Refs())
	for _, addr := range collector.Results {
		fmt.Printf("  %s\n", color.CyanString("%08X", addr))
	}
	return nil
}

func demoProcess(arena *heap.Arena, holders int) error {
	src, err := arena.New(1)
	if err != nil {
		return err
	}
	dst, err := arena.New(1)
	if err != nil {
		return err
	}

	list := make([]*heap.Object, holders)
	for i := range list {
		if list[i], err = arena.New(1); err != nil {
			return err
		}
		list[i].SetField(0, src)
	}

	fmt.Printf("%s %d holders, source refs %d, destination refs %d\n",
		color.YellowString("Process:"), holders, src.Refs(), dst.Refs())

	before := dst.Refs()
	n, err := become.Become(src, dst)
	if err != nil {
		return err
	}

	var moved int
	for _, h := range list {
		if h.Field(0) == dst {
			moved++
		}
	}

	fmt.Printf("%s %s words, %d/%d holders moved, destination refs %d -> %d\n",
		color.YellowString("Rewritten:"),
		color.GreenString("%d", n),
		moved, holders,
		before, dst.Refs(),
	)
	return nil
}

func formatWords(data []uintptr, b uintptr) string {
	out := make([]byte, 0, len(data)*4)
	out = append(out, '[')
	for i, v := range data {
		if i > 0 {
			out = append(out, ',')
		}
		switch {
		case v == b:
			out = append(out, 'B')
		case v > uintptr(len(data)):
			out = append(out, 'A')
		default:
			out = fmt.Appendf(out, "%d", v)
		}
	}
	return string(append(out, ']'))
}
