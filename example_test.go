//go:build linux

package become_test

import (
	"fmt"

	"github.com/kayon/become"
	"github.com/kayon/become/heap"
	"github.com/kayon/become/scanner"
)

func ExampleSubstitute() {
	arena, _ := heap.NewArena(1 << 16)
	a, _ := arena.New(0)
	b, _ := arena.New(0)

	words, _ := scanner.NewWords(10)
	defer words.Unmap()
	data := words.Data()
	for i := range data {
		data[i] = uintptr(i)
	}
	for _, i := range []int{0, 3, 4, 8} {
		data[i] = a.Addr()
	}

	n, _ := become.Substitute([]scanner.Range{words.Range()}, a, b)
	fmt.Printf("rewrote %d words, b has %d references\n", n, b.Refs())
	fmt.Println(data[0] == b.Addr(), data[1], data[8] == b.Addr())
	// Output:
	// rewrote 4 words, b has 5 references
	// true 1 true
}

func ExampleBecome() {
	arena, _ := heap.NewArena(1 << 16)
	src, _ := arena.New(0)
	dst, _ := arena.New(0)
	holder, _ := arena.New(1)
	holder.SetField(0, src)

	if _, err := become.Become(src, dst); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(holder.Field(0) == dst)
	// Output: true
}
