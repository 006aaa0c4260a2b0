// microcomputer loads a raw binary memory image, assembles the reference
// machine around it, and runs it to a halt, printing the final register
// state.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/jmchacon/microcode/computer"
	"github.com/jmchacon/microcode/disassembler"
	"github.com/jmchacon/microcode/irq"
)

var (
	loadAddr = flag.Int("load_addr", 0x0000, "Address to load the input image at")
	maxTicks = flag.Uint64("max_ticks", 1000000, "Maximum ticks to run before aborting with a halt timeout. 0 means unbounded.")
	verbose  = flag.Bool("verbose", false, "If true dump the full final component tree via go-spew")
	disasm   = flag.Bool("disassemble", false, "If true print the loaded image's disassembly before running it")
)

func main() {
	flag.Parse()
	if len(flag.Args()) != 1 {
		log.Fatalf("Invalid command: %s <image file>", os.Args[0])
	}
	if *loadAddr < 0 || *loadAddr > 0xFFFF {
		log.Fatal("-load_addr out of range. Must be between 0-65535")
	}

	fn := flag.Args()[0]
	data, err := ioutil.ReadFile(fn)
	if err != nil {
		log.Fatalf("Can't open %s - %v", fn, err)
	}

	image := make(map[uint16]uint8, len(data))
	for i, b := range data {
		image[uint16(*loadAddr)+uint16(i)] = b
	}

	c, err := computer.NewMinimalComputer(image)
	if err != nil {
		log.Fatalf("Can't build computer - %v", err)
	}

	if *disasm {
		set, err := computer.ReferenceInstructionSet()
		if err != nil {
			log.Fatalf("Can't build instruction set for disassembly - %v", err)
		}
		table := disassembler.New(set)
		end := uint16(*loadAddr) + uint16(len(data))
		for _, line := range table.Disassemble(c.Memory, uint16(*loadAddr), end) {
			fmt.Println(line)
		}
	}

	var watchdog *irq.Watchdog
	if *maxTicks > 0 {
		watchdog = irq.NewWatchdog(*maxTicks)
	}
	if err := c.TickUntilHalt(watchdog); err != nil {
		log.Fatalf("Run failed - %v", err)
	}

	fmt.Printf("A=%.2X X=%.2X Y=%.2X PC=%.4X SP=%.4X\n",
		c.A.Value(), c.X.Value(), c.Y.Value(), c.ProgramCounter.Value(), c.StackPointer.Value())

	if *verbose {
		spew.Dump(c)
	}
}
