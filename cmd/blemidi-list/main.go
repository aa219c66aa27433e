// Command blemidi-list scans for BLE MIDI peripherals and prints the
// ports it finds, one per line, then exits.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bleportable/blemidi/blemidi"
	"github.com/bleportable/blemidi/bleport"
)

func main() {
	clientName := flag.String("client-name", "blemidi-list", "client name reported to the façade")
	wantInputs := flag.Bool("inputs", true, "list input-capable ports")
	wantOutputs := flag.Bool("outputs", true, "list output-capable ports")
	flag.Parse()

	exitCode := 0

	if *wantInputs {
		in, err := blemidi.NewMidiInput(*clientName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "blemidi-list: input: %v\n", err)
			exitCode = 1
		} else {
			printPorts("input", in.Ports())
		}
	}

	if *wantOutputs {
		out, err := blemidi.NewMidiOutput(*clientName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "blemidi-list: output: %v\n", err)
			exitCode = 1
		} else {
			printPorts("output", out.Ports())
		}
	}

	os.Exit(exitCode)
}

func printPorts(kind string, ports []bleport.Port) {
	if len(ports) == 0 {
		fmt.Printf("no %s ports found\n", kind)
		return
	}
	for _, p := range ports {
		fmt.Printf("%s\tadapter=%d\t%s\t%s\n", kind, p.AdapterIndex, p.ID(), p.Name)
	}
}
