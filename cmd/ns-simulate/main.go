package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"NetSentra/internal/simulate"

	"github.com/google/gopacket/pcap"
)

// ns-simulate crafts controlled attack traffic for testing the detector.
// Only use it against networks you are authorized to test.
func main() {
	mode := flag.String("mode", "scan", "Simulation mode: 'scan', 'flood', or 'sweep'.")
	src := flag.String("src", "10.0.0.5", "Source IP address for the crafted packets.")
	target := flag.String("target", "", "Target IP address (scan/flood) or CIDR network (sweep).")
	ports := flag.String("ports", "", "Comma-separated destination ports for scan mode (default: common ports).")
	count := flag.Int("count", 101, "Number of echo requests for flood mode.")
	output := flag.String("o", "", "Write the crafted frames to this pcap file.")
	iface := flag.String("iface", "", "Inject the crafted frames on this interface instead of writing a file.")
	interval := flag.Duration("interval", 10*time.Millisecond, "Spacing between crafted packets.")
	flag.Parse()

	if *target == "" {
		fmt.Fprintln(os.Stderr, "Error: -target is required.")
		flag.Usage()
		os.Exit(1)
	}
	if *output == "" && *iface == "" {
		fmt.Fprintln(os.Stderr, "Error: one of -o or -iface is required.")
		flag.Usage()
		os.Exit(1)
	}

	srcIP := net.ParseIP(*src)
	if srcIP == nil {
		log.Fatalf("Invalid source IP: %s", *src)
	}

	var frames [][]byte
	var err error

	switch *mode {
	case "scan":
		dstIP := net.ParseIP(*target)
		if dstIP == nil {
			log.Fatalf("Invalid target IP: %s", *target)
		}
		frames, err = simulate.PortScan(srcIP, dstIP, parsePorts(*ports))
	case "flood":
		dstIP := net.ParseIP(*target)
		if dstIP == nil {
			log.Fatalf("Invalid target IP: %s", *target)
		}
		frames, err = simulate.ICMPFlood(srcIP, dstIP, *count)
	case "sweep":
		_, network, parseErr := net.ParseCIDR(*target)
		if parseErr != nil {
			log.Fatalf("Invalid target network: %v", parseErr)
		}
		frames, err = simulate.PingSweep(srcIP, network)
	default:
		fmt.Fprintf(os.Stderr, "Invalid mode: %s\n", *mode)
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("Failed to build %s traffic: %v", *mode, err)
	}

	log.Printf("Built %d %s frame(s) from %s towards %s.", len(frames), *mode, *src, *target)

	if *output != "" {
		if err := simulate.WritePcap(*output, frames, time.Now(), *interval); err != nil {
			log.Fatalf("Failed to write pcap: %v", err)
		}
		log.Printf("Wrote %d frame(s) to %s.", len(frames), *output)
		return
	}

	handle, err := pcap.OpenLive(*iface, 1600, false, pcap.BlockForever)
	if err != nil {
		log.Fatalf("Error opening device %s: %v", *iface, err)
	}
	defer handle.Close()

	for i, frame := range frames {
		if err := handle.WritePacketData(frame); err != nil {
			log.Fatalf("Failed to inject frame %d: %v", i, err)
		}
		time.Sleep(*interval)
	}
	log.Printf("Injected %d frame(s) on %s.", len(frames), *iface)
}

func parsePorts(raw string) []uint16 {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ports := make([]uint16, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 16)
		if err != nil {
			log.Fatalf("Invalid port %q: %v", p, err)
		}
		ports = append(ports, uint16(v))
	}
	return ports
}
