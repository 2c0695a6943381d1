package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"NetSentra/internal/alert"
	"NetSentra/internal/capture"
	"NetSentra/internal/classifier"
	"NetSentra/internal/config"
	"NetSentra/internal/distributor"
	"NetSentra/internal/model"
	"NetSentra/internal/pipeline"
	"NetSentra/internal/tracker"

	"github.com/olekukonko/tablewriter"
)

// pcap-replay runs a capture file through the full detection pipeline and
// prints the resulting alerts and statistics.
func main() {
	file := flag.String("f", "", "Path to the pcap file to analyze.")
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Error: -f is required.")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	window, err := time.ParseDuration(cfg.Tracker.Window)
	if err != nil {
		log.Fatalf("Invalid tracker window: %v", err)
	}
	sweepInterval, err := time.ParseDuration(cfg.Tracker.SweepInterval)
	if err != nil {
		log.Fatalf("Invalid tracker sweep interval: %v", err)
	}

	source, err := capture.NewFileSource(*file)
	if err != nil {
		log.Fatalf("Failed to open pcap file: %v", err)
	}
	defer source.Close()

	trk := tracker.New(window, sweepInterval, cfg.Tracker.NumShards)
	cls := classifier.New(cfg.Classifier.PortScanThreshold, cfg.Classifier.ICMPFloodThreshold)
	store := alert.NewStore(cfg.Alerts.LogCapacity)
	dist := distributor.New(cfg.Distributor.QueueCapacity, cfg.Distributor.MaxFailures)

	pipe := pipeline.New(trk, cls, store, dist, []model.Source{source})
	if err := pipe.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}

	// The worker exits when the file is drained.
	pipe.Wait()
	if err := pipe.Stop(); err != nil {
		log.Fatalf("Failed to stop pipeline: %v", err)
	}
	dist.Close()

	printSummary(pipe.Statistics(), store)
}

func printSummary(traffic model.TrafficStatistics, store *alert.Store) {
	fmt.Printf("\nProcessed %d packet(s), %d malformed record(s) skipped.\n", traffic.TotalPackets, traffic.MalformedRecords)
	for proto, count := range traffic.ByProtocol {
		fmt.Printf("  %-6s %d\n", proto, count)
	}

	alerts := store.Recent(-1)
	if len(alerts) == 0 {
		fmt.Println("\nNo alerts.")
		return
	}

	fmt.Printf("\n%d alert(s):\n", len(alerts))
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "Threat", "Severity", "Source", "Destination", "Evidence"})
	for _, a := range alerts {
		evidence := fmt.Sprintf("%d packets", a.Evidence.PacketCount)
		if a.Threat == model.ThreatPortScan {
			evidence = fmt.Sprintf("%d ports %v", len(a.Evidence.ScannedPorts), a.Evidence.ScannedPorts)
		}
		table.Append([]string{
			a.Timestamp.Format("15:04:05.000"),
			string(a.Threat),
			string(a.Severity),
			a.SrcIP,
			a.DstIP,
			evidence,
		})
	}
	table.Render()
}
