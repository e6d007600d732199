// Command slimetora-bridged runs the HaritoraX-to-SlimeVR bridge headless,
// driving it from flags instead of the desktop GUI shell.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/haritora-bridge/slimetora/internal/bridge"
	"github.com/haritora-bridge/slimetora/internal/version"
)

var (
	broadcastAddr = flag.String("broadcast-addr", "255.255.255.255", "SlimeVR UDP broadcast address")
	broadcastPort = flag.Int("broadcast-port", 6969, "SlimeVR UDP broadcast port")
	firmwareName  = flag.String("firmware-name", "SlimeTora "+version.Version, "Firmware name trackers present to the SlimeVR server")
	logsDir       = flag.String("logs-dir", "logs", "Directory used by open_logs_folder")

	modelFlag = flag.String("model", "", "Tracker model to start: wired, wireless, or x2")
	modesFlag = flag.String("modes", "", "Comma-separated transports to start: ble,serial")
	portsFlag = flag.String("ports", "", "Comma-separated serial ports to open")
	macsFlag  = flag.String("macs", "", "Comma-separated BLE MAC addresses to connect")
	scanBLE   = flag.Bool("scan-ble", false, "Run a BLE scan at startup and log discovered devices")

	versionFlag  = flag.Bool("version", false, "Print version information and exit")
	versionShort = flag.Bool("v", false, "Print version information and exit (shorthand)")
)

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.SetOutput(os.Stdout)

	if *versionFlag || *versionShort {
		fmt.Printf("slimetora-bridged v%s (git SHA: %s)\n", version.Version, version.GitSHA)
		os.Exit(0)
	}

	cfg := bridge.DefaultConfig(*firmwareName)
	cfg.SlimeVR.BroadcastAddr = *broadcastAddr
	cfg.SlimeVR.Port = *broadcastPort
	cfg.LogsDir = *logsDir

	svc := bridge.NewService(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case evt, ok := <-svc.Events():
				if !ok {
					return
				}
				log.Printf("[%s] tracker=%s type=%v mode=%v data=%+v", evt.Kind, evt.Tracker, evt.TrackerType, evt.ConnectionMode, evt.Data)
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := svc.StartHeartbeat(); err != nil {
		log.Fatalf("failed to start heartbeat tracker: %v", err)
	}

	if logsPath, err := svc.OpenLogsFolder(); err != nil {
		log.Printf("warning: failed to prepare logs folder: %v", err)
	} else {
		log.Printf("logs folder ready at %s", logsPath)
	}

	if *scanBLE {
		if err := svc.StartBLEScanning(); err != nil {
			log.Printf("warning: failed to start BLE scan: %v", err)
		}
	}

	modes := splitCSV(*modesFlag)
	if *modelFlag != "" && len(modes) > 0 {
		ports := splitCSV(*portsFlag)
		macs := splitCSV(*macsFlag)
		if err := svc.StartConnection(*modelFlag, modes, ports, macs); err != nil {
			log.Printf("warning: start_connection reported: %v", err)
		}
	} else if *modelFlag != "" {
		log.Printf("warning: -model given without -modes, ignoring")
	}

	log.Printf("slimetora-bridged v%s running (git SHA: %s)", version.Version, version.GitSHA)

	<-ctx.Done()
	log.Printf("shutting down")

	if err := svc.CleanupConnections(); err != nil {
		log.Printf("warning: cleanup_connections reported: %v", err)
	}

	wg.Wait()
	log.Printf("graceful shutdown complete")
}
