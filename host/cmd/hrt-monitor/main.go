package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/eapache/queue"

	"hrtimer/host/serial"
	"hrtimer/report"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud    = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	window  = flag.Int("window", 10, "Number of latency reports in the moving worst-case window")
	verbose = flag.Bool("verbose", false, "Print every frame, not just summaries")
)

func main() {
	flag.Parse()

	fmt.Println("HRT Monitor - timer telemetry viewer")
	fmt.Println("====================================")

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	fmt.Printf("Connecting to %s...\n", *device)
	port, err := serial.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()

	var decoder report.Decoder

	// Rolling window of per-report worst-case latencies.
	maxWindow := queue.New()

	buf := make([]byte, 256)
	for {
		n, err := port.Read(buf)
		if err != nil {
			// tarm/serial returns io.EOF on read timeout; keep polling.
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if n == 0 {
			continue
		}
		decoder.Feed(buf[:n])

		for {
			msgType, payload, ok := decoder.Next()
			if !ok {
				break
			}

			switch msgType {
			case report.MsgUptime:
				u, err := report.ParseUptime(payload)
				if err != nil {
					fmt.Fprintf(os.Stderr, "bad uptime frame: %v\n", err)
					continue
				}
				printUptime(u)

			case report.MsgLatency:
				l, err := report.ParseLatency(payload)
				if err != nil {
					fmt.Fprintf(os.Stderr, "bad latency frame: %v\n", err)
					continue
				}

				maxWindow.Add(l.Max)
				for maxWindow.Length() > *window {
					maxWindow.Remove()
				}
				printLatency(l, windowWorst(maxWindow))

			default:
				if *verbose {
					fmt.Printf("unknown frame type 0x%02x (%d bytes)\n", msgType, len(payload))
				}
			}
		}

		if *verbose && decoder.Dropped() > 0 {
			fmt.Printf("stream bytes dropped so far: %d\n", decoder.Dropped())
		}
	}
}

// printUptime shows the firmware clock as days/hours/min/sec plus the raw
// microsecond value and wrap count.
func printUptime(u report.Uptime) {
	d := time.Duration(u.Micros) * time.Microsecond
	fmt.Printf("uptime: %-16s (%d us, %d counter wraps)\n", d, u.Micros, u.Wraps)
}

// printLatency renders the histogram the way the firmware buckets it.
func printLatency(l report.Latency, worst uint32) {
	fmt.Println("dispatch latency (us):")

	bounds := []uint32{1, 2, 5, 10, 20, 50, 100, 1000}
	for i, n := range l.Counters {
		var label string
		if i < len(bounds) {
			label = fmt.Sprintf("<=%d", bounds[i])
		} else {
			label = fmt.Sprintf(">%d", bounds[len(bounds)-1])
		}
		if n > 0 {
			fmt.Printf("  %8s: %d\n", label, n)
		}
	}

	min := "-"
	if l.Min != ^uint32(0) {
		min = fmt.Sprintf("%d", l.Min)
	}
	fmt.Printf("  min=%s max=%d  worst over last %d reports: %d\n",
		min, l.Max, *window, worst)
}

// windowWorst scans the rolling window for its largest sample.
func windowWorst(q *queue.Queue) uint32 {
	var worst uint32
	for i := 0; i < q.Length(); i++ {
		if v := q.Get(i).(uint32); v > worst {
			worst = v
		}
	}
	return worst
}
