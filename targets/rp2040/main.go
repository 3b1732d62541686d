//go:build rp2040 || rp2350

package main

import (
	"device/rp"
	"machine"
	"runtime/interrupt"
	"time"

	"hrtimer/hrt"
	"hrtimer/report"
)

const (
	// heartbeatPeriod is the LED callout interval in microseconds.
	heartbeatPeriod = 500000

	// telemetryInterval is how often uptime/latency frames go to the host.
	telemetryInterval = time.Second
)

var (
	timer *hrt.HRT

	heartbeat hrt.Call
	led       = machine.LED

	// Telemetry scratch buffer, reused per report to avoid allocation in
	// the main loop.
	frameBuf []byte
)

func main() {
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	drv := NewRPTimerDriver()
	timer = hrt.New(hrt.Config{Frequency: TimerFreq}, drv)

	// Route the timer interrupt to the dispatcher.
	intr := interrupt.New(rp.IRQ_TIMER_IRQ_0, timerISR)
	intr.Enable()

	// Self-rearming heartbeat: the dispatcher never re-arms periodic
	// callouts, the callback does it with the stored period.
	timer.CallEvery(&heartbeat, heartbeatPeriod, heartbeatPeriod, heartbeatTick, nil)

	frameBuf = make([]byte, 0, 2*report.MaxPayload)
	for {
		time.Sleep(telemetryInterval)
		sendTelemetry()
	}
}

// timerISR is the interrupt handler for TIMER_IRQ_0.
func timerISR(interrupt.Interrupt) {
	timer.Interrupt()
}

// heartbeatTick toggles the LED and re-arms itself. Runs in interrupt
// context, so it only flips a pin and reschedules.
func heartbeatTick(arg interface{}) {
	led.Set(!led.Get())
	timer.CallAfter(&heartbeat, heartbeat.Period(), heartbeatTick, arg)
}

// sendTelemetry publishes one uptime and one latency frame over USB serial.
func sendTelemetry() {
	var now uint64
	timer.StoreNow(&now)

	frameBuf = frameBuf[:0]
	frameBuf, _ = report.AppendUptime(frameBuf, report.Uptime{
		Micros: now,
		Wraps:  timer.WrapCount(),
	})

	snap := timer.Latency()
	frameBuf, _ = report.AppendLatency(frameBuf, report.Latency{
		Counters: snap.Counters[:],
		Min:      snap.Min,
		Max:      snap.Max,
	})

	machine.Serial.Write(frameBuf)
}
