//go:build rp2040 || rp2350

package main

import (
	"runtime/volatile"
	"unsafe"

	"hrtimer/hrt"
)

// RP2040/RP2350 TIMER peripheral memory map
const (
	timerBase      = 0x40054000
	timerALARM0    = timerBase + 0x10 // Alarm 0 compare value
	timerARMED     = timerBase + 0x20 // Armed status, write 1 to disarm
	timerTIMERAWH  = timerBase + 0x24 // Raw counter high word
	timerTIMERAWL  = timerBase + 0x28 // Raw counter low word
	timerINTR      = timerBase + 0x34 // Raw interrupt status, write 1 to clear
	timerINTE      = timerBase + 0x38 // Interrupt enable
	timerAlarm0Bit = 1 << 0
)

var (
	regALARM0 = (*volatile.Register32)(unsafe.Pointer(uintptr(timerALARM0)))
	regARMED  = (*volatile.Register32)(unsafe.Pointer(uintptr(timerARMED)))
	regRAWH   = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	regRAWL   = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
	regINTR   = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTR)))
	regINTE   = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTE)))
)

// TimerFreq is the RP2040 TIMER tick rate. The peripheral counts
// microseconds directly, so one tick is one microsecond.
const TimerFreq = 1000000

// RPTimerDriver implements hrt.TimerDriver on the RP2040 TIMER block using
// ALARM0. The hardware has no dedicated overflow interrupt for the low
// counter word, so the driver keeps an alarm armed at all times: "disabled"
// means armed at tick 0, which still fires exactly at the low-word wrap.
// Wrap detection itself compares the raw high word against the last read.
type RPTimerDriver struct {
	lastHigh uint32
}

// NewRPTimerDriver enables the ALARM0 interrupt line and returns the driver.
// The caller still has to route IRQ_TIMER_IRQ_0 to the dispatcher.
func NewRPTimerDriver() *RPTimerDriver {
	d := &RPTimerDriver{lastHigh: regRAWH.Get()}
	regINTE.Set(regINTE.Get() | timerAlarm0Bit)
	return d
}

// ReadCounter returns the low word of the free-running microsecond counter.
func (d *RPTimerDriver) ReadCounter() uint32 {
	return regRAWL.Get()
}

// ReadClearStatus acknowledges the alarm in hardware and synthesizes the
// wrap bit from raw-high-word movement. The permanently armed alarm
// guarantees this runs at least once per wrap, so no overflow goes unseen.
func (d *RPTimerDriver) ReadClearStatus() uint8 {
	var status uint8

	if regINTR.Get()&timerAlarm0Bit != 0 {
		regINTR.Set(timerAlarm0Bit)
		status |= hrt.StatusAlarm
	}

	high := regRAWH.Get()
	if high != d.lastHigh {
		d.lastHigh = high
		status |= hrt.StatusWrap
	}

	return status
}

// SetAlarm programs ALARM0; the interrupt fires when the raw low word
// matches. Writing the register arms it.
func (d *RPTimerDriver) SetAlarm(tick uint32) {
	regALARM0.Set(tick)
}

// DisableAlarm parks the alarm on the wrap boundary instead of disarming,
// keeping wrap notifications alive while no callouts are pending.
func (d *RPTimerDriver) DisableAlarm() {
	regALARM0.Set(0)
}
