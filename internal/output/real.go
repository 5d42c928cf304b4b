//go:build linux

package output

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Default pin assignments (BCM numbering).
const (
	DefaultPinDay   = 13
	DefaultPinNight = 19
)

// PWMDriver drives the channels with software PWM on GPIO character-device
// lines. Hardware PWM is not available through the character device, so each
// channel runs a small goroutine toggling its line; at a 10ms period the
// flicker is invisible on LED strips.
type PWMDriver struct {
	chip     *gpiocdev.Chip
	channels map[Channel]*pwmChannel
}

type pwmChannel struct {
	line   *gpiocdev.Line
	duty   chan int
	done   chan struct{}
	period time.Duration
}

// NewPWMDriver opens the chip and claims both pins as outputs, initially low.
func NewPWMDriver(chipName string, pinDay, pinNight int, period time.Duration) (*PWMDriver, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	d := &PWMDriver{chip: chip, channels: make(map[Channel]*pwmChannel)}
	for ch, pin := range map[Channel]int{Day: pinDay, Night: pinNight} {
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", ch, pin, err)
		}
		pc := &pwmChannel{
			line:   line,
			duty:   make(chan int),
			done:   make(chan struct{}),
			period: period,
		}
		d.channels[ch] = pc
		go pc.run()
	}
	return d, nil
}

// SetChannel drives the channel at the given duty cycle.
func (d *PWMDriver) SetChannel(ch Channel, duty int) error {
	pc, ok := d.channels[ch]
	if !ok {
		return fmt.Errorf("unknown channel %d", ch)
	}
	if duty < 0 {
		duty = 0
	}
	if duty > MaxDuty {
		duty = MaxDuty
	}
	pc.duty <- duty
	return nil
}

// DisableChannel turns the channel fully off.
func (d *PWMDriver) DisableChannel(ch Channel) error {
	return d.SetChannel(ch, 0)
}

// Close stops the PWM goroutines, drives both lines low, and releases the chip.
func (d *PWMDriver) Close() error {
	var firstErr error
	for _, pc := range d.channels {
		close(pc.done)
		pc.line.SetValue(0)
		if err := pc.line.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close line: %w", err)
		}
	}
	if d.chip != nil {
		if err := d.chip.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close chip: %w", err)
		}
	}
	return firstErr
}

// run toggles the line according to the current duty cycle. Duty 0 and
// MaxDuty hold the line steady without toggling.
func (pc *pwmChannel) run() {
	duty := 0
	for {
		onTime := pc.period * time.Duration(duty) / MaxDuty
		offTime := pc.period - onTime

		if onTime > 0 {
			pc.line.SetValue(1)
			select {
			case duty = <-pc.duty:
				continue
			case <-pc.done:
				return
			case <-time.After(onTime):
			}
		}
		if offTime > 0 {
			pc.line.SetValue(0)
			select {
			case duty = <-pc.duty:
				continue
			case <-pc.done:
				return
			case <-time.After(offTime):
			}
		}
	}
}
