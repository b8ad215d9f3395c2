//go:build rp2040 || rp2350

package main

import (
	"image/color"
	"machine"
	"time"

	"github.com/tinygo-org/joybus"
	"github.com/tinygo-org/joybus/gamecube"
	pio "github.com/tinygo-org/joybus/rp2-pio"
	"github.com/tinygo-org/joybus/rp2-pio/piolib"
	"tinygo.org/x/drivers/ssd1306"
)

const (
	padPin = machine.GPIO10
	sdaPin = machine.GPIO4
	sclPin = machine.GPIO5

	width  = 128
	height = 64

	pollPeriod = 16 * time.Millisecond
	// Redraw every few polls, a full frame over I2C takes longer than a poll.
	drawEvery = 4
)

var white = color.RGBA{255, 255, 255, 255}

func main() {
	time.Sleep(2 * time.Second)

	machine.I2C0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       sdaPin,
		SCL:       sclPin,
	})
	display := ssd1306.NewI2C(machine.I2C0)
	display.Configure(ssd1306.Config{Address: 0x3C, Width: width, Height: height})
	display.ClearDisplay()

	sm, err := pio.PIO0.ClaimStateMachine()
	if err != nil {
		panic(err.Error())
	}
	link, err := piolib.NewJoybus(sm, padPin)
	if err != nil {
		panic(err.Error())
	}
	pad := gamecube.New(joybus.NewBus(link))
	if _, err := pad.Identify(); err != nil {
		println("identify:", err.Error())
	}

	var polls uint32
	for {
		// Error is informational: an unplugged pad draws as all zero.
		_ = pad.Poll()
		polls++
		if polls%drawEvery == 0 {
			draw(&display, pad.State())
		}
		time.Sleep(pollPeriod)
	}
}

// draw shows the two sticks as crosshairs in 64x64 boxes, the triggers as
// bars along the bottom and one dot per held button along the top.
func draw(display *ssd1306.Device, st gamecube.State) {
	display.ClearBuffer()
	crosshair(display, 0, st.StickX, st.StickY)
	crosshair(display, width/2, st.CStickX, st.CStickY)
	bar(display, 0, st.TriggerL)
	bar(display, width/2, st.TriggerR)
	buttons := st.Buttons()
	for i := int16(0); i < 16; i++ {
		if buttons&(1<<i) != 0 {
			display.SetPixel(4*i+1, 0, white)
			display.SetPixel(4*i+2, 0, white)
		}
	}
	display.Display()
}

func crosshair(display *ssd1306.Device, x0 int16, x, y uint8) {
	// Axes grow up and to the right; screen y grows down.
	cx := x0 + int16(x)/4
	cy := height - 1 - int16(y)/4
	for d := int16(-2); d <= 2; d++ {
		display.SetPixel(cx+d, cy, white)
		display.SetPixel(cx, cy+d, white)
	}
}

func bar(display *ssd1306.Device, x0 int16, v uint8) {
	for x := int16(0); x < int16(v)/4; x++ {
		display.SetPixel(x0+x, height-1, white)
	}
}
