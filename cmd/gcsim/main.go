// Command gcsim plays a controller scenario through the host transfer
// stack against an emulated GameCube pad on a software wire.
//
//	gcsim [-v] scenario.yaml
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tinygo-org/joybus"
	"github.com/tinygo-org/joybus/internal/scenario"
)

func main() {
	verbose := flag.Bool("v", false, "log every transfer")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: gcsim [-v] <scenario.yaml>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	joybus.SetLogLevel(slog.LevelInfo)
	if *verbose {
		joybus.SetLogLevel(slog.LevelDebug)
	}
	log := joybus.DefaultLogger

	cfg, err := scenario.Load(flag.Arg(0))
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}
	if err := scenario.Validate(cfg); err != nil {
		log.Error("config validation failed", "err", err)
		os.Exit(1)
	}
	scenario.Normalize(cfg)

	r := scenario.NewRunner(cfg)
	defer r.Close()

	id, err := r.Identify()
	if err != nil {
		log.Warn("identify failed", "err", err)
	} else {
		log.Info("controller identified", "id", fmt.Sprintf("%02x%02x%02x", id[0], id[1], id[2]))
	}

	failed := 0
	r.Run(func(res scenario.Result) {
		st := res.State
		attrs := []any{
			"step", res.Step,
			"connected", fmt.Sprintf("%d/%d", res.Connected, res.Polls),
			"buttons", st.Buttons().String(),
			"hat", st.Hat.String(),
			"stick", fmt.Sprintf("%d,%d", st.StickX, st.StickY),
			"cstick", fmt.Sprintf("%d,%d", st.CStickX, st.CStickY),
			"triggers", fmt.Sprintf("%d,%d", st.TriggerL, st.TriggerR),
			"rumble", res.Rumble,
		}
		if !res.Passed() {
			failed++
			log.Error("step failed", append(attrs, "mismatch", res.Mismatch)...)
			return
		}
		log.Info("step", attrs...)
	})

	stats := r.Stats()
	log.Info("done", "transfers", stats.Transfers, "timeouts", stats.Timeouts, "bytes", stats.BytesIn, "failed", failed)
	if failed > 0 {
		r.Close()
		os.Exit(1)
	}
}
