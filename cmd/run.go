package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/chrisuehlinger/vibewindow/config"
	"github.com/chrisuehlinger/vibewindow/js"
	"github.com/chrisuehlinger/vibewindow/logger"
	"github.com/chrisuehlinger/vibewindow/window"
)

var runFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config, c",
		Usage: "path to a YAML policy file",
	},
	cli.StringFlag{
		Name:  "url, u",
		Usage: "document URL for the script's window",
		Value: "https://localhost/",
	},
	cli.IntFlag{
		Name:  "frames, f",
		Usage: "maximum number of host loop iterations",
		Value: 240,
	},
	cli.BoolFlag{
		Name:  "quiet, q",
		Usage: "suppress console and diagnostic output",
	},
}

func run(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return cli.NewExitError("no script file specified", 1)
	}
	path := ctx.Args().First()

	policy := config.Load(ctx.String("config"))

	var log logger.Logger = logger.NewStandard(nil)
	if ctx.Bool("quiet") {
		log = logger.Nop{}
	}

	h := window.NewHost(window.HostOptions{Policy: policy, Logger: log})
	doc, err := window.NewDocument(ctx.String("url"), "")
	if err != nil {
		return fmt.Errorf("invalid document url: %w", err)
	}
	w := h.NewWindow("main", doc)
	rt := js.NewRuntime(w, log)

	code, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := rt.ExecuteScript(string(code), path); err != nil {
		return fmt.Errorf("running %s: %w", path, err)
	}

	// Drive the host loop until the script runs out of work or the frame
	// budget is spent.
	interval := time.Duration(policy.FrameIntervalMS) * time.Millisecond
	for i := 0; i < ctx.Int("frames"); i++ {
		rt.ProcessTimers()
		h.Pump().Step()
		if !hasWork(rt, w) {
			break
		}
		time.Sleep(interval)
	}

	h.Terminate()
	for _, execErr := range rt.Errors() {
		log.Error("script error: %v", execErr)
	}
	return nil
}

// hasWork reports whether the script still has scheduled callbacks of
// any kind.
func hasWork(rt *js.Runtime, w *window.Window) bool {
	if rt.HasPendingWork() {
		return true
	}
	if w.FrameDriver().Len() > 0 {
		return true
	}
	return w.IdleScheduler().PendingCount() > 0 || w.IdleScheduler().RunnableCount() > 0
}
