package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/markand/SDL/internal/stress"
	"github.com/markand/SDL/thread"
)

// RunCmd runs a stress test against a single recursive mutex.
type RunCmd struct {
	Workers    int           `kong:"optional,name='workers',short='w',default='8',help='Number of goroutines contending for the mutex.'"`
	Iterations int           `kong:"optional,name='iterations',short='n',default='1000',help='Number of critical sections entered by each goroutine.'"`
	Depth      int           `kong:"optional,name='depth',short='d',default='3',help='Number of recursive locks taken on entry to each critical section.'"`
	Try        bool          `kong:"optional,name='try',help='Poll with TryLock instead of blocking in Lock.'"`
	Timeout    time.Duration `kong:"optional,name='timeout',default='30s',help='Maximum duration of the run.'"`
}

// Validate returns an error if the command's flags can not be used for a run.
func (cmd RunCmd) Validate() error {
	if cmd.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", cmd.Timeout)
	}

	return cmd.options().Validate()
}

// Run executes the mutexstress run command.
func (cmd RunCmd) Run(ctx context.Context) error {
	return cmd.run(ctx, os.Stdout)
}

// run executes the command, writing its report to w. Nothing is written if the
// flags are invalid.
func (cmd RunCmd) run(ctx context.Context, w io.Writer) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cmd.Timeout)
	defer cancel()

	mutex, err := thread.NewMutex()
	if err != nil {
		return err
	}
	defer mutex.Destroy()

	start := time.Now()
	report, err := stress.Run(ctx, mutex, cmd.options())
	elapsed := time.Since(start)

	fmt.Fprintf(w, "Critical sections: %d\n", report.Entries)
	fmt.Fprintf(w, "Would block:       %d\n", report.WouldBlock)
	fmt.Fprintf(w, "Foreign unlocks:   %d rejected\n", report.ForeignUnlocks)
	fmt.Fprintf(w, "Violations:        %d\n", report.Violations)
	fmt.Fprintf(w, "Elapsed:           %s\n", elapsed.Round(time.Millisecond))

	return err
}

func (cmd RunCmd) options() stress.Options {
	return stress.Options{
		Workers:    cmd.Workers,
		Iterations: cmd.Iterations,
		Depth:      cmd.Depth,
		Try:        cmd.Try,
	}
}
