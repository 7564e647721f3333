package main

import (
	"bytes"
	"context"
	"time"

	"github.com/alecthomas/kong"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("type RunCmd", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		cmd    RunCmd
		out    *bytes.Buffer
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		cmd = RunCmd{
			Workers:    2,
			Iterations: 10,
			Depth:      2,
			Timeout:    time.Second,
		}
		out = &bytes.Buffer{}
	})

	AfterEach(func() {
		cancel()
	})

	Describe("func Run()", func() {
		It("prints a report of the run", func() {
			err := cmd.run(ctx, out)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(out.String()).To(ContainSubstring("Critical sections: 20\n"))
			Expect(out.String()).To(ContainSubstring("Foreign unlocks:   2 rejected\n"))
			Expect(out.String()).To(ContainSubstring("Violations:        0\n"))
		})

		It("returns an error without printing if the timeout is not positive", func() {
			cmd.Timeout = 0

			err := cmd.run(ctx, out)
			Expect(err).To(MatchError(ContainSubstring("timeout")))
			Expect(out.Len()).To(BeZero())
		})

		It("returns an error without printing if the options are invalid", func() {
			cmd.Workers = 0

			err := cmd.run(ctx, out)
			Expect(err).To(MatchError(ContainSubstring("workers")))
			Expect(out.Len()).To(BeZero())
		})
	})

	Describe("command line parsing", func() {
		parse := func(args ...string) (CLI, error) {
			var cli CLI
			parser, err := kong.New(&cli)
			if err != nil {
				return cli, err
			}
			_, err = parser.Parse(args)
			return cli, err
		}

		It("applies the default flags", func() {
			cli, err := parse("run")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(cli.Run.Workers).To(Equal(8))
			Expect(cli.Run.Iterations).To(Equal(1000))
			Expect(cli.Run.Depth).To(Equal(3))
			Expect(cli.Run.Try).To(BeFalse())
			Expect(cli.Run.Timeout).To(Equal(30 * time.Second))
		})

		It("rejects a non-positive timeout", func() {
			_, err := parse("run", "--timeout=0s")
			Expect(err).To(MatchError(ContainSubstring("timeout")))
		})
	})
})
