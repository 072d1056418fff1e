package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/peterh/liner"

	"github.com/jcorbin/scopevm/internal/logio"
	"github.com/jcorbin/scopevm/internal/panicerr"
)

func main() {
	os.Exit(runMain(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func runMain(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var log logio.Logger
	log.SetOutput(stderr)
	defer log.Close()

	var configPath string
	cfg := defaultConfig
	flags := flag.NewFlagSet("scopevm", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "usage: scopevm [flags] program.4km\n")
		flags.PrintDefaults()
	}
	flags.StringVar(&configPath, "config", "", "read settings from a TOML file")
	flags.StringVar(&cfg.Entry, "entry", cfg.Entry, "label to start execution at")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "specify a time limit")
	flags.BoolVar(&cfg.Trace, "trace", cfg.Trace, "enable trace logging")
	flags.IntVar(&cfg.CallLimit, "call-limit", cfg.CallLimit, "limit the depth of nested calls")
	flags.BoolVar(&cfg.Interactive, "interactive", cfg.Interactive, "prompt for read input")
	flags.StringVar(&cfg.Prompt, "prompt", cfg.Prompt, "prompt shown by interactive reads")
	flags.BoolVar(&cfg.Dump, "dump", cfg.Dump, "dump machine state after a failed run")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if configPath != "" {
		fileCfg, err := loadConfig(configPath)
		if err != nil {
			log.ErrorIf(err)
			return log.ExitCode()
		}
		// parse again so that flags given explicitly override the file
		cfg = fileCfg
		flags.Parse(args)
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return 2
	}

	prog, err := AssembleFile(flags.Arg(0))
	if err != nil {
		log.ErrorIf(err)
		return log.ExitCode()
	}

	opts := append(cfg.options(log.Leveledf("TRACE")), WithOutput(stdout))
	if cfg.Interactive {
		ln := liner.NewLiner()
		defer ln.Close()
		ln.SetCtrlCAborts(true)
		opts = append(opts, WithLineReader(linerInput{ln, cfg.Prompt}))
	} else {
		opts = append(opts, WithInput(stdin))
	}
	vm := New(opts...)
	defer vm.Close()

	if cfg.Timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	result, err := vm.Run(ctx, prog)
	if err != nil {
		reportRunError(&log, vm, err, cfg.Dump)
		return log.ExitCode()
	}
	fmt.Fprintf(stdout, "Result: %v\n", quoteValue(result))
	return log.ExitCode()
}

// reportRunError logs a failed run, first dumping machine state if asked.
// Recovered panics add their stack to the dump.
func reportRunError(log *logio.Logger, vm *VM, err error, dump bool) {
	if dump {
		lw := logio.Writer{Logf: log.Leveledf("DUMP")}
		vmDumper{vm: vm, out: &lw}.dump()
		if stack := panicerr.PanicStack(err); stack != "" {
			fmt.Fprintf(&lw, "# Panic stack\n%s", stack)
		}
		lw.Close()
	}
	log.Errorf("%v", err)
}

// linerInput reads lines from an interactive terminal prompt, keeping them in
// the prompt history.
type linerInput struct {
	*liner.State
	prompt string
}

func (li linerInput) ReadLine() (string, error) {
	line, err := li.Prompt(li.prompt)
	if err == nil && line != "" {
		li.AppendHistory(line)
	}
	return line, err
}
