// Package cli 实现jptax命令行：单条计算、批量计算，结果以YAML输出
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tsinghua-fib-lab/jptax-sim/taxcalc"
	"github.com/tsinghua-fib-lab/jptax-sim/utils/config"
	"github.com/tsinghua-fib-lab/jptax-sim/utils/input"
	"gopkg.in/yaml.v2"
)

const remoteTimeout = 10 * time.Second

// Run 解析参数并执行，返回退出码（0成功，1计算或加载失败，2用法错误）
func Run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("jptax", flag.ContinueOnError)
	fs.SetOutput(stderr)
	income := fs.Float64("income", 0, "gross income (JPY)")
	deductions := fs.Float64("deductions", 0, "itemized deductions (JPY)")
	dependents := fs.Int("dependents", 0, "number of dependents")
	batch := fs.Bool("batch", false, "calculate every input configured in the config file")
	configPath := fs.String("config", "", "config file path (used with -batch)")
	inputFile := fs.String("input", "", "YAML input list (used with -batch, overrides input.file)")
	remote := fs.String("remote", "", "calculate through a running service, e.g. http://localhost:51102")
	fs.Usage = func() {
		fmt.Fprint(stderr, `jptax - Japanese income tax calculator

Usage:
  jptax -income N [-deductions N] [-dependents N] [-remote URL]
  jptax -batch [-config FILE] [-input FILE] [-remote URL]

Flags:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return 2
	}

	incomeSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "income" {
			incomeSet = true
		}
	})

	var calc calculator = localCalculator{}
	if *remote != "" {
		calc = taxcalc.NewClient(&http.Client{Timeout: remoteTimeout}, *remote)
	}
	ctx := context.Background()

	if !*batch {
		if !incomeSet {
			fmt.Fprintln(stderr, "-income is required")
			fs.Usage()
			return 2
		}
		result, err := calc.Calculate(ctx, taxcalc.CalculationInput{
			Income:     *income,
			Deductions: *deductions,
			Dependents: *dependents,
		})
		if err != nil {
			fmt.Fprintf(stderr, "calculate: %v\n", err)
			return 1
		}
		return writeYAML(stdout, stderr, newResultView(result))
	}

	c, err := config.Load(*configPath, "")
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	if *inputFile != "" {
		c.Input.File = *inputFile
	}
	ins, err := input.Load(ctx, c.Input)
	if err != nil {
		fmt.Fprintf(stderr, "load: %v\n", err)
		if errors.Is(err, input.ErrNoInput) {
			return 2
		}
		return 1
	}
	results, err := calc.CalculateBatch(ctx, ins)
	if err != nil {
		fmt.Fprintf(stderr, "calculate: %v\n", err)
		return 1
	}
	return writeYAML(stdout, stderr, newBatchView(results))
}

func writeYAML(stdout, stderr io.Writer, v any) int {
	b, err := yaml.Marshal(v)
	if err != nil {
		fmt.Fprintf(stderr, "yaml marshal: %v\n", err)
		return 1
	}
	if _, err := stdout.Write(b); err != nil {
		fmt.Fprintf(stderr, "write: %v\n", err)
		return 1
	}
	return 0
}
