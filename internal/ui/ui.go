// Package ui provides the color console helpers cmd/spnode uses for
// process-level logging. The engine itself never imports this package;
// it only emits typed node.Event values.
package ui

import "github.com/fatih/color"

// Printer gates every helper behind a single quiet flag, so cmd/spnode can
// silence console output without threading a bool through every call site.
type Printer struct {
	Quiet bool
}

func (p Printer) Success(format string, a ...interface{}) {
	if p.Quiet {
		return
	}
	color.Green("✅ "+format, a...)
}

func (p Printer) Error(format string, a ...interface{}) {
	if p.Quiet {
		return
	}
	color.Red("⛔ "+format, a...)
}

func (p Printer) Info(format string, a ...interface{}) {
	if p.Quiet {
		return
	}
	color.Cyan("ℹ️  "+format, a...)
}

func (p Printer) Warning(format string, a ...interface{}) {
	if p.Quiet {
		return
	}
	color.Yellow("⚠️  "+format, a...)
}

func (p Printer) Network(format string, a ...interface{}) {
	if p.Quiet {
		return
	}
	c := color.New(color.FgBlue)
	c.Printf("🌐 "+format+"\n", a...)
}

func (p Printer) Block(format string, a ...interface{}) {
	if p.Quiet {
		return
	}
	c := color.New(color.FgYellow, color.Bold)
	c.Printf("⛓️  "+format+"\n", a...)
}
