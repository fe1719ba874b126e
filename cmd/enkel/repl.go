package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/reusee/dscope"
	"github.com/reusee/enkel/enkellang"
	"github.com/reusee/enkel/enkelrt"
)

const (
	prompt         = "> "
	continuePrompt = "... "
)

type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

func replAction() action {
	return func(ctx context.Context, scope dscope.Scope) (err error) {
		var historyFile string
		if home, err := os.UserHomeDir(); err == nil {
			historyFile = filepath.Join(home, ".enkel_history")
		}
		rl, err := readline.NewEx(&readline.Config{
			Prompt:      prompt,
			HistoryFile: historyFile,
		})
		if err != nil {
			return err
		}
		defer rl.Close()

		scope.Call(func(
			newInterpreter NewInterpreter,
		) {
			runREPL(newInterpreter(ctx), rl, rl.Stderr())
		})
		return nil
	}
}

// runREPL evaluates statements in one interpreter until the reader fails.
// Input with unclosed braces continues on the next line.
func runREPL(in *enkelrt.Interpreter, rl lineReader, errOut io.Writer) {
	var buf strings.Builder
	continuing := false
	n := 0
	for {
		line, err := rl.Readline()
		if err != nil { // Ctrl-C or Ctrl-D
			return
		}
		if buf.Len() == 0 && strings.TrimSpace(line) == "" {
			continue
		}
		buf.WriteString(line)
		buf.WriteString("\n")
		src := buf.String()
		if incomplete(src) {
			if !continuing {
				rl.SetPrompt(continuePrompt)
				continuing = true
			}
			continue
		}
		buf.Reset()
		if continuing {
			rl.SetPrompt(prompt)
			continuing = false
		}

		n++
		if err := evalLine(in, fmt.Sprintf("<repl %d>", n), withSemicolon(src)); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
	}
}

// evalLine prints the value of a trailing expression statement.
func evalLine(in *enkelrt.Interpreter, name string, src string) error {
	block, err := in.Loader().LoadString(name, src)
	if err != nil {
		return err
	}
	for i, stmt := range block.Stmts {
		value, err := in.Eval(stmt)
		if err != nil {
			return err
		}
		if i == len(block.Stmts)-1 && !value.IsNull() {
			fmt.Fprintln(in.Stdout(), in.Stringify(value))
		}
	}
	return nil
}

func incomplete(src string) bool {
	tokens, err := enkellang.Lex(enkellang.NewSource(0, "", src))
	if err != nil {
		var posErr enkellang.PosError
		return errors.As(err, &posErr) && strings.Contains(posErr.Err.Error(), "unterminated comment")
	}
	depth := 0
	for _, tok := range tokens {
		if tok.Kind != enkellang.TokenSymbol {
			continue
		}
		switch tok.Text {
		case "{", "(", "[":
			depth++
		case "}", ")", "]":
			depth--
		}
	}
	return depth > 0
}

// withSemicolon lets expressions be typed without the terminator.
func withSemicolon(src string) string {
	trimmed := strings.TrimSpace(src)
	if strings.HasSuffix(trimmed, ";") || strings.HasSuffix(trimmed, "}") {
		return src
	}
	return trimmed + ";"
}
