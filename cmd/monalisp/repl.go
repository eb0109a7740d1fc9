package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"nickandperla.net/monalisp/pkg/monalisp"
)

// Alt+key mappings: Alt+key sends ESC (0x1b) followed by the key byte
var altKeyMappings = map[byte]string{
	'b':  "•", // Alt+b - bullet (anonymous function)
	'\'': "'", // Alt+' - quote
}

func printBanner(out io.Writer, nl string) {
	fmt.Fprint(out, "monalisp REPL (Ctrl+D to exit)"+nl)
	fmt.Fprint(out, nl)
	fmt.Fprint(out, "  Alt+b → • (bullet)      Alt+' → ' (quote)"+nl)
	fmt.Fprint(out, "  Up/Down → history       Unbalanced ( or { continues the input"+nl)
	fmt.Fprint(out, nl)
}

func runREPL(runtime *monalisp.Runtime, in *os.File, out io.Writer) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		// Not a TTY, fall back to basic mode
		printBanner(out, "\n")
		runBasicREPL(runtime, in, out)
		return
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set raw mode: %v\n", err)
		printBanner(out, "\n")
		runBasicREPL(runtime, in, out)
		return
	}
	defer term.Restore(fd, oldState)

	printBanner(out, "\r\n")
	runRawREPL(runtime, in, out)
}

// session accumulates input lines until they form complete source.
type session struct {
	runtime *monalisp.Runtime
	out     io.Writer
	nl      string // line ending for output; raw mode needs \r\n
	pending strings.Builder
}

func (s *session) prompt() string {
	if s.pending.Len() > 0 {
		return "... "
	}
	return ">>> "
}

// feed adds a line of input and evaluates once the accumulated source is
// complete.
func (s *session) feed(line string) {
	s.pending.WriteString(line)
	s.pending.WriteString("\n")
	input := s.pending.String()
	if incomplete(input) {
		return
	}
	s.pending.Reset()

	if strings.TrimSpace(input) == "" {
		return
	}

	result, err := s.runtime.Execute(input)
	if err != nil {
		msg := monalisp.Describe(err, input)
		fmt.Fprint(s.out, "Error: "+strings.ReplaceAll(msg, "\n", s.nl)+s.nl)
		return
	}
	// Replace newlines for raw mode display
	fmt.Fprint(s.out, strings.ReplaceAll(result.String(), "\n", s.nl)+s.nl)
}

// incomplete reports whether source has an unterminated string or more
// opening than closing brackets. Excess closers are left to the reader to
// report.
func incomplete(source string) bool {
	depth := 0
	inString := false
	for _, r := range source {
		switch {
		case inString:
			if r == '"' {
				inString = false
			}
		case r == '"':
			inString = true
		case r == '(' || r == '{':
			depth++
		case r == ')' || r == '}':
			depth--
		}
	}
	return inString || depth > 0
}

// runBasicREPL handles non-TTY input
func runBasicREPL(runtime *monalisp.Runtime, in io.Reader, out io.Writer) {
	s := &session{runtime: runtime, out: out, nl: "\n"}
	reader := bufio.NewReader(in)

	for {
		fmt.Fprint(out, s.prompt())

		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Fprintln(out)
			return
		}
		s.feed(strings.TrimRight(line, "\r\n"))
	}
}

// runRawREPL handles TTY input with Alt+key support
func runRawREPL(runtime *monalisp.Runtime, in io.Reader, out io.Writer) {
	s := &session{runtime: runtime, out: out, nl: "\r\n"}
	editor := &lineEditor{in: in, out: out}

	for {
		fmt.Fprint(out, s.prompt())

		line, eof := editor.readLine()
		if eof {
			fmt.Fprint(out, "\r\n")
			return
		}
		if strings.TrimSpace(line) != "" {
			editor.remember(line)
		}
		s.feed(line)
	}
}

// lineEditor reads lines from a terminal in raw mode, echoing and editing
// them itself.
type lineEditor struct {
	in      io.Reader
	out     io.Writer
	history []string
}

func (e *lineEditor) remember(line string) {
	if n := len(e.history); n > 0 && e.history[n-1] == line {
		return
	}
	e.history = append(e.history, line)
}

func (e *lineEditor) readByte() (byte, bool) {
	buf := make([]byte, 1)
	n, err := e.in.Read(buf)
	if err != nil || n == 0 {
		return 0, false
	}
	return buf[0], true
}

// readLine reads a line in raw mode with Alt+key support.
// Returns the line and whether EOF was encountered.
func (e *lineEditor) readLine() (string, bool) {
	var line []rune
	cursor := 0              // Position in line (for arrow key navigation)
	recall := len(e.history) // history index; len(history) is the line being typed
	var draft []rune

	// Helper to redraw line from cursor position
	redrawFromCursor := func() {
		// Clear from cursor to end of line
		fmt.Fprint(e.out, "\x1b[K")
		fmt.Fprint(e.out, string(line[cursor:]))
		// Move cursor back to position
		if cursor < len(line) {
			fmt.Fprintf(e.out, "\x1b[%dD", len(line)-cursor)
		}
	}

	insert := func(runes []rune) {
		newLine := make([]rune, 0, len(line)+len(runes))
		newLine = append(newLine, line[:cursor]...)
		newLine = append(newLine, runes...)
		newLine = append(newLine, line[cursor:]...)
		line = newLine
		cursor += len(runes)
		fmt.Fprint(e.out, string(runes))
		if cursor < len(line) {
			redrawFromCursor()
		}
	}

	// replace swaps the whole line, used by history navigation
	replace := func(runes []rune) {
		if cursor > 0 {
			fmt.Fprintf(e.out, "\x1b[%dD", cursor)
		}
		line = append([]rune(nil), runes...)
		cursor = 0
		redrawFromCursor()
		if len(line) > 0 {
			fmt.Fprintf(e.out, "\x1b[%dC", len(line))
		}
		cursor = len(line)
	}

	for {
		b, ok := e.readByte()
		if !ok {
			return string(line), true
		}

		switch b {
		case 0x04: // Ctrl+D
			if len(line) == 0 {
				return "", true
			}
			// Delete character at cursor (like Delete key)
			if cursor < len(line) {
				line = append(line[:cursor], line[cursor+1:]...)
				redrawFromCursor()
			}

		case 0x03: // Ctrl+C
			fmt.Fprint(e.out, "^C\r\n")
			return "", false

		case 0x0d, 0x0a: // Enter (CR or LF)
			fmt.Fprint(e.out, "\r\n")
			return string(line), false

		case 0x7f, 0x08: // Backspace (DEL or BS)
			if cursor > 0 {
				cursor--
				line = append(line[:cursor], line[cursor+1:]...)
				fmt.Fprint(e.out, "\b")
				redrawFromCursor()
			}

		case 0x1b: // ESC - could be Alt+key or arrow key sequence
			next, ok := e.readByte()
			if !ok {
				continue
			}

			if next != '[' {
				// Alt+key: ESC followed by key byte
				if op, ok := altKeyMappings[next]; ok {
					insert([]rune(op))
				}
				continue
			}

			// Arrow key sequence: ESC [ A/B/C/D
			arrow, ok := e.readByte()
			if !ok {
				continue
			}
			switch arrow {
			case 'A': // Up arrow
				if recall > 0 {
					if recall == len(e.history) {
						draft = append([]rune(nil), line...)
					}
					recall--
					replace([]rune(e.history[recall]))
				}
			case 'B': // Down arrow
				if recall < len(e.history) {
					recall++
					if recall == len(e.history) {
						replace(draft)
					} else {
						replace([]rune(e.history[recall]))
					}
				}
			case 'C': // Right arrow
				if cursor < len(line) {
					cursor++
					fmt.Fprint(e.out, "\x1b[C")
				}
			case 'D': // Left arrow
				if cursor > 0 {
					cursor--
					fmt.Fprint(e.out, "\x1b[D")
				}
			case '3': // Delete key: ESC [ 3 ~
				if tilde, ok := e.readByte(); ok && tilde == '~' && cursor < len(line) {
					line = append(line[:cursor], line[cursor+1:]...)
					redrawFromCursor()
				}
			}

		case 0x01: // Ctrl+A - beginning of line
			if cursor > 0 {
				fmt.Fprintf(e.out, "\x1b[%dD", cursor)
				cursor = 0
			}

		case 0x05: // Ctrl+E - end of line
			if cursor < len(line) {
				fmt.Fprintf(e.out, "\x1b[%dC", len(line)-cursor)
				cursor = len(line)
			}

		case 0x0b: // Ctrl+K - kill to end of line
			if cursor < len(line) {
				line = line[:cursor]
				fmt.Fprint(e.out, "\x1b[K")
			}

		case 0x15: // Ctrl+U - kill to beginning of line
			if cursor > 0 {
				fmt.Fprintf(e.out, "\x1b[%dD", cursor)
				line = line[cursor:]
				cursor = 0
				redrawFromCursor()
			}

		default:
			if b >= 0x20 && b < 0x7f {
				// Printable ASCII character
				insert([]rune{rune(b)})
			} else if b >= 0x80 {
				// UTF-8 multi-byte sequence - read remaining bytes
				utfBuf := []byte{b}
				numBytes := 0
				if b&0xE0 == 0xC0 {
					numBytes = 1
				} else if b&0xF0 == 0xE0 {
					numBytes = 2
				} else if b&0xF8 == 0xF0 {
					numBytes = 3
				}
				for i := 0; i < numBytes; i++ {
					c, ok := e.readByte()
					if !ok {
						break
					}
					utfBuf = append(utfBuf, c)
				}
				insert([]rune(string(utfBuf))[:1])
			}
		}
	}
}
