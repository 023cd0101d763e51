// Package fileblock parses and renders the full-file edit format used by
// developer-mode responses:
//
//	--- BEGIN FILE: <path> ---
//	<content lines>
//	--- END FILE: <path> ---
//
// The parser is a two-state machine (idle, capturing). Prose outside blocks
// is ignored. A BEGIN marker seen while capturing commits the open block
// first, and a block still open at end of input is committed as-is.
package fileblock

import (
	"strings"
)

const (
	beginPrefix = "--- BEGIN FILE: "
	endPrefix   = "--- END FILE: "
	suffix      = " ---"
)

// Block is one captured file.
type Block struct {
	Path    string
	Content string
}

type state int

const (
	stateIdle state = iota
	stateCapturing
)

// Parser accumulates blocks line by line. The zero value is ready to use.
type Parser struct {
	state  state
	path   string
	lines  []string
	blocks []Block
}

// Feed processes one line without its trailing newline.
func (p *Parser) Feed(line string) {
	line = strings.TrimRight(line, "\r")

	if path, ok := BeginMarker(line); ok {
		if p.state == stateCapturing {
			p.commit()
		}
		p.state = stateCapturing
		p.path = path
		p.lines = p.lines[:0]
		return
	}

	if p.state != stateCapturing {
		return
	}

	if _, ok := EndMarker(line); ok {
		p.commit()
		return
	}

	p.lines = append(p.lines, line)
}

// Close commits any open block and returns every block in capture order.
func (p *Parser) Close() []Block {
	if p.state == stateCapturing {
		p.commit()
	}
	return p.blocks
}

func (p *Parser) commit() {
	p.blocks = append(p.blocks, Block{
		Path:    p.path,
		Content: strings.Join(p.lines, "\n"),
	})
	p.state = stateIdle
	p.path = ""
	p.lines = p.lines[:0]
}

// Parse splits raw into lines and returns the captured blocks.
func Parse(raw string) []Block {
	var p Parser
	for _, line := range strings.Split(raw, "\n") {
		p.Feed(line)
	}
	return p.Close()
}

// BeginMarker reports whether line opens a block and returns its path.
func BeginMarker(line string) (string, bool) {
	return marker(line, beginPrefix)
}

// EndMarker reports whether line closes a block and returns its path.
func EndMarker(line string) (string, bool) {
	return marker(line, endPrefix)
}

func marker(line, prefix string) (string, bool) {
	if !strings.HasPrefix(line, prefix) || !strings.HasSuffix(line, suffix) {
		return "", false
	}
	path := strings.TrimSpace(line[len(prefix) : len(line)-len(suffix)])
	if path == "" {
		return "", false
	}
	return path, true
}

// Render formats blocks for display: a heading with the path followed by
// the content in a fenced block, in the given order. No blocks renders
// as the empty string.
func Render(blocks []Block) string {
	if len(blocks) == 0 {
		return ""
	}

	var b strings.Builder
	for i, blk := range blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("### ")
		b.WriteString(blk.Path)
		b.WriteString("\n")
		b.WriteString(fence(blk.Content))
		b.WriteString("\n")
		b.WriteString(blk.Content)
		if !strings.HasSuffix(blk.Content, "\n") {
			b.WriteString("\n")
		}
		b.WriteString(fence(blk.Content))
		b.WriteString("\n")
	}
	return b.String()
}

// Format writes blocks back into the marker format.
func Format(blocks []Block) string {
	var b strings.Builder
	for _, blk := range blocks {
		b.WriteString(beginPrefix + blk.Path + suffix + "\n")
		if blk.Content != "" {
			b.WriteString(blk.Content + "\n")
		}
		b.WriteString(endPrefix + blk.Path + suffix + "\n")
	}
	return b.String()
}

// fence returns a backtick fence longer than any run inside content.
func fence(content string) string {
	longest, run := 0, 0
	for _, r := range content {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}
