package enkellang

import (
	"fmt"
	"strings"
)

type Source struct {
	Index   int
	Name    string
	Content string
	Lines   []string
}

func NewSource(index int, name string, content string) *Source {
	return &Source{
		Index:   index,
		Name:    name,
		Content: content,
		Lines:   strings.Split(content, "\n"),
	}
}

type Pos struct {
	Source *Source
	Line   int
	Column int
}

func (p Pos) File() int {
	if p.Source == nil {
		return -1
	}
	return p.Source.Index
}

func (p Pos) String() string {
	if p.Source == nil {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Source.Name, p.Line, p.Column)
}
