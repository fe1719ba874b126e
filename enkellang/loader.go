package enkellang

import (
	"fmt"
	"os"
	"path/filepath"
)

// Loader reads source files and splices imported files into the token stream.
// Each file is imported at most once per loader.
type Loader struct {
	ReadFile func(name string) ([]byte, error)
	// SearchDirs are tried in order when a relative import is not found
	// next to the importing file
	SearchDirs []string
	Sources    []*Source
	loaded     map[string]bool
}

func NewLoader() *Loader {
	return &Loader{
		ReadFile: os.ReadFile,
		loaded:   make(map[string]bool),
	}
}

func (l *Loader) AddSource(name string, content string) *Source {
	source := NewSource(len(l.Sources), name, content)
	l.Sources = append(l.Sources, source)
	return source
}

func (l *Loader) LoadFile(path string) (*Block, error) {
	path = filepath.Clean(path)
	tokens, err := l.loadFile(path, Pos{})
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

func (l *Loader) LoadString(name string, content string) (*Block, error) {
	source := l.AddSource(name, content)
	l.loaded[name] = true
	tokens, err := l.splice(source, filepath.Dir(name))
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

func (l *Loader) loadFile(path string, from Pos) ([]Token, error) {
	content, err := l.ReadFile(path)
	if err != nil {
		return nil, WithPos(fmt.Errorf("%w: %w", ErrImport, err), from)
	}
	return l.loadContent(path, content)
}

func (l *Loader) loadContent(path string, content []byte) ([]Token, error) {
	l.loaded[path] = true
	source := l.AddSource(path, string(content))
	return l.splice(source, filepath.Dir(path))
}

// importFile resolves a relative import against the importing directory
// first, then the search dirs.
func (l *Loader) importFile(path string, dir string, from Pos) ([]Token, bool, error) {
	if filepath.IsAbs(path) {
		path = filepath.Clean(path)
		if l.loaded[path] {
			return nil, false, nil
		}
		tokens, err := l.loadFile(path, from)
		return tokens, err == nil, err
	}

	candidates := []string{filepath.Clean(filepath.Join(dir, path))}
	for _, searchDir := range l.SearchDirs {
		candidates = append(candidates, filepath.Clean(filepath.Join(searchDir, path)))
	}
	var firstErr error
	for _, candidate := range candidates {
		if l.loaded[candidate] {
			return nil, false, nil
		}
		content, err := l.ReadFile(candidate)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		tokens, err := l.loadContent(candidate, content)
		return tokens, err == nil, err
	}
	return nil, false, WithPos(fmt.Errorf("%w: %w", ErrImport, firstErr), from)
}

func (l *Loader) splice(source *Source, dir string) ([]Token, error) {
	tokens, err := Lex(source)
	if err != nil {
		return nil, err
	}
	ret := make([]Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !tok.Is(TokenKeyword, "import") {
			ret = append(ret, tok)
			continue
		}
		if i+2 >= len(tokens) ||
			tokens[i+1].Kind != TokenString ||
			!tokens[i+2].Is(TokenSymbol, ";") {
			return nil, syntaxError(tok.Pos, "expected import \"path\";")
		}
		path := tokens[i+1].Text
		i += 2
		imported, ok, err := l.importFile(path, dir, tok.Pos)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		// drop the imported file's EOF
		ret = append(ret, imported[:len(imported)-1]...)
	}
	return ret, nil
}
