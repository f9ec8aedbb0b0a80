package graph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Read parses the reduced sparse format: a "|V| |E|" header followed by one
// "u v weight" line per edge with 1-based endpoints. The weight column may be
// omitted, in which case it is 1. Blank lines and lines starting with '#'
// are ignored.
func Read(r io.Reader) (*Graph, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var b *Builder
	declared, lineNo := 0, 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		if b == nil {
			if len(fields) != 2 {
				return nil, fmt.Errorf("%w: line %d: header needs 2 fields, got %d", ErrFormat, lineNo, len(fields))
			}
			n, err := strconv.Atoi(fields[0])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: line %d: bad node count %q", ErrFormat, lineNo, fields[0])
			}
			m, err := strconv.Atoi(fields[1])
			if err != nil || m < 0 {
				return nil, fmt.Errorf("%w: line %d: bad edge count %q", ErrFormat, lineNo, fields[1])
			}
			b = NewBuilder(n)
			declared = m
			continue
		}

		if len(fields) != 2 && len(fields) != 3 {
			return nil, fmt.Errorf("%w: line %d: edge needs 2 or 3 fields, got %d", ErrFormat, lineNo, len(fields))
		}
		u, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, lineNo, err)
		}
		v, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, lineNo, err)
		}
		w := 1.0
		if len(fields) == 3 {
			w, err = strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, lineNo, err)
			}
		}
		if err := b.AddEdge(u-1, v-1, w); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: missing header", ErrFormat)
	}
	if len(b.edges) != declared {
		return nil, fmt.Errorf("%w: header declares %d edges, found %d", ErrFormat, declared, len(b.edges))
	}
	return b.Build(), nil
}

// Write emits g in the format accepted by Read.
func Write(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", g.n, len(g.edges))
	for _, e := range g.edges {
		fmt.Fprintf(bw, "%d %d %s\n", e.U+1, e.V+1, strconv.FormatFloat(e.Weight, 'g', -1, 64))
	}
	return bw.Flush()
}

func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return g, nil
}

func Save(path string, g *Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
